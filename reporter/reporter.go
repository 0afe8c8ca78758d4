// Package reporter ties the ignore list, the formatter and the Telegram
// client together behind the calls made from application error handlers.
package reporter

import (
	"context"
	"log/slog"
	"time"

	"github.com/sthembisoo/lograh/exception"
	"github.com/sthembisoo/lograh/format"
	"github.com/sthembisoo/lograh/ignore"
	"github.com/sthembisoo/lograh/telegram"
)

// Option configures a Reporter
type Option func(*Reporter)

// WithLogger sets the logger used for delivery diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIgnoreRegistry shares an existing ignore registry
func WithIgnoreRegistry(registry *ignore.Registry) Option {
	return func(r *Reporter) {
		if registry != nil {
			r.ignored = registry
		}
	}
}

// WithClock overrides time.Now for report timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		if now != nil {
			r.now = now
		}
	}
}

// WithMetrics records report outcomes and delivery attempts
func WithMetrics(metrics *Metrics) Option {
	return func(r *Reporter) {
		r.metrics = metrics
	}
}

// Reporter sends reports for captured errors. It is safe for concurrent use
// once ignored kinds have been registered.
type Reporter struct {
	cfg     Config
	client  *telegram.Client
	ignored *ignore.Registry
	logger  *slog.Logger
	now     func() time.Time
	metrics *Metrics
}

// New creates a Reporter delivering through transport
func New(cfg Config, transport telegram.Transport, opts ...Option) (*Reporter, error) {
	if transport == nil {
		return nil, &ConfigurationError{Field: "transport", Reason: "is not available"}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	r := &Reporter{
		cfg:     cfg,
		ignored: ignore.New(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("app", cfg.AppName)

	r.client = telegram.NewClient(cfg.BotToken, transport,
		telegram.WithAPIBase(cfg.APIBase),
		telegram.WithAttemptFunc(r.observeAttempt),
	)
	return r, nil
}

// NewDefault creates a Reporter using the resty transport with cfg.Timeout
// applied to every attempt
func NewDefault(cfg Config, opts ...Option) (*Reporter, error) {
	return New(cfg, telegram.NewRestyTransport(cfg.Timeout), opts...)
}

// Ignore registers kinds that must never be reported
func (r *Reporter) Ignore(kinds ...string) error {
	_, err := r.ignored.Register(kinds...)
	return err
}

// IgnoredKinds returns the registered kinds in sorted order
func (r *Reporter) IgnoredKinds() []string {
	return r.ignored.Kinds()
}

// Report formats err according to mode and delivers it. Ignored kinds return
// nil without any network traffic. Delivery failures are returned unchanged.
func (r *Reporter) Report(ctx context.Context, err *exception.CapturedError, mode format.Mode) error {
	if err == nil {
		return nil
	}

	if r.ignored.IsIgnored(err.Kind) {
		r.logger.Debug("skipping ignored error kind", "kind", err.Kind)
		r.metrics.recordOutcome(outcomeIgnored)
		return nil
	}

	text, formatErr := format.Format(r.cfg.AppName, err, mode, r.now())
	if formatErr != nil {
		r.metrics.recordOutcome(outcomeFailed)
		return formatErr
	}

	msg := telegram.Message{
		Text:                  text,
		ChatID:                r.cfg.ChatID,
		DisableWebPagePreview: r.cfg.DisableWebPagePreview,
		DisableNotification:   r.cfg.DisableNotification,
	}

	if deliverErr := r.client.Deliver(ctx, msg, mode.Structured(), r.cfg.Retries); deliverErr != nil {
		r.logger.Error("failed to deliver error report",
			"kind", err.Kind,
			"mode", mode.String(),
			"error", deliverErr)
		r.metrics.recordOutcome(outcomeFailed)
		return deliverErr
	}

	r.logger.Debug("delivered error report", "kind", err.Kind, "mode", mode.String())
	r.metrics.recordOutcome(outcomeDelivered)
	return nil
}

// ReportError captures err at the call site and reports it
func (r *Reporter) ReportError(ctx context.Context, err error, mode format.Mode) error {
	if err == nil {
		return nil
	}
	return r.Report(ctx, exception.CaptureSkip(err, 1), mode)
}

// Recover must be deferred directly. It reports a recovered panic and then
// panics again with the same value.
func (r *Reporter) Recover(ctx context.Context, mode format.Mode) {
	recovered := recover()
	if recovered == nil {
		return
	}

	if err := r.Report(ctx, exception.FromPanic(recovered, 1), mode); err != nil {
		r.logger.Error("failed to report panic", "error", err)
	}
	panic(recovered)
}

func (r *Reporter) observeAttempt(attempt int, err error) {
	r.metrics.recordAttempt(err)
	if err != nil {
		r.logger.Warn("delivery attempt failed",
			"attempt", attempt,
			"max_attempts", r.cfg.Retries+1,
			"error", err)
	}
}
