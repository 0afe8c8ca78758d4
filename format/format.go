// Package format turns a captured error into the text or JSON report sent to
// the chat. All functions are pure.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sthembisoo/lograh/exception"
)

const (
	// TimestampLayout is the RFC 2822 layout used in every report
	TimestampLayout = time.RFC1123Z

	// LegacyTimestampLayout is the "Y-m-d H:i:s T O" layout of earlier
	// payloads. It is kept for consumers that parse old reports.
	LegacyTimestampLayout = "2006-01-02 15:04:05 MST -0700"

	fenceOpen  = "```json\n"
	fenceClose = "\n```"
)

// Report is the value rendered into a message body
type Report struct {
	App        string   `json:"app"`
	Timestamp  string   `json:"timestamp"`
	Summary    string   `json:"summary"`
	StackTrace []string `json:"stack trace,omitempty"`
}

// Summary returns the one line description of err
func Summary(err *exception.CapturedError) string {
	return fmt.Sprintf("Uncaught exception: '%s' with message '%s' in %s:%d",
		err.Kind, err.Message, err.File, err.Line)
}

// StackTrace renders one entry per frame followed by the synthetic {main}
// entry, numbered one past the last real frame.
func StackTrace(err *exception.CapturedError) []string {
	trace := lo.Map(err.Frames, func(frame exception.StackFrame, i int) string {
		return fmt.Sprintf("#%d %s(%d): %s(%s)",
			i, frame.File, frame.Line, frame.Function, strings.Join(frame.Args, ", "))
	})
	return append(trace, fmt.Sprintf("#%d {main}", len(err.Frames)))
}

// Build assembles the report for err. The stack trace is only computed when
// mode asks for it.
func Build(app string, err *exception.CapturedError, mode Mode, now time.Time) Report {
	report := Report{
		App:       app,
		Timestamp: now.Format(TimestampLayout),
		Summary:   Summary(err),
	}
	if mode.IncludesTrace() {
		report.StackTrace = StackTrace(err)
	}
	return report
}

// Render serializes report for mode
func Render(report Report, mode Mode) (string, error) {
	if !mode.Structured() {
		return fmt.Sprintf("app: %s\ntimestamp: %s\nsummary: %s",
			report.App, report.Timestamp, report.Summary), nil
	}

	if !mode.IncludesTrace() {
		report.StackTrace = nil
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	return fenceOpen + strings.TrimSuffix(buf.String(), "\n") + fenceClose, nil
}

// Format builds and renders a report in one step
func Format(app string, err *exception.CapturedError, mode Mode, now time.Time) (string, error) {
	return Render(Build(app, err, mode, now), mode)
}

// Unfence strips the ```json wrapper added by Render
func Unfence(body string) string {
	body = strings.TrimPrefix(body, fenceOpen)
	return strings.TrimSuffix(body, fenceClose)
}
