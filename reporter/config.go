package reporter

import (
	"fmt"
	"time"

	"github.com/sthembisoo/lograh/telegram"
)

const (
	DefaultRetries = 3
)

// Config is fixed for the lifetime of a Reporter
type Config struct {
	// AppName identifies the application in every report
	AppName string
	// BotToken is the access token issued by @BotFather
	BotToken string
	// ChatID is the user, group or channel receiving reports
	ChatID                string
	DisableNotification   bool
	DisableWebPagePreview bool
	// Retries is the number of extra attempts after a transport failure
	Retries int

	APIBase string
	Timeout time.Duration
}

// DefaultConfig returns the defaults used when a value is not configured
func DefaultConfig() Config {
	return Config{
		DisableNotification:   true,
		DisableWebPagePreview: true,
		Retries:               DefaultRetries,
		APIBase:               telegram.DefaultAPIBase,
	}
}

// ConfigurationError is returned by New when the reporter cannot be built
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid reporter configuration: %s %s", e.Field, e.Reason)
}

func (c Config) validate() error {
	switch {
	case c.BotToken == "":
		return &ConfigurationError{Field: "bot token", Reason: "is required"}
	case c.ChatID == "":
		return &ConfigurationError{Field: "chat id", Reason: "is required"}
	case c.Retries < 0:
		return &ConfigurationError{Field: "retries", Reason: "must not be negative"}
	case c.Timeout < 0:
		return &ConfigurationError{Field: "timeout", Reason: "must not be negative"}
	}
	return nil
}
