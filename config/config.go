// Package config loads reporter settings from an optional YAML file, .env
// files and the process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/sthembisoo/lograh/format"
	"github.com/sthembisoo/lograh/reporter"
	"github.com/sthembisoo/lograh/telegram"
)

// Environment variables read by Load. They override the YAML file.
const (
	EnvAppName               = "LOGRAH_APP_NAME"
	EnvBotToken              = "TELEGRAM_BOT_TOKEN"
	EnvChatID                = "TELEGRAM_CHAT_ID"
	EnvAPIBase               = "TELEGRAM_API_BASE"
	EnvDisableNotification   = "LOGRAH_DISABLE_NOTIFICATION"
	EnvDisableWebPagePreview = "LOGRAH_DISABLE_WEB_PAGE_PREVIEW"
	EnvRetries               = "LOGRAH_RETRIES"
	EnvTimeout               = "LOGRAH_TIMEOUT"
	EnvMode                  = "LOGRAH_MODE"
	EnvIgnore                = "LOGRAH_IGNORE"
	EnvLogLevel              = "LOGRAH_LOG_LEVEL"
)

var envFiles = []string{".env", ".env.local"}

// Config is the on-disk representation of the reporter settings
type Config struct {
	AppName  string         `yaml:"app_name"`
	Telegram TelegramConfig `yaml:"telegram"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Ignore   []string       `yaml:"ignore"`
	LogLevel string         `yaml:"log_level"`
}

// TelegramConfig holds the bot and chat settings
type TelegramConfig struct {
	BotToken              string `yaml:"bot_token"`
	ChatID                string `yaml:"chat_id"`
	APIBase               string `yaml:"api_base"`
	DisableNotification   *bool  `yaml:"disable_notification"`
	DisableWebPagePreview *bool  `yaml:"disable_web_page_preview"`
}

// DeliveryConfig holds retry and formatting settings
type DeliveryConfig struct {
	Retries *int          `yaml:"retries"`
	Timeout time.Duration `yaml:"timeout"`
	Mode    string        `yaml:"mode"`
}

// Load reads path (optional, may be empty), then the environment. .env and
// .env.local are loaded first without overriding variables already set.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if _, err := cfg.ReportMode(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles() {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Note: could not load %s: %v\n", envFile, err)
		}
	}
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString(&c.AppName, EnvAppName)
	setString(&c.Telegram.BotToken, EnvBotToken)
	setString(&c.Telegram.ChatID, EnvChatID)
	setString(&c.Telegram.APIBase, EnvAPIBase)
	setString(&c.Delivery.Mode, EnvMode)
	setString(&c.LogLevel, EnvLogLevel)

	for key, dst := range map[string]**bool{
		EnvDisableNotification:   &c.Telegram.DisableNotification,
		EnvDisableWebPagePreview: &c.Telegram.DisableWebPagePreview,
	} {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = &b
	}

	if v := os.Getenv(EnvRetries); v != "" {
		retries, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRetries, err)
		}
		c.Delivery.Retries = &retries
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Delivery.Timeout = timeout
	}

	if v := os.Getenv(EnvIgnore); v != "" {
		c.Ignore = append(c.Ignore, strings.Split(v, ",")...)
	}
	c.Ignore = lo.Uniq(lo.FilterMap(c.Ignore, func(kind string, _ int) (string, bool) {
		kind = strings.TrimSpace(kind)
		return kind, kind != ""
	}))

	return nil
}

func (c *Config) applyDefaults() {
	defaults := reporter.DefaultConfig()
	if c.Telegram.APIBase == "" {
		c.Telegram.APIBase = telegram.DefaultAPIBase
	}
	if c.Telegram.DisableNotification == nil {
		c.Telegram.DisableNotification = lo.ToPtr(defaults.DisableNotification)
	}
	if c.Telegram.DisableWebPagePreview == nil {
		c.Telegram.DisableWebPagePreview = lo.ToPtr(defaults.DisableWebPagePreview)
	}
	if c.Delivery.Retries == nil {
		c.Delivery.Retries = lo.ToPtr(defaults.Retries)
	}
	if c.Delivery.Mode == "" {
		c.Delivery.Mode = format.StructuredWithTrace.String()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ReportMode parses Delivery.Mode
func (c *Config) ReportMode() (format.Mode, error) {
	return format.ParseMode(c.Delivery.Mode)
}

// Reporter converts the loaded settings into a reporter.Config
func (c *Config) Reporter() reporter.Config {
	return reporter.Config{
		AppName:               c.AppName,
		BotToken:              c.Telegram.BotToken,
		ChatID:                c.Telegram.ChatID,
		DisableNotification:   lo.FromPtr(c.Telegram.DisableNotification),
		DisableWebPagePreview: lo.FromPtr(c.Telegram.DisableWebPagePreview),
		Retries:               lo.FromPtr(c.Delivery.Retries),
		APIBase:               c.Telegram.APIBase,
		Timeout:               c.Delivery.Timeout,
	}
}
