package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/sthembisoo/lograh/config"
	"github.com/sthembisoo/lograh/reporter"
	"github.com/sthembisoo/lograh/utils/logging"
)

var (
	flagConfigPath string
	flagAppName    string
	flagToken      string
	flagChatID     string
	flagAPIBase    string
	flagMode       string
	flagKind       string
	flagMessage    string
	flagRetries    int
	flagTimeout    time.Duration
	flagLogLevel   string
)

// commandError is the error reported from the command line
type commandError struct {
	kind    string
	message string
}

func (e *commandError) Error() string { return e.message }
func (e *commandError) Kind() string  { return e.kind }

func NewCmdReport() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Send an exception report to a Telegram chat",
		Long: `Send an exception report to a Telegram chat.

This command will:
1. Load settings from --config, .env files and the environment
2. Skip the report if --kind is in the ignore list
3. Format the report (text, json or json-trace)
4. Deliver it through the Bot API, retrying on network failures

Examples:
  # Check that the bot can reach the chat
  lograh report --token YOUR_BOT_TOKEN --chat -1001234567890

  # Report a specific error kind as plain text
  lograh report --config lograh.yaml --kind DivisionByZero --message "division by zero" --mode text`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return start(cmd.Context(), cmd, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&flagConfigPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&flagAppName, "app", "a", "", "Application name shown in the report")
	cmd.Flags().StringVarP(&flagToken, "token", "t", "", "Telegram bot token (or set "+config.EnvBotToken+" env var)")
	cmd.Flags().StringVar(&flagChatID, "chat", "", "Telegram chat id (or set "+config.EnvChatID+" env var)")
	cmd.Flags().StringVar(&flagAPIBase, "api-base", "", "Bot API base URL, the token is appended to it")
	cmd.Flags().StringVarP(&flagMode, "mode", "m", "", "Report mode: text, json or json-trace")
	cmd.Flags().StringVarP(&flagKind, "kind", "k", "ManualReport", "Error kind to report")
	cmd.Flags().StringVar(&flagMessage, "message", "test report", "Error message to report")
	cmd.Flags().IntVarP(&flagRetries, "retries", "r", 0, "Retries after a network failure")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Per-attempt timeout, 0 disables it")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")

	return cmd
}

func start(ctx context.Context, cmd *cobra.Command, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)

	reporterCfg := cfg.Reporter()
	if reporterCfg.BotToken == "" {
		return fmt.Errorf("bot token required: use --token flag or set %s environment variable", config.EnvBotToken)
	}
	if reporterCfg.AppName == "" {
		reporterCfg.AppName, _ = os.Hostname()
	}

	mode, err := cfg.ReportMode()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	rep, err := reporter.NewDefault(reporterCfg, reporter.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := rep.Ignore(cfg.Ignore...); err != nil {
		return fmt.Errorf("invalid ignore list: %w", err)
	}

	ignored := lo.Contains(rep.IgnoredKinds(), flagKind)

	reportErr := &commandError{kind: flagKind, message: flagMessage}
	if err := rep.ReportError(ctx, reportErr, mode); err != nil {
		return fmt.Errorf("error sending report: %w", err)
	}

	if ignored {
		fmt.Fprintf(out, "Kind %s is ignored, nothing was sent\n", flagKind)
		return nil
	}

	fmt.Fprintf(out, "Report sent to chat %s (%s)\n", reporterCfg.ChatID, mode)
	return nil
}

// applyFlags overrides loaded settings with flags that were set explicitly
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("app") {
		cfg.AppName = flagAppName
	}
	if flags.Changed("token") {
		cfg.Telegram.BotToken = flagToken
	}
	if flags.Changed("chat") {
		cfg.Telegram.ChatID = flagChatID
	}
	if flags.Changed("api-base") {
		cfg.Telegram.APIBase = flagAPIBase
	}
	if flags.Changed("mode") {
		cfg.Delivery.Mode = flagMode
	}
	if flags.Changed("retries") {
		cfg.Delivery.Retries = &flagRetries
	}
	if flags.Changed("timeout") {
		cfg.Delivery.Timeout = flagTimeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
}
