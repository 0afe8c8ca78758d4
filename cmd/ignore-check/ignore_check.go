package ignore_check

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/sthembisoo/lograh/config"
	"github.com/sthembisoo/lograh/ignore"
)

var (
	flagConfigPath string
	flagExtra      []string
)

func NewCmdIgnoreCheck() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore-check KIND...",
		Short: "Show whether error kinds would be reported",
		Long: `Show whether error kinds would be reported.

The ignore list is read from --config, .env files and the LOGRAH_IGNORE
environment variable (comma separated).

Examples:
  # Check two kinds against the configured ignore list
  lograh ignore-check --config lograh.yaml NotFound DivisionByZero

  # Try an ignore list without editing the config
  lograh ignore-check --ignore NotFound NotFound Timeout`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return start(cmd.OutOrStdout(), args)
		},
	}

	cmd.Flags().StringVarP(&flagConfigPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().StringSliceVarP(&flagExtra, "ignore", "i", nil, "Additional kinds to ignore")

	return cmd
}

func start(out io.Writer, kinds []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registry, err := ignore.New().Register(append(cfg.Ignore, flagExtra...)...)
	if err != nil {
		return fmt.Errorf("invalid ignore list: %w", err)
	}

	fmt.Fprintf(out, "Ignore list (%d): %v\n", registry.Len(), registry.Kinds())
	for _, kind := range kinds {
		status := "reported"
		if registry.IsIgnored(kind) {
			status = "ignored"
		}
		fmt.Fprintf(out, "  %s: %s\n", kind, status)
	}

	return nil
}
