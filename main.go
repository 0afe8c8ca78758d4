package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	ignore_check "github.com/sthembisoo/lograh/cmd/ignore-check"
	"github.com/sthembisoo/lograh/cmd/report"
)

var rootCmd = &cobra.Command{
	Use:   "lograh",
	Short: "Report application exceptions to Telegram chats",
}

func main() {
	rootCmd.AddCommand(report.NewCmdReport())
	rootCmd.AddCommand(ignore_check.NewCmdIgnoreCheck())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
