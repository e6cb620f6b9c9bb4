// nbjfeedback
//
// Coaching feedback for the NBJ (Not-Bedürfnis-Jesus) reflection steps,
// generated by a chat-completion model.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "nbjfeedback",
	Short: "NBJ feedback - coaching responses for the NBJ reflection steps",
	Long: `nbjfeedback serves coaching feedback for the NBJ (Not-Bedürfnis-Jesus)
reflection exercise by forwarding each step to a chat-completion model.

  nbjfeedback serve                                   Start the HTTP server
  nbjfeedback ask --step 2 --text "..."               Ask once from the terminal
  nbjfeedback styles                                  List profiles and styles
  nbjfeedback usage                                   Show the usage ledger
  nbjfeedback config show                             Show effective configuration`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(logLevel)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("NBJ_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
