package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nbjcoach/nbjfeedback/internal/config"
	"github.com/nbjcoach/nbjfeedback/internal/usage"
)

var usageLimit int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the usage ledger",
	Long: `Summarize the SQLite usage ledger configured by NBJ_USAGE_DB.
The ledger holds request metadata only (profile, language, step, style,
outcome, latency, token counts), never user text or generated answers.`,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().IntVarP(&usageLimit, "limit", "n", 20, "Number of recent events to show")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.UsageEnabled() {
		return fmt.Errorf("usage ledger is disabled; set NBJ_USAGE_DB")
	}

	store, err := usage.NewStore(cfg.UsageDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	sum, err := store.Summarize(ctx)
	if err != nil {
		return fmt.Errorf("summarizing usage: %w", err)
	}
	events, err := store.Recent(ctx, usageLimit)
	if err != nil {
		return fmt.Errorf("listing usage: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Ledger: %s\n", cfg.UsageDBPath)
	fmt.Fprintf(w, "Total: %d  avg latency: %s  tokens: %d\n", sum.Total, sum.AvgLatency.Round(time.Millisecond), sum.TotalTokens)
	for _, o := range []usage.Outcome{usage.OutcomeOK, usage.OutcomeFallback, usage.OutcomeUpstream, usage.OutcomeConfig, usage.OutcomeInternal} {
		if n := sum.ByOutcome[o]; n > 0 {
			fmt.Fprintf(w, "  %-15s %d\n", o, n)
		}
	}
	if len(events) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPROFILE\tLANG\tSTEP\tSTYLE\tOUTCOME\tSTATUS\tLATENCY")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%d\t%s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Profile, e.Language, e.Step,
			e.Style, e.Outcome, e.Status, e.Latency)
	}
	return tw.Flush()
}
