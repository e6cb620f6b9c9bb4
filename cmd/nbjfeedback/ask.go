package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nbjcoach/nbjfeedback"
	"github.com/nbjcoach/nbjfeedback/internal/config"
	"github.com/nbjcoach/nbjfeedback/internal/feedback"
)

var (
	askProfile   string
	askLanguage  string
	askStep      int
	askText      string
	askNotes     string
	askStyle     string
	askDurations []string
	askDryRun    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [text]",
	Short: "Generate feedback for one step from the terminal",
	Long: `Run one request through the translator and print the answer.

  nbjfeedback ask --step 2 --style bcc "Ich bin erschöpft"
  nbjfeedback ask --profile reflection --notes "..." --duration 1=40 --duration 2=75 "..."
  nbjfeedback ask --dry-run "..."    print the outbound request instead of sending it`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askProfile, "profile", "", "Profile (perspective, tone, reflection); default NBJ_PROFILE")
	askCmd.Flags().StringVar(&askLanguage, "lang", "de", "Language code (de, nb, no, en, es)")
	askCmd.Flags().IntVar(&askStep, "step", 1, "NBJ step number")
	askCmd.Flags().StringVar(&askText, "text", "", "Input text (or pass as argument)")
	askCmd.Flags().StringVar(&askNotes, "notes", "", "Supplementary notes (reflection profile)")
	askCmd.Flags().StringVar(&askStyle, "style", "", "Perspective or tone key, depending on the profile")
	askCmd.Flags().StringArrayVar(&askDurations, "duration", nil, "Seconds spent per step as STEP=SECONDS (repeatable)")
	askCmd.Flags().BoolVar(&askDryRun, "dry-run", false, "Print the outbound request and exit")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if askProfile != "" {
		cfg.Profile = askProfile
	}

	text := askText
	if len(args) == 1 {
		text = args[0]
	}
	durations, err := parseDurations(askDurations)
	if err != nil {
		return err
	}

	req := feedback.CoachingRequest{
		Language:    askLanguage,
		Step:        feedback.Step(askStep),
		Text:        text,
		Notes:       askNotes,
		Perspective: askStyle,
		Tone:        askStyle,
		Durations:   durations,
	}

	app, err := nbjfeedback.NewBuilder().WithConfig(cfg).Build()
	if err != nil {
		return err
	}
	defer app.Close()
	tr := app.Translator()

	if askDryRun {
		chatReq, _ := tr.ChatRequest(req)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(map[string]any{
			"model":       chatReq.Model,
			"messages":    chatReq.Messages,
			"max_tokens":  chatReq.MaxTokens,
			"temperature": chatReq.Temperature,
		})
	}

	out, err := tr.Translate(context.Background(), req)
	if err != nil {
		var ue *feedback.UpstreamError
		if errors.As(err, &ue) {
			return fmt.Errorf("%w: %s", err, ue.Body)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "[%s · %s · %s]\n\n%s\n", out.Profile, out.Style, out.Language, out.Content)
	return nil
}

// parseDurations parses STEP=SECONDS pairs.
func parseDurations(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --duration %q, expected STEP=SECONDS", p)
		}
		secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --duration %q: %w", p, err)
		}
		out[strings.TrimSpace(k)] = secs
	}
	return out, nil
}
