package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nbjcoach/nbjfeedback/internal/feedback"
)

var stylesVerbose bool

var stylesCmd = &cobra.Command{
	Use:   "styles [profile]",
	Short: "List profiles and their style keys",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := feedback.ProfileNames()
		if len(args) == 1 {
			if _, ok := feedback.LookupProfile(args[0]); !ok {
				return fmt.Errorf("unknown profile %q (available: %s)", args[0], strings.Join(names, ", "))
			}
			names = []string{args[0]}
		}

		w := cmd.OutOrStdout()
		for _, name := range names {
			p, _ := feedback.LookupProfile(name)
			fmt.Fprintf(w, "%s  (selector: %s, output: %s, model: %s, max_tokens: %d, temperature: %g)\n",
				p.Name, p.Selector, p.OutputField, p.Model, p.MaxTokens, p.Temperature)
			for _, key := range p.StyleKeys() {
				marker := " "
				if key == p.DefaultStyle {
					marker = "*"
				}
				fmt.Fprintf(w, "  %s %s\n", marker, key)
				if stylesVerbose {
					for _, line := range strings.Split(p.Styles[key], "\n") {
						fmt.Fprintf(w, "      %s\n", line)
					}
				}
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, "* = default style")
		return nil
	},
}

func init() {
	stylesCmd.Flags().BoolVarP(&stylesVerbose, "verbose", "v", false, "Print style templates")
	rootCmd.AddCommand(stylesCmd)
}
