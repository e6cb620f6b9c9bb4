package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nbjcoach/nbjfeedback/internal/config"
)

// settableKeys lists the keys `config set` accepts.
var settableKeys = map[string]bool{
	"OPENAI_API_KEY":       true,
	"OPENAI_BASE_URL":      true,
	"OPENAI_MODEL":         true,
	"MAX_OUTPUT_TOKENS":    true,
	"TEMPERATURE":          true,
	"NBJ_ADDR":             true,
	"NBJ_PROFILE":          true,
	"NBJ_UPSTREAM_TIMEOUT": true,
	"NBJ_USAGE_DB":         true,
	"NBJ_MAX_BODY_BYTES":   true,
}

// ---------------------------------------------------------------------------
// Cobra commands
// ---------------------------------------------------------------------------

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage configuration.

Configuration is read from environment variables, then ./.env, then
<data dir>/config.env (default ~/.nbjfeedback/config.env).

  nbjfeedback config show              Show effective configuration
  nbjfeedback config set KEY VALUE     Set a value in config.env
  nbjfeedback config path              Print config file path`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  "Display all configured values. The API key is masked.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Config file: %s\n\n", config.FilePath())
		for _, kv := range cfg.Masked() {
			fmt.Fprintf(w, "  %-22s %s\n", kv[0], kv[1])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a config value",
	Long: `Set a single configuration value. Example:
  nbjfeedback config set OPENAI_MODEL gpt-4o-mini`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.FilePath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToUpper(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(args[1])
	if !settableKeys[key] {
		known := make([]string, 0, len(settableKeys))
		for k := range settableKeys {
			known = append(known, k)
		}
		sort.Strings(known)
		return fmt.Errorf("unknown key %q (known: %s)", key, strings.Join(known, ", "))
	}

	path := config.FilePath()
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading config: %w", err)
		}
		values = make(map[string]string)
	}
	if value == "" {
		delete(values, key)
	} else {
		values[key] = value
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := writeConfigFile(path, values); err != nil {
		return err
	}

	display := value
	if key == "OPENAI_API_KEY" {
		display = config.MaskSecret(value)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s=%s written to %s\n", key, display, path)
	return nil
}

// writeConfigFile writes values in .env format. The file is created 0600 and
// an existing file is narrowed to 0600 before the key is written into it.
func writeConfigFile(path string, values map[string]string) error {
	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	if err := f.Chmod(0o600); err != nil {
		f.Close()
		return fmt.Errorf("securing config file: %w", err)
	}
	if _, err := f.WriteString(content + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	return f.Close()
}
