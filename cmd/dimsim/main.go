package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slateworks/dimsim/internal/config"
	"github.com/slateworks/dimsim/internal/shop"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dimsim",
		Short: "Dimensional modeling training simulator",
		Long: `dimsim generates deterministic retail scenarios and evaluates
dimensional schemas modeled against them.

It produces a shop configuration and raw event stream from a seed,
then scores a submitted star schema on grain, temporal handling,
relationships, SCD strategy, completeness, and query readiness.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for tool consumption)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.dimsim/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, trace")

	// Add subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newGenerateCmd(),
		newEvaluateCmd(),
		newDescribeCmd(),
		newValidateCmd(),
		newInfoCmd(),
		newScaffoldCmd(),
		newExplainCmd(),
		newProgressCmd(),
		newExportCmd(),
		newMCPServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadAppConfig resolves the application config for a command run:
// explicit --config path if given, otherwise the default chain of
// built-in defaults, user config file, and environment overrides.
func loadAppConfig(cmd *cobra.Command) (*config.DimsimConfig, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.DimsimConfig
	var err error
	if path != "" {
		cfg, err = config.LoadFromFile(path)
		if err == nil && cfg.Progress.DBPath == "" {
			cfg.Progress.DBPath = config.DefaultDBPath()
		}
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadShopConfig reads and validates a shop configuration document.
func loadShopConfig(path string) (shop.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return shop.Configuration{}, fmt.Errorf("failed to read shop config: %w", err)
	}
	cfg, err := shop.Parse(data)
	if err != nil {
		return shop.Configuration{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// readEventsSeed extracts the generating seed from an event log file
// without decoding the events themselves. Evaluation only needs the
// seed to key the attempt history.
func readEventsSeed(path string) (uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read events file: %w", err)
	}
	var header struct {
		ShopConfigSeed uint32 `json:"shop_config_seed"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return header.ShopConfigSeed, nil
}

// parseDifficulty maps a flag value onto a difficulty level.
func parseDifficulty(raw string) (shop.Difficulty, error) {
	lowered := strings.ToLower(raw)
	for _, d := range shop.Difficulties {
		if string(d) == lowered {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid difficulty: %s (valid options: easy, medium, hard, adversarial)", raw)
}

// writeOrPrint writes content to path when one is given, confirming
// the write, and prints it to the command's stdout otherwise.
func writeOrPrint(cmd *cobra.Command, path, content, label string) error {
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", label, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s saved to %s\n", label, path)
	return nil
}
