// Package config provides unified configuration loading for dimsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/slateworks/dimsim/internal/shop"
	"github.com/slateworks/dimsim/internal/sim"
)

// DimsimConfig contains all dimsim configuration settings.
type DimsimConfig struct {
	// Generation contains defaults for scenario generation.
	Generation GenerationConfig `json:"generation" yaml:"generation"`

	// Evaluation contains defaults for schema evaluation output.
	Evaluation EvaluationConfig `json:"evaluation" yaml:"evaluation"`

	// Progress contains settings for attempt-history persistence.
	Progress ProgressConfig `json:"progress" yaml:"progress"`

	// Logging contains settings for operational and audit logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// GenerationConfig configures scenario generation defaults. Command-line
// flags override these per invocation.
type GenerationConfig struct {
	// Difficulty is the default difficulty: "easy", "medium", "hard" or
	// "adversarial".
	Difficulty string `json:"difficulty" yaml:"difficulty"`

	// TargetEvents is the default number of events to generate.
	TargetEvents int `json:"target_events" yaml:"target_events"`

	// SimulationDays is the default simulated calendar span in days.
	SimulationDays int `json:"simulation_days" yaml:"simulation_days"`

	// OutputDir is where generated scenario files land.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// EvaluationConfig configures evaluation output defaults.
type EvaluationConfig struct {
	// Format is the default report format: "actionable", "text" or "json".
	Format string `json:"format" yaml:"format"`
}

// ProgressConfig configures attempt-history persistence.
type ProgressConfig struct {
	// DBPath locates the SQLite progress database. Supports ${VAR}
	// syntax for env vars. Empty selects the per-user default under
	// the dimsim directory.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoggingConfig configures dimsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables the tool audit trail under the dimsim directory.
	// "trace" additionally includes full generated documents.
	Level string `json:"level" yaml:"level"`
}

// Dir returns the per-user dimsim directory (~/.dimsim). It falls back
// to a relative directory when the home directory cannot be resolved.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dimsim"
	}
	return filepath.Join(home, ".dimsim")
}

// DefaultDBPath returns the per-user progress database location.
func DefaultDBPath() string {
	return filepath.Join(Dir(), "progress.db")
}

// Default returns a DimsimConfig with sensible defaults.
func Default() *DimsimConfig {
	return &DimsimConfig{
		Generation: GenerationConfig{
			Difficulty:     string(shop.DifficultyMedium),
			TargetEvents:   sim.DefaultTargetEvents,
			SimulationDays: sim.DefaultSimulationDays,
			OutputDir:      "./output",
		},
		Evaluation: EvaluationConfig{
			Format: "actionable",
		},
		Progress: ProgressConfig{
			DBPath: "",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.dimsim/config.yaml -> environment variables
func Load() (*DimsimConfig, error) {
	config := Default()

	configPath := filepath.Join(Dir(), "config.yaml")
	if _, statErr := os.Stat(configPath); statErr == nil {
		fileConfig, loadErr := LoadFromFile(configPath)
		if loadErr != nil {
			return nil, fmt.Errorf("loading config file: %w", loadErr)
		}
		config = fileConfig
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	if config.Progress.DBPath == "" {
		config.Progress.DBPath = DefaultDBPath()
	}

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*DimsimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in paths
	config.Progress.DBPath = expandEnvVars(config.Progress.DBPath)
	config.Generation.OutputDir = expandEnvVars(config.Generation.OutputDir)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *DimsimConfig) Validate() error {
	if c.Generation.Difficulty != "" {
		known := false
		for _, d := range shop.Difficulties {
			if string(d) == c.Generation.Difficulty {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("invalid difficulty: %s (valid: easy, medium, hard, adversarial)", c.Generation.Difficulty)
		}
	}

	if c.Generation.TargetEvents <= 0 {
		return fmt.Errorf("target_events must be positive, got %d", c.Generation.TargetEvents)
	}
	if c.Generation.SimulationDays <= 0 {
		return fmt.Errorf("simulation_days must be positive, got %d", c.Generation.SimulationDays)
	}

	validFormats := map[string]bool{"": true, "actionable": true, "text": true, "json": true}
	if !validFormats[c.Evaluation.Format] {
		return fmt.Errorf("invalid format: %s (valid: actionable, text, json, or empty for default)", c.Evaluation.Format)
	}

	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *DimsimConfig) {
	if v := os.Getenv("DIMSIM_DIFFICULTY"); v != "" {
		config.Generation.Difficulty = v
	}

	if v := os.Getenv("DIMSIM_TARGET_EVENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Generation.TargetEvents = n
		}
	}

	if v := os.Getenv("DIMSIM_SIMULATION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Generation.SimulationDays = n
		}
	}

	if v := os.Getenv("DIMSIM_OUTPUT_DIR"); v != "" {
		config.Generation.OutputDir = v
	}

	if v := os.Getenv("DIMSIM_FORMAT"); v != "" {
		config.Evaluation.Format = v
	}

	if v := os.Getenv("DIMSIM_PROGRESS_DB"); v != "" {
		config.Progress.DBPath = v
	}

	if v := os.Getenv("DIMSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
