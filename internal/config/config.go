// Package config loads application configuration from a YAML file,
// PV_ASSESSOR_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pv-case-assessor/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. PV_ASSESSOR_LOGGING_LEVEL.
const EnvPrefix = "PV_ASSESSOR"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"knowledge":    "knowledge.path",
	"default-drug": "knowledge.default_drug",
	"lexicon":      "lexicon.path",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"data-dir":     "data_dir",
	"format":       "output.format",
}

// Manager implements configuration loading using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	flags      *pflag.FlagSet
	config     *domain.Config
}

// NewManager creates a configuration manager. configFile may be empty, in which
// case config.yaml is searched in the usual locations. flags may be nil.
func NewManager(configFile string, flags *pflag.FlagSet) (*Manager, error) {
	m := &Manager{configFile: configFile, flags: flags}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := viper.New()

	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".pv-assessor"))
		}
	}

	// Set environment variable prefix and enable automatic env binding
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if m.flags != nil {
		for name, key := range flagKeys {
			if f := m.flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())

	v.SetDefault("knowledge.path", "")
	v.SetDefault("knowledge.default_drug", "")
	v.SetDefault("lexicon.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("feedback.driver", "sqlite")
	v.SetDefault("feedback.database_url", "")

	v.SetDefault("output.format", "text")

	v.SetDefault("mcp.server_name", "pv-case-assessor")
	v.SetDefault("mcp.server_version", "1.0.0")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pv-assessor"
	}
	return filepath.Join(home, ".pv-assessor")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// ConfigFileUsed returns the config file that was read, if any.
func (m *Manager) ConfigFileUsed() string {
	return m.v.ConfigFileUsed()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return domain.NewValidationError("logging.level", "invalid log level", config.Logging.Level)
	}

	switch config.Logging.Format {
	case "json", "text":
	default:
		return domain.NewValidationError("logging.format", "must be json or text", config.Logging.Format)
	}

	switch config.Output.Format {
	case "json", "text":
	default:
		return domain.NewValidationError("output.format", "must be json or text", config.Output.Format)
	}

	switch config.Feedback.Driver {
	case "sqlite":
	case "postgres":
		if config.Feedback.DatabaseURL == "" {
			return domain.NewValidationError("feedback.database_url", "required for the postgres driver", "")
		}
	default:
		return domain.NewValidationError("feedback.driver", "must be sqlite or postgres", config.Feedback.Driver)
	}

	return nil
}

// EnsureDataDir creates the data and export directories.
func (m *Manager) EnsureDataDir() error {
	for _, dir := range []string{m.config.DataDir, m.config.ExportDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
