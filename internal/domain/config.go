package domain

import (
	"path/filepath"
)

// Config represents the main application configuration
type Config struct {
	DataDir   string          `mapstructure:"data_dir"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Lexicon   LexiconConfig   `mapstructure:"lexicon"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Feedback  FeedbackConfig  `mapstructure:"feedback"`
	Output    OutputConfig    `mapstructure:"output"`
	MCP       MCPConfig       `mapstructure:"mcp"`
}

// KnowledgeConfig locates the drug label registry and IME list.
// An empty Path selects the embedded knowledge base.
type KnowledgeConfig struct {
	Path        string `mapstructure:"path"`
	DefaultDrug string `mapstructure:"default_drug"`
}

// LexiconConfig locates the term tables. An empty Path selects the embedded lexicon.
type LexiconConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeedbackConfig selects the reviewer feedback store.
type FeedbackConfig struct {
	Driver      string `mapstructure:"driver"` // "sqlite", "postgres"
	DatabaseURL string `mapstructure:"database_url"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	Format string `mapstructure:"format"` // "text", "json"
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}

// FeedbackDBPath returns the path to the SQLite feedback database.
func (c *Config) FeedbackDBPath() string {
	return filepath.Join(c.DataDir, "feedback.db")
}

// ExportDir returns the directory for JSON exports.
func (c *Config) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}
