package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pv-case-assessor/internal/domain"
)

// isolate runs the test from an empty directory so no config.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestNewManager_Defaults(t *testing.T) {
	dir := isolate(t)

	m, err := NewManager("", nil)
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "sqlite", cfg.Feedback.Driver)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Empty(t, cfg.Knowledge.DefaultDrug, "empty keeps the knowledge base default")
	assert.Empty(t, cfg.Knowledge.Path)
	assert.Equal(t, filepath.Join(dir, ".pv-assessor"), cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, ".pv-assessor", "feedback.db"), cfg.FeedbackDBPath())
	assert.NoError(t, m.Validate())
}

func TestNewManager_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PV_ASSESSOR_LOGGING_LEVEL", "debug")
	t.Setenv("PV_ASSESSOR_FEEDBACK_DRIVER", "postgres")
	t.Setenv("PV_ASSESSOR_FEEDBACK_DATABASE_URL", "postgres://localhost/pv")

	m, err := NewManager("", nil)
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "postgres", cfg.Feedback.Driver)
	assert.Equal(t, "postgres://localhost/pv", cfg.Feedback.DatabaseURL)
	assert.NoError(t, m.Validate())
}

func TestNewManager_ConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	content := `
knowledge:
  path: /opt/kb.yaml
  default_drug: Drug A
output:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m, err := NewManager(path, nil)
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, "/opt/kb.yaml", cfg.Knowledge.Path)
	assert.Equal(t, "Drug A", cfg.Knowledge.DefaultDrug)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, path, m.ConfigFileUsed())
}

func TestNewManager_SearchPath(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("logging:\n  format: json\n"), 0644))

	m, err := NewManager("", nil)
	require.NoError(t, err)
	assert.Equal(t, "json", m.GetConfig().Logging.Format)
}

func TestNewManager_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := NewManager(filepath.Join(dir, "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestNewManager_Flags(t *testing.T) {
	isolate(t)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("format", "text", "")
	require.NoError(t, flags.Parse([]string{"--log-level=warn", "--format=json"}))

	m, err := NewManager("", flags)
	require.NoError(t, err)

	assert.Equal(t, "warn", m.GetConfig().Logging.Level)
	assert.Equal(t, "json", m.GetConfig().Output.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		field  string
		wantOK bool
	}{
		{"valid defaults", nil, "", true},
		{"bad level", map[string]string{"PV_ASSESSOR_LOGGING_LEVEL": "loud"}, "logging.level", false},
		{"bad log format", map[string]string{"PV_ASSESSOR_LOGGING_FORMAT": "xml"}, "logging.format", false},
		{"bad output format", map[string]string{"PV_ASSESSOR_OUTPUT_FORMAT": "html"}, "output.format", false},
		{"bad driver", map[string]string{"PV_ASSESSOR_FEEDBACK_DRIVER": "mysql"}, "feedback.driver", false},
		{"postgres without url", map[string]string{"PV_ASSESSOR_FEEDBACK_DRIVER": "postgres"}, "feedback.database_url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			m, err := NewManager("", nil)
			require.NoError(t, err)

			err = m.Validate()
			if tt.wantOK {
				assert.NoError(t, err)
				return
			}
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestEnsureDataDir(t *testing.T) {
	dir := isolate(t)
	t.Setenv("PV_ASSESSOR_DATA_DIR", filepath.Join(dir, "data"))

	m, err := NewManager("", nil)
	require.NoError(t, err)
	require.NoError(t, m.EnsureDataDir())

	info, err := os.Stat(m.GetConfig().ExportDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
