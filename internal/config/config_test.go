package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "worklog.db", cfg.Database.Filename)
	assert.Equal(t, 7*24*time.Hour, cfg.Policy.EditWindow)
	assert.Equal(t, 25.0, cfg.Export.ColumnWidth)
	assert.Equal(t, "text", cfg.Export.DefaultFormat)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestGetDatabasePath_Memory(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Filename = ":memory:"
	assert.Equal(t, ":memory:", cfg.GetDatabasePath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty filename", func(c *Config) { c.Database.Filename = "" }, "database.filename"},
		{"empty dir", func(c *Config) { c.Database.Dir = "" }, "database.dir"},
		{"zero query timeout", func(c *Config) { c.Database.QueryTimeout = 0 }, "database.query_timeout"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad mode", func(c *Config) { c.Server.Mode = "loud" }, "server.mode"},
		{"zero edit window", func(c *Config) { c.Policy.EditWindow = 0 }, "policy.edit_window"},
		{"unknown timezone", func(c *Config) { c.Calendar.Timezone = "Mars/Olympus" }, "calendar.timezone"},
		{"zero column width", func(c *Config) { c.Export.ColumnWidth = 0 }, "export.column_width"},
		{"zero app timeout", func(c *Config) { c.Application.Timeout = 0 }, "application.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidate_MemoryDatabaseNeedsNoDir(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Dir = ""
	cfg.Database.Filename = ":memory:"
	assert.NoError(t, cfg.Validate())
}

func TestLoader_Environment(t *testing.T) {
	t.Setenv("WORKLOG_POLICY_EDIT_WINDOW", "48h")
	t.Setenv("WORKLOG_CALENDAR_TIMEZONE", "UTC")
	t.Setenv("WORKLOG_EXPORT_COLUMN_WIDTH", "30")
	t.Setenv("WORKLOG_APPLICATION_VERBOSE", "true")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.Policy.EditWindow)
	assert.Equal(t, "UTC", cfg.Calendar.Timezone)
	assert.Equal(t, 30.0, cfg.Export.ColumnWidth)
	assert.True(t, cfg.Application.Verbose)
}

func TestLoader_InvalidEnvironmentFailsValidation(t *testing.T) {
	t.Setenv("WORKLOG_SERVER_MODE", "chaos")

	_, err := NewLoader().Load()
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "server.mode", cfgErr.Field)
}

func TestLoader_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worklog.yaml")
	content := []byte(`
database:
  filename: team.db
server:
  addr: ":9090"
policy:
  edit_window: 72h
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	// Environment wins over the file
	t.Setenv("WORKLOG_SERVER_ADDR", ":7070")

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "team.db", cfg.Database.Filename)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 72*time.Hour, cfg.Policy.EditWindow)
}

func TestLoader_MissingDefaultConfigFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithDefaultConfigFile(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, "worklog.db", cfg.Database.Filename)
}

func TestLoader_MissingExplicitConfigFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := NewLoader().WithConfigFile(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config "+path)
}

func TestLoader_DefaultConfigFileIsRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  default_format: csv\n"), 0600))

	cfg, err := NewLoader().WithDefaultConfigFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Export.DefaultFormat)
}

func TestDefaultConfigPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(DefaultConfigPath()))
	assert.Equal(t, NewConfig().Database.Dir, filepath.Dir(DefaultConfigPath()))
}

func TestLoader_Flags(t *testing.T) {
	t.Setenv("WORKLOG_SERVER_ADDR", ":7070")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", ":8080", "")
	flags.String("db", "", "")
	require.NoError(t, flags.Parse([]string{"--addr", ":6060"}))

	cfg, err := NewLoader().
		BindFlag("server.addr", flags.Lookup("addr")).
		BindFlag("database.filename", flags.Lookup("db")).
		Load()
	require.NoError(t, err)

	assert.Equal(t, ":6060", cfg.Server.Addr, "explicit flag beats environment")
	assert.Equal(t, "worklog.db", cfg.Database.Filename, "unset flag keeps the default")
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Dir = "/var/lib/worklog"
	cfg.Policy.EditWindow = 48 * time.Hour
	cfg.Calendar.Timezone = "UTC"
	cfg.Export.ColumnWidth = 30

	path := filepath.Join(t.TempDir(), "worklog.yaml")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, cfg.WriteYAML(file))
	require.NoError(t, file.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "edit_window: 48h0m0s")

	loaded, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
