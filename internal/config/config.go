package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for worklog
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Policy      PolicyConfig      `mapstructure:"policy" yaml:"policy"`
	Calendar    CalendarConfig    `mapstructure:"calendar" yaml:"calendar"`
	Export      ExportConfig      `mapstructure:"export" yaml:"export"`
	Application ApplicationConfig `mapstructure:"application" yaml:"application"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir            string        `mapstructure:"dir" yaml:"dir"`
	Filename       string        `mapstructure:"filename" yaml:"filename"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
	DirPermissions uint32        `mapstructure:"dir_permissions" yaml:"dir_permissions"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	Mode            string        `mapstructure:"mode" yaml:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// PolicyConfig holds access policy settings
type PolicyConfig struct {
	EditWindow time.Duration `mapstructure:"edit_window" yaml:"edit_window"`
}

// CalendarConfig holds the location weeks and dates are computed in
type CalendarConfig struct {
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
}

// ExportConfig holds exporter settings
type ExportConfig struct {
	DefaultFormat string  `mapstructure:"default_format" yaml:"default_format"`
	ColumnWidth   float64 `mapstructure:"column_width" yaml:"column_width"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Verbose bool          `mapstructure:"verbose" yaml:"verbose"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Dir:            filepath.Join(homeDir, ".worklog"),
			Filename:       "worklog.db",
			QueryTimeout:   10 * time.Second,
			DirPermissions: 0755,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Policy: PolicyConfig{
			EditWindow: 7 * 24 * time.Hour,
		},
		Calendar: CalendarConfig{
			Timezone: "Local",
		},
		Export: ExportConfig{
			DefaultFormat: "text",
			ColumnWidth:   25,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	if c.Database.Filename == ":memory:" {
		return c.Database.Filename
	}
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// Location resolves the configured calendar timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Calendar.Timezone)
}

// WriteYAML writes the configuration in the format WithConfigFile reads
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.Dir == "" && c.Database.Filename != ":memory:" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}

	// Validate server configuration
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return &ConfigError{Field: "server.mode", Message: "mode must be one of debug, release, test"}
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return &ConfigError{Field: "server.timeouts", Message: "server timeouts must be positive"}
	}

	// Validate policy configuration
	if c.Policy.EditWindow <= 0 {
		return &ConfigError{Field: "policy.edit_window", Message: "edit window must be positive"}
	}

	// Validate calendar configuration
	if _, err := c.Location(); err != nil {
		return &ConfigError{Field: "calendar.timezone", Message: "unknown timezone " + c.Calendar.Timezone}
	}

	// Validate export configuration
	if c.Export.ColumnWidth <= 0 {
		return &ConfigError{Field: "export.column_width", Message: "column width must be positive"}
	}
	if c.Export.DefaultFormat == "" {
		return &ConfigError{Field: "export.default_format", Message: "default export format cannot be empty"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
