package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. WORKLOG_DATABASE_DIR or WORKLOG_POLICY_EDIT_WINDOW.
const EnvPrefix = "WORKLOG"

// Loader handles loading configuration from multiple sources
type Loader struct {
	v          *viper.Viper
	configFile string
	optional   bool
	flags      map[string]*pflag.Flag
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		v:     viper.New(),
		flags: make(map[string]*pflag.Flag),
	}
}

// WithConfigFile reads the given YAML file between defaults and environment.
// The file must exist.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	l.optional = false
	return l
}

// WithDefaultConfigFile reads path like WithConfigFile but skips it when it
// does not exist.
func (l *Loader) WithDefaultConfigFile(path string) *Loader {
	l.configFile = path
	l.optional = true
	return l
}

// DefaultConfigPath is the config file read when --config is not given
func DefaultConfigPath() string {
	return filepath.Join(NewConfig().Database.Dir, "config.yaml")
}

// BindFlag lets a command line flag override the config key when the flag
// was set explicitly.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) *Loader {
	if flag != nil {
		l.flags[key] = flag
	}
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the config file, if any
// 3. Override with WORKLOG_* environment variables
// 4. Override with command line flags
func (l *Loader) Load() (*Config, error) {
	defaults := NewConfig()
	setDefaults(l.v, defaults)

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
		l.v.SetConfigType("yaml")
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
			if !missing || !l.optional {
				return nil, fmt.Errorf("reading config %s: %w", l.configFile, err)
			}
		}
	}

	for key, flag := range l.flags {
		if err := l.v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("database.dir", c.Database.Dir)
	v.SetDefault("database.filename", c.Database.Filename)
	v.SetDefault("database.query_timeout", c.Database.QueryTimeout)
	v.SetDefault("database.dir_permissions", c.Database.DirPermissions)

	v.SetDefault("server.addr", c.Server.Addr)
	v.SetDefault("server.mode", c.Server.Mode)
	v.SetDefault("server.read_timeout", c.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", c.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)

	v.SetDefault("policy.edit_window", c.Policy.EditWindow)

	v.SetDefault("calendar.timezone", c.Calendar.Timezone)

	v.SetDefault("export.default_format", c.Export.DefaultFormat)
	v.SetDefault("export.column_width", c.Export.ColumnWidth)

	v.SetDefault("application.timeout", c.Application.Timeout)
	v.SetDefault("application.verbose", c.Application.Verbose)
}
