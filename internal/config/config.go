package config

import "fmt"

// Log level constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Log format constants
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
	LogFormatText    = "text"
)

// Config is the root configuration.
type Config struct {
	Logging LogConfig `yaml:"logging" toml:"logging"`
}

// LogConfig configures the registry's logging sink.
type LogConfig struct {
	Enabled bool             `yaml:"enabled" toml:"enabled"` // Initial state of the sink toggle
	Level   string           `yaml:"level" toml:"level"`     // Global level, fallback for outputs
	Console ConsoleLogConfig `yaml:"console" toml:"console"`
	File    FileLogConfig    `yaml:"file" toml:"file"`
}

// ConsoleLogConfig configures stdout output.
type ConsoleLogConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Format  string `yaml:"format" toml:"format"`
	Level   string `yaml:"level,omitempty" toml:"level,omitempty"`
}

// FileLogConfig configures file output.
type FileLogConfig struct {
	Enabled  bool           `yaml:"enabled" toml:"enabled"`
	Path     string         `yaml:"path" toml:"path"`
	Format   string         `yaml:"format" toml:"format"`
	Level    string         `yaml:"level,omitempty" toml:"level,omitempty"`
	Rotation RotationConfig `yaml:"rotation" toml:"rotation"`
}

// RotationConfig configures lumberjack file rotation.
type RotationConfig struct {
	MaxSize    int  `yaml:"max_size" toml:"max_size"`       // Megabytes before rotation
	MaxAge     int  `yaml:"max_age" toml:"max_age"`         // Days to retain old files
	MaxBackups int  `yaml:"max_backups" toml:"max_backups"` // Old files to retain
	Compress   bool `yaml:"compress" toml:"compress"`
}

// Default returns the built-in configuration: logging enabled at info
// level with console output only.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Enabled: true,
			Level:   LogLevelInfo,
			Console: ConsoleLogConfig{
				Enabled: true,
				Format:  LogFormatConsole,
			},
			File: FileLogConfig{
				Format: LogFormatJSON,
				Rotation: RotationConfig{
					MaxSize:    100,
					MaxAge:     7,
					MaxBackups: 3,
				},
			},
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	return c.Logging.Validate()
}

// Validate validates the logging configuration.
func (c *LogConfig) Validate() error {
	levels := []struct{ name, value string }{
		{"logging.level", c.Level},
		{"logging.console.level", c.Console.Level},
		{"logging.file.level", c.File.Level},
	}
	for _, l := range levels {
		if l.value != "" && !validLevel(l.value) {
			return fmt.Errorf("%s must be one of: debug, info, warn, error, got '%s'", l.name, l.value)
		}
	}

	formats := []struct{ name, value string }{
		{"logging.console.format", c.Console.Format},
		{"logging.file.format", c.File.Format},
	}
	for _, f := range formats {
		if f.value != "" && !validFormat(f.value) {
			return fmt.Errorf("%s must be one of: json, console, text, got '%s'", f.name, f.value)
		}
	}

	if c.File.Enabled && c.File.Path == "" {
		return fmt.Errorf("logging.file.path must be specified when file logging is enabled")
	}

	rot := c.File.Rotation
	if rot.MaxSize < 0 || rot.MaxAge < 0 || rot.MaxBackups < 0 {
		return fmt.Errorf("logging.file.rotation values must not be negative")
	}

	return nil
}

func validLevel(level string) bool {
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}

func validFormat(format string) bool {
	switch format {
	case LogFormatJSON, LogFormatConsole, LogFormatText:
		return true
	}
	return false
}
