package config

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
	err   error
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadFS_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFS(NewMemFS(), "/relay.yaml", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFS_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadFS(NewMemFS(), "", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFS_YAML(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/relay.yaml", `
logging:
  enabled: false
  level: debug
  console:
    enabled: true
    format: json
  file:
    enabled: true
    path: /var/log/relay.log
    rotation:
      max_size: 10
      compress: true
`)

	cfg, err := LoadFS(memfs, "/relay.yaml", env(nil))
	require.NoError(t, err)

	assert.False(t, cfg.Logging.Enabled)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Console.Format)
	assert.True(t, cfg.Logging.File.Enabled)
	assert.Equal(t, "/var/log/relay.log", cfg.Logging.File.Path)
	assert.Equal(t, 10, cfg.Logging.File.Rotation.MaxSize)
	assert.True(t, cfg.Logging.File.Rotation.Compress)

	// Untouched fields keep their defaults
	assert.Equal(t, LogFormatJSON, cfg.Logging.File.Format)
	assert.Equal(t, 7, cfg.Logging.File.Rotation.MaxAge)
}

func TestLoadFS_TOML(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/relay.toml", `
[logging]
enabled = true
level = "warn"

[logging.console]
enabled = false

[logging.file]
enabled = true
path = "/tmp/relay.log"
format = "text"
`)

	cfg, err := LoadFS(memfs, "/relay.toml", env(nil))
	require.NoError(t, err)

	assert.True(t, cfg.Logging.Enabled)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.False(t, cfg.Logging.Console.Enabled)
	assert.Equal(t, LogFormatText, cfg.Logging.File.Format)
	assert.Equal(t, "/tmp/relay.log", cfg.Logging.File.Path)
}

func TestLoadFS_EmptyYAMLDocument(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/relay.yml", "")

	cfg, err := LoadFS(memfs, "/relay.yml", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFS_UnknownFieldRejected(t *testing.T) {
	tests := []struct {
		path    string
		content string
	}{
		{"/relay.yaml", "logging:\n  levle: debug\n"},
		{"/relay.toml", "[logging]\nlevle = \"debug\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			memfs := NewMemFS()
			memfs.AddFile(tt.path, tt.content)

			_, err := LoadFS(memfs, tt.path, env(nil))
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.path, pe.Path)
		})
	}
}

func TestLoadFS_TOMLSyntaxErrorHasPosition(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/relay.toml", "[logging]\nlevel = \n")

	_, err := LoadFS(memfs, "/relay.toml", env(nil))
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, pe.Error(), "line 2")
}

func TestLoadFS_UnsupportedFormat(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/relay.ini", "level=debug")

	_, err := LoadFS(memfs, "/relay.ini", env(nil))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFS_ReadError(t *testing.T) {
	memfs := NewMemFS()
	memfs.err = fs.ErrPermission

	_, err := LoadFS(memfs, "/relay.yaml", env(nil))
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestLoadFS_ValidationFailure(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/relay.yaml", "logging:\n  level: verbose\n")

	_, err := LoadFS(memfs, "/relay.yaml", env(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level must be one of")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()

	err := ApplyEnv(cfg, env(map[string]string{
		EnvLogEnabled: "false",
		EnvLogLevel:   "DEBUG",
		EnvLogFormat:  "Text",
		EnvLogFile:    "/var/log/relay.log",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.Logging.Enabled)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Console.Format)
	assert.True(t, cfg.Logging.File.Enabled)
	assert.Equal(t, "/var/log/relay.log", cfg.Logging.File.Path)
}

func TestApplyEnv_EmptyFileDisablesFileOutput(t *testing.T) {
	cfg := Default()
	cfg.Logging.File.Enabled = true
	cfg.Logging.File.Path = "/var/log/relay.log"

	require.NoError(t, ApplyEnv(cfg, env(map[string]string{EnvLogFile: ""})))
	assert.False(t, cfg.Logging.File.Enabled)
}

func TestApplyEnv_InvalidBool(t *testing.T) {
	err := ApplyEnv(Default(), env(map[string]string{EnvLogEnabled: "maybe"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvLogEnabled)
}

func TestApplyEnv_NilLookup(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyEnv(cfg, nil))
	assert.Equal(t, Default(), cfg)
}

func TestEnvOverridesFile(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/relay.yaml", "logging:\n  level: warn\n")

	cfg, err := LoadFS(memfs, "/relay.yaml", env(map[string]string{EnvLogLevel: "error"}))
	require.NoError(t, err)
	assert.Equal(t, LogLevelError, cfg.Logging.Level)
}
