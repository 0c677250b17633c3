// Package logger provides the registry's logging sink: a zap logger behind
// an enable/disable toggle.
package logger

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dshills/relay/internal/config"
)

// Sink wraps zap.Logger with a toggle. Debug, Log, Warn and Error are
// no-ops while the sink is stopped.
type Sink struct {
	logger       *zap.Logger
	enabled      atomic.Bool
	consoleLevel *zap.AtomicLevel
	fileLevel    *zap.AtomicLevel
}

// NewSink wraps an existing logger. The sink starts enabled.
func NewSink(l *zap.Logger) *Sink {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Sink{logger: l}
	s.enabled.Store(true)
	return s
}

// Nop returns an enabled sink that discards everything.
func Nop() *Sink {
	return NewSink(zap.NewNop())
}

// New creates a sink from configuration. The sink starts enabled or
// stopped according to cfg.Enabled.
func New(cfg config.LogConfig) (*Sink, error) {
	globalLevel := parseLogLevel(cfg.Level)

	var cores []zapcore.Core
	var consoleLevel *zap.AtomicLevel
	var fileLevel *zap.AtomicLevel

	if cfg.Console.Enabled {
		level := zap.NewAtomicLevelAt(resolveLogLevel(cfg.Console.Level, globalLevel))
		consoleLevel = &level
		cores = append(cores, zapcore.NewCore(createEncoder(cfg.Console.Format), zapcore.Lock(os.Stdout), consoleLevel))
	}

	if cfg.File.Enabled {
		if cfg.File.Path == "" {
			return nil, fmt.Errorf("file.path must be specified when file logging is enabled")
		}

		level := zap.NewAtomicLevelAt(resolveLogLevel(cfg.File.Level, globalLevel))
		fileLevel = &level
		cores = append(cores, zapcore.NewCore(createEncoder(cfg.File.Format), createFileWriter(cfg.File), fileLevel))
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("at least one log output (console or file) must be enabled")
	}

	var core zapcore.Core
	if len(cores) == 1 {
		core = cores[0]
	} else {
		core = zapcore.NewTee(cores...)
	}

	s := &Sink{
		logger:       zap.New(core).Named("relay"),
		consoleLevel: consoleLevel,
		fileLevel:    fileLevel,
	}
	s.enabled.Store(cfg.Enabled)
	return s, nil
}

// Apply updates the toggle and output levels from a reloaded
// configuration. Outputs cannot be added or removed after construction.
func (s *Sink) Apply(cfg config.LogConfig) {
	globalLevel := parseLogLevel(cfg.Level)
	if s.consoleLevel != nil {
		s.consoleLevel.SetLevel(resolveLogLevel(cfg.Console.Level, globalLevel))
	}
	if s.fileLevel != nil {
		s.fileLevel.SetLevel(resolveLogLevel(cfg.File.Level, globalLevel))
	}
	s.enabled.Store(cfg.Enabled)
}

// Start enables the sink.
func (s *Sink) Start() {
	s.enabled.Store(true)
}

// Stop disables the sink.
func (s *Sink) Stop() {
	s.enabled.Store(false)
}

// Enabled reports whether the sink is enabled.
func (s *Sink) Enabled() bool {
	return s.enabled.Load()
}

// Debug logs at debug level.
func (s *Sink) Debug(msg string, fields ...zap.Field) {
	if s.Enabled() {
		s.logger.Debug(msg, fields...)
	}
}

// Log logs at info level.
func (s *Sink) Log(msg string, fields ...zap.Field) {
	if s.Enabled() {
		s.logger.Info(msg, fields...)
	}
}

// Warn logs at warn level.
func (s *Sink) Warn(msg string, fields ...zap.Field) {
	if s.Enabled() {
		s.logger.Warn(msg, fields...)
	}
}

// Error logs at error level.
func (s *Sink) Error(msg string, fields ...zap.Field) {
	if s.Enabled() {
		s.logger.Error(msg, fields...)
	}
}

// Dump logs at info level when forced or when the sink is enabled.
func (s *Sink) Dump(msg string, forced bool, fields ...zap.Field) {
	if forced || s.Enabled() {
		s.logger.Info(msg, fields...)
	}
}

// Logger returns the underlying zap logger, which ignores the toggle.
func (s *Sink) Logger() *zap.Logger {
	return s.logger
}

// Sync flushes buffered output.
func (s *Sink) Sync() error {
	return s.logger.Sync()
}

// parseLogLevel converts string level to zapcore.Level
func parseLogLevel(level string) zapcore.Level {
	switch level {
	case config.LogLevelDebug:
		return zap.DebugLevel
	case config.LogLevelInfo:
		return zap.InfoLevel
	case config.LogLevelWarn:
		return zap.WarnLevel
	case config.LogLevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// resolveLogLevel uses outputLevel when set, globalLevel otherwise.
func resolveLogLevel(outputLevel string, globalLevel zapcore.Level) zapcore.Level {
	if outputLevel != "" {
		return parseLogLevel(outputLevel)
	}
	return globalLevel
}

// createEncoder creates a zapcore.Encoder based on format
func createEncoder(format string) zapcore.Encoder {
	if format == config.LogFormatJSON {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	if format == config.LogFormatText {
		// Plain text without color codes (for files)
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return zapcore.NewConsoleEncoder(encoderConfig)
}

// createFileWriter creates a zapcore.WriteSyncer with rotation support
func createFileWriter(cfg config.FileLogConfig) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.Rotation.MaxSize,
		MaxAge:     cfg.Rotation.MaxAge,
		MaxBackups: cfg.Rotation.MaxBackups,
		Compress:   cfg.Rotation.Compress,
	})
}
