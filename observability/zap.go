package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatJSON    = "json"
	LogFormatText    = "text"
	LogFormatConsole = "console"
)

// LogConfig configures console and rotating file outputs.
type LogConfig struct {
	Level   string        `yaml:"level"`
	Console ConsoleOutput `yaml:"console"`
	File    FileOutput    `yaml:"file"`
}

type ConsoleOutput struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

type FileOutput struct {
	Enabled  bool           `yaml:"enabled"`
	Level    string         `yaml:"level"`
	Format   string         `yaml:"format"`
	Path     string         `yaml:"path"`
	Rotation RotationConfig `yaml:"rotation"`
}

type RotationConfig struct {
	MaxSize    int  `yaml:"max_size"` // megabytes
	MaxAge     int  `yaml:"max_age"`  // days
	MaxBackups int  `yaml:"max_backups"`
	Compress   bool `yaml:"compress"`
}

// zapLogger adapts *zap.Logger to Logger.
type zapLogger struct {
	l *zap.Logger
}

// NewZap wraps an existing zap logger.
func NewZap(l *zap.Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return zapLogger{l: l}
}

func (z zapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, toZap(fields)...) }
func (z zapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, toZap(fields)...) }
func (z zapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, toZap(fields)...) }
func (z zapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, toZap(fields)...) }
func (z zapLogger) With(fields ...Field) Logger       { return zapLogger{l: z.l.With(toZap(fields)...)} }

func toZap(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.(type) {
		case stringField:
			out = append(out, zap.String(v.key, v.val))
		case intField:
			out = append(out, zap.Int(v.key, v.val))
		case int64Field:
			out = append(out, zap.Int64(v.key, v.val))
		case float64Field:
			out = append(out, zap.Float64(v.key, v.val))
		case boolField:
			out = append(out, zap.Bool(v.key, v.val))
		case durationField:
			out = append(out, zap.Duration(v.key, v.val))
		case errorField:
			out = append(out, zap.NamedError(v.key, v.err))
		default:
			out = append(out, zap.Any(f.Key(), f.Value()))
		}
	}
	return out
}

// NewLogger builds a zap logger with console and/or rotating file outputs.
func NewLogger(config LogConfig) (*zap.Logger, error) {
	globalLevel := parseLogLevel(config.Level)

	var cores []zapcore.Core
	if config.Console.Enabled {
		level := resolveLogLevel(config.Console.Level, globalLevel)
		cores = append(cores, zapcore.NewCore(createEncoder(config.Console.Format), zapcore.Lock(os.Stderr), level))
	}
	if config.File.Enabled {
		if config.File.Path == "" {
			return nil, fmt.Errorf("file.path must be specified when file logging is enabled")
		}
		level := resolveLogLevel(config.File.Level, globalLevel)
		cores = append(cores, zapcore.NewCore(createEncoder(config.File.Format), createFileWriter(config.File.Path, config.File.Rotation), level))
	}
	if len(cores) == 0 {
		return nil, fmt.Errorf("at least one log output (console or file) must be enabled")
	}
	if len(cores) == 1 {
		return zap.New(cores[0]), nil
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}

// NewDefaultLogger returns a console logger at info level.
func NewDefaultLogger() (*zap.Logger, error) {
	return NewLogger(LogConfig{
		Level:   LogLevelInfo,
		Console: ConsoleOutput{Enabled: true, Format: LogFormatConsole},
	})
}

func parseLogLevel(level string) zapcore.Level {
	switch level {
	case LogLevelDebug:
		return zap.DebugLevel
	case LogLevelWarn:
		return zap.WarnLevel
	case LogLevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func resolveLogLevel(outputLevel string, globalLevel zapcore.Level) zapcore.Level {
	if outputLevel != "" {
		return parseLogLevel(outputLevel)
	}
	return globalLevel
}

func createEncoder(format string) zapcore.Encoder {
	if format == LogFormatJSON {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	if format == LogFormatText {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func createFileWriter(path string, rotation RotationConfig) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotation.MaxSize,
		MaxAge:     rotation.MaxAge,
		MaxBackups: rotation.MaxBackups,
		Compress:   rotation.Compress,
	})
}
