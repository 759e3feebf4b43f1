// Package logger содержит настройку логгера.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options параметры логгера
type Options struct {
	// Level уровень: debug, info, warn, error, fatal
	Level string
	// Path путь к файлу логов; пустой путь отключает файловый вывод
	Path string
	// Output консольный вывод; по умолчанию os.Stdout
	Output io.Writer
}

// New создает новый логгер
func New(opts Options) *zap.Logger {
	level := ParseLevel(opts.Level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(output), level),
	}

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err == nil {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(&lumberjack.Logger{
					Filename:   opts.Path,
					MaxSize:    100, // MB
					MaxBackups: 3,
					MaxAge:     28, // days
					Compress:   true,
				}),
				level,
			))
		}
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// ParseLevel разбирает уровень логирования; неизвестные значения дают info
func ParseLevel(level string) zapcore.Level {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

// DefaultPath возвращает путь к файлу логов внутри директории данных
func DefaultPath(dataDir string) string {
	if dataDir == "" {
		return filepath.Join("logs", "app.log")
	}
	return filepath.Join(dataDir, "app.log")
}
