package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger that writes JSON lines to a rotated file at path and a
// human readable stream to stderr. Production mode switches the console
// stream to JSON and raises its level to info.
func New(path string, production bool) *zap.Logger {
	jsonEncoder := zapcore.NewJSONEncoder(encoderConfig())

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	consoleLevel := zap.DebugLevel
	if production {
		consoleEncoder = jsonEncoder
		consoleLevel = zap.InfoLevel
	}
	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), consoleLevel)

	return zap.New(zapcore.NewTee(fileCore(path), consoleCore), zap.AddCaller())
}

// NewFileOnly is New without the console stream. The CLI uses it so log
// lines never interleave with command output.
func NewFileOnly(path string) *zap.Logger {
	return zap.New(fileCore(path), zap.AddCaller())
}

func fileCore(path string) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // Megabytes
		MaxBackups: 5,
		MaxAge:     30, // Days
		Compress:   true,
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(rotator), zap.InfoLevel)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}
