package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger: console output to stdout plus a rolling
// file, both at debug level. The returned sync function flushes buffered
// entries and is safe to defer from main.
func New(filePath string) (*zap.SugaredLogger, func()) {
	rotated := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stdout), zapcore.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(rotated), zapcore.DebugLevel),
	)

	logger := zap.New(core, zap.AddCaller()).Sugar()
	return logger, func() { _ = logger.Sync() }
}

// NewNop returns a logger that discards everything. Tests use it so package
// constructors never have to tolerate a nil logger.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
