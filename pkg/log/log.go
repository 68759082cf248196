package log

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop().Sugar()

// RegisterLogger replaces the global logger according to opts.
func RegisterLogger(opts *Options) {
	var level zapcore.Level
	_ = level.UnmarshalText([]byte(opts.Level))

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = opts.Format
	if opts.Format == "console" {
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	logger = l.Sugar()
}

// Sync ...
func Sync() {
	_ = logger.Sync()
}

// Debugw ...
func Debugw(msg string, keysAndValues ...interface{}) {
	logger.Debugw(msg, keysAndValues...)
}

// Infow ...
func Infow(msg string, keysAndValues ...interface{}) {
	logger.Infow(msg, keysAndValues...)
}

// Warnw ...
func Warnw(msg string, keysAndValues ...interface{}) {
	logger.Warnw(msg, keysAndValues...)
}

// Errorw ...
func Errorw(msg string, keysAndValues ...interface{}) {
	logger.Errorw(msg, keysAndValues...)
}

// Fatalw ...
func Fatalw(msg string, keysAndValues ...interface{}) {
	logger.Fatalw(msg, keysAndValues...)
}

// CtxDebugw ...
func CtxDebugw(_ context.Context, msg string, keysAndValues ...interface{}) {
	logger.Debugw(msg, keysAndValues...)
}

// CtxInfow ...
func CtxInfow(_ context.Context, msg string, keysAndValues ...interface{}) {
	logger.Infow(msg, keysAndValues...)
}

// CtxWarnw ...
func CtxWarnw(_ context.Context, msg string, keysAndValues ...interface{}) {
	logger.Warnw(msg, keysAndValues...)
}

// CtxErrorw ...
func CtxErrorw(_ context.Context, msg string, keysAndValues ...interface{}) {
	logger.Errorw(msg, keysAndValues...)
}
