package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"

	errInvalidLevelFmt = "invalid log level %q: %w"
	errBuildLoggerFmt  = "failed to initialize logger: %w"
)

// New builds a zap logger. The json format uses the production encoder, the
// console format the development one.
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf(errInvalidLevelFmt, level, err)
	}

	config := zap.NewProductionConfig()
	if format == FormatConsole {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.DisableStacktrace = lvl > zapcore.DebugLevel

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf(errBuildLoggerFmt, err)
	}
	return logger, nil
}

// Email is a zap field carrying a masked email address.
func Email(email string) zap.Field {
	return zap.String("email", MaskEmail(email))
}

// Message is a zap field holding free text with secrets redacted.
func Message(key, text string) zap.Field {
	return zap.String(key, SanitizeLogMessage(text))
}
