package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Printf adapts a slog.Logger to the printf-style callbacks used by chromedp
// and cron; every formatted line becomes one record at level.
func Printf(log *slog.Logger, level slog.Level) func(format string, args ...any) {
	return func(format string, args ...any) {
		if log == nil {
			return
		}
		log.Log(context.Background(), level, strings.TrimSpace(fmt.Sprintf(format, args...)))
	}
}

// CronLogger satisfies the cron.Logger interface on top of slog.
type CronLogger struct {
	Log *slog.Logger
}

// Info logs routine scheduler messages at debug level.
func (c CronLogger) Info(msg string, keysAndValues ...any) {
	if c.Log != nil {
		c.Log.Debug(msg, keysAndValues...)
	}
}

// Error logs scheduler failures.
func (c CronLogger) Error(err error, msg string, keysAndValues ...any) {
	if c.Log != nil {
		c.Log.Error(msg, append([]any{"error", err}, keysAndValues...)...)
	}
}
