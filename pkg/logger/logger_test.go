package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintfFormatsOneRecord(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Printf(log, slog.LevelWarn)("target %s closed\n", "abc")

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), `msg="target abc closed"`)
}

func TestCronLoggerError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	CronLogger{Log: slog.New(slog.NewTextHandler(&buf, nil))}.Error(errors.New("panic"), "job failed", "entry", 1)

	assert.Contains(t, buf.String(), "error=panic")
	assert.Contains(t, buf.String(), "entry=1")
}
