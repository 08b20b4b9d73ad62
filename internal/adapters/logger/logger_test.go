package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.cabin.build/cabin/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated
// testing. It also sets NO_COLOR=1 to ensure deterministic output without
// ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	t.Run("info", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Info("index updated")
		assert.Equal(t, "index updated\n", buf.String())
	})

	t.Run("warn carries the warning icon", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Warn("lock contended")
		assert.Equal(t, "! lock contended\n", buf.String())
	})

	t.Run("debug is suppressed by default", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Debug("noise")
		assert.Empty(t, buf.String())
	})
}

func TestLogger_SetQuiet(t *testing.T) {
	t.Run("suppresses info and warn", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.SetQuiet(true)

		lg.Info("hidden")
		lg.Warn("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("errors still come through", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.SetQuiet(true)

		lg.Error(errors.New("fatal"))
		assert.Contains(t, buf.String(), "Error: fatal")
	})

	t.Run("can be re-enabled", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.SetQuiet(true)
		lg.SetQuiet(false)

		lg.Info("visible again")
		assert.Contains(t, buf.String(), "visible again")
	})
}

func TestLogger_Error(t *testing.T) {
	t.Run("nil error logs nothing", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Error(nil)
		assert.Empty(t, buf.String())
	})

	t.Run("plain error", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Error(errors.New("disk full"))
		assert.Contains(t, buf.String(), "Error: disk full")
		assert.NotContains(t, buf.String(), "Caused by")
	})

	t.Run("wrapped chain is rendered cause by cause", func(t *testing.T) {
		lg, buf := newTestLogger(t)

		err := zerr.Wrap(
			zerr.Wrap(errors.New("connection refused"), "failed to reach repository"),
			"package index update failed",
		)
		lg.Error(err)

		out := buf.String()
		assert.Contains(t, out, "Error: package index update failed")
		assert.Contains(t, out, "Caused by:")
		assert.Contains(t, out, "→ failed to reach repository")
		assert.Contains(t, out, "→ connection refused")
	})
}
