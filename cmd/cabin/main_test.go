package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.cabin.build/cabin/internal/adapters/config"
	"go.cabin.build/cabin/internal/adapters/lockfile"
	"go.cabin.build/cabin/internal/adapters/logger"
	"go.cabin.build/cabin/internal/app"
	"go.cabin.build/cabin/internal/engine/indexsync"
	"go.cabin.build/cabin/internal/engine/reexec"
	"go.cabin.build/cabin/internal/engine/resolve"
)

func newTestComponents(t *testing.T) *app.Components {
	t.Helper()

	log := logger.New()
	log.SetOutput(new(bytes.Buffer))

	cfg := &config.Config{Root: t.TempDir()}
	syncer := indexsync.New(nil, nil, nil, log, cfg.Root, nil, 0)
	resolver := resolve.New(nil, nil, syncer, nil, "", log)

	application := app.New(
		cfg,
		lockfile.NewManager(log),
		&lockfile.Cell{},
		reexec.New(log),
		syncer,
		resolver,
		log,
	)

	return &app.Components{App: application, Logger: log}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	components := newTestComponents(t)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	code := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr.String())
}

// TestRun_InitFailure verifies that a component initialization error is
// reported on stderr and exits non-zero.
func TestRun_InitFailure(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("wiring exploded")
	}

	stderr := new(bytes.Buffer)
	code := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "wiring exploded")
}

// TestRun_CommandFailure verifies that a failing command exits non-zero.
func TestRun_CommandFailure(t *testing.T) {
	components := newTestComponents(t)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	code := run(context.Background(), []string{"no-such-command"}, stderr, provider)

	assert.Equal(t, 1, code)
}
