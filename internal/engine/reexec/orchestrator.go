// Package reexec relaunches the tool inside optional, nested sandbox
// layers while guaranteeing resource cleanup across the relaunch boundary.
package reexec

import (
	"context"
	"fmt"
	"sync"

	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
	"go.trai.ch/zerr"
)

// Layer is one optional sandbox boundary the process may relaunch into.
type Layer interface {
	// Name identifies the layer in diagnostics.
	Name() string

	// Enabled reports whether configuration turned this layer on.
	Enabled() bool

	// Active reports whether the current process is already running
	// inside this layer (its re-entry marker is set).
	Active() bool

	// Relaunch re-executes the tool inside the layer. It may replace the
	// process image entirely and never return, or run the relaunched tool
	// as a child and return its outcome.
	Relaunch(ctx context.Context) error
}

// Hooks are the host-side and sandboxed parts of one orchestrated run.
type Hooks struct {
	// Before runs on the host only, before any relaunch. It has access to
	// host-only capabilities such as the installed compiler toolchain.
	Before func(ctx context.Context) error

	// Body is the actual work. It runs in the innermost enabled layer.
	Body func(ctx context.Context) error

	// After runs on the host only, after the relaunched work finished.
	After func(ctx context.Context) error

	// Cleanup runs exactly once on every path, including just before a
	// relaunch replaces the process image. Stack-based release does not
	// survive that boundary; Cleanup does.
	Cleanup func()
}

// Orchestrator composes the configured sandbox layers in fixed
// outer-to-inner order. A disabled layer degenerates to pass-through.
type Orchestrator struct {
	layers []Layer
	logger ports.Logger
}

// New creates an Orchestrator over the given layers, outermost first.
func New(logger ports.Logger, layers ...Layer) *Orchestrator {
	return &Orchestrator{layers: layers, logger: logger}
}

// Run executes the hooks around any required relaunches. With every layer
// disabled it degenerates to Before, Body, After with Cleanup still
// guaranteed.
func (o *Orchestrator) Run(ctx context.Context, h Hooks) error {
	var once sync.Once
	cleanup := func() {
		if h.Cleanup != nil {
			once.Do(h.Cleanup)
		}
	}
	defer cleanup()

	// Host side means outside every sandbox layer; the host-only hooks
	// must not run again after a relaunch.
	host := true
	for _, l := range o.layers {
		if l.Active() {
			host = false
		}
	}

	if next := o.nextLayer(); next != nil {
		if host && h.Before != nil {
			if err := h.Before(ctx); err != nil {
				return err
			}
		}

		// The relaunch may replace this process image, so cleanup cannot
		// wait for scope exit.
		cleanup()

		o.logger.Debug(fmt.Sprintf("re-executing inside %s", next.Name()))
		if err := next.Relaunch(ctx); err != nil {
			return zerr.Wrap(err, domain.ErrReexecFailed.Error())
		}

		if host && h.After != nil {
			return h.After(ctx)
		}
		return nil
	}

	if host && h.Before != nil {
		if err := h.Before(ctx); err != nil {
			return err
		}
	}

	if err := h.Body(ctx); err != nil {
		return err
	}

	if host && h.After != nil {
		return h.After(ctx)
	}
	return nil
}

// nextLayer returns the outermost layer that is enabled but not yet
// entered, or nil when the process is already inside every enabled layer.
func (o *Orchestrator) nextLayer() Layer {
	for _, l := range o.layers {
		if l.Enabled() && !l.Active() {
			return l
		}
	}
	return nil
}
