// Package app implements the application layer for cabin.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.cabin.build/cabin/internal/adapters/config"
	"go.cabin.build/cabin/internal/adapters/lockfile"
	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
	"go.cabin.build/cabin/internal/engine/indexsync"
	"go.cabin.build/cabin/internal/engine/reexec"
	"go.cabin.build/cabin/internal/engine/resolve"
)

// App represents the main application logic.
type App struct {
	cfg      *config.Config
	locks    *lockfile.Manager
	cell     *lockfile.Cell
	orch     *reexec.Orchestrator
	syncer   *indexsync.Synchronizer
	resolver *resolve.Resolver
	logger   ports.Logger
	out      io.Writer
}

// New creates a new App instance.
func New(
	cfg *config.Config,
	locks *lockfile.Manager,
	cell *lockfile.Cell,
	orch *reexec.Orchestrator,
	syncer *indexsync.Synchronizer,
	resolver *resolve.Resolver,
	logger ports.Logger,
) *App {
	return &App{
		cfg:      cfg,
		locks:    locks,
		cell:     cell,
		orch:     orch,
		syncer:   syncer,
		resolver: resolver,
		logger:   logger,
		out:      os.Stdout,
	}
}

// WithOutput redirects the App's standard output. Used for testing.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// UpdateOptions configuration for the Update method.
type UpdateOptions struct {
	Quiet bool
}

// Update synchronizes the local package index cache with the remote
// repository.
func (a *App) Update(ctx context.Context, opts UpdateOptions) error {
	return a.withSession(ctx, opts.Quiet, func(ctx context.Context) error {
		res, err := a.syncer.Update(ctx)
		if err != nil {
			return err
		}
		switch {
		case !res.Ran:
			a.logger.Info("package index update already attempted in this run")
		case res.Changed:
			a.logger.Info("package index updated")
		default:
			a.logger.Info("package index already current")
		}
		return nil
	})
}

// ResolveOptions configuration for the Resolve method.
type ResolveOptions struct {
	Package  string
	Version  string
	Revision int // -1 selects the latest revision
	Hash     string
	Tree     bool
	Quiet    bool
}

// Resolve answers cache-first metadata queries for one package release.
func (a *App) Resolve(ctx context.Context, opts ResolveOptions) error {
	ident := domain.PackageIdent{
		Name:    domain.PackageName(opts.Package),
		Version: domain.Version(opts.Version),
	}

	sel := domain.LatestCabal()
	switch {
	case opts.Hash != "":
		sel = domain.CabalHash(domain.BlobRef(opts.Hash), 0)
	case opts.Revision >= 0:
		sel = domain.CabalRevision(uint(opts.Revision))
	}

	return a.withSession(ctx, opts.Quiet, func(ctx context.Context) error {
		ref, err := a.resolver.CabalContent(ctx, ident, sel)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "cabal:\t%s\n", ref)

		info, err := a.resolver.TarballInfo(ctx, ident)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "tarball:\tsha256:%s size:%d\n", info.SHA256, info.Size)

		if !opts.Tree {
			return nil
		}

		treeKey, tree, err := a.resolver.PackageTree(ctx, ident, sel)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "tree:\t%s (%d files)\n", treeKey, len(tree))
		return nil
	})
}

// withSession runs body holding the shared-state locks, inside the
// configured sandbox layers. The root lock is taken first; inside the
// orchestrated body coverage narrows hand over hand to the index lock
// before the build-facing work begins.
func (a *App) withSession(ctx context.Context, quiet bool, body func(context.Context) error) error {
	if quiet {
		a.logger.SetQuiet(true)
	}

	rootDir := filepath.Join(a.cfg.Root, domain.DefaultCabinPath())

	return a.locks.WithLock(a.locks.Enabled(), rootDir, func(root *lockfile.Handle) error {
		a.cell.Set(root)

		return a.orch.Run(ctx, reexec.Hooks{
			Before: a.logHostToolchain,
			Cleanup: func() {
				_ = a.cell.ReleaseCurrent()
			},
			Body: func(ctx context.Context) error {
				indexDir := filepath.Join(a.cfg.Root, domain.DefaultIndexPath())
				fine, err := a.locks.Exchange(indexDir, root, a.cell)
				if err != nil {
					return err
				}
				defer func() { _ = fine.Release() }()

				return body(ctx)
			},
		})
	})
}

// logHostToolchain records the host compiler version. It runs on the host
// only: inside a sandbox the toolchain may differ or be absent, and layer
// image selection needs the host's answer.
func (a *App) logHostToolchain(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "ghc", "--numeric-version").Output()
	if err != nil {
		a.logger.Debug("no host ghc found")
		return nil
	}
	a.logger.Debug(fmt.Sprintf("host ghc %s", strings.TrimSpace(string(out))))
	return nil
}
