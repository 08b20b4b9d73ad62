package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.cabin.build/cabin/internal/adapters/config"
	"go.cabin.build/cabin/internal/adapters/lockfile"
	"go.cabin.build/cabin/internal/adapters/logger"
	"go.cabin.build/cabin/internal/core/ports"
	"go.cabin.build/cabin/internal/engine/indexsync"
	"go.cabin.build/cabin/internal/engine/reexec"
	"go.cabin.build/cabin/internal/engine/resolve"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles the constructed application with the pieces the CLI
// entrypoint needs directly.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			lockfile.NodeID,
			lockfile.CellNodeID,
			reexec.NodeID,
			indexsync.NodeID,
			resolve.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cfg, err := graft.Dep[*config.Config](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	locks, err := graft.Dep[*lockfile.Manager](ctx)
	if err != nil {
		return nil, err
	}

	cell, err := graft.Dep[*lockfile.Cell](ctx)
	if err != nil {
		return nil, err
	}

	orch, err := graft.Dep[*reexec.Orchestrator](ctx)
	if err != nil {
		return nil, err
	}

	syncer, err := graft.Dep[*indexsync.Synchronizer](ctx)
	if err != nil {
		return nil, err
	}

	resolver, err := graft.Dep[*resolve.Resolver](ctx)
	if err != nil {
		return nil, err
	}

	return New(cfg, locks, cell, orch, syncer, resolver, log), nil
}
