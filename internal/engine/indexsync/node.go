package indexsync

import (
	"context"

	"github.com/grindlemire/graft"
	"go.cabin.build/cabin/internal/adapters/blob"
	"go.cabin.build/cabin/internal/adapters/config"
	"go.cabin.build/cabin/internal/adapters/logger"
	"go.cabin.build/cabin/internal/adapters/securerepo"
	"go.cabin.build/cabin/internal/adapters/tables"
	"go.cabin.build/cabin/internal/core/ports"
)

// NodeID is the unique identifier for the synchronizer Graft node.
const NodeID graft.ID = "engine.index_synchronizer"

func init() {
	graft.Register(graft.Node[*Synchronizer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			securerepo.NodeID,
			tables.NodeID,
			blob.NodeID,
		},
		Run: func(ctx context.Context) (*Synchronizer, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			factory, err := graft.Dep[ports.SessionFactory](ctx)
			if err != nil {
				return nil, err
			}
			tbl, err := graft.Dep[ports.IndexTables](ctx)
			if err != nil {
				return nil, err
			}
			blobs, err := graft.Dep[ports.BlobStore](ctx)
			if err != nil {
				return nil, err
			}
			return New(factory, tbl, blobs, log, cfg.Root, cfg.KeyIDs, cfg.Threshold), nil
		},
	})
}
