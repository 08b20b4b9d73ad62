package resolve

import (
	"context"

	"github.com/grindlemire/graft"
	"go.cabin.build/cabin/internal/adapters/blob"
	"go.cabin.build/cabin/internal/adapters/config"
	"go.cabin.build/cabin/internal/adapters/fetcher"
	"go.cabin.build/cabin/internal/adapters/logger"
	"go.cabin.build/cabin/internal/adapters/tables"
	"go.cabin.build/cabin/internal/core/ports"
	"go.cabin.build/cabin/internal/engine/indexsync"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			tables.NodeID,
			blob.NodeID,
			fetcher.NodeID,
			indexsync.NodeID,
		},
		Run: func(ctx context.Context) (*Resolver, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
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
			fetch, err := graft.Dep[ports.ArchiveFetcher](ctx)
			if err != nil {
				return nil, err
			}
			syncer, err := graft.Dep[*indexsync.Synchronizer](ctx)
			if err != nil {
				return nil, err
			}
			return New(tbl, blobs, syncer, fetch, cfg.DownloadPrefix, log), nil
		},
	})
}
