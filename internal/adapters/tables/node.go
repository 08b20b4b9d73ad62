package tables

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.cabin.build/cabin/internal/adapters/config"
	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
)

// NodeID is the unique identifier for the index tables Graft node.
const NodeID graft.ID = "adapter.index_tables"

func init() {
	graft.Register(graft.Node[ports.IndexTables]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.IndexTables, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			return Open(filepath.Join(cfg.Root, domain.DefaultTablesPath()))
		},
	})
}
