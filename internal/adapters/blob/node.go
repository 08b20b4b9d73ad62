package blob

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.cabin.build/cabin/internal/adapters/config"
	"go.cabin.build/cabin/internal/core/domain"
	"go.cabin.build/cabin/internal/core/ports"
)

// NodeID is the unique identifier for the blob store Graft node.
const NodeID graft.ID = "adapter.blob_store"

func init() {
	graft.Register(graft.Node[ports.BlobStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.BlobStore, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(filepath.Join(cfg.Root, domain.DefaultStorePath())), nil
		},
	})
}
