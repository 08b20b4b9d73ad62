package fetcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.cabin.build/cabin/internal/adapters/logger"
	"go.cabin.build/cabin/internal/core/ports"
)

// NodeID is the unique identifier for the archive fetcher Graft node.
const NodeID graft.ID = "adapter.archive_fetcher"

func init() {
	graft.Register(graft.Node[ports.ArchiveFetcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ArchiveFetcher, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log), nil
		},
	})
}
