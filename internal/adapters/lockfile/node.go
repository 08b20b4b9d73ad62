package lockfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.cabin.build/cabin/internal/adapters/logger"
	"go.cabin.build/cabin/internal/core/ports"
)

// NodeID is the unique identifier for the lock manager Graft node.
const NodeID graft.ID = "adapter.lock_manager"

// CellNodeID is the unique identifier for the active lock cell Graft node.
const CellNodeID graft.ID = "adapter.lock_cell"

func init() {
	graft.Register(graft.Node[*Manager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Manager, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewManager(log), nil
		},
	})

	graft.Register(graft.Node[*Cell]{
		ID:        CellNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Cell, error) {
			return &Cell{}, nil
		},
	})
}
