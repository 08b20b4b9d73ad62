package securerepo

import (
	"context"

	"github.com/grindlemire/graft"
	"go.cabin.build/cabin/internal/adapters/config"
	"go.cabin.build/cabin/internal/adapters/logger"
	"go.cabin.build/cabin/internal/core/ports"
)

// NodeID is the unique identifier for the session factory Graft node.
const NodeID graft.ID = "adapter.repo_session_factory"

func init() {
	graft.Register(graft.Node[ports.SessionFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.SessionFactory, error) {
			cfg, err := graft.Dep[*config.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(cfg.BaseURL, log), nil
		},
	})
}
