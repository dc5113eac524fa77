package amp

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the AMP optimizer Graft node.
const NodeID graft.ID = "adapter.amp"

func init() {
	graft.Register(graft.Node[ports.DocumentOptimizer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.DocumentOptimizer, error) {
			return NewOptimizer(), nil
		},
	})
}
