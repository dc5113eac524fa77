package ports

import "context"

// DocumentOptimizer rewrites a single markup document.
//
//go:generate mockgen -source=optimizer.go -destination=mocks/mock_optimizer.go -package=mocks
type DocumentOptimizer interface {
	// Optimize returns the optimized document or an error. The input is never modified.
	Optimize(ctx context.Context, doc []byte) ([]byte, error)
}
