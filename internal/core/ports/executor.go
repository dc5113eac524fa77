package ports

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// Executor runs external commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd to completion, streaming its output to stdout and stderr.
	// A non-zero exit status is returned as domain.ErrCommandFailed.
	Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error
}
