package ports

import "context"

// ReloadNotifier tells connected browsers to reload.
//
//go:generate mockgen -source=preview.go -destination=mocks/mock_preview.go -package=mocks
type ReloadNotifier interface {
	// NotifyReload pushes a reload event to every connected client.
	// It is a no-op when no client is connected.
	NotifyReload()
}

// PreviewServer serves the output root over HTTP with live reload.
type PreviewServer interface {
	ReloadNotifier

	// Start binds the server and begins serving root in the background.
	// A second call returns domain.ErrAlreadyServing.
	Start(ctx context.Context, root string) error

	// Addr returns the bound address, or "" before Start.
	Addr() string

	// Close shuts the server down and disconnects every client.
	Close() error
}
