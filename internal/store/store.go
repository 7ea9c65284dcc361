// Package store persists candidate override blobs, keyed by email.
package store

import (
	"context"

	"github.com/sells-group/recruit-cli/internal/model"
)

// Store defines the persistence interface for the override store. Overrides
// are whole blobs: callers reconstruct the complete augmented-field set
// before every put. The pipeline never deletes entries; blobs for candidates
// absent from the current export simply go unused.
type Store interface {
	// GetOverride returns the blob for an email, or nil when absent.
	GetOverride(ctx context.Context, email string) (*model.Override, error)

	// PutOverride creates or replaces the blob for an email.
	PutOverride(ctx context.Context, email string, ov model.Override) error

	// ListOverrides returns every persisted blob keyed by email.
	ListOverrides(ctx context.Context) (map[string]model.Override, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
