// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never ORM models or driver types
//   - Error returns use domain error types (ErrNotFound, ...)
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quotes-service/internal/domain"
)

// QuoteRepository persists quotes. Every method issues exactly one statement
// against the store; no method checks for existence before writing.
type QuoteRepository interface {
	// Create inserts a new quote with all five fields as given.
	Create(ctx context.Context, quote *domain.Quote) error

	// List returns every stored quote in storage-defined order.
	// An empty store yields an empty, non-nil slice.
	List(ctx context.Context) ([]*domain.Quote, error)

	// Update overwrites author, text and updated_at of the quote with the given ID.
	// Returns domain.ErrNotFound when no row was affected.
	Update(ctx context.Context, id uuid.UUID, changes domain.QuoteChanges) error

	// Delete removes the quote with the given ID.
	// Returns domain.ErrNotFound when no row was affected.
	Delete(ctx context.Context, id uuid.UUID) error
}
