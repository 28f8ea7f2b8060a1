package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
)

// LearningResourceStore defines the interface for learning resource persistence.
type LearningResourceStore interface {
	// Create saves a new learning resource.
	// Returns ErrDuplicateOrderIndex if a sibling already uses the order index,
	// and an error wrapping ErrInvalidEntity if the parent module does not exist.
	Create(ctx context.Context, resource *domain.LearningResource) error

	// GetByID retrieves a learning resource.
	// Returns ErrLearningResourceNotFound if the resource does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningResource, error)

	// ListByModule returns the resources of a module in order_index order.
	ListByModule(ctx context.Context, moduleID uuid.UUID) ([]*domain.LearningResource, error)

	// Update persists an existing learning resource.
	// Returns ErrLearningResourceNotFound if the resource does not exist.
	Update(ctx context.Context, resource *domain.LearningResource) error

	// Delete removes a learning resource; its schedules cascade.
	// Returns ErrLearningResourceNotFound if the resource does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// NextOrderIndex returns one past the highest order index used in the
	// module, or 0 for an empty module.
	NextOrderIndex(ctx context.Context, moduleID uuid.UUID) (int, error)

	// Reorder assigns order indexes 0..n-1 following orderedIDs, which must list
	// every resource of the module exactly once. MUST run inside a transaction.
	Reorder(ctx context.Context, moduleID uuid.UUID, orderedIDs []uuid.UUID) error

	// WithTx returns a LearningResourceStore bound to the given transaction.
	WithTx(tx *sql.Tx) LearningResourceStore
}
