package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
)

// ModuleStore defines the interface for module persistence.
type ModuleStore interface {
	// Create saves a new module.
	// Returns ErrDuplicateOrderIndex if a sibling already uses the order index,
	// and an error wrapping ErrInvalidEntity if the parent path does not exist.
	Create(ctx context.Context, module *domain.Module) error

	// GetByID retrieves a module with LearningResourceCount populated.
	// Returns ErrModuleNotFound if the module does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Module, error)

	// ListByLearningPath returns the modules of a path in order_index order.
	ListByLearningPath(ctx context.Context, learningPathID uuid.UUID) ([]*domain.Module, error)

	// Update persists an existing module.
	// Returns ErrModuleNotFound if the module does not exist.
	Update(ctx context.Context, module *domain.Module) error

	// Delete removes a module; its resources and their schedules cascade.
	// Returns ErrModuleNotFound if the module does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// NextOrderIndex returns one past the highest order index used in the path,
	// or 0 for a path without modules.
	NextOrderIndex(ctx context.Context, learningPathID uuid.UUID) (int, error)

	// Reorder assigns order indexes 0..n-1 following orderedIDs. orderedIDs must
	// list every module of the path exactly once.
	//
	// IMPORTANT: the sibling uniqueness constraint is deferred for the duration
	// of the call, so this MUST run inside a transaction (see WithTx and
	// RunInTransaction).
	Reorder(ctx context.Context, learningPathID uuid.UUID, orderedIDs []uuid.UUID) error

	// WithTx returns a ModuleStore bound to the given transaction.
	WithTx(tx *sql.Tx) ModuleStore
}
