package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
)

// LearningPathListOptions filters and paginates LearningPathStore.List.
type LearningPathListOptions struct {
	// ActiveOnly excludes archived paths.
	ActiveOnly bool
	// Limit caps the number of results; values <= 0 use the store default.
	Limit int
	// Offset skips that many results; negative values are treated as 0.
	Offset int
}

// LearningPathStore defines the interface for learning path persistence.
type LearningPathStore interface {
	// Create saves a new learning path.
	// Returns an error wrapping ErrInvalidEntity if the path fails validation.
	Create(ctx context.Context, path *domain.LearningPath) error

	// GetByID retrieves a learning path by ID, with ModuleCount,
	// TotalResources and CompletedResources populated.
	// Returns ErrLearningPathNotFound if the path does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error)

	// List returns learning paths ordered by creation time, newest first,
	// with derived counts populated. Returns an empty slice when nothing matches.
	List(ctx context.Context, opts LearningPathListOptions) ([]*domain.LearningPath, error)

	// Update persists the scalar fields of an existing path, including IsActive.
	// Returns ErrLearningPathNotFound if the path does not exist.
	Update(ctx context.Context, path *domain.LearningPath) error

	// Delete physically removes a learning path.
	// Returns ErrLearningPathNotFound if the path does not exist.
	//
	// Modules, their learning resources and those resources' schedules are
	// removed by ON DELETE CASCADE foreign keys in the same statement; the
	// store does not delete children itself.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a LearningPathStore bound to the given transaction.
	WithTx(tx *sql.Tx) LearningPathStore
}
