package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
	"github.com/phrazzld/learnpath/internal/platform/logger"
	"github.com/phrazzld/learnpath/internal/redact"
	"github.com/phrazzld/learnpath/internal/store"
)

const learningResourceColumns = `
	id, module_id, title, order_index, resource_type, url, file_path, content,
	summary, key_concepts, difficulty, estimated_time_mins, source_metadata,
	created_at, updated_at
`

// PostgresLearningResourceStore implements the store.LearningResourceStore
// interface using a PostgreSQL database as the storage backend.
type PostgresLearningResourceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLearningResourceStore creates a new PostgreSQL implementation of
// the LearningResourceStore interface. If logger is nil, slog.Default() is used.
func NewPostgresLearningResourceStore(db store.DBTX, logger *slog.Logger) *PostgresLearningResourceStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLearningResourceStore{
		db:     db,
		logger: logger.With(slog.String("component", "learning_resource_store")),
	}
}

// Ensure PostgresLearningResourceStore implements store.LearningResourceStore interface
var _ store.LearningResourceStore = (*PostgresLearningResourceStore)(nil)

// WithTx implements store.LearningResourceStore.WithTx
func (s *PostgresLearningResourceStore) WithTx(tx *sql.Tx) store.LearningResourceStore {
	return &PostgresLearningResourceStore{
		db:     tx,
		logger: s.logger,
	}
}

// resourceArgs returns the encoded column values shared by insert and update,
// in learningResourceColumns order starting at title.
func resourceArgs(r *domain.LearningResource) ([]any, error) {
	concepts, err := encodeStrings(r.KeyConcepts)
	if err != nil {
		return nil, err
	}
	metadata, err := encodeAttributes(r.SourceMetadata)
	if err != nil {
		return nil, err
	}

	var resourceType, difficulty any
	if r.ResourceType != nil {
		resourceType = string(*r.ResourceType)
	}
	if r.Difficulty != nil {
		difficulty = string(*r.Difficulty)
	}

	return []any{
		r.Title,
		r.OrderIndex,
		resourceType,
		nullString(r.URL),
		nullString(r.FilePath),
		nullString(r.Content),
		nullString(r.Summary),
		concepts,
		difficulty,
		nullInt(r.EstimatedTimeMins),
		metadata,
	}, nil
}

// Create implements store.LearningResourceStore.Create
func (s *PostgresLearningResourceStore) Create(ctx context.Context, resource *domain.LearningResource) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := resource.Validate(); err != nil {
		log.Warn("learning resource validation failed during create",
			slog.String("error", err.Error()),
			slog.String("learning_resource_id", resource.ID.String()))
		return invalidEntity(err)
	}

	values, err := resourceArgs(resource)
	if err != nil {
		return invalidEntity(err)
	}

	query := `INSERT INTO learning_resources (` + learningResourceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at`

	args := make([]any, 0, 13)
	args = append(args, resource.ID, resource.ModuleID)
	args = append(args, values...)

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&resource.CreatedAt, &resource.UpdatedAt)
	if err != nil {
		log.Error("failed to create learning resource",
			slog.String("error", redact.Error(err)),
			slog.String("learning_resource_id", resource.ID.String()),
			slog.String("module_id", resource.ModuleID.String()))
		return MapError(err)
	}

	resource.CreatedAt, resource.UpdatedAt = resource.CreatedAt.UTC(), resource.UpdatedAt.UTC()

	log.Info("learning resource created successfully",
		slog.String("learning_resource_id", resource.ID.String()),
		slog.String("module_id", resource.ModuleID.String()),
		slog.Int("order_index", resource.OrderIndex))
	return nil
}

// GetByID implements store.LearningResourceStore.GetByID
func (s *PostgresLearningResourceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningResource, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + learningResourceColumns + ` FROM learning_resources WHERE id = $1`
	resource, err := scanLearningResource(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("learning resource not found", slog.String("learning_resource_id", id.String()))
			return nil, store.ErrLearningResourceNotFound
		}
		log.Error("failed to get learning resource by ID",
			slog.String("error", redact.Error(err)),
			slog.String("learning_resource_id", id.String()))
		return nil, MapError(err)
	}

	return resource, nil
}

// ListByModule implements store.LearningResourceStore.ListByModule
func (s *PostgresLearningResourceStore) ListByModule(
	ctx context.Context,
	moduleID uuid.UUID,
) ([]*domain.LearningResource, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + learningResourceColumns + `
		FROM learning_resources WHERE module_id = $1 ORDER BY order_index`
	rows, err := s.db.QueryContext(ctx, query, moduleID)
	if err != nil {
		log.Error("failed to query learning resources",
			slog.String("error", redact.Error(err)),
			slog.String("module_id", moduleID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", redact.Error(closeErr)))
		}
	}()

	resources := []*domain.LearningResource{}
	for rows.Next() {
		resource, err := scanLearningResource(rows)
		if err != nil {
			log.Error("failed to scan learning resource row", slog.String("error", redact.Error(err)))
			return nil, MapError(err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return resources, nil
}

// Update implements store.LearningResourceStore.Update
func (s *PostgresLearningResourceStore) Update(ctx context.Context, resource *domain.LearningResource) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := resource.Validate(); err != nil {
		log.Warn("learning resource validation failed during update",
			slog.String("error", err.Error()),
			slog.String("learning_resource_id", resource.ID.String()))
		return invalidEntity(err)
	}

	values, err := resourceArgs(resource)
	if err != nil {
		return invalidEntity(err)
	}

	query := `
		UPDATE learning_resources
		SET title = $1, order_index = $2, resource_type = $3, url = $4, file_path = $5,
			content = $6, summary = $7, key_concepts = $8, difficulty = $9,
			estimated_time_mins = $10, source_metadata = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at
	`
	args := append(values, resource.ID)

	var updatedAt time.Time
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("learning resource not found for update",
			slog.String("learning_resource_id", resource.ID.String()))
		return store.ErrLearningResourceNotFound
	}
	if err != nil {
		log.Error("failed to update learning resource",
			slog.String("error", redact.Error(err)),
			slog.String("learning_resource_id", resource.ID.String()))
		return MapError(err)
	}
	resource.UpdatedAt = updatedAt.UTC()

	log.Info("learning resource updated successfully",
		slog.String("learning_resource_id", resource.ID.String()))
	return nil
}

// Delete implements store.LearningResourceStore.Delete
func (s *PostgresLearningResourceStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM learning_resources WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete learning resource",
			slog.String("error", redact.Error(err)),
			slog.String("learning_resource_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrLearningResourceNotFound); err != nil {
		log.Debug("learning resource not found for delete",
			slog.String("learning_resource_id", id.String()))
		return err
	}

	log.Info("learning resource deleted successfully",
		slog.String("learning_resource_id", id.String()))
	return nil
}

// NextOrderIndex implements store.LearningResourceStore.NextOrderIndex
func (s *PostgresLearningResourceStore) NextOrderIndex(ctx context.Context, moduleID uuid.UUID) (int, error) {
	next, err := nextOrderIndex(ctx, s.db, resourceSiblings, moduleID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to compute next resource order index",
			slog.String("error", redact.Error(err)),
			slog.String("module_id", moduleID.String()))
		return 0, err
	}
	return next, nil
}

// Reorder implements store.LearningResourceStore.Reorder
func (s *PostgresLearningResourceStore) Reorder(ctx context.Context, moduleID uuid.UUID, orderedIDs []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	return reorderSiblings(ctx, s.db, log, resourceSiblings, moduleID, orderedIDs)
}

func scanLearningResource(row rowScanner) (*domain.LearningResource, error) {
	var (
		r            domain.LearningResource
		resourceType sql.NullString
		url          sql.NullString
		filePath     sql.NullString
		content      sql.NullString
		summary      sql.NullString
		concepts     []byte
		difficulty   sql.NullString
		estimated    sql.NullInt64
		metadata     []byte
	)

	err := row.Scan(
		&r.ID,
		&r.ModuleID,
		&r.Title,
		&r.OrderIndex,
		&resourceType,
		&url,
		&filePath,
		&content,
		&summary,
		&concepts,
		&difficulty,
		&estimated,
		&metadata,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if r.KeyConcepts, err = decodeStrings(concepts); err != nil {
		return nil, err
	}
	if r.SourceMetadata, err = decodeAttributes(metadata); err != nil {
		return nil, err
	}
	if resourceType.Valid {
		rt := domain.ResourceType(resourceType.String)
		r.ResourceType = &rt
	}
	if difficulty.Valid {
		d := domain.Difficulty(difficulty.String)
		r.Difficulty = &d
	}

	r.URL = stringPtr(url)
	r.FilePath = stringPtr(filePath)
	r.Content = stringPtr(content)
	r.Summary = stringPtr(summary)
	r.EstimatedTimeMins = intPtr(estimated)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return &r, nil
}
