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

const defaultListLimit = 50

// learningPathSelect reads a path together with its derived counts. A
// resource counts as completed once any of its schedules is delivered.
const learningPathSelect = `
	SELECT p.id, p.name, p.description, p.goal, p.estimated_duration_days,
		p.is_active, p.created_at, p.updated_at,
		(SELECT COUNT(*) FROM modules m WHERE m.learning_path_id = p.id) AS module_count,
		(SELECT COUNT(*) FROM learning_resources r
			JOIN modules m ON m.id = r.module_id
			WHERE m.learning_path_id = p.id) AS total_resources,
		(SELECT COUNT(*) FROM learning_resources r
			JOIN modules m ON m.id = r.module_id
			WHERE m.learning_path_id = p.id
			AND EXISTS (
				SELECT 1 FROM schedules s
				WHERE s.learning_resource_id = r.id AND s.delivered
			)) AS completed_resources
	FROM learning_paths p
`

// PostgresLearningPathStore implements the store.LearningPathStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLearningPathStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLearningPathStore creates a new PostgreSQL implementation of the
// LearningPathStore interface. If logger is nil, slog.Default() is used.
func NewPostgresLearningPathStore(db store.DBTX, logger *slog.Logger) *PostgresLearningPathStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLearningPathStore{
		db:     db,
		logger: logger.With(slog.String("component", "learning_path_store")),
	}
}

// Ensure PostgresLearningPathStore implements store.LearningPathStore interface
var _ store.LearningPathStore = (*PostgresLearningPathStore)(nil)

// WithTx implements store.LearningPathStore.WithTx
func (s *PostgresLearningPathStore) WithTx(tx *sql.Tx) store.LearningPathStore {
	return &PostgresLearningPathStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.LearningPathStore.Create
func (s *PostgresLearningPathStore) Create(ctx context.Context, path *domain.LearningPath) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := path.Validate(); err != nil {
		log.Warn("learning path validation failed during create",
			slog.String("error", err.Error()),
			slog.String("learning_path_id", path.ID.String()))
		return invalidEntity(err)
	}

	query := `
		INSERT INTO learning_paths (
			id, name, description, goal, estimated_duration_days,
			is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		path.ID,
		path.Name,
		nullString(path.Description),
		nullString(path.Goal),
		nullInt(path.EstimatedDurationDays),
		path.IsActive,
	).Scan(&path.CreatedAt, &path.UpdatedAt)
	if err != nil {
		log.Error("failed to create learning path",
			slog.String("error", redact.Error(err)),
			slog.String("learning_path_id", path.ID.String()))
		return MapError(err)
	}

	path.CreatedAt, path.UpdatedAt = path.CreatedAt.UTC(), path.UpdatedAt.UTC()

	log.Info("learning path created successfully",
		slog.String("learning_path_id", path.ID.String()))
	return nil
}

// GetByID implements store.LearningPathStore.GetByID
func (s *PostgresLearningPathStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving learning path by ID", slog.String("learning_path_id", id.String()))

	path, err := scanLearningPath(s.db.QueryRowContext(ctx, learningPathSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("learning path not found", slog.String("learning_path_id", id.String()))
			return nil, store.ErrLearningPathNotFound
		}
		log.Error("failed to get learning path by ID",
			slog.String("error", redact.Error(err)),
			slog.String("learning_path_id", id.String()))
		return nil, MapError(err)
	}

	return path, nil
}

// List implements store.LearningPathStore.List
func (s *PostgresLearningPathStore) List(
	ctx context.Context,
	opts store.LearningPathListOptions,
) ([]*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	log.Debug("listing learning paths",
		slog.Bool("active_only", opts.ActiveOnly),
		slog.Int("limit", limit),
		slog.Int("offset", offset))

	query := learningPathSelect + `
		WHERE (NOT $1 OR p.is_active)
		ORDER BY p.created_at DESC, p.id
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, opts.ActiveOnly, limit, offset)
	if err != nil {
		log.Error("failed to query learning paths",
			slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", redact.Error(closeErr)))
		}
	}()

	paths := []*domain.LearningPath{}
	for rows.Next() {
		path, err := scanLearningPath(rows)
		if err != nil {
			log.Error("failed to scan learning path row",
				slog.String("error", redact.Error(err)))
			return nil, MapError(err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating learning path rows",
			slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}

	log.Debug("learning paths listed", slog.Int("count", len(paths)))
	return paths, nil
}

// Update implements store.LearningPathStore.Update
func (s *PostgresLearningPathStore) Update(ctx context.Context, path *domain.LearningPath) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := path.Validate(); err != nil {
		log.Warn("learning path validation failed during update",
			slog.String("error", err.Error()),
			slog.String("learning_path_id", path.ID.String()))
		return invalidEntity(err)
	}

	query := `
		UPDATE learning_paths
		SET name = $1, description = $2, goal = $3, estimated_duration_days = $4,
			is_active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`
	var updatedAt time.Time
	err := s.db.QueryRowContext(
		ctx,
		query,
		path.Name,
		nullString(path.Description),
		nullString(path.Goal),
		nullInt(path.EstimatedDurationDays),
		path.IsActive,
		path.ID,
	).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("learning path not found for update",
			slog.String("learning_path_id", path.ID.String()))
		return store.ErrLearningPathNotFound
	}
	if err != nil {
		log.Error("failed to update learning path",
			slog.String("error", redact.Error(err)),
			slog.String("learning_path_id", path.ID.String()))
		return MapError(err)
	}
	path.UpdatedAt = updatedAt.UTC()

	log.Info("learning path updated successfully",
		slog.String("learning_path_id", path.ID.String()),
		slog.Bool("is_active", path.IsActive))
	return nil
}

// Delete implements store.LearningPathStore.Delete
func (s *PostgresLearningPathStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM learning_paths WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete learning path",
			slog.String("error", redact.Error(err)),
			slog.String("learning_path_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrLearningPathNotFound); err != nil {
		log.Debug("learning path not found for delete",
			slog.String("learning_path_id", id.String()))
		return err
	}

	log.Info("learning path deleted with its modules, resources and schedules",
		slog.String("learning_path_id", id.String()))
	return nil
}

func scanLearningPath(row rowScanner) (*domain.LearningPath, error) {
	var (
		path        domain.LearningPath
		description sql.NullString
		goal        sql.NullString
		duration    sql.NullInt64
	)

	err := row.Scan(
		&path.ID,
		&path.Name,
		&description,
		&goal,
		&duration,
		&path.IsActive,
		&path.CreatedAt,
		&path.UpdatedAt,
		&path.ModuleCount,
		&path.TotalResources,
		&path.CompletedResources,
	)
	if err != nil {
		return nil, err
	}

	path.Description = stringPtr(description)
	path.Goal = stringPtr(goal)
	path.EstimatedDurationDays = intPtr(duration)
	path.CreatedAt = path.CreatedAt.UTC()
	path.UpdatedAt = path.UpdatedAt.UTC()
	return &path, nil
}
