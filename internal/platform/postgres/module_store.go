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

const moduleSelect = `
	SELECT m.id, m.learning_path_id, m.name, m.description, m.order_index,
		m.duration_days, m.prereqs_json, m.learning_objectives,
		m.created_at, m.updated_at,
		(SELECT COUNT(*) FROM learning_resources r WHERE r.module_id = m.id) AS learning_resource_count
	FROM modules m
`

// PostgresModuleStore implements the store.ModuleStore interface
// using a PostgreSQL database as the storage backend.
type PostgresModuleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresModuleStore creates a new PostgreSQL implementation of the
// ModuleStore interface. If logger is nil, slog.Default() is used.
func NewPostgresModuleStore(db store.DBTX, logger *slog.Logger) *PostgresModuleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresModuleStore{
		db:     db,
		logger: logger.With(slog.String("component", "module_store")),
	}
}

// Ensure PostgresModuleStore implements store.ModuleStore interface
var _ store.ModuleStore = (*PostgresModuleStore)(nil)

// WithTx implements store.ModuleStore.WithTx
func (s *PostgresModuleStore) WithTx(tx *sql.Tx) store.ModuleStore {
	return &PostgresModuleStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ModuleStore.Create
func (s *PostgresModuleStore) Create(ctx context.Context, module *domain.Module) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := module.Validate(); err != nil {
		log.Warn("module validation failed during create",
			slog.String("error", err.Error()),
			slog.String("module_id", module.ID.String()))
		return invalidEntity(err)
	}

	prereqs, err := encodeAttributes(module.Prerequisites)
	if err != nil {
		return invalidEntity(err)
	}

	query := `
		INSERT INTO modules (
			id, learning_path_id, name, description, order_index, duration_days,
			prereqs_json, learning_objectives, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err = s.db.QueryRowContext(
		ctx,
		query,
		module.ID,
		module.LearningPathID,
		module.Name,
		nullString(module.Description),
		module.OrderIndex,
		nullInt(module.DurationDays),
		prereqs,
		nullString(module.LearningObjectives),
	).Scan(&module.CreatedAt, &module.UpdatedAt)
	if err != nil {
		mapped := MapError(err)
		if IsForeignKeyViolation(err) {
			log.Warn("learning path not found during module creation",
				slog.String("module_id", module.ID.String()),
				slog.String("learning_path_id", module.LearningPathID.String()))
			return mapped
		}
		log.Error("failed to create module",
			slog.String("error", redact.Error(err)),
			slog.String("module_id", module.ID.String()),
			slog.String("learning_path_id", module.LearningPathID.String()),
			slog.Int("order_index", module.OrderIndex))
		return mapped
	}

	module.CreatedAt, module.UpdatedAt = module.CreatedAt.UTC(), module.UpdatedAt.UTC()

	log.Info("module created successfully",
		slog.String("module_id", module.ID.String()),
		slog.String("learning_path_id", module.LearningPathID.String()),
		slog.Int("order_index", module.OrderIndex))
	return nil
}

// GetByID implements store.ModuleStore.GetByID
func (s *PostgresModuleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Module, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	module, err := scanModule(s.db.QueryRowContext(ctx, moduleSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("module not found", slog.String("module_id", id.String()))
			return nil, store.ErrModuleNotFound
		}
		log.Error("failed to get module by ID",
			slog.String("error", redact.Error(err)),
			slog.String("module_id", id.String()))
		return nil, MapError(err)
	}

	return module, nil
}

// ListByLearningPath implements store.ModuleStore.ListByLearningPath
func (s *PostgresModuleStore) ListByLearningPath(
	ctx context.Context,
	learningPathID uuid.UUID,
) ([]*domain.Module, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		moduleSelect+` WHERE m.learning_path_id = $1 ORDER BY m.order_index`,
		learningPathID)
	if err != nil {
		log.Error("failed to query modules",
			slog.String("error", redact.Error(err)),
			slog.String("learning_path_id", learningPathID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", redact.Error(closeErr)))
		}
	}()

	modules := []*domain.Module{}
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			log.Error("failed to scan module row", slog.String("error", redact.Error(err)))
			return nil, MapError(err)
		}
		modules = append(modules, module)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return modules, nil
}

// Update implements store.ModuleStore.Update
func (s *PostgresModuleStore) Update(ctx context.Context, module *domain.Module) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := module.Validate(); err != nil {
		log.Warn("module validation failed during update",
			slog.String("error", err.Error()),
			slog.String("module_id", module.ID.String()))
		return invalidEntity(err)
	}

	prereqs, err := encodeAttributes(module.Prerequisites)
	if err != nil {
		return invalidEntity(err)
	}

	query := `
		UPDATE modules
		SET learning_path_id = $1, name = $2, description = $3, order_index = $4,
			duration_days = $5, prereqs_json = $6, learning_objectives = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`
	var updatedAt time.Time
	err = s.db.QueryRowContext(
		ctx,
		query,
		module.LearningPathID,
		module.Name,
		nullString(module.Description),
		module.OrderIndex,
		nullInt(module.DurationDays),
		prereqs,
		nullString(module.LearningObjectives),
		module.ID,
	).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("module not found for update", slog.String("module_id", module.ID.String()))
		return store.ErrModuleNotFound
	}
	if err != nil {
		log.Error("failed to update module",
			slog.String("error", redact.Error(err)),
			slog.String("module_id", module.ID.String()))
		return MapError(err)
	}
	module.UpdatedAt = updatedAt.UTC()

	log.Info("module updated successfully",
		slog.String("module_id", module.ID.String()),
		slog.Int("order_index", module.OrderIndex))
	return nil
}

// Delete implements store.ModuleStore.Delete
func (s *PostgresModuleStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete module",
			slog.String("error", redact.Error(err)),
			slog.String("module_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrModuleNotFound); err != nil {
		log.Debug("module not found for delete", slog.String("module_id", id.String()))
		return err
	}

	log.Info("module deleted successfully", slog.String("module_id", id.String()))
	return nil
}

// NextOrderIndex implements store.ModuleStore.NextOrderIndex
func (s *PostgresModuleStore) NextOrderIndex(ctx context.Context, learningPathID uuid.UUID) (int, error) {
	next, err := nextOrderIndex(ctx, s.db, moduleSiblings, learningPathID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to compute next module order index",
			slog.String("error", redact.Error(err)),
			slog.String("learning_path_id", learningPathID.String()))
		return 0, err
	}
	return next, nil
}

// Reorder implements store.ModuleStore.Reorder
func (s *PostgresModuleStore) Reorder(ctx context.Context, learningPathID uuid.UUID, orderedIDs []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	return reorderSiblings(ctx, s.db, log, moduleSiblings, learningPathID, orderedIDs)
}

func scanModule(row rowScanner) (*domain.Module, error) {
	var (
		module      domain.Module
		description sql.NullString
		duration    sql.NullInt64
		prereqs     []byte
		objectives  sql.NullString
	)

	err := row.Scan(
		&module.ID,
		&module.LearningPathID,
		&module.Name,
		&description,
		&module.OrderIndex,
		&duration,
		&prereqs,
		&objectives,
		&module.CreatedAt,
		&module.UpdatedAt,
		&module.LearningResourceCount,
	)
	if err != nil {
		return nil, err
	}

	attrs, err := decodeAttributes(prereqs)
	if err != nil {
		return nil, err
	}

	module.Description = stringPtr(description)
	module.DurationDays = intPtr(duration)
	module.Prerequisites = attrs
	module.LearningObjectives = stringPtr(objectives)
	module.CreatedAt = module.CreatedAt.UTC()
	module.UpdatedAt = module.UpdatedAt.UTC()
	return &module, nil
}
