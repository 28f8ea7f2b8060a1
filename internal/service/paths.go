package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
	"github.com/phrazzld/learnpath/internal/platform/logger"
	"github.com/phrazzld/learnpath/internal/store"
)

// CreatePath implements LearningService.CreatePath
func (s *learningServiceImpl) CreatePath(
	ctx context.Context,
	name string,
	opts domain.LearningPathOptions,
) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	path, err := domain.NewLearningPath(name, opts)
	if err != nil {
		return nil, s.fail(log, "create_path", "invalid learning path",
			rejectInvalid("create_path", "invalid learning path", err))
	}

	err = s.inTx(ctx, func(ctx context.Context, st Stores) error {
		return st.Paths.Create(ctx, path)
	})
	if err != nil {
		return nil, s.fail(log, "create_path", "failed to save learning path", err)
	}

	log.Info("learning path created", slog.String("learning_path_id", path.ID.String()))
	return path, nil
}

// GetPath implements LearningService.GetPath
func (s *learningServiceImpl) GetPath(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	path, err := s.stores.Paths.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(log, "get_path", "failed to retrieve learning path", err,
			slog.String("learning_path_id", id.String()))
	}
	return path, nil
}

// ListPaths implements LearningService.ListPaths
func (s *learningServiceImpl) ListPaths(
	ctx context.Context,
	opts store.LearningPathListOptions,
) ([]*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	paths, err := s.stores.Paths.List(ctx, opts)
	if err != nil {
		return nil, s.fail(log, "list_paths", "failed to list learning paths", err)
	}
	return paths, nil
}

// UpdatePath implements LearningService.UpdatePath
func (s *learningServiceImpl) UpdatePath(
	ctx context.Context,
	id uuid.UUID,
	update domain.LearningPathUpdate,
) (*domain.LearningPath, error) {
	return s.mutatePath(ctx, "update_path", id, func(p *domain.LearningPath) (bool, error) {
		if update.IsEmpty() {
			return false, nil
		}
		return true, p.UpdateInfo(update)
	})
}

// ArchivePath implements LearningService.ArchivePath
func (s *learningServiceImpl) ArchivePath(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error) {
	return s.mutatePath(ctx, "archive_path", id, func(p *domain.LearningPath) (bool, error) {
		p.Archive()
		return true, nil
	})
}

// RestorePath implements LearningService.RestorePath
func (s *learningServiceImpl) RestorePath(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error) {
	return s.mutatePath(ctx, "restore_path", id, func(p *domain.LearningPath) (bool, error) {
		p.Restore()
		return true, nil
	})
}

// DeletePath implements LearningService.DeletePath
func (s *learningServiceImpl) DeletePath(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		return st.Paths.Delete(ctx, id)
	})
	if err != nil {
		return s.fail(log, "delete_path", "failed to delete learning path", err,
			slog.String("learning_path_id", id.String()))
	}

	log.Info("learning path deleted", slog.String("learning_path_id", id.String()))
	return nil
}

// mutatePath loads a path, applies change and saves it in one transaction.
// change reports whether anything needs saving.
func (s *learningServiceImpl) mutatePath(
	ctx context.Context,
	operation string,
	id uuid.UUID,
	change func(p *domain.LearningPath) (bool, error),
) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("learning_path_id", id.String()))

	var path *domain.LearningPath
	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		var err error
		path, err = st.Paths.GetByID(ctx, id)
		if err != nil {
			return err
		}

		dirty, err := change(path)
		if err != nil {
			return rejectInvalid(operation, "invalid learning path update", err)
		}
		if !dirty {
			return nil
		}
		return st.Paths.Update(ctx, path)
	})
	if err != nil {
		return nil, s.fail(log, operation, "failed to save learning path", err)
	}

	log.Debug("learning path saved", slog.String("operation", operation))
	return path, nil
}
