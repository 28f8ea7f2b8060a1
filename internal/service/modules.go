package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
	"github.com/phrazzld/learnpath/internal/platform/logger"
)

// AddModule implements LearningService.AddModule
func (s *learningServiceImpl) AddModule(
	ctx context.Context,
	learningPathID uuid.UUID,
	name string,
	orderIndex *int,
	opts domain.ModuleOptions,
) (*domain.Module, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learning_path_id", learningPathID.String()))

	var module *domain.Module
	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		if _, err := st.Paths.GetByID(ctx, learningPathID); err != nil {
			return err
		}

		index, err := resolveOrderIndex(ctx, orderIndex, learningPathID, st.Modules.NextOrderIndex)
		if err != nil {
			return err
		}

		module, err = domain.NewModule(name, learningPathID, index, opts)
		if err != nil {
			return rejectInvalid("add_module", "invalid module", err)
		}
		return st.Modules.Create(ctx, module)
	})
	if err != nil {
		return nil, s.fail(log, "add_module", "failed to add module", err)
	}

	log.Info("module added",
		slog.String("module_id", module.ID.String()),
		slog.Int("order_index", module.OrderIndex))
	return module, nil
}

// GetModule implements LearningService.GetModule
func (s *learningServiceImpl) GetModule(ctx context.Context, id uuid.UUID) (*domain.Module, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	module, err := s.stores.Modules.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(log, "get_module", "failed to retrieve module", err,
			slog.String("module_id", id.String()))
	}
	return module, nil
}

// UpdateModule implements LearningService.UpdateModule
func (s *learningServiceImpl) UpdateModule(
	ctx context.Context,
	id uuid.UUID,
	update domain.ModuleUpdate,
) (*domain.Module, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("module_id", id.String()))

	var module *domain.Module
	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		var err error
		module, err = st.Modules.GetByID(ctx, id)
		if err != nil || update.IsEmpty() {
			return err
		}

		if err := module.UpdateInfo(update); err != nil {
			return rejectInvalid("update_module", "invalid module update", err)
		}
		return st.Modules.Update(ctx, module)
	})
	if err != nil {
		return nil, s.fail(log, "update_module", "failed to update module", err)
	}
	return module, nil
}

// ListModules implements LearningService.ListModules
func (s *learningServiceImpl) ListModules(ctx context.Context, learningPathID uuid.UUID) ([]*domain.Module, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	modules, err := s.stores.Modules.ListByLearningPath(ctx, learningPathID)
	if err != nil {
		return nil, s.fail(log, "list_modules", "failed to list modules", err,
			slog.String("learning_path_id", learningPathID.String()))
	}
	return modules, nil
}

// ReorderModules implements LearningService.ReorderModules
func (s *learningServiceImpl) ReorderModules(
	ctx context.Context,
	learningPathID uuid.UUID,
	orderedIDs []uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		return st.Modules.Reorder(ctx, learningPathID, orderedIDs)
	})
	if err != nil {
		return s.fail(log, "reorder_modules", "failed to reorder modules", err,
			slog.String("learning_path_id", learningPathID.String()))
	}

	log.Info("modules reordered",
		slog.String("learning_path_id", learningPathID.String()),
		slog.Int("count", len(orderedIDs)))
	return nil
}

// DeleteModule implements LearningService.DeleteModule
func (s *learningServiceImpl) DeleteModule(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		return st.Modules.Delete(ctx, id)
	})
	if err != nil {
		return s.fail(log, "delete_module", "failed to delete module", err,
			slog.String("module_id", id.String()))
	}

	log.Info("module deleted", slog.String("module_id", id.String()))
	return nil
}

// resolveOrderIndex returns *requested, or the next free index under parentID.
func resolveOrderIndex(
	ctx context.Context,
	requested *int,
	parentID uuid.UUID,
	next func(ctx context.Context, parentID uuid.UUID) (int, error),
) (int, error) {
	if requested != nil {
		return *requested, nil
	}
	return next(ctx, parentID)
}
