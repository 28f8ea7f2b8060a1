package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
	"github.com/phrazzld/learnpath/internal/platform/logger"
)

// AddResource implements LearningService.AddResource
func (s *learningServiceImpl) AddResource(
	ctx context.Context,
	moduleID uuid.UUID,
	title string,
	orderIndex *int,
	opts domain.LearningResourceOptions,
) (*domain.LearningResource, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("module_id", moduleID.String()))

	var resource *domain.LearningResource
	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		if _, err := st.Modules.GetByID(ctx, moduleID); err != nil {
			return err
		}

		index, err := resolveOrderIndex(ctx, orderIndex, moduleID, st.Resources.NextOrderIndex)
		if err != nil {
			return err
		}

		resource, err = domain.NewLearningResource(moduleID, index, title, opts)
		if err != nil {
			return rejectInvalid("add_resource", "invalid learning resource", err)
		}
		return st.Resources.Create(ctx, resource)
	})
	if err != nil {
		return nil, s.fail(log, "add_resource", "failed to add learning resource", err)
	}

	log.Info("learning resource added",
		slog.String("learning_resource_id", resource.ID.String()),
		slog.Int("order_index", resource.OrderIndex))
	return resource, nil
}

// GetResource implements LearningService.GetResource
func (s *learningServiceImpl) GetResource(ctx context.Context, id uuid.UUID) (*domain.LearningResource, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	resource, err := s.stores.Resources.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(log, "get_resource", "failed to retrieve learning resource", err,
			slog.String("learning_resource_id", id.String()))
	}
	return resource, nil
}

// UpdateResource implements LearningService.UpdateResource
func (s *learningServiceImpl) UpdateResource(
	ctx context.Context,
	id uuid.UUID,
	update domain.LearningResourceUpdate,
) (*domain.LearningResource, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("learning_resource_id", id.String()))

	var resource *domain.LearningResource
	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		var err error
		resource, err = st.Resources.GetByID(ctx, id)
		if err != nil || update.IsEmpty() {
			return err
		}

		if err := resource.UpdateLearningResource(update); err != nil {
			return rejectInvalid("update_resource", "invalid learning resource update", err)
		}
		return st.Resources.Update(ctx, resource)
	})
	if err != nil {
		return nil, s.fail(log, "update_resource", "failed to update learning resource", err)
	}
	return resource, nil
}

// ListResources implements LearningService.ListResources
func (s *learningServiceImpl) ListResources(
	ctx context.Context,
	moduleID uuid.UUID,
) ([]*domain.LearningResource, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	resources, err := s.stores.Resources.ListByModule(ctx, moduleID)
	if err != nil {
		return nil, s.fail(log, "list_resources", "failed to list learning resources", err,
			slog.String("module_id", moduleID.String()))
	}
	return resources, nil
}

// ReorderResources implements LearningService.ReorderResources
func (s *learningServiceImpl) ReorderResources(
	ctx context.Context,
	moduleID uuid.UUID,
	orderedIDs []uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		return st.Resources.Reorder(ctx, moduleID, orderedIDs)
	})
	if err != nil {
		return s.fail(log, "reorder_resources", "failed to reorder learning resources", err,
			slog.String("module_id", moduleID.String()))
	}

	log.Info("learning resources reordered",
		slog.String("module_id", moduleID.String()),
		slog.Int("count", len(orderedIDs)))
	return nil
}

// DeleteResource implements LearningService.DeleteResource
func (s *learningServiceImpl) DeleteResource(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		return st.Resources.Delete(ctx, id)
	})
	if err != nil {
		return s.fail(log, "delete_resource", "failed to delete learning resource", err,
			slog.String("learning_resource_id", id.String()))
	}

	log.Info("learning resource deleted", slog.String("learning_resource_id", id.String()))
	return nil
}
