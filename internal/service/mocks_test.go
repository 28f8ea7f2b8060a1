package service_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
	"github.com/phrazzld/learnpath/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockLearningPathStore mocks the store.LearningPathStore interface
type MockLearningPathStore struct {
	mock.Mock
}

func (m *MockLearningPathStore) Create(ctx context.Context, path *domain.LearningPath) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockLearningPathStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LearningPath), args.Error(1)
}

func (m *MockLearningPathStore) List(
	ctx context.Context,
	opts store.LearningPathListOptions,
) ([]*domain.LearningPath, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LearningPath), args.Error(1)
}

func (m *MockLearningPathStore) Update(ctx context.Context, path *domain.LearningPath) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockLearningPathStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLearningPathStore) WithTx(_ *sql.Tx) store.LearningPathStore {
	return m
}

// MockModuleStore mocks the store.ModuleStore interface
type MockModuleStore struct {
	mock.Mock
}

func (m *MockModuleStore) Create(ctx context.Context, module *domain.Module) error {
	return m.Called(ctx, module).Error(0)
}

func (m *MockModuleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Module, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Module), args.Error(1)
}

func (m *MockModuleStore) ListByLearningPath(ctx context.Context, learningPathID uuid.UUID) ([]*domain.Module, error) {
	args := m.Called(ctx, learningPathID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Module), args.Error(1)
}

func (m *MockModuleStore) Update(ctx context.Context, module *domain.Module) error {
	return m.Called(ctx, module).Error(0)
}

func (m *MockModuleStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockModuleStore) NextOrderIndex(ctx context.Context, learningPathID uuid.UUID) (int, error) {
	args := m.Called(ctx, learningPathID)
	return args.Int(0), args.Error(1)
}

func (m *MockModuleStore) Reorder(ctx context.Context, learningPathID uuid.UUID, orderedIDs []uuid.UUID) error {
	return m.Called(ctx, learningPathID, orderedIDs).Error(0)
}

func (m *MockModuleStore) WithTx(_ *sql.Tx) store.ModuleStore {
	return m
}

// MockLearningResourceStore mocks the store.LearningResourceStore interface
type MockLearningResourceStore struct {
	mock.Mock
}

func (m *MockLearningResourceStore) Create(ctx context.Context, resource *domain.LearningResource) error {
	return m.Called(ctx, resource).Error(0)
}

func (m *MockLearningResourceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningResource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LearningResource), args.Error(1)
}

func (m *MockLearningResourceStore) ListByModule(
	ctx context.Context,
	moduleID uuid.UUID,
) ([]*domain.LearningResource, error) {
	args := m.Called(ctx, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LearningResource), args.Error(1)
}

func (m *MockLearningResourceStore) Update(ctx context.Context, resource *domain.LearningResource) error {
	return m.Called(ctx, resource).Error(0)
}

func (m *MockLearningResourceStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLearningResourceStore) NextOrderIndex(ctx context.Context, moduleID uuid.UUID) (int, error) {
	args := m.Called(ctx, moduleID)
	return args.Int(0), args.Error(1)
}

func (m *MockLearningResourceStore) Reorder(ctx context.Context, moduleID uuid.UUID, orderedIDs []uuid.UUID) error {
	return m.Called(ctx, moduleID, orderedIDs).Error(0)
}

func (m *MockLearningResourceStore) WithTx(_ *sql.Tx) store.LearningResourceStore {
	return m
}

// MockScheduleStore mocks the store.ScheduleStore interface
type MockScheduleStore struct {
	mock.Mock
}

func (m *MockScheduleStore) Create(ctx context.Context, schedule *domain.Schedule) error {
	return m.Called(ctx, schedule).Error(0)
}

func (m *MockScheduleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockScheduleStore) ListByLearningResource(
	ctx context.Context,
	learningResourceID uuid.UUID,
) ([]*domain.Schedule, error) {
	args := m.Called(ctx, learningResourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Schedule), args.Error(1)
}

func (m *MockScheduleStore) ListDueOn(ctx context.Context, date time.Time) ([]*domain.Schedule, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Schedule), args.Error(1)
}

func (m *MockScheduleStore) ListOverdue(ctx context.Context, today time.Time) ([]*domain.Schedule, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Schedule), args.Error(1)
}

func (m *MockScheduleStore) Update(ctx context.Context, schedule *domain.Schedule) error {
	return m.Called(ctx, schedule).Error(0)
}

func (m *MockScheduleStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockScheduleStore) WithTx(_ *sql.Tx) store.ScheduleStore {
	return m
}

// fixedClock always reports the same instant.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}
