package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
	"github.com/phrazzld/learnpath/internal/platform/logger"
	"github.com/phrazzld/learnpath/internal/platform/postgres"
	"github.com/phrazzld/learnpath/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func ptr[T any](v T) *T { return &v }

var scheduleCols = []string{
	"id", "learning_resource_id", "scheduled_date", "delivered", "delivered_at",
	"notification_sent", "notification_sent_at", "reschedule_count",
	"original_scheduled_date", "created_at", "updated_at",
}

func TestLearningPathStore_GetByIDPopulatesCounts(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLearningPathStore(db, nil)

	id := uuid.New()
	created := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "goal", "estimated_duration_days",
		"is_active", "created_at", "updated_at",
		"module_count", "total_resources", "completed_resources",
	}).AddRow(id.String(), "ML", "desc", nil, int64(30), true, created, created, int64(3), int64(8), int64(2))

	mock.ExpectQuery(`FROM learning_paths p\s+WHERE p.id = \$1`).
		WithArgs(id).
		WillReturnRows(rows)

	path, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, path.ID)
	assert.Equal(t, "desc", *path.Description)
	assert.Nil(t, path.Goal)
	assert.Equal(t, 30, *path.EstimatedDurationDays)
	assert.Equal(t, 3, path.ModuleCount)
	assert.Equal(t, 8, path.TotalResources)
	assert.Equal(t, 2, path.CompletedResources)
	assert.Equal(t, 25.0, path.PercentComplete())
}

func TestLearningPathStore_GetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLearningPathStore(db, nil)

	mock.ExpectQuery(`FROM learning_paths p`).WillReturnError(sql.ErrNoRows)

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrLearningPathNotFound)
}

func TestLearningPathStore_CreateRejectsInvalidWithoutQuery(t *testing.T) {
	db, _ := newMock(t)
	s := postgres.NewPostgresLearningPathStore(db, nil)

	path, err := domain.NewLearningPath("Valid", domain.LearningPathOptions{})
	require.NoError(t, err)
	path.Name = "  "

	err = s.Create(context.Background(), path)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrLearningPathNameEmpty)
	assert.True(t, store.IsConstraintError(err))
}

func TestLearningPathStore_CreateUsesServerTimestamps(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLearningPathStore(db, nil)

	path, err := domain.NewLearningPath("Go", domain.LearningPathOptions{})
	require.NoError(t, err)

	serverTime := time.Date(2026, time.October, 19, 11, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	mock.ExpectQuery(`VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, NOW\(\), NOW\(\)\)\s+RETURNING created_at, updated_at`).
		WithArgs(path.ID, "Go", nil, nil, nil, true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(serverTime, serverTime))

	require.NoError(t, s.Create(context.Background(), path))
	assert.True(t, path.CreatedAt.Equal(serverTime))
	assert.True(t, path.UpdatedAt.Equal(serverTime))
	assert.Equal(t, time.UTC, path.CreatedAt.Location())
}

func TestLearningPathStore_UpdateUsesServerTimestamp(t *testing.T) {
	path, err := domain.NewLearningPath("Go", domain.LearningPathOptions{})
	require.NoError(t, err)

	t.Run("adopts updated_at", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresLearningPathStore(db, nil)

		serverTime := time.Date(2026, time.October, 20, 6, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`updated_at = NOW\(\)\s+WHERE id = \$6\s+RETURNING updated_at`).
			WithArgs("Go", nil, nil, nil, true, path.ID).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(serverTime))

		require.NoError(t, s.Update(context.Background(), path))
		assert.True(t, path.UpdatedAt.Equal(serverTime))
	})

	t.Run("missing row is not found", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresLearningPathStore(db, nil)

		mock.ExpectQuery(`UPDATE learning_paths`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		err := s.Update(context.Background(), path)
		assert.ErrorIs(t, err, store.ErrLearningPathNotFound)
	})
}

func TestScheduleStore_UpdateMissingRow(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresScheduleStore(db, nil)

	sched, err := domain.NewSchedule(uuid.New(), time.Now())
	require.NoError(t, err)

	mock.ExpectQuery(`UPDATE schedules`).WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err = s.Update(context.Background(), sched)
	assert.ErrorIs(t, err, store.ErrScheduleNotFound)
}

func TestLearningPathStore_ListDefaultsPagination(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLearningPathStore(db, nil)

	mock.ExpectQuery(`ORDER BY p.created_at DESC`).
		WithArgs(true, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	paths, err := s.List(context.Background(), store.LearningPathListOptions{ActiveOnly: true, Offset: -4})
	require.NoError(t, err)
	assert.NotNil(t, paths)
	assert.Empty(t, paths)
}

func TestLearningPathStore_DeleteNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLearningPathStore(db, nil)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM learning_paths WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrLearningPathNotFound)
}

func TestModuleStore_CreateDuplicateOrderIndex(t *testing.T) {
	db, mock := newMock(t)
	ctx, logBuf := logger.NewTestContext(t)
	s := postgres.NewPostgresModuleStore(db, nil)

	module, err := domain.NewModule("Trees", uuid.New(), 0, domain.ModuleOptions{
		Prerequisites: domain.Attributes{"requires": []any{"Linear Models"}},
	})
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO modules`).
		WithArgs(module.ID, module.LearningPathID, "Trees", nil, 0, nil,
			[]byte(`{"requires":["Linear Models"]}`), nil).
		WillReturnError(newPgError("23505", "uq_modules_path_order"))

	err = s.Create(ctx, module)
	assert.ErrorIs(t, err, store.ErrDuplicateOrderIndex)
	logger.AssertLogContains(t, logBuf, "failed to create module")
	logger.AssertLogNotContains(t, logBuf, "nbtinsert")
}

func TestModuleStore_NextOrderIndex(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresModuleStore(db, nil)
	pathID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(order_index) + 1, 0) FROM modules WHERE learning_path_id = $1`)).
		WithArgs(pathID).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(int64(4)))

	next, err := s.NextOrderIndex(context.Background(), pathID)
	require.NoError(t, err)
	assert.Equal(t, 4, next)
}

func TestModuleStore_Reorder(t *testing.T) {
	pathID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	lockRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id"}).AddRow(a.String()).AddRow(b.String()).AddRow(c.String())
	}

	t.Run("assigns indexes in the given order", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresModuleStore(db, nil)

		mock.ExpectQuery(`SELECT id FROM modules WHERE learning_path_id = \$1 ORDER BY order_index FOR UPDATE`).
			WithArgs(pathID).
			WillReturnRows(lockRows())
		mock.ExpectExec(`SET CONSTRAINTS uq_modules_path_order DEFERRED`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		for i, id := range []uuid.UUID{c, a, b} {
			mock.ExpectExec(`UPDATE modules SET order_index = \$1`).
				WithArgs(i, id, pathID).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectExec(`SET CONSTRAINTS uq_modules_path_order IMMEDIATE`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, s.Reorder(context.Background(), pathID, []uuid.UUID{c, a, b}))
	})

	t.Run("rejects incomplete permutation", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresModuleStore(db, nil)

		mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(lockRows())

		err := s.Reorder(context.Background(), pathID, []uuid.UUID{a, b})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("rejects repeated id", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresModuleStore(db, nil)

		mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(lockRows())

		err := s.Reorder(context.Background(), pathID, []uuid.UUID{a, a, b})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("surfaces deferred violation", func(t *testing.T) {
		db, mock := newMock(t)
		s := postgres.NewPostgresModuleStore(db, nil)

		mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(lockRows())
		mock.ExpectExec(`DEFERRED`).WillReturnResult(sqlmock.NewResult(0, 0))
		for i := 0; i < 3; i++ {
			mock.ExpectExec(`UPDATE modules`).WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectExec(`IMMEDIATE`).WillReturnError(newPgError("23505", "uq_modules_path_order"))

		err := s.Reorder(context.Background(), pathID, []uuid.UUID{b, c, a})
		assert.ErrorIs(t, err, store.ErrDuplicateOrderIndex)
	})
}

func TestLearningResourceStore_RoundTripsStructuredColumns(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLearningResourceStore(db, nil)

	id, moduleID := uuid.New(), uuid.New()
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "module_id", "title", "order_index", "resource_type", "url", "file_path",
		"content", "summary", "key_concepts", "difficulty", "estimated_time_mins",
		"source_metadata", "created_at", "updated_at",
	}).AddRow(
		id.String(), moduleID.String(), "Attention", int64(2), "paper", "https://arxiv.org/abs/1706.03762",
		nil, nil, nil, []byte(`["attention","transformer"]`), "advanced", int64(45),
		[]byte(`{"year":2017,"authors":["Vaswani"]}`), now, now,
	)
	mock.ExpectQuery(`FROM learning_resources WHERE id = \$1`).WithArgs(id).WillReturnRows(rows)

	r, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, moduleID, r.ModuleID)
	assert.Equal(t, 2, r.OrderIndex)
	assert.Equal(t, domain.ResourceTypePaper, *r.ResourceType)
	assert.Equal(t, domain.DifficultyAdvanced, *r.Difficulty)
	assert.Equal(t, 45, *r.EstimatedTimeMins)
	assert.Nil(t, r.FilePath)
	assert.Equal(t, []string{"attention", "transformer"}, r.KeyConcepts)
	assert.Equal(t, domain.Attributes{"year": float64(2017), "authors": []any{"Vaswani"}}, r.SourceMetadata)
}

func TestLearningResourceStore_CreateMissingModule(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresLearningResourceStore(db, nil)

	r, err := domain.NewLearningResource(uuid.New(), 0, "Orphan", domain.LearningResourceOptions{
		ResourceType: ptr(domain.ResourceTypeArticle),
	})
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO learning_resources`).
		WillReturnError(newPgError("23503", "learning_resources_module_id_fkey"))

	err = s.Create(context.Background(), r)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NotErrorIs(t, err, store.ErrDuplicate)
}

func TestScheduleStore_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresScheduleStore(db, nil)

	sched, err := domain.NewSchedule(uuid.New(), time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO schedules`).
		WithArgs(sched.ID, sched.LearningResourceID, sched.ScheduledDate, false, nil, false, nil, 0, nil).
		WillReturnError(newPgError("23505", "uq_schedules_resource_date"))

	err = s.Create(context.Background(), sched)
	assert.ErrorIs(t, err, store.ErrDuplicateSchedule)
	assert.True(t, store.IsDuplicateError(err))
}

func TestScheduleStore_GetByIDNormalizesDates(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresScheduleStore(db, nil)

	id, resourceID := uuid.New(), uuid.New()
	delivered := time.Date(2026, time.October, 19, 8, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	rows := sqlmock.NewRows(scheduleCols).AddRow(
		id.String(), resourceID.String(), time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC),
		true, delivered, false, nil, int64(1),
		time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC), delivered, delivered,
	)
	mock.ExpectQuery(`FROM schedules WHERE id = \$1`).WithArgs(id).WillReturnRows(rows)

	sched, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), sched.ScheduledDate)
	require.NotNil(t, sched.DeliveredAt)
	assert.Equal(t, time.UTC, sched.DeliveredAt.Location())
	assert.True(t, sched.DeliveredAt.Equal(delivered))
	assert.Nil(t, sched.NotificationSentAt)
	require.NotNil(t, sched.OriginalScheduledDate)
	assert.Equal(t, "2026-10-17", sched.OriginalScheduledDate.Format(domain.DateLayout))
}

func TestScheduleStore_ListOverdueUsesCalendarDate(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresScheduleStore(db, nil)

	lateEvening := time.Date(2026, time.October, 19, 22, 45, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE NOT delivered AND scheduled_date < \$1`).
		WithArgs(time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows(scheduleCols))

	schedules, err := s.ListOverdue(context.Background(), lateEvening)
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestScheduleStore_UpdatePropagatesQueryError(t *testing.T) {
	db, mock := newMock(t)
	s := postgres.NewPostgresScheduleStore(db, nil)

	sched, err := domain.NewSchedule(uuid.New(), time.Now())
	require.NoError(t, err)

	boom := errors.New("connection reset by peer")
	mock.ExpectQuery(`UPDATE schedules`).WillReturnError(boom)

	err = s.Update(context.Background(), sched)
	assert.ErrorIs(t, err, boom)
	assert.False(t, store.IsConstraintError(err))
}

func TestStoresWithTx(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM schedules WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	schedules := postgres.NewPostgresScheduleStore(db, nil).WithTx(tx)
	require.NoError(t, schedules.Delete(context.Background(), uuid.New()))
	require.NoError(t, tx.Rollback())
}

func TestNewStorePanicsOnNilDB(t *testing.T) {
	assert.Panics(t, func() { postgres.NewPostgresLearningPathStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresModuleStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresLearningResourceStore(nil, nil) })
	assert.Panics(t, func() { postgres.NewPostgresScheduleStore(nil, nil) })
}
