package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/redact"
	"github.com/phrazzld/learnpath/internal/store"
)

// siblingTable describes an ordered child table whose order_index is unique
// per parent through a deferrable constraint.
type siblingTable struct {
	table        string
	parentColumn string
	constraint   string
}

var (
	moduleSiblings = siblingTable{
		table:        "modules",
		parentColumn: "learning_path_id",
		constraint:   constraintModulePathOrder,
	}
	resourceSiblings = siblingTable{
		table:        "learning_resources",
		parentColumn: "module_id",
		constraint:   constraintResourceModuleOrder,
	}
)

// nextOrderIndex returns one past the highest order index under parentID.
func nextOrderIndex(ctx context.Context, db store.DBTX, t siblingTable, parentID uuid.UUID) (int, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(MAX(order_index) + 1, 0) FROM %s WHERE %s = $1`,
		t.table, t.parentColumn,
	)

	var next int
	if err := db.QueryRowContext(ctx, query, parentID).Scan(&next); err != nil {
		return 0, MapError(err)
	}
	return next, nil
}

// reorderSiblings assigns order indexes 0..n-1 following orderedIDs.
//
// The sibling rows are locked first, the uniqueness constraint is deferred
// while rows swap positions, and it is switched back to IMMEDIATE before
// returning so a violation surfaces here rather than at commit.
func reorderSiblings(
	ctx context.Context,
	db store.DBTX,
	log *slog.Logger,
	t siblingTable,
	parentID uuid.UUID,
	orderedIDs []uuid.UUID,
) error {
	lockQuery := fmt.Sprintf(
		`SELECT id FROM %s WHERE %s = $1 ORDER BY order_index FOR UPDATE`,
		t.table, t.parentColumn,
	)
	rows, err := db.QueryContext(ctx, lockQuery, parentID)
	if err != nil {
		log.Error("failed to lock siblings for reorder",
			slog.String("error", redact.Error(err)),
			slog.String("table", t.table))
		return MapError(err)
	}

	var existing []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return MapError(err)
		}
		existing = append(existing, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return MapError(err)
	}
	if err := rows.Close(); err != nil {
		return MapError(err)
	}

	if err := checkPermutation(existing, orderedIDs); err != nil {
		log.Warn("rejected reorder request",
			slog.String("table", t.table),
			slog.String("parent_id", parentID.String()),
			slog.String("error", err.Error()))
		return err
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(`SET CONSTRAINTS %s DEFERRED`, t.constraint)); err != nil {
		return MapError(err)
	}

	updateQuery := fmt.Sprintf(
		`UPDATE %s SET order_index = $1, updated_at = NOW() WHERE id = $2 AND %s = $3`,
		t.table, t.parentColumn,
	)
	for i, id := range orderedIDs {
		if _, err := db.ExecContext(ctx, updateQuery, i, id, parentID); err != nil {
			log.Error("failed to move sibling",
				slog.String("error", redact.Error(err)),
				slog.String("table", t.table),
				slog.String("id", id.String()))
			return MapError(err)
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(`SET CONSTRAINTS %s IMMEDIATE`, t.constraint)); err != nil {
		log.Error("order constraint violated after reorder",
			slog.String("error", redact.Error(err)),
			slog.String("table", t.table))
		return MapError(err)
	}

	log.Info("siblings reordered",
		slog.String("table", t.table),
		slog.String("parent_id", parentID.String()),
		slog.Int("count", len(orderedIDs)))
	return nil
}

// checkPermutation verifies that ordered lists every id of existing exactly once.
func checkPermutation(existing, ordered []uuid.UUID) error {
	if len(existing) != len(ordered) {
		return fmt.Errorf("%w: reorder lists %d items but the parent has %d",
			store.ErrInvalidEntity, len(ordered), len(existing))
	}

	remaining := make(map[uuid.UUID]struct{}, len(existing))
	for _, id := range existing {
		remaining[id] = struct{}{}
	}
	for _, id := range ordered {
		if _, ok := remaining[id]; !ok {
			return fmt.Errorf("%w: %s is not a child of the parent or is listed twice",
				store.ErrInvalidEntity, id)
		}
		delete(remaining, id)
	}
	return nil
}
