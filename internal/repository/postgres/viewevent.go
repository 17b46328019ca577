package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/privacypulse/pulse-server/internal/model"
)

// NotifyChannel is the postgres NOTIFY channel carrying subject account ids
// of freshly committed view events.
const NotifyChannel = "view_events"

var _ model.ViewEventStore = (*ViewEventRepository)(nil)

type ViewEventRepository struct {
	db *Connection
}

func NewViewEventRepository(db *Connection) *ViewEventRepository {
	return &ViewEventRepository{
		db: db,
	}
}

// Record inserts one view event and raises the NOTIFY in the same
// transaction, so the signal becomes visible no later than the row itself.
// occurred_at is assigned by the store, never by the caller.
func (r *ViewEventRepository) Record(ctx context.Context, actorID, subjectID uuid.UUID) (model.ViewEvent, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.ViewEvent{}, mapError("failed to begin record transaction", err)
	}
	defer tx.Rollback(ctx)

	event := model.ViewEvent{
		ActorID:   actorID,
		SubjectID: subjectID,
	}

	query := `INSERT INTO view_events (actor_account_id, subject_account_id)
			  VALUES ($1, $2)
			  RETURNING id, occurred_at`

	err = tx.QueryRow(ctx, query, actorID, subjectID).Scan(&event.ID, &event.OccurredAt)
	if err != nil {
		return model.ViewEvent{}, mapError("failed to record view event", err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, subjectID.String()); err != nil {
		return model.ViewEvent{}, mapError("failed to notify view event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.ViewEvent{}, mapError("failed to commit view event", err)
	}

	return event, nil
}

func (r *ViewEventRepository) ListRecent(ctx context.Context, subjectID uuid.UUID, limit int) ([]model.ViewEvent, error) {
	query := `SELECT id, actor_account_id, subject_account_id, occurred_at
			  FROM view_events
			  WHERE subject_account_id = $1
			  ORDER BY occurred_at DESC, id DESC
			  LIMIT $2`

	rows, err := r.db.Query(ctx, query, subjectID, limit)
	if err != nil {
		return nil, mapError("failed to list recent view events", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListByAccount returns the full history where the account appears in
// either role, oldest first. Used only for export.
func (r *ViewEventRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]model.ViewEvent, error) {
	query := `SELECT id, actor_account_id, subject_account_id, occurred_at
			  FROM view_events
			  WHERE actor_account_id = $1 OR subject_account_id = $1
			  ORDER BY occurred_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, mapError("failed to list view events by account", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// DeleteByAccount removes every event where the account is actor or
// subject. Used by the erasure reconciliation pass.
func (r *ViewEventRepository) DeleteByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `DELETE FROM view_events
			  WHERE actor_account_id = $1 OR subject_account_id = $1`

	cmd, err := r.db.Exec(ctx, query, accountID)
	if err != nil {
		return 0, mapError("failed to delete view events by account", err)
	}

	return cmd.RowsAffected(), nil
}

func scanEvents(rows pgx.Rows) ([]model.ViewEvent, error) {
	var events []model.ViewEvent
	for rows.Next() {
		var event model.ViewEvent
		err := rows.Scan(&event.ID, &event.ActorID, &event.SubjectID, &event.OccurredAt)
		if err != nil {
			return nil, mapError("failed to scan view event", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError("failed to read view events", err)
	}

	return events, nil
}
