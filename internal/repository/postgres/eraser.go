package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/privacypulse/pulse-server/internal/model"
)

var _ model.AccountEraser = (*EraseRepository)(nil)

type EraseRepository struct {
	db *Connection
}

func NewEraseRepository(db *Connection) *EraseRepository {
	return &EraseRepository{
		db: db,
	}
}

// EraseAccount deletes all view events referencing the account in either
// role and then its profile, in one transaction. Either everything is gone
// or nothing is; a failure leaves no partial visible effect.
func (r *EraseRepository) EraseAccount(ctx context.Context, accountID uuid.UUID) (model.EraseResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.EraseResult{}, mapError("failed to begin erase transaction", err)
	}
	defer tx.Rollback(ctx)

	var result model.EraseResult

	cmd, err := tx.Exec(ctx, `DELETE FROM view_events
							  WHERE actor_account_id = $1 OR subject_account_id = $1`, accountID)
	if err != nil {
		return model.EraseResult{}, mapError("failed to erase view events", err)
	}
	result.EventsDeleted = cmd.RowsAffected()

	cmd, err = tx.Exec(ctx, `DELETE FROM profiles WHERE account_id = $1`, accountID)
	if err != nil {
		return model.EraseResult{}, mapError("failed to erase profile", err)
	}
	result.ProfileDeleted = cmd.RowsAffected() > 0

	if err := tx.Commit(ctx); err != nil {
		return model.EraseResult{}, mapError("failed to commit erase transaction", err)
	}

	return result, nil
}
