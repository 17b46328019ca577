package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/privacypulse/pulse-server/internal/model"
)

// Constraint names from database/migrations; unique violations on them map
// to caller-input errors instead of opaque store failures.
const (
	profilePKConstraint     = "profiles_pkey"
	profileHandleConstraint = "profiles_handle_lower_key"
	selfViewConstraint      = "view_events_no_self_view"
)

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == profileHandleConstraint:
			return fmt.Errorf("%s: %w", op, model.ErrHandleTaken)
		case pgErr.Code == "23505" && pgErr.ConstraintName == profilePKConstraint:
			return fmt.Errorf("%s: %w", op, model.ErrAccountAlreadyLinked)
		case pgErr.Code == "23514" && pgErr.ConstraintName == selfViewConstraint:
			return fmt.Errorf("%s: %w", op, model.ErrSelfView)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	// anything that is not a protocol-level error is treated as the store
	// being unreachable; the caller decides whether a retry is safe
	return fmt.Errorf("%s: %w", op, errors.Join(model.ErrStoreUnavailable, err))
}
