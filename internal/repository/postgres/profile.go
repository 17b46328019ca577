package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/privacypulse/pulse-server/internal/model"
)

var _ model.ProfileStore = (*ProfileRepository)(nil)

type ProfileRepository struct {
	db *Connection
}

func NewProfileRepository(db *Connection) *ProfileRepository {
	return &ProfileRepository{
		db: db,
	}
}

func (r *ProfileRepository) Create(ctx context.Context, profile model.Profile) (model.Profile, error) {
	query := `INSERT INTO profiles (account_id, handle, display_name)
			  VALUES ($1, $2, $3)
			  RETURNING account_id, handle, display_name, created_at`

	var saved model.Profile
	err := r.db.QueryRow(ctx, query, profile.AccountID, profile.Handle, profile.DisplayName).Scan(
		&saved.AccountID, &saved.Handle, &saved.DisplayName, &saved.CreatedAt,
	)
	if err != nil {
		return model.Profile{}, mapError("failed to create profile", err)
	}

	return saved, nil
}

func (r *ProfileRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (model.Profile, error) {
	var profile model.Profile
	query := `SELECT account_id, handle, display_name, created_at
			  FROM profiles WHERE account_id = $1`

	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&profile.AccountID, &profile.Handle, &profile.DisplayName, &profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, model.ErrNotFound
		}
		return model.Profile{}, mapError("failed to get profile by account id", err)
	}

	return profile, nil
}

func (r *ProfileRepository) ResolveHandle(ctx context.Context, accountID uuid.UUID) (string, error) {
	var handle string
	query := `SELECT handle FROM profiles WHERE account_id = $1`

	err := r.db.QueryRow(ctx, query, accountID).Scan(&handle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", model.ErrNotFound
		}
		return "", mapError("failed to resolve handle", err)
	}

	return handle, nil
}

// Search matches the normalized query as a substring of the stored handle,
// filtered and paginated server-side. position() avoids LIKE wildcard
// escaping for user-supplied input.
func (r *ProfileRepository) Search(ctx context.Context, params model.SearchParams) ([]model.Profile, error) {
	query := `SELECT account_id, handle, display_name, created_at
			  FROM profiles
			  WHERE position($1 in lower(handle)) > 0 AND account_id <> $2
			  ORDER BY lower(handle)
			  LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query, params.Query, params.ExcludeAccountID, params.Limit, params.Offset)
	if err != nil {
		return nil, mapError("failed to search profiles", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var profile model.Profile
		err := rows.Scan(&profile.AccountID, &profile.Handle, &profile.DisplayName, &profile.CreatedAt)
		if err != nil {
			return nil, mapError("failed to scan profile", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError("failed to search profiles", err)
	}

	return profiles, nil
}
