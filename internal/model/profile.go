package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProfileStore defines persistence operations for profiles.
type ProfileStore interface {
	Create(ctx context.Context, profile Profile) (Profile, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (Profile, error)
	ResolveHandle(ctx context.Context, accountID uuid.UUID) (string, error)
	Search(ctx context.Context, params SearchParams) ([]Profile, error)
}

// Profile links an account to its unique public handle.
type Profile struct {
	AccountID   uuid.UUID
	Handle      string
	DisplayName string
	CreatedAt   time.Time
}

// SearchParams describes a directory search. Query is matched as a
// case-insensitive substring of the normalized handle; ExcludeAccountID is
// always removed from the result so an account cannot discover itself.
type SearchParams struct {
	Query            string
	ExcludeAccountID uuid.UUID
	Limit            int
	Offset           int
}

// SearchMaxLimit caps a single directory search page.
const SearchMaxLimit = 25
