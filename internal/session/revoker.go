package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/privacypulse/pulse-server/internal/model"
)

// Store is the flag storage behind the revoker; implemented by the redis
// client in production.
type Store interface {
	Set(ctx context.Context, key, value string) error
	Exists(ctx context.Context, key string) (bool, error)
}

var _ model.SessionRevoker = (*Revoker)(nil)

// Revoker marks erased accounts so their live sessions die on the next
// request. Marks have no expiry; erasure is irreversible.
type Revoker struct {
	store Store
}

func NewRevoker(store Store) *Revoker {
	return &Revoker{store: store}
}

func key(accountID uuid.UUID) string {
	return "session:revoked:" + accountID.String()
}

func (r *Revoker) Revoke(ctx context.Context, accountID uuid.UUID) error {
	if err := r.store.Set(ctx, key(accountID), "1"); err != nil {
		return fmt.Errorf("failed to set revocation mark: %w", err)
	}
	return nil
}

func (r *Revoker) IsRevoked(ctx context.Context, accountID uuid.UUID) (bool, error) {
	revoked, err := r.store.Exists(ctx, key(accountID))
	if err != nil {
		return false, fmt.Errorf("failed to check revocation mark: %w", err)
	}
	return revoked, nil
}
