package model

import (
	"context"

	"github.com/google/uuid"
)

// TokenManager issues and validates session access tokens. Credential
// issuance itself is the identity provider's job; the core only needs a
// stable opaque account identifier out of a presented token.
type TokenManager interface {
	Generate(accountID uuid.UUID) (string, error)
	Parse(tokenString string) (uuid.UUID, error)
}

// SessionRevoker terminates an account's live sessions. Erasure marks the
// account revoked; the API layer rejects any token for a revoked account.
type SessionRevoker interface {
	Revoke(ctx context.Context, accountID uuid.UUID) error
	IsRevoked(ctx context.Context, accountID uuid.UUID) (bool, error)
}
