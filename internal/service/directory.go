package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/privacypulse/pulse-server/internal/logger"
	"github.com/privacypulse/pulse-server/internal/model"
)

// Directory is the identity directory: the only mapping between opaque
// account ids and public handles.
type Directory struct {
	profileStore model.ProfileStore
	logger       *logger.Logger
}

func NewDirectory(profileStore model.ProfileStore, logger *logger.Logger) *Directory {
	return &Directory{
		profileStore: profileStore,
		logger:       logger,
	}
}

// NormalizeHandle strips a leading @ and surrounding whitespace. Case is
// preserved for display; uniqueness and search compare lowercased.
func NormalizeHandle(raw string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
}

// Register links a handle to an account. One profile per account; a
// duplicate handle or a second registration fails without a partial row.
func (s *Directory) Register(ctx context.Context, accountID uuid.UUID, handle, displayName string) (model.Profile, error) {
	normalized := NormalizeHandle(handle)
	if normalized == "" {
		return model.Profile{}, model.ErrHandleInvalid
	}
	if displayName == "" {
		displayName = normalized
	}

	profile, err := s.profileStore.Create(ctx, model.Profile{
		AccountID:   accountID,
		Handle:      normalized,
		DisplayName: displayName,
	})
	if err != nil {
		s.logger.Info("Directory service: registration rejected",
			"account_id", accountID,
			"error", err.Error())
		return model.Profile{}, fmt.Errorf("failed to register profile: %w", err)
	}

	s.logger.Info("Directory service: profile registered",
		"account_id", accountID,
		"handle", profile.Handle)

	return profile, nil
}

// Profile returns the account's own profile.
func (s *Directory) Profile(ctx context.Context, accountID uuid.UUID) (model.Profile, error) {
	profile, err := s.profileStore.GetByAccountID(ctx, accountID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// Resolve maps an account id to its handle. A miss is not an error here;
// it means not-yet-registered or erased, and the caller renders a sentinel.
func (s *Directory) Resolve(ctx context.Context, accountID uuid.UUID) (string, error) {
	return s.profileStore.ResolveHandle(ctx, accountID)
}

// Search finds profiles whose normalized handle contains the query,
// excluding the searching account. Filtering and pagination happen in the
// store, never as a client-side table scan.
func (s *Directory) Search(ctx context.Context, accountID uuid.UUID, query string, limit, offset int) ([]model.Profile, error) {
	normalized := strings.ToLower(NormalizeHandle(query))
	if normalized == "" {
		return nil, nil
	}

	if limit <= 0 || limit > model.SearchMaxLimit {
		limit = model.SearchMaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	profiles, err := s.profileStore.Search(ctx, model.SearchParams{
		Query:            normalized,
		ExcludeAccountID: accountID,
		Limit:            limit,
		Offset:           offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	return profiles, nil
}
