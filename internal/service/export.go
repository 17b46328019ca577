package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/privacypulse/pulse-server/internal/logger"
	"github.com/privacypulse/pulse-server/internal/model"
)

// Export writes an account's complete view history to object storage. The
// live feed is bounded; export is the only path to older history.
type Export struct {
	eventStore   model.ViewEventStore
	profileStore model.ProfileStore
	storage      model.Storage
	logger       *logger.Logger
}

func NewExport(
	eventStore model.ViewEventStore,
	profileStore model.ProfileStore,
	storage model.Storage,
	logger *logger.Logger,
) *Export {
	return &Export{
		eventStore:   eventStore,
		profileStore: profileStore,
		storage:      storage,
		logger:       logger,
	}
}

type exportDocument struct {
	AccountID   string        `json:"account_id"`
	Handle      string        `json:"handle"`
	GeneratedAt time.Time     `json:"generated_at"`
	Events      []exportEvent `json:"events"`
}

type exportEvent struct {
	Role               string    `json:"role"`
	CounterpartHandle  string    `json:"counterpart_handle"`
	CounterpartAccount string    `json:"counterpart_account_id"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// ExportHistory uploads the account's full history, both roles, oldest
// first, and returns the object key.
func (s *Export) ExportHistory(ctx context.Context, accountID uuid.UUID) (string, error) {
	handle, err := s.profileStore.ResolveHandle(ctx, accountID)
	if errors.Is(err, model.ErrNotFound) {
		handle = model.UnknownHandle
	} else if err != nil {
		return "", fmt.Errorf("failed to resolve exporting account: %w", err)
	}

	events, err := s.eventStore.ListByAccount(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("failed to load view history: %w", err)
	}

	doc := exportDocument{
		AccountID:   accountID.String(),
		Handle:      handle,
		GeneratedAt: time.Now().UTC(),
		Events:      make([]exportEvent, 0, len(events)),
	}

	// handles cached for this export only
	handles := make(map[uuid.UUID]string)
	resolve := func(id uuid.UUID) string {
		if h, ok := handles[id]; ok {
			return h
		}
		h, err := s.profileStore.ResolveHandle(ctx, id)
		if err != nil {
			h = model.UnknownHandle
		}
		handles[id] = h
		return h
	}

	for _, event := range events {
		role := "subject"
		counterpart := event.ActorID
		if event.ActorID == accountID {
			role = "actor"
			counterpart = event.SubjectID
		}
		doc.Events = append(doc.Events, exportEvent{
			Role:               role,
			CounterpartHandle:  resolve(counterpart),
			CounterpartAccount: counterpart.String(),
			OccurredAt:         event.OccurredAt,
		})
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", accountID, uuid.NewString())
	if err := s.storage.Upload(ctx, key, bytes.NewReader(payload)); err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	s.logger.Info("Export service: history exported",
		"account_id", accountID,
		"events", len(doc.Events),
		"key", key)

	return key, nil
}
