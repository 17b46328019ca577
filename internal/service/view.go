package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/privacypulse/pulse-server/internal/logger"
	"github.com/privacypulse/pulse-server/internal/model"
)

// View owns the event write path and the feed read path.
type View struct {
	eventStore   model.ViewEventStore
	profileStore model.ProfileStore
	notifier     model.FeedNotifier
	logger       *logger.Logger
}

func NewView(
	eventStore model.ViewEventStore,
	profileStore model.ProfileStore,
	notifier model.FeedNotifier,
	logger *logger.Logger,
) *View {
	return &View{
		eventStore:   eventStore,
		profileStore: profileStore,
		notifier:     notifier,
		logger:       logger,
	}
}

// RecordView appends one view event. Self-views carry no information and
// are rejected before touching the store. Local subscribers are signalled
// before RecordView returns; the signal is fire-and-forget.
func (s *View) RecordView(ctx context.Context, actorID, subjectID uuid.UUID) (model.ViewEvent, error) {
	if actorID == subjectID {
		return model.ViewEvent{}, model.ErrSelfView
	}

	event, err := s.eventStore.Record(ctx, actorID, subjectID)
	if err != nil {
		return model.ViewEvent{}, fmt.Errorf("failed to record view: %w", err)
	}

	s.notifier.Publish(subjectID)

	s.logger.Debug("View service: view recorded",
		"actor_id", actorID,
		"subject_id", subjectID,
		"event_id", event.ID)

	return event, nil
}

// ListRecent returns the subject's newest events, bounded by limit. The
// limit is clamped to [1, FeedLimitMax]; zero means the maximum.
func (s *View) ListRecent(ctx context.Context, subjectID uuid.UUID, limit int) ([]model.ViewEvent, error) {
	if limit <= 0 || limit > model.FeedLimitMax {
		limit = model.FeedLimitMax
	}

	events, err := s.eventStore.ListRecent(ctx, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent views: %w", err)
	}

	return events, nil
}

// Refresh derives the rendered feed: recent events with each actor's
// handle resolved at read time. An unresolved actor renders as the
// sentinel; one bad row never blanks the feed.
func (s *View) Refresh(ctx context.Context, subjectID uuid.UUID, limit int) ([]model.FeedEntry, error) {
	events, err := s.ListRecent(ctx, subjectID, limit)
	if err != nil {
		return nil, err
	}

	// handles cached for this refresh cycle only
	handles := make(map[uuid.UUID]string, len(events))

	entries := make([]model.FeedEntry, 0, len(events))
	for _, event := range events {
		handle, ok := handles[event.ActorID]
		if !ok {
			handle = s.resolveActor(ctx, event.ActorID)
			handles[event.ActorID] = handle
		}
		entries = append(entries, model.FeedEntry{
			ActorHandle: handle,
			OccurredAt:  event.OccurredAt,
		})
	}

	return entries, nil
}

func (s *View) resolveActor(ctx context.Context, actorID uuid.UUID) string {
	handle, err := s.profileStore.ResolveHandle(ctx, actorID)
	if errors.Is(err, model.ErrNotFound) {
		return model.UnknownHandle
	}
	if err != nil {
		s.logger.Error("View service: handle resolution failed",
			"actor_id", actorID,
			"error", err.Error())
		return model.UnknownHandle
	}
	return handle
}
