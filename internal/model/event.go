package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ViewEventStore defines persistence operations for view events.
type ViewEventStore interface {
	Record(ctx context.Context, actorID, subjectID uuid.UUID) (ViewEvent, error)
	ListRecent(ctx context.Context, subjectID uuid.UUID, limit int) ([]ViewEvent, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]ViewEvent, error)
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// AccountEraser removes every trace of an account in one atomic unit:
// all view events where the account is actor or subject, then its profile.
type AccountEraser interface {
	EraseAccount(ctx context.Context, accountID uuid.UUID) (EraseResult, error)
}

// EraseResult reports what an erasure transaction removed.
type EraseResult struct {
	EventsDeleted  int64
	ProfileDeleted bool
}

// ViewEvent is one recorded profile view. Rows are immutable once created;
// the only mutations are inserts and erasure-driven bulk deletes.
type ViewEvent struct {
	ID         int64
	ActorID    uuid.UUID
	SubjectID  uuid.UUID
	OccurredAt time.Time
}

// FeedLimitMax bounds a single feed page; older history is reachable only
// through export.
const FeedLimitMax = 50

// FeedEntry is one rendered feed row: the actor's handle resolved at read
// time, never a write-time snapshot.
type FeedEntry struct {
	ActorHandle string
	OccurredAt  time.Time
}

// UnknownHandle is rendered for actors whose profile no longer resolves,
// either never registered or already erased.
const UnknownHandle = "unknown"
