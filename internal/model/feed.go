package model

import "github.com/google/uuid"

// FeedNotifier fans a refresh signal out to live subscribers of one
// subject's feed. The signal carries no row data; subscribers re-derive
// their view from the store, so a dropped or duplicated signal is harmless.
type FeedNotifier interface {
	Publish(subjectID uuid.UUID)
}
