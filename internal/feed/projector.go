package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/privacypulse/pulse-server/internal/logger"
	"github.com/privacypulse/pulse-server/internal/model"
)

// Source re-derives the authoritative bounded view for one subject. The
// projector never trusts anything but the source; its cached entries are
// valid only until the next refresh cycle.
type Source interface {
	Refresh(ctx context.Context, subjectID uuid.UUID, limit int) ([]model.FeedEntry, error)
}

// Projector maintains one subject's live feed view. It refreshes once on
// mount and then only in response to distributor signals or an explicit
// Refresh call; there is no polling cadence.
type Projector struct {
	subjectID uuid.UUID
	source    Source
	sub       *Subscription
	logger    *logger.Logger

	mu      sync.Mutex
	entries []model.FeedEntry

	updates   chan []model.FeedEntry
	closeOnce sync.Once
}

// Mount subscribes to the subject's change feed and populates the initial
// view. The caller must Close the projector when the session ends.
func Mount(ctx context.Context, dist *Distributor, source Source, subjectID uuid.UUID, logger *logger.Logger) (*Projector, error) {
	p := &Projector{
		subjectID: subjectID,
		source:    source,
		sub:       dist.Subscribe(subjectID),
		logger:    logger,
		updates:   make(chan []model.FeedEntry, 1),
	}

	if _, err := p.Refresh(ctx); err != nil {
		p.sub.Close()
		return nil, fmt.Errorf("failed to populate initial feed: %w", err)
	}

	go p.run(ctx)

	return p, nil
}

func (p *Projector) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.sub.Done():
			return
		case <-p.sub.Signals():
			if _, err := p.Refresh(ctx); err != nil {
				// keep the last good view; the next signal retries
				p.logger.Error("feed refresh failed",
					"subject_id", p.subjectID,
					"error", err.Error())
			}
		}
	}
}

// Refresh re-derives the view from the source and publishes it to Updates.
// A refresh completing after Close is discarded, never an error.
func (p *Projector) Refresh(ctx context.Context) ([]model.FeedEntry, error) {
	entries, err := p.source.Refresh(ctx, p.subjectID, model.FeedLimitMax)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-p.sub.Done():
		// torn down mid-refresh; the result is simply discarded
		return entries, nil
	default:
	}

	p.entries = entries

	// coalesce: an unconsumed update is replaced by the newer view
	select {
	case <-p.updates:
	default:
	}
	p.updates <- entries

	return entries, nil
}

// Current returns the most recently derived view.
func (p *Projector) Current() []model.FeedEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries
}

// Updates delivers newly derived views. Stale views are dropped when the
// consumer lags; only the latest is retained.
func (p *Projector) Updates() <-chan []model.FeedEntry {
	return p.updates
}

// Close tears the projector down. Idempotent; calling it twice has the
// same observable effect as once.
func (p *Projector) Close() {
	p.closeOnce.Do(func() {
		p.sub.Close()
	})
}
