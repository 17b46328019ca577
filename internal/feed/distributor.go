package feed

import (
	"sync"

	"github.com/google/uuid"

	"github.com/privacypulse/pulse-server/internal/model"
)

var _ model.FeedNotifier = (*Distributor)(nil)

// Distributor fans refresh signals out to live feed subscribers, keyed by
// the subject account of the triggering event. A subscriber sees a signal
// for every insert where it is the subject, never for events where it is
// only the actor. The signal is a latency optimization, not a source of
// truth; each subscription channel holds one pending signal and further
// publishes coalesce into it.
type Distributor struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[*Subscription]struct{}
}

// Subscription is one live watch on a subject's feed.
type Subscription struct {
	subjectID uuid.UUID
	signals   chan struct{}
	done      chan struct{}
	dist      *Distributor
	closeOnce sync.Once
}

func NewDistributor() *Distributor {
	return &Distributor{
		subs: make(map[uuid.UUID]map[*Subscription]struct{}),
	}
}

// Subscribe registers a new live subscriber for the subject's feed.
func (d *Distributor) Subscribe(subjectID uuid.UUID) *Subscription {
	sub := &Subscription{
		subjectID: subjectID,
		signals:   make(chan struct{}, 1),
		done:      make(chan struct{}),
		dist:      d,
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.subs[subjectID] == nil {
		d.subs[subjectID] = make(map[*Subscription]struct{})
	}
	d.subs[subjectID][sub] = struct{}{}

	return sub
}

// Publish delivers a refresh signal to every live subscriber of the
// subject. The send never blocks; a subscriber that already holds a
// pending signal absorbs this one.
func (d *Distributor) Publish(subjectID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for sub := range d.subs[subjectID] {
		select {
		case sub.signals <- struct{}{}:
		default:
		}
	}
}

func (d *Distributor) remove(sub *Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set := d.subs[sub.subjectID]
	delete(set, sub)
	if len(set) == 0 {
		delete(d.subs, sub.subjectID)
	}
}

// Signals returns the refresh signal channel. Receiving one signal may
// stand for several coalesced inserts.
func (s *Subscription) Signals() <-chan struct{} {
	return s.signals
}

// Done is closed when the subscription is torn down.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close tears the subscription down. Safe to call more than once and safe
// against a concurrent Publish; the subscription is removed exactly once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.dist.remove(s)
		close(s.done)
	})
}
