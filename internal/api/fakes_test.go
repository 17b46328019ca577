package api

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/privacypulse/pulse-server/internal/model"
)

// In-memory stores backing handler tests; same contracts as the postgres
// repositories.

type memProfiles struct {
	mu        sync.Mutex
	byAccount map[uuid.UUID]model.Profile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byAccount: make(map[uuid.UUID]model.Profile)}
}

func (m *memProfiles) Create(_ context.Context, profile model.Profile) (model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byAccount[profile.AccountID]; ok {
		return model.Profile{}, model.ErrAccountAlreadyLinked
	}
	for _, existing := range m.byAccount {
		if strings.EqualFold(existing.Handle, profile.Handle) {
			return model.Profile{}, model.ErrHandleTaken
		}
	}

	profile.CreatedAt = time.Now()
	m.byAccount[profile.AccountID] = profile
	return profile, nil
}

func (m *memProfiles) GetByAccountID(_ context.Context, accountID uuid.UUID) (model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.byAccount[accountID]
	if !ok {
		return model.Profile{}, model.ErrNotFound
	}
	return profile, nil
}

func (m *memProfiles) ResolveHandle(_ context.Context, accountID uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.byAccount[accountID]
	if !ok {
		return "", model.ErrNotFound
	}
	return profile.Handle, nil
}

func (m *memProfiles) Search(_ context.Context, params model.SearchParams) ([]model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Profile
	for _, profile := range m.byAccount {
		if profile.AccountID == params.ExcludeAccountID {
			continue
		}
		if strings.Contains(strings.ToLower(profile.Handle), params.Query) {
			out = append(out, profile)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Handle) < strings.ToLower(out[j].Handle)
	})
	if params.Offset < len(out) {
		out = out[params.Offset:]
	} else {
		out = nil
	}
	if len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (m *memProfiles) delete(accountID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.byAccount[accountID]
	delete(m.byAccount, accountID)
	return ok
}

type memEvents struct {
	mu     sync.Mutex
	events []model.ViewEvent
	nextID int64
}

func newMemEvents() *memEvents {
	return &memEvents{nextID: 1}
}

func (m *memEvents) Record(_ context.Context, actorID, subjectID uuid.UUID) (model.ViewEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event := model.ViewEvent{
		ID:         m.nextID,
		ActorID:    actorID,
		SubjectID:  subjectID,
		OccurredAt: time.Now(),
	}
	m.nextID++
	m.events = append(m.events, event)
	return event, nil
}

func (m *memEvents) ListRecent(_ context.Context, subjectID uuid.UUID, limit int) ([]model.ViewEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.ViewEvent
	for _, event := range m.events {
		if event.SubjectID == subjectID {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memEvents) ListByAccount(_ context.Context, accountID uuid.UUID) ([]model.ViewEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.ViewEvent
	for _, event := range m.events {
		if event.ActorID == accountID || event.SubjectID == accountID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (m *memEvents) DeleteByAccount(_ context.Context, accountID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []model.ViewEvent
	var deleted int64
	for _, event := range m.events {
		if event.ActorID == accountID || event.SubjectID == accountID {
			deleted++
			continue
		}
		kept = append(kept, event)
	}
	m.events = kept
	return deleted, nil
}

type memEraser struct {
	profiles *memProfiles
	events   *memEvents
}

func (m *memEraser) EraseAccount(ctx context.Context, accountID uuid.UUID) (model.EraseResult, error) {
	deleted, err := m.events.DeleteByAccount(ctx, accountID)
	if err != nil {
		return model.EraseResult{}, err
	}
	return model.EraseResult{
		EventsDeleted:  deleted,
		ProfileDeleted: m.profiles.delete(accountID),
	}, nil
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[uuid.UUID]bool
}

func newMemRevoker() *memRevoker {
	return &memRevoker{revoked: make(map[uuid.UUID]bool)}
}

func (m *memRevoker) Revoke(_ context.Context, accountID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[accountID] = true
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, accountID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[accountID], nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Upload(_ context.Context, key string, reader io.Reader) error {
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	return nil
}

func (m *memStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[key]
	if !ok {
		return nil, model.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(body))), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }
