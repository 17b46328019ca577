package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/privacypulse/pulse-server/internal/model"
)

// MockProfileStore mocks the ProfileStore interface
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Create(ctx context.Context, profile model.Profile) (model.Profile, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *MockProfileStore) GetByAccountID(ctx context.Context, accountID uuid.UUID) (model.Profile, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *MockProfileStore) ResolveHandle(ctx context.Context, accountID uuid.UUID) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

func (m *MockProfileStore) Search(ctx context.Context, params model.SearchParams) ([]model.Profile, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]model.Profile), args.Error(1)
}

// MockViewEventStore mocks the ViewEventStore interface
type MockViewEventStore struct {
	mock.Mock
}

func (m *MockViewEventStore) Record(ctx context.Context, actorID, subjectID uuid.UUID) (model.ViewEvent, error) {
	args := m.Called(ctx, actorID, subjectID)
	return args.Get(0).(model.ViewEvent), args.Error(1)
}

func (m *MockViewEventStore) ListRecent(ctx context.Context, subjectID uuid.UUID, limit int) ([]model.ViewEvent, error) {
	args := m.Called(ctx, subjectID, limit)
	return args.Get(0).([]model.ViewEvent), args.Error(1)
}

func (m *MockViewEventStore) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]model.ViewEvent, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).([]model.ViewEvent), args.Error(1)
}

func (m *MockViewEventStore) DeleteByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAccountEraser mocks the AccountEraser interface
type MockAccountEraser struct {
	mock.Mock
}

func (m *MockAccountEraser) EraseAccount(ctx context.Context, accountID uuid.UUID) (model.EraseResult, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(model.EraseResult), args.Error(1)
}

// fakeNotifier records published subject ids.
type fakeNotifier struct {
	mu        sync.Mutex
	published []uuid.UUID
}

func (f *fakeNotifier) Publish(subjectID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, subjectID)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

// fakeRevoker records revoked account ids.
type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[uuid.UUID]bool
	err     error
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[uuid.UUID]bool)}
}

func (f *fakeRevoker) Revoke(_ context.Context, accountID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[accountID] = true
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, accountID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[accountID], nil
}
