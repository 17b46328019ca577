package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/privacypulse/pulse-server/internal/logger"
	"github.com/privacypulse/pulse-server/internal/model"
)

// ErasureState tracks an account's erasure lifecycle.
type ErasureState string

const (
	ErasureStateIdle    ErasureState = "idle"
	ErasureStateErasing ErasureState = "erasing"
	ErasureStateDone    ErasureState = "done"
	ErasureStateFailed  ErasureState = "failed"
)

// Erasure coordinates irreversible account removal: all view events in
// either role plus the profile in one transaction, a reconciliation sweep
// for writes that raced the transaction, then session termination.
type Erasure struct {
	eraser     model.AccountEraser
	eventStore model.ViewEventStore
	revoker    model.SessionRevoker
	logger     *logger.Logger

	mu     sync.Mutex
	states map[uuid.UUID]ErasureState
}

func NewErasure(
	eraser model.AccountEraser,
	eventStore model.ViewEventStore,
	revoker model.SessionRevoker,
	logger *logger.Logger,
) *Erasure {
	return &Erasure{
		eraser:     eraser,
		eventStore: eventStore,
		revoker:    revoker,
		logger:     logger,
		states:     make(map[uuid.UUID]ErasureState),
	}
}

// State reports the account's last known erasure state.
func (s *Erasure) State(accountID uuid.UUID) ErasureState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.states[accountID]; ok {
		return state
	}
	return ErasureStateIdle
}

// Erase removes the account's data. Erasures for the same account are
// serialized; a concurrent attempt fails with ErrErasureInProgress.
// Failure at any step reports ErrErasureFailed with the transaction rolled
// back; a retry of a partially reconciled attempt is safe because every
// step is idempotent.
func (s *Erasure) Erase(ctx context.Context, accountID uuid.UUID) (model.EraseResult, error) {
	if err := s.begin(accountID); err != nil {
		return model.EraseResult{}, err
	}

	result, err := s.erase(ctx, accountID)
	if err != nil {
		s.finish(accountID, ErasureStateFailed)
		s.logger.Error("Erasure service: erase failed",
			"account_id", accountID,
			"error", err.Error())
		return model.EraseResult{}, fmt.Errorf("%w: %w", model.ErrErasureFailed, err)
	}

	s.finish(accountID, ErasureStateDone)
	s.logger.Info("Erasure service: account erased",
		"account_id", accountID,
		"events_deleted", result.EventsDeleted,
		"profile_deleted", result.ProfileDeleted)

	return result, nil
}

func (s *Erasure) erase(ctx context.Context, accountID uuid.UUID) (model.EraseResult, error) {
	result, err := s.eraser.EraseAccount(ctx, accountID)
	if err != nil {
		return model.EraseResult{}, err
	}

	// A record() that raced the transaction may have committed after our
	// delete snapshot. Sweep again before reporting success so no event can
	// silently resurrect after Done.
	swept, err := s.eventStore.DeleteByAccount(ctx, accountID)
	if err != nil {
		return model.EraseResult{}, fmt.Errorf("reconciliation sweep failed: %w", err)
	}
	if swept > 0 {
		s.logger.Info("Erasure service: reconciliation removed raced events",
			"account_id", accountID,
			"count", swept)
		result.EventsDeleted += swept
	}

	if err := s.revoker.Revoke(ctx, accountID); err != nil {
		return model.EraseResult{}, fmt.Errorf("failed to terminate sessions: %w", err)
	}

	return result, nil
}

func (s *Erasure) begin(accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.states[accountID] == ErasureStateErasing {
		return model.ErrErasureInProgress
	}
	s.states[accountID] = ErasureStateErasing
	return nil
}

func (s *Erasure) finish(accountID uuid.UUID, state ErasureState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[accountID] = state
}
