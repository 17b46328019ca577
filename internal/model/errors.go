package model

import "errors"

var (
	// ErrNotFound signals a missing row. A handle resolve miss is absorbed
	// by callers and rendered as UnknownHandle, never propagated.
	ErrNotFound = errors.New("not found")
	// ErrHandleTaken signals a case-insensitive handle collision.
	ErrHandleTaken = errors.New("handle already taken")
	// ErrHandleInvalid signals a handle that is empty after normalization.
	ErrHandleInvalid = errors.New("handle is invalid")
	// ErrAccountAlreadyLinked signals a second profile for one account.
	ErrAccountAlreadyLinked = errors.New("account already linked to a profile")
	// ErrSelfView signals an attempt to record a view of one's own profile.
	ErrSelfView = errors.New("self view is not recorded")
	// ErrStoreUnavailable signals a transient store failure. The core does
	// not retry; the caller decides, since a blind retry of a
	// non-idempotent record could duplicate an event.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrErasureInProgress signals a concurrent erasure for the same account.
	ErrErasureInProgress = errors.New("erasure already in progress")
	// ErrErasureFailed signals a fully rolled back erasure attempt.
	ErrErasureFailed = errors.New("erasure failed")
)
