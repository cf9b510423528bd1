package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUserNotFound signals a missing user profile.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidInput signals a malformed request value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSelfInteraction signals a swipe whose target is the owner.
	ErrSelfInteraction = errors.New("cannot interact with self")
	// ErrUnknownView signals an unsupported candidate view.
	ErrUnknownView = errors.New("unknown view")
	// ErrQueueUnavailable signals that a job could not be enqueued. Retryable.
	ErrQueueUnavailable = errors.New("job queue unavailable")
	// ErrStoreUnavailable signals that the backing store could not serve a write.
	ErrStoreUnavailable = errors.New("store unavailable")
)
