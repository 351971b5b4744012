package ports

import (
	"context"
	"time"
)

// StreamHandle is a prepared audio source for one URL.
// Handles are reusable: each Play starts a fresh stream from the handle.
type StreamHandle interface {
	// URL returns the source URL the handle was opened for.
	URL() string

	// ExpiresAt returns when the handle stops being playable, or the zero time if never.
	ExpiresAt() time.Time
}

// StreamOpener produces stream handles for URLs.
type StreamOpener interface {
	// Open prepares a playable handle for the given URL.
	Open(ctx context.Context, url string) (StreamHandle, error)
}

// CompletionFunc is called exactly once when a bound source stops,
// with a nil error on normal end or skip.
type CompletionFunc func(err error)

// AudioPlayer defines the interface for audio playback on a connected transport.
type AudioPlayer interface {
	// Play binds the handle and starts streaming it. onComplete is called
	// from the transport's own goroutine when the source finishes, fails or is stopped.
	// It is never called when Play itself returns an error.
	Play(ctx context.Context, handle StreamHandle, onComplete CompletionFunc) error

	// Stop stops the bound source. The completion callback still fires.
	Stop(ctx context.Context) error

	// Pause pauses the bound source.
	Pause(ctx context.Context) error

	// Resume resumes the paused source.
	Resume(ctx context.Context) error

	// IsPlaying reports whether a source is bound and not paused.
	IsPlaying() bool

	// IsPaused reports whether a source is bound and paused.
	IsPaused() bool
}
