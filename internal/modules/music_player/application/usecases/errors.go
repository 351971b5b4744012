package usecases

import (
	"errors"
	"fmt"
)

// Domain errors for the music player module.
var (
	// ErrNotInVoice is returned when the requester is not in a voice channel.
	ErrNotInVoice = errors.New("you must be in a voice channel")

	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrAlreadyPaused is returned when trying to pause while already paused.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrNotPaused is returned when trying to resume while not paused.
	ErrNotPaused = errors.New("playback is not paused")

	// ErrNotFound is returned when a query resolves to nothing.
	ErrNotFound = errors.New("no results found")

	// ErrProviderUnavailable is returned for Spotify links when no metadata provider is configured.
	ErrProviderUnavailable = errors.New("spotify links are not supported on this bot")

	// ErrEmptyQuery is returned when the play query is blank.
	ErrEmptyQuery = errors.New("query must not be empty")
)

// ResolutionError is returned when an upstream resolver or provider fails.
// The upstream message is kept so that it can be shown to the requester.
type ResolutionError struct {
	Query string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %q: %v", e.Query, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// BindError is returned when a resolved track could not be bound to the voice transport.
type BindError struct {
	URL string
	Err error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.URL, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
