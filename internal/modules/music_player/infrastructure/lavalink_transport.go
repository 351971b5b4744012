package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
)

var (
	ErrTrackLoadFailed   = errors.New("track failed to load")
	ErrUnsupportedHandle = errors.New("stream handle was not opened by Lavalink")
)

// LavalinkHandle is a URL loaded on a Lavalink node.
type LavalinkHandle struct {
	url       string
	encoded   string
	expiresAt time.Time
}

// NewLavalinkHandle creates a handle for an encoded track loaded from url.
func NewLavalinkHandle(url, encoded string) LavalinkHandle {
	return LavalinkHandle{
		url:       url,
		encoded:   encoded,
		expiresAt: ParseURLExpiry(url),
	}
}

func (h LavalinkHandle) URL() string          { return h.url }
func (h LavalinkHandle) ExpiresAt() time.Time { return h.expiresAt }
func (h LavalinkHandle) Encoded() string      { return h.encoded }

type playerUpdateFunc func(ctx context.Context, opts ...lavalink.PlayerUpdateOpt) error

type lavalinkBinding struct {
	encoded    string
	onComplete ports.CompletionFunc
	err        error
}

// LavalinkTransport is a guild's voice connection through Lavalink.
// Completion is driven by the node's track events.
type LavalinkTransport struct {
	guildID snowflake.ID
	update  playerUpdateFunc
	move    func(ctx context.Context, channelID snowflake.ID) error
	leave   func(ctx context.Context) error

	mu        sync.Mutex
	channelID snowflake.ID
	bound     *lavalinkBinding
	paused    bool
}

func newLavalinkTransport(
	guildID, channelID snowflake.ID,
	update playerUpdateFunc,
) *LavalinkTransport {
	return &LavalinkTransport{
		guildID:   guildID,
		channelID: channelID,
		update:    update,
	}
}

// Play starts the handle's encoded track on the guild's player.
func (t *LavalinkTransport) Play(
	ctx context.Context,
	handle ports.StreamHandle,
	onComplete ports.CompletionFunc,
) error {
	h, ok := handle.(LavalinkHandle)
	if !ok {
		return ErrUnsupportedHandle
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.bound
	t.bound = &lavalinkBinding{encoded: h.encoded, onComplete: onComplete}
	t.paused = false

	if err := t.update(ctx, lavalink.WithEncodedTrack(h.encoded), lavalink.WithPaused(false)); err != nil {
		t.bound = prev
		return fmt.Errorf("failed to play track: %w", err)
	}

	// The node reports the replaced track with a "replaced" reason, which is ignored.
	if prev != nil && prev.onComplete != nil {
		go prev.onComplete(nil)
	}

	return nil
}

// Stop clears the player's track. Completion follows with the node's end event.
func (t *LavalinkTransport) Stop(ctx context.Context) error {
	t.mu.Lock()
	bound := t.bound != nil
	t.mu.Unlock()

	if !bound {
		return ErrNothingBound
	}
	if err := t.update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}
	return nil
}

// Pause pauses the bound track.
func (t *LavalinkTransport) Pause(ctx context.Context) error {
	return t.setPaused(ctx, true)
}

// Resume resumes the bound track.
func (t *LavalinkTransport) Resume(ctx context.Context) error {
	return t.setPaused(ctx, false)
}

func (t *LavalinkTransport) setPaused(ctx context.Context, paused bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bound == nil {
		return ErrNothingBound
	}
	if err := t.update(ctx, lavalink.WithPaused(paused)); err != nil {
		if paused {
			return fmt.Errorf("failed to pause playback: %w", err)
		}
		return fmt.Errorf("failed to resume playback: %w", err)
	}
	t.paused = paused
	return nil
}

func (t *LavalinkTransport) IsPlaying() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bound != nil && !t.paused
}

func (t *LavalinkTransport) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bound != nil && t.paused
}

func (t *LavalinkTransport) ChannelID() snowflake.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channelID
}

// MoveTo rejoins the guild in another voice channel.
func (t *LavalinkTransport) MoveTo(ctx context.Context, channelID snowflake.ID) error {
	if t.move != nil {
		if err := t.move(ctx, channelID); err != nil {
			return err
		}
	}

	t.mu.Lock()
	t.channelID = channelID
	t.mu.Unlock()
	return nil
}

// Disconnect destroys the player and leaves the voice channel.
// The bound track, if any, completes without error.
func (t *LavalinkTransport) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	b := t.bound
	t.bound = nil
	t.paused = false
	t.mu.Unlock()

	var err error
	if t.leave != nil {
		err = t.leave(ctx)
	}

	if b != nil && b.onComplete != nil {
		b.onComplete(nil)
	}
	return err
}

// trackFailed records the failure reported for the bound track; the end
// event that follows carries it to the completion callback.
func (t *LavalinkTransport) trackFailed(encoded string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bound != nil && t.bound.encoded == encoded && t.bound.err == nil {
		t.bound.err = err
	}
}

func (t *LavalinkTransport) trackEnded(encoded string, reason lavalink.TrackEndReason) {
	if reason == lavalink.TrackEndReasonReplaced {
		return
	}

	t.mu.Lock()
	b := t.bound
	if b == nil || b.encoded != encoded {
		t.mu.Unlock()
		return
	}
	t.bound = nil
	t.paused = false
	t.mu.Unlock()

	err := b.err
	if err == nil && reason == lavalink.TrackEndReasonLoadFailed {
		err = ErrTrackLoadFailed
	}
	if b.onComplete != nil {
		b.onComplete(err)
	}
}

var (
	_ ports.StreamHandle   = LavalinkHandle{}
	_ ports.VoiceTransport = (*LavalinkTransport)(nil)
)
