package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/fakelag/dca"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
)

// DefaultDCABitrate is the default opus bitrate in kb/s.
const DefaultDCABitrate = 96

// Delay between starting the encoder and sending the first frame, so that
// ffmpeg has some frames buffered when the stream begins.
const dcaStartDelay = 250 * time.Millisecond

// ErrNothingBound is returned when a control operation finds no bound source.
var ErrNothingBound = errors.New("no source bound")

// opusEncoder is the part of *dca.EncodeSession the transport uses.
type opusEncoder interface {
	dca.OpusReader
	Stop() error
	Cleanup()
	Error() error
}

// opusStream is the part of *dca.StreamingSession the transport uses.
type opusStream interface {
	SetPaused(paused bool)
	Paused() bool
}

// voiceConn is the part of *discordgo.VoiceConnection the transport uses.
type voiceConn interface {
	Speaking(b bool) error
	ChangeChannel(channelID string, mute, deaf bool) error
	Disconnect() error
}

// audioBackend starts ffmpeg encoders and streams their frames to voice.
type audioBackend interface {
	Encode(url string, opts *dca.EncodeOptions) (opusEncoder, error)
	Stream(src opusEncoder, done chan error) opusStream
}

type dcaBackend struct {
	vc *discordgo.VoiceConnection
}

func (b dcaBackend) Encode(url string, opts *dca.EncodeOptions) (opusEncoder, error) {
	enc, err := dca.EncodeFile(url, opts)
	if err != nil {
		return nil, err
	}
	return enc, nil
}

func (b dcaBackend) Stream(src opusEncoder, done chan error) opusStream {
	return dca.NewStream(src, b.vc, done)
}

// DCAConnector joins voice channels through the gateway and streams audio
// with a local ffmpeg encoder.
type DCAConnector struct {
	session *discordgo.Session
	options dca.EncodeOptions
}

// NewDCAConnector creates a DCAConnector encoding at the given bitrate.
func NewDCAConnector(session *discordgo.Session, bitrate int) *DCAConnector {
	if bitrate <= 0 {
		bitrate = DefaultDCABitrate
	}

	opts := *dca.StdEncodeOptions
	opts.RawOutput = true
	opts.Bitrate = bitrate
	opts.Application = dca.AudioApplicationLowDelay

	return &DCAConnector{
		session: session,
		options: opts,
	}
}

// Connect joins the voice channel.
func (c *DCAConnector) Connect(
	ctx context.Context,
	guildID, channelID snowflake.ID,
) (ports.VoiceTransport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vc, err := c.session.ChannelVoiceJoin(guildID.String(), channelID.String(), false, true)
	if err != nil {
		if vc != nil {
			_ = vc.Disconnect()
		}
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	slog.Info("joined voice channel", "guild", guildID, "channel", channelID)

	return newDCATransport(vc, dcaBackend{vc: vc}, channelID, c.options), nil
}

// dcaPlayback is one bound source. stream and paused are guarded by the
// transport's mu; stream stays nil until the start delay has passed.
type dcaPlayback struct {
	encoder opusEncoder
	stream  opusStream
	paused  bool
	halted  chan struct{}
	stopped atomic.Bool
}

// halt kills the encoder and drops its buffered frames. A paused stream is
// restarted so that it reads the end of input and reports completion.
// Must be called once, with the transport's mu held.
func (p *dcaPlayback) halt() {
	p.stopped.Store(true)
	close(p.halted)
	go p.encoder.Cleanup()
	if p.stream != nil && p.stream.Paused() {
		p.stream.SetPaused(false)
	}
}

func (p *dcaPlayback) setPaused(paused bool) {
	p.paused = paused
	if p.stream != nil {
		p.stream.SetPaused(paused)
	}
}

// DCATransport plays audio over a discordgo voice connection.
type DCATransport struct {
	mu         sync.Mutex
	vc         voiceConn
	backend    audioBackend
	options    dca.EncodeOptions
	startDelay time.Duration
	channelID  snowflake.ID
	current    *dcaPlayback
}

func newDCATransport(
	vc voiceConn,
	backend audioBackend,
	channelID snowflake.ID,
	options dca.EncodeOptions,
) *DCATransport {
	return &DCATransport{
		vc:         vc,
		backend:    backend,
		options:    options,
		startDelay: dcaStartDelay,
		channelID:  channelID,
	}
}

// Play starts encoding the handle's URL and streaming it.
func (t *DCATransport) Play(
	_ context.Context,
	handle ports.StreamHandle,
	onComplete ports.CompletionFunc,
) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil {
		t.current.halt()
		t.current = nil
	}

	opts := t.options
	enc, err := t.backend.Encode(handle.URL(), &opts)
	if err != nil {
		return fmt.Errorf("failed to start encoder: %w", err)
	}

	if err := t.vc.Speaking(true); err != nil {
		slog.Debug("failed to set speaking", "error", err)
	}

	p := &dcaPlayback{
		encoder: enc,
		halted:  make(chan struct{}),
	}
	t.current = p

	go t.watch(p, onComplete)

	return nil
}

// watch starts streaming once the start delay has passed and reports the
// end of the source. The delay is spent here rather than in Play, which
// callers may invoke while holding their own locks.
func (t *DCATransport) watch(p *dcaPlayback, onComplete ports.CompletionFunc) {
	delay := time.NewTimer(t.startDelay)
	defer delay.Stop()

	select {
	case <-delay.C:
	case <-p.halted:
	}

	done := make(chan error)
	t.mu.Lock()
	if p.stopped.Load() {
		t.mu.Unlock()
		p.encoder.Cleanup()
		if onComplete != nil {
			onComplete(nil)
		}
		return
	}
	p.stream = t.backend.Stream(p.encoder, done)
	if p.paused {
		p.stream.SetPaused(true)
	}
	t.mu.Unlock()

	err := <-done
	p.encoder.Cleanup()

	t.mu.Lock()
	if t.current == p {
		t.current = nil
		if serr := t.vc.Speaking(false); serr != nil {
			slog.Debug("failed to clear speaking", "error", serr)
		}
	}
	t.mu.Unlock()

	switch {
	case p.stopped.Load():
		err = nil
	case errors.Is(err, io.EOF):
		// ffmpeg failing on the input also ends in EOF.
		err = p.encoder.Error()
	}

	if onComplete != nil {
		onComplete(err)
	}
}

// Stop halts the bound source.
func (t *DCATransport) Stop(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return ErrNothingBound
	}
	t.current.halt()
	t.current = nil
	return nil
}

// Pause pauses the bound source.
func (t *DCATransport) Pause(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return ErrNothingBound
	}
	t.current.setPaused(true)
	_ = t.vc.Speaking(false)
	return nil
}

// Resume resumes the paused source.
func (t *DCATransport) Resume(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return ErrNothingBound
	}
	_ = t.vc.Speaking(true)
	t.current.setPaused(false)
	return nil
}

func (t *DCATransport) IsPlaying() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current != nil && !t.current.paused
}

func (t *DCATransport) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current != nil && t.current.paused
}

func (t *DCATransport) ChannelID() snowflake.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channelID
}

// MoveTo switches the voice connection to another channel.
func (t *DCATransport) MoveTo(_ context.Context, channelID snowflake.ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.vc.ChangeChannel(channelID.String(), false, true); err != nil {
		return fmt.Errorf("failed to move to voice channel: %w", err)
	}
	t.channelID = channelID
	return nil
}

// Disconnect halts the bound source and leaves the voice channel.
func (t *DCATransport) Disconnect(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil {
		t.current.halt()
		t.current = nil
	}
	if err := t.vc.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	return nil
}

var (
	_ ports.VoiceConnector = (*DCAConnector)(nil)
	_ ports.VoiceTransport = (*DCATransport)(nil)
)
