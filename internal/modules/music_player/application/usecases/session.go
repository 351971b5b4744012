package usecases

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/domain"
)

// DefaultMaxConsecutiveFailures is how many tracks in a row may fail to start
// before the session gives up on the queue.
const DefaultMaxConsecutiveFailures = 5

const sessionMailboxSize = 32

// Notices posted to the notification channel.
const (
	NoticeQueueFinished    = "🎵 No more songs in queue"
	NoticeIdleDisconnected = "👋 Disconnected due to inactivity"
	NoticeTooManyFailures  = "⚠️ Several songs in a row could not be played, so the queue was cleared"
)

// maxJoinAttempts bounds how often Enqueue reconnects when the session is torn
// down between joining and appending.
const maxJoinAttempts = 3

// Messages handled by the session worker.
type (
	advanceRequest struct{ generation uint64 }
	trackEnded     struct {
		generation uint64
		err        error
	}
	idleCheck struct{}
)

// SessionDeps are the collaborators of a GuildPlaybackSession.
type SessionDeps struct {
	Connector ports.VoiceConnector
	Opener    ports.StreamOpener
	Presenter ports.Presenter
	Watchdog  *InactivityWatchdog

	MaxConsecutiveFailures int
}

// SessionSnapshot is a consistent copy of a session's state.
type SessionSnapshot struct {
	State     domain.PlaybackState
	Current   *domain.Track
	UpNext    *domain.Track // Queue head when the current track started
	Queue     []domain.Track
	QueueLen  int
	Loading   bool
	Connected bool
}

// GuildPlaybackSession owns one guild's queue and voice transport and runs
// its play-then-advance loop.
//
// State is guarded by mu. Advancing to the next track only ever happens on the
// session's worker goroutine, which drains the mailbox; transport completions
// and watchdog fires are posted there rather than handled in place.
type GuildPlaybackSession struct {
	guildID     snowflake.ID
	connector   ports.VoiceConnector
	opener      ports.StreamOpener
	presenter   ports.Presenter
	watchdog    *InactivityWatchdog
	maxFailures int

	ctx     context.Context
	cancel  context.CancelFunc
	mailbox chan any
	done    chan struct{}

	// connectMu serializes connecting and moving the transport.
	connectMu sync.Mutex

	mu         sync.Mutex
	state      *domain.PlayerState
	transport  ports.VoiceTransport
	upNext     *domain.Track
	pending    *domain.Track // Popped by advance, not bound yet
	generation uint64 // Bumped on every bind and teardown
	advancing  bool   // An advance is queued or running
	loaders    map[uuid.UUID]context.CancelFunc
}

// NewGuildPlaybackSession creates a session and starts its worker.
// Close must be called to stop the worker.
func NewGuildPlaybackSession(guildID snowflake.ID, deps SessionDeps) *GuildPlaybackSession {
	if deps.MaxConsecutiveFailures <= 0 {
		deps.MaxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &GuildPlaybackSession{
		guildID:     guildID,
		connector:   deps.Connector,
		opener:      deps.Opener,
		presenter:   deps.Presenter,
		watchdog:    deps.Watchdog,
		maxFailures: deps.MaxConsecutiveFailures,
		ctx:         ctx,
		cancel:      cancel,
		mailbox:     make(chan any, sessionMailboxSize),
		done:        make(chan struct{}),
		state:       domain.NewPlayerState(guildID),
		loaders:     make(map[uuid.UUID]context.CancelFunc),
	}

	go s.run()

	return s
}

// GuildID returns the guild the session belongs to.
func (s *GuildPlaybackSession) GuildID() snowflake.ID {
	return s.guildID
}

// SetNotificationChannelID sets the text channel used for notices.
func (s *GuildPlaybackSession) SetNotificationChannelID(channelID snowflake.ID) {
	if channelID == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetNotificationChannelID(channelID)
}

// Enqueue joins the voice channel, or moves there if the session is connected
// elsewhere in the guild, then appends tracks to the queue and starts playback
// if the session is idle. It returns the 1-based queue position of the first
// track and whether that track is about to start playing. With no tracks it
// only joins the channel.
//
// Tracks are only appended while the session holds the transport it joined
// with. If the session is torn down in between, e.g. because the previous
// queue ran out, it joins again.
func (s *GuildPlaybackSession) Enqueue(
	ctx context.Context,
	channelID snowflake.ID,
	tracks ...domain.Track,
) (int, bool, error) {
	s.connectMu.Lock()
	defer s.connectMu.Unlock()

	for range maxJoinAttempts {
		transport, err := s.joinLocked(ctx, channelID)
		if err != nil {
			return 0, false, err
		}

		var (
			position int
			started  bool
		)

		s.mu.Lock()
		if s.transport != transport {
			s.mu.Unlock()
			slog.Debug("voice connection closed while enqueueing, rejoining", "guild", s.guildID)
			continue
		}
		if len(tracks) > 0 {
			wasEmpty := s.state.Queue.IsEmpty() && s.pending == nil
			position = s.state.Queue.Len() + 1
			s.state.Queue.Append(tracks...)
			started = s.kickLocked() && wasEmpty
		}
		s.mu.Unlock()

		s.watchdog.Reset(s.guildID)
		return position, started, nil
	}

	return 0, false, ErrNotConnected
}

// joinLocked connects to channelID, or moves the current transport there, and
// returns the transport. Must be called with connectMu held.
func (s *GuildPlaybackSession) joinLocked(
	ctx context.Context,
	channelID snowflake.ID,
) (ports.VoiceTransport, error) {
	s.mu.Lock()
	transport := s.transport
	s.mu.Unlock()

	if transport != nil {
		if transport.ChannelID() == channelID {
			return transport, nil
		}
		if err := transport.MoveTo(ctx, channelID); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.state.SetVoiceChannelID(channelID)
		s.mu.Unlock()

		slog.Info("moved voice connection", "guild", s.guildID, "channel", channelID)
		return transport, nil
	}

	transport, err := s.connector.Connect(ctx, s.guildID, channelID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.transport = transport
	s.state.SetVoiceChannelID(channelID)
	s.kickLocked()
	s.mu.Unlock()

	s.watchdog.Reset(s.guildID)
	slog.Info("joined voice channel",
		"guild", s.guildID,
		"channel", channelID,
		"idle_timeout", s.watchdog.Timeout(),
	)
	return transport, nil
}

// StartPlaylistLoad runs load in the background and appends every track it
// yields until the sequence ends or the load is cancelled by Stop.
func (s *GuildPlaybackSession) StartPlaylistLoad(
	load func(ctx context.Context) iter.Seq[domain.Track],
) uuid.UUID {
	id := uuid.New()
	ctx, cancel := context.WithCancel(s.ctx)

	s.mu.Lock()
	s.loaders[id] = cancel
	s.mu.Unlock()

	go func() {
		defer s.finishLoader(id)

		appended := 0
		for track := range load(ctx) {
			if !s.appendFromLoader(id, track) {
				break
			}
			appended++
		}
		slog.Debug("playlist loader finished", "guild", s.guildID, "loader", id, "appended", appended)
	}()

	return id
}

// appendFromLoader appends a track on behalf of a loader. It returns false
// once the loader has been cancelled, without appending.
func (s *GuildPlaybackSession) appendFromLoader(id uuid.UUID, track domain.Track) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.loaders[id]; !ok {
		return false
	}
	s.state.Queue.Append(track)
	s.kickLocked()
	return true
}

func (s *GuildPlaybackSession) finishLoader(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel, ok := s.loaders[id]
	if !ok {
		return
	}
	cancel()
	delete(s.loaders, id)

	// The queue may have run dry while the loader was still working.
	// Let the worker finish the queue now that nothing else will arrive.
	if len(s.loaders) == 0 && s.state.IsIdle() && s.transport != nil && !s.advancing {
		s.advancing = true
		s.post(advanceRequest{generation: s.generation})
	}
}

// kickLocked queues an advance if the session is idle, connected and has
// something to play. Must be called with mu held.
func (s *GuildPlaybackSession) kickLocked() bool {
	if !s.state.IsIdle() || s.transport == nil || s.advancing || s.state.Queue.IsEmpty() {
		return false
	}
	s.advancing = true
	s.post(advanceRequest{generation: s.generation})
	return true
}

// Pause pauses the current track.
func (s *GuildPlaybackSession) Pause(ctx context.Context) error {
	s.mu.Lock()
	if s.transport == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	if s.state.IsIdle() {
		s.mu.Unlock()
		return ErrNotPlaying
	}
	if s.state.IsPaused() {
		s.mu.Unlock()
		return ErrAlreadyPaused
	}
	if err := s.transport.Pause(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state.SetPaused()
	info, msg := s.nowPlayingLocked()
	s.mu.Unlock()

	s.watchdog.Reset(s.guildID)
	if deadline, ok := s.watchdog.Deadline(s.guildID); ok {
		slog.Debug("playback paused", "guild", s.guildID, "idle_deadline", deadline)
	}
	s.refreshNowPlaying(ctx, msg, info)
	return nil
}

// Resume resumes the paused track.
func (s *GuildPlaybackSession) Resume(ctx context.Context) error {
	s.mu.Lock()
	if s.transport == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	if s.state.IsIdle() {
		s.mu.Unlock()
		return ErrNotPlaying
	}
	if !s.state.IsPaused() {
		s.mu.Unlock()
		return ErrNotPaused
	}
	if err := s.transport.Resume(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state.SetResumed()
	info, msg := s.nowPlayingLocked()
	s.mu.Unlock()

	s.watchdog.Reset(s.guildID)
	s.refreshNowPlaying(ctx, msg, info)
	return nil
}

// TogglePause pauses a playing track or resumes a paused one.
// It returns whether playback is paused afterwards.
func (s *GuildPlaybackSession) TogglePause(ctx context.Context) (bool, error) {
	s.mu.Lock()
	paused := s.state.IsPaused()
	s.mu.Unlock()

	if paused {
		return false, s.Resume(ctx)
	}
	return true, s.Pause(ctx)
}

// Skip stops the current track. The worker then advances to the next one.
func (s *GuildPlaybackSession) Skip(ctx context.Context) (*domain.Track, error) {
	s.mu.Lock()
	if s.transport == nil {
		s.mu.Unlock()
		return nil, ErrNotConnected
	}
	if s.state.IsIdle() {
		s.mu.Unlock()
		return nil, ErrNotPlaying
	}
	current := s.state.Current()
	transport := s.transport
	s.mu.Unlock()

	if err := transport.Stop(ctx); err != nil {
		return nil, err
	}
	return current, nil
}

// Stop clears the queue, cancels background loading, stops playback and
// leaves the voice channel.
func (s *GuildPlaybackSession) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.transport == nil && s.state.IsIdle() && s.state.Queue.IsEmpty() && len(s.loaders) == 0 {
		s.mu.Unlock()
		return ErrNotConnected
	}
	transport, msg := s.teardownLocked()
	s.mu.Unlock()

	s.release(ctx, transport, msg)
	return nil
}

// VoiceLost tears the session down after the bot was disconnected from
// channelID from outside, e.g. kicked by a moderator. Events for a channel the
// session is no longer in are ignored.
func (s *GuildPlaybackSession) VoiceLost(ctx context.Context, channelID snowflake.ID) bool {
	s.mu.Lock()
	if s.transport == nil || s.transport.ChannelID() != channelID {
		s.mu.Unlock()
		return false
	}
	transport, msg := s.teardownLocked()
	s.mu.Unlock()

	slog.Info("voice connection lost", "guild", s.guildID, "channel", channelID)
	s.release(ctx, transport, msg)
	return true
}

// Snapshot returns a copy of the session state with at most limit queued tracks.
func (s *GuildPlaybackSession) Snapshot(limit int) SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		State:     s.state.State(),
		Current:   s.state.Current(),
		Queue:     s.state.Queue.Head(limit),
		QueueLen:  s.state.Queue.Len(),
		Loading:   len(s.loaders) > 0,
		Connected: s.transport != nil,
	}
	if s.upNext != nil && !s.state.IsIdle() {
		next := *s.upNext
		snap.UpNext = &next
	}
	if snap.Current == nil && s.pending != nil {
		// Still opening; report it as current so it does not vanish from listings.
		pending := *s.pending
		snap.Current = &pending
	}
	return snap
}

// CheckIdle asks the worker to disconnect if the session is still idle.
func (s *GuildPlaybackSession) CheckIdle() {
	s.post(idleCheck{})
}

// Close stops the worker and any background loaders. It does not touch the
// voice connection; call Stop first for that.
func (s *GuildPlaybackSession) Close() {
	s.cancel()
	<-s.done
}

// post delivers a message to the worker without blocking the caller.
func (s *GuildPlaybackSession) post(msg any) {
	select {
	case s.mailbox <- msg:
	default:
		go func() {
			select {
			case s.mailbox <- msg:
			case <-s.ctx.Done():
			}
		}()
	}
}

func (s *GuildPlaybackSession) run() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.mailbox:
			s.handle(msg)
		}
	}
}

func (s *GuildPlaybackSession) handle(msg any) {
	switch m := msg.(type) {
	case advanceRequest:
		s.mu.Lock()
		stale := m.generation != s.generation
		s.mu.Unlock()
		if stale {
			return
		}
		s.advance(m.generation)

	case trackEnded:
		s.mu.Lock()
		if m.generation != s.generation {
			s.mu.Unlock()
			return
		}
		if m.err != nil {
			slog.Warn("track ended with error", "guild", s.guildID, "error", m.err)
		}
		s.state.SetIdle()
		s.upNext = nil
		s.advancing = true
		s.mu.Unlock()
		s.advance(m.generation)

	case idleCheck:
		s.checkIdle()
	}
}

// advance binds the next playable track. It runs on the worker only and gives
// up as soon as the session is torn down, which moves it past epoch.
func (s *GuildPlaybackSession) advance(epoch uint64) {
	failures := 0

	for {
		s.mu.Lock()
		if s.generation != epoch {
			s.mu.Unlock()
			return
		}
		track, ok := s.state.Queue.Pop()
		if !ok {
			s.finishQueueLocked()
			return
		}
		next := s.state.Queue.Peek()
		s.pending = &track
		s.mu.Unlock()

		// Opening may take a while; commands keep working meanwhile.
		handle, err := s.opener.Open(s.ctx, track.URL)

		s.mu.Lock()
		if s.generation != epoch {
			// Stopped while opening.
			s.mu.Unlock()
			return
		}
		s.pending = nil
		if err == nil {
			err = s.bindLocked(handle)
		} else {
			err = &BindError{URL: track.URL, Err: err}
		}
		if err == nil {
			s.state.SetPlaying(track)
			s.upNext = next
			s.advancing = false
			bound := s.generation
			notifyChannel := s.state.NotificationChannelID()
			s.mu.Unlock()

			slog.Info("playing track", "guild", s.guildID, "track", track.Title, "url", track.URL)
			s.watchdog.Reset(s.guildID)
			s.publishNowPlaying(bound, notifyChannel, domain.NowPlaying{Track: track, Next: next})
			return
		}
		s.mu.Unlock()

		if s.ctx.Err() != nil {
			return
		}

		failures++
		slog.Warn("failed to start track",
			"guild", s.guildID,
			"track", track.Title,
			"attempt", failures,
			"error", err,
		)
		if failures >= s.maxFailures {
			s.abandon(epoch)
			return
		}
	}
}

// bindLocked starts the handle on the transport. Must be called with mu held.
// The generation only moves on success, as a failed Play never completes.
func (s *GuildPlaybackSession) bindLocked(handle ports.StreamHandle) error {
	if s.transport == nil {
		return &BindError{URL: handle.URL(), Err: ErrNotConnected}
	}

	gen := s.generation + 1
	onComplete := func(err error) {
		s.post(trackEnded{generation: gen, err: err})
	}

	if err := s.transport.Play(s.ctx, handle, onComplete); err != nil {
		return &BindError{URL: handle.URL(), Err: err}
	}
	s.generation = gen
	return nil
}

// finishQueueLocked handles an empty queue. Must be called with mu held; it
// releases the lock.
func (s *GuildPlaybackSession) finishQueueLocked() {
	s.advancing = false
	s.state.SetIdle()
	s.upNext = nil

	if len(s.loaders) > 0 {
		// More tracks are on their way; the loader restarts playback.
		s.mu.Unlock()
		return
	}

	channelID := s.state.NotificationChannelID()
	transport, msg := s.teardownLocked()
	s.mu.Unlock()

	s.notice(channelID, NoticeQueueFinished)
	s.release(s.ctx, transport, msg)
}

// abandon gives up on the queue after too many consecutive failures.
func (s *GuildPlaybackSession) abandon(epoch uint64) {
	s.mu.Lock()
	if s.generation != epoch {
		s.mu.Unlock()
		return
	}
	channelID := s.state.NotificationChannelID()
	transport, msg := s.teardownLocked()
	s.mu.Unlock()

	slog.Warn("clearing queue after repeated failures", "guild", s.guildID, "failures", s.maxFailures)
	s.notice(channelID, NoticeTooManyFailures)
	s.release(s.ctx, transport, msg)
}

func (s *GuildPlaybackSession) checkIdle() {
	s.mu.Lock()
	if s.transport == nil || s.state.IsPlaying() || s.advancing || len(s.loaders) > 0 {
		s.mu.Unlock()
		return
	}
	channelID := s.state.NotificationChannelID()
	transport, msg := s.teardownLocked()
	s.mu.Unlock()

	slog.Info("disconnecting idle session", "guild", s.guildID)
	s.notice(channelID, NoticeIdleDisconnected)
	s.release(s.ctx, transport, msg)
}

// teardownLocked resets the session to Idle and detaches the transport and
// now-playing message so that the caller can release them outside the lock.
// Pending completions and advances become stale.
func (s *GuildPlaybackSession) teardownLocked() (ports.VoiceTransport, *domain.NowPlayingMessage) {
	s.generation++
	s.advancing = false
	for id, cancel := range s.loaders {
		cancel()
		delete(s.loaders, id)
	}

	transport := s.transport
	s.transport = nil
	s.upNext = nil
	s.pending = nil
	msg := s.state.TakeNowPlayingMessage()
	s.state.Reset()

	return transport, msg
}

func (s *GuildPlaybackSession) release(
	ctx context.Context,
	transport ports.VoiceTransport,
	msg *domain.NowPlayingMessage,
) {
	s.watchdog.Cancel(s.guildID)

	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if transport != nil {
		if err := transport.Disconnect(ctx); err != nil {
			slog.Warn("failed to leave voice channel", "guild", s.guildID, "error", err)
		}
	}
	if msg != nil {
		s.deleteNowPlaying(ctx, *msg)
	}
}

// publishNowPlaying posts the "Now Playing" message for the track bound at
// generation gen and removes the previous one.
func (s *GuildPlaybackSession) publishNowPlaying(gen uint64, channelID snowflake.ID, info domain.NowPlaying) {
	if channelID == 0 {
		return
	}

	posted, err := s.presenter.PostNowPlaying(s.ctx, channelID, info)
	if err != nil {
		slog.Warn("failed to post now playing message", "guild", s.guildID, "error", err)
	}

	s.mu.Lock()
	var stale *domain.NowPlayingMessage
	switch {
	case err != nil:
		stale = s.state.TakeNowPlayingMessage()
	case s.generation != gen:
		// The track already ended or the session was stopped.
		stale = &posted
	default:
		stale = s.state.SetNowPlayingMessage(posted)
	}
	s.mu.Unlock()

	if stale != nil {
		s.deleteNowPlaying(s.ctx, *stale)
	}
}

func (s *GuildPlaybackSession) deleteNowPlaying(ctx context.Context, msg domain.NowPlayingMessage) {
	if err := s.presenter.DeleteNowPlaying(ctx, msg); err != nil {
		slog.Debug("failed to delete now playing message", "guild", s.guildID, "error", err)
	}
}

// nowPlayingLocked returns the current "Now Playing" content and message.
func (s *GuildPlaybackSession) nowPlayingLocked() (domain.NowPlaying, *domain.NowPlayingMessage) {
	info := domain.NowPlaying{Paused: s.state.IsPaused()}
	if current := s.state.Current(); current != nil {
		info.Track = *current
	}
	if s.upNext != nil {
		next := *s.upNext
		info.Next = &next
	}
	return info, s.state.NowPlayingMessage()
}

func (s *GuildPlaybackSession) refreshNowPlaying(
	ctx context.Context,
	msg *domain.NowPlayingMessage,
	info domain.NowPlaying,
) {
	if msg == nil {
		return
	}
	if err := s.presenter.UpdateNowPlaying(ctx, *msg, info); err != nil {
		slog.Debug("failed to update now playing message", "guild", s.guildID, "error", err)
	}
}

func (s *GuildPlaybackSession) notice(channelID snowflake.ID, text string) {
	if channelID == 0 {
		return
	}
	if err := s.presenter.PostNotice(s.ctx, channelID, text); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("failed to post notice", "guild", s.guildID, "error", err)
	}
}
