package usecases

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/domain"
)

var errBind = errors.New("ffmpeg exited with status 1")

func mockTrack(id string) domain.Track {
	return domain.NewTrack(
		"https://stream.example.com/"+id,
		"Track "+id,
		"https://www.youtube.com/watch?v="+id,
		"",
		3*time.Minute,
		"TestUser",
		snowflake.ID(123),
	)
}

type testHandle struct {
	url string
}

func (h testHandle) URL() string          { return h.url }
func (h testHandle) ExpiresAt() time.Time { return time.Time{} }

// mockOpener opens every URL except the ones marked as failing.
type mockOpener struct {
	mu      sync.Mutex
	failing map[string]bool
	opened  []string
}

func newMockOpener() *mockOpener {
	return &mockOpener{failing: make(map[string]bool)}
}

func (m *mockOpener) fail(track domain.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[track.URL] = true
}

func (m *mockOpener) Open(_ context.Context, url string) (ports.StreamHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = append(m.opened, url)
	if m.failing[url] {
		return nil, errBind
	}
	return testHandle{url: url}, nil
}

func (m *mockOpener) openedURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.opened)
}

// blockingOpener holds every Open until release is closed.
type blockingOpener struct {
	opening chan struct{}
	release chan struct{}
}

func newBlockingOpener() *blockingOpener {
	return &blockingOpener{
		opening: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (o *blockingOpener) Open(ctx context.Context, url string) (ports.StreamHandle, error) {
	select {
	case o.opening <- struct{}{}:
	default:
	}
	select {
	case <-o.release:
		return testHandle{url: url}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// mockTransport records bound sources. Completions are delivered from a
// separate goroutine, like the real transports do.
type mockTransport struct {
	mu           sync.Mutex
	channelID    snowflake.ID
	bound        []string
	onComplete   ports.CompletionFunc
	paused       bool
	disconnected bool
	moves        []snowflake.ID
	playErr      error
	channelHook  func()
}

func (m *mockTransport) Play(_ context.Context, handle ports.StreamHandle, onComplete ports.CompletionFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	m.bound = append(m.bound, handle.URL())
	m.onComplete = onComplete
	m.paused = false
	return nil
}

// finish ends the bound source as if it reached its end.
func (m *mockTransport) finish(err error) {
	m.mu.Lock()
	onComplete := m.onComplete
	m.onComplete = nil
	m.paused = false
	m.mu.Unlock()

	if onComplete != nil {
		go onComplete(err)
	}
}

func (m *mockTransport) Stop(_ context.Context) error {
	m.finish(nil)
	return nil
}

func (m *mockTransport) Pause(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
	return nil
}

func (m *mockTransport) Resume(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
	return nil
}

func (m *mockTransport) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onComplete != nil && !m.paused
}

func (m *mockTransport) IsPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onComplete != nil && m.paused
}

func (m *mockTransport) ChannelID() snowflake.ID {
	m.mu.Lock()
	hook := m.channelHook
	m.channelHook = nil
	channelID := m.channelID
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return channelID
}

// onNextChannelID runs hook once, the next time the session asks for the
// transport's channel.
func (m *mockTransport) onNextChannelID(hook func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channelHook = hook
}

func (m *mockTransport) MoveTo(_ context.Context, channelID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channelID = channelID
	m.moves = append(m.moves, channelID)
	return nil
}

func (m *mockTransport) Disconnect(_ context.Context) error {
	m.finish(nil)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnected = true
	return nil
}

func (m *mockTransport) boundURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.bound)
}

func (m *mockTransport) isDisconnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnected
}

// mockConnector hands out a fresh transport on every connect.
type mockConnector struct {
	mu         sync.Mutex
	transports []*mockTransport
	err        error
}

func (m *mockConnector) Connect(_ context.Context, _, channelID snowflake.ID) (ports.VoiceTransport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t := &mockTransport{channelID: channelID}
	m.transports = append(m.transports, t)
	return t, nil
}

func (m *mockConnector) last() *mockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.transports) == 0 {
		return nil
	}
	return m.transports[len(m.transports)-1]
}

func (m *mockConnector) connects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transports)
}

// mockPresenter records everything shown to users.
type mockPresenter struct {
	mu         sync.Mutex
	nextID     snowflake.ID
	nowPlaying []domain.NowPlaying
	updated    []domain.NowPlaying
	deleted    []domain.NowPlayingMessage
	notices    []string
	playlists  []ports.PlaylistSummary
	postErr    error
}

func (m *mockPresenter) PostNowPlaying(
	_ context.Context,
	channelID snowflake.ID,
	info domain.NowPlaying,
) (domain.NowPlayingMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return domain.NowPlayingMessage{}, m.postErr
	}
	m.nextID++
	m.nowPlaying = append(m.nowPlaying, info)
	return domain.NewNowPlayingMessage(channelID, m.nextID), nil
}

func (m *mockPresenter) UpdateNowPlaying(_ context.Context, _ domain.NowPlayingMessage, info domain.NowPlaying) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, info)
	return nil
}

func (m *mockPresenter) DeleteNowPlaying(_ context.Context, msg domain.NowPlayingMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, msg)
	return nil
}

func (m *mockPresenter) PostNotice(_ context.Context, _ snowflake.ID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, text)
	return nil
}

func (m *mockPresenter) PostPlaylistAdded(_ context.Context, _ snowflake.ID, summary ports.PlaylistSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playlists = append(m.playlists, summary)
	return nil
}

func (m *mockPresenter) noticeTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.notices)
}

func (m *mockPresenter) nowPlayingPosts() []domain.NowPlaying {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.nowPlaying)
}

func (m *mockPresenter) deletedMessages() []domain.NowPlayingMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.deleted)
}

type sessionFixture struct {
	t         *testing.T
	session   *GuildPlaybackSession
	connector *mockConnector
	opener    *mockOpener
	presenter *mockPresenter
	watchdog  *InactivityWatchdog
}

const (
	testGuildID        = snowflake.ID(1)
	testVoiceChannelID = snowflake.ID(100)
	testTextChannelID  = snowflake.ID(200)
)

func newSessionFixture(t *testing.T, idleTimeout time.Duration) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		t:         t,
		connector: &mockConnector{},
		opener:    newMockOpener(),
		presenter: &mockPresenter{},
	}
	f.watchdog = NewInactivityWatchdog(idleTimeout, func(snowflake.ID) {
		f.session.CheckIdle()
	})
	f.session = NewGuildPlaybackSession(testGuildID, SessionDeps{
		Connector: f.connector,
		Opener:    f.opener,
		Presenter: f.presenter,
		Watchdog:  f.watchdog,
	})
	f.session.SetNotificationChannelID(testTextChannelID)

	t.Cleanup(func() {
		f.watchdog.Stop()
		f.session.Close()
	})
	return f
}

// connect joins the test voice channel and returns the transport.
func (f *sessionFixture) connect(t *testing.T) *mockTransport {
	t.Helper()
	if _, _, err := f.session.Enqueue(context.Background(), testVoiceChannelID); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return f.connector.last()
}

// enqueue adds tracks from a listener in the test voice channel.
func (f *sessionFixture) enqueue(tracks ...domain.Track) (int, bool) {
	f.t.Helper()
	position, started, err := f.session.Enqueue(context.Background(), testVoiceChannelID, tracks...)
	if err != nil {
		f.t.Fatalf("failed to enqueue: %v", err)
	}
	return position, started
}

func (f *sessionFixture) loading() bool {
	return f.session.Snapshot(0).Loading
}

func (f *sessionFixture) state() domain.PlaybackState {
	return f.session.Snapshot(0).State
}

func (f *sessionFixture) queueURLs() []string {
	snap := f.session.Snapshot(100)
	urls := make([]string, len(snap.Queue))
	for i, t := range snap.Queue {
		urls[i] = t.URL
	}
	return urls
}

func urlsOf(tracks ...domain.Track) []string {
	urls := make([]string, len(tracks))
	for i, t := range tracks {
		urls[i] = t.URL
	}
	return urls
}
