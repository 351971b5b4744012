package infrastructure

import (
	"context"
	"errors"
	"sync"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingPlayer struct {
	mu      sync.Mutex
	updates int
	err     error
}

func (p *recordingPlayer) update(_ context.Context, opts ...lavalink.PlayerUpdateOpt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.updates++
	return nil
}

func (p *recordingPlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updates
}

var _ = Describe("LavalinkTransport", func() {
	var (
		ctx       context.Context
		player    *recordingPlayer
		transport *LavalinkTransport
		completed chan error
	)

	onComplete := func(err error) { completed <- err }
	handle := NewLavalinkHandle("https://rr1.googlevideo.com/videoplayback?expire=1700000000", "QAAA1")

	BeforeEach(func() {
		ctx = context.Background()
		player = &recordingPlayer{}
		transport = newLavalinkTransport(1, 100, player.update)
		completed = make(chan error, 4)
	})

	It("completes when the node reports the track finished", func() {
		Expect(transport.Play(ctx, handle, onComplete)).To(Succeed())
		Expect(transport.IsPlaying()).To(BeTrue())

		transport.trackEnded("QAAA1", lavalink.TrackEndReasonFinished)

		Expect(completed).To(Receive(BeNil()))
		Expect(transport.IsPlaying()).To(BeFalse())
	})

	It("ignores end events for other tracks and replaced tracks", func() {
		Expect(transport.Play(ctx, handle, onComplete)).To(Succeed())

		transport.trackEnded("OTHER", lavalink.TrackEndReasonFinished)
		transport.trackEnded("QAAA1", lavalink.TrackEndReasonReplaced)

		Expect(completed).NotTo(Receive())
		Expect(transport.IsPlaying()).To(BeTrue())
	})

	It("reports load failures with the exception message", func() {
		Expect(transport.Play(ctx, handle, onComplete)).To(Succeed())

		transport.trackFailed("QAAA1", errors.New("403 Forbidden"))
		transport.trackEnded("QAAA1", lavalink.TrackEndReasonLoadFailed)

		Expect(completed).To(Receive(MatchError("403 Forbidden")))
	})

	It("reports load failures without an exception", func() {
		Expect(transport.Play(ctx, handle, onComplete)).To(Succeed())

		transport.trackEnded("QAAA1", lavalink.TrackEndReasonLoadFailed)

		Expect(completed).To(Receive(MatchError(ErrTrackLoadFailed)))
	})

	It("does not bind when the player update fails", func() {
		player.err = errors.New("node unavailable")

		Expect(transport.Play(ctx, handle, onComplete)).NotTo(Succeed())
		Expect(transport.IsPlaying()).To(BeFalse())
		Expect(completed).NotTo(Receive())
	})

	It("rejects handles opened elsewhere", func() {
		err := transport.Play(ctx, NewURLHandle("https://a.example/1"), onComplete)
		Expect(err).To(MatchError(ErrUnsupportedHandle))
		Expect(player.count()).To(BeZero())
	})

	It("tracks pause state", func() {
		Expect(transport.Pause(ctx)).To(MatchError(ErrNothingBound))
		Expect(transport.Play(ctx, handle, onComplete)).To(Succeed())

		Expect(transport.Pause(ctx)).To(Succeed())
		Expect(transport.IsPaused()).To(BeTrue())
		Expect(transport.Resume(ctx)).To(Succeed())
		Expect(transport.IsPlaying()).To(BeTrue())
		Expect(player.count()).To(Equal(3))
	})

	It("sends a stop and waits for the end event", func() {
		Expect(transport.Stop(ctx)).To(MatchError(ErrNothingBound))
		Expect(transport.Play(ctx, handle, onComplete)).To(Succeed())

		Expect(transport.Stop(ctx)).To(Succeed())
		Expect(completed).NotTo(Receive())

		transport.trackEnded("QAAA1", lavalink.TrackEndReasonStopped)
		Expect(completed).To(Receive(BeNil()))
	})

	It("completes the bound track on disconnect", func() {
		var left bool
		transport.leave = func(context.Context) error {
			left = true
			return nil
		}
		Expect(transport.Play(ctx, handle, onComplete)).To(Succeed())

		Expect(transport.Disconnect(ctx)).To(Succeed())

		Expect(left).To(BeTrue())
		Expect(completed).To(Receive(BeNil()))
		transport.trackEnded("QAAA1", lavalink.TrackEndReasonCleanup)
		Expect(completed).NotTo(Receive())
	})

	It("moves to another channel", func() {
		var moved snowflake.ID
		transport.move = func(_ context.Context, ch snowflake.ID) error {
			moved = ch
			return nil
		}

		Expect(transport.MoveTo(ctx, 300)).To(Succeed())
		Expect(moved).To(BeEquivalentTo(300))
		Expect(transport.ChannelID()).To(BeEquivalentTo(300))
	})

	It("reads the expiry of the loaded URL", func() {
		Expect(handle.ExpiresAt().Unix()).To(BeEquivalentTo(1700000000))
		Expect(handle.Encoded()).To(Equal("QAAA1"))
	})
})

var _ = Describe("firstTrack", func() {
	track := func(encoded string) lavalink.Track { return lavalink.Track{Encoded: encoded} }

	DescribeTable("picks the playable track",
		func(data lavalink.LoadResultData, want string, wantErr bool) {
			got, err := firstTrack(&lavalink.LoadResult{Data: data})
			if wantErr {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Encoded).To(Equal(want))
		},
		Entry("single track", track("a"), "a", false),
		Entry("search", lavalink.Search{track("a"), track("b")}, "a", false),
		Entry("empty search", lavalink.Search{}, "", true),
		Entry("playlist with selection", lavalink.Playlist{
			Info:   lavalink.PlaylistInfo{SelectedTrack: 1},
			Tracks: []lavalink.Track{track("a"), track("b")},
		}, "b", false),
		Entry("playlist without selection", lavalink.Playlist{
			Info:   lavalink.PlaylistInfo{SelectedTrack: -1},
			Tracks: []lavalink.Track{track("a")},
		}, "a", false),
		Entry("empty", lavalink.Empty{}, "", true),
		Entry("exception", lavalink.Exception{Message: "boom"}, "", true),
	)
})

var _ = Describe("voiceEventBuffer", func() {
	It("is ready only once both events arrived", func() {
		b := &voiceEventBuffer{}
		ch := snowflake.ID(100)

		Expect(b.setVoiceServer("token", "endpoint")).To(BeFalse())
		Expect(b.setVoiceState(&ch, "session")).To(BeTrue())

		gotCh, session, token, endpoint := b.getData()
		Expect(*gotCh).To(Equal(ch))
		Expect(session).To(Equal("session"))
		Expect(token).To(Equal("token"))
		Expect(endpoint).To(Equal("endpoint"))

		Expect(b.setVoiceState(&ch, "session")).To(BeFalse())
	})

	It("signals a pending connection after both events", func() {
		p := &pendingVoiceConnection{ready: make(chan struct{})}

		p.onEvent(true)
		Expect(p.ready).NotTo(BeClosed())
		p.onEvent(false)
		Expect(p.ready).To(BeClosed())
		p.onEvent(false)
	})
})
