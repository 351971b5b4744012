package infrastructure

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/fakelag/dca"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeEncoder struct {
	frames   chan []byte
	stopOnce sync.Once
	err      error
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{frames: make(chan []byte, 4)}
}

func (e *fakeEncoder) OpusFrame() ([]byte, error) {
	f, ok := <-e.frames
	if !ok {
		return nil, io.EOF
	}
	return f, nil
}

func (e *fakeEncoder) FrameDuration() time.Duration { return 20 * time.Millisecond }

func (e *fakeEncoder) Stop() error {
	e.stopOnce.Do(func() { close(e.frames) })
	return nil
}

func (e *fakeEncoder) Cleanup() {
	_ = e.Stop()
	for range e.frames {
	}
}

func (e *fakeEncoder) Error() error { return e.err }

type fakeStream struct {
	mu     sync.Mutex
	paused bool
}

func (s *fakeStream) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

func (s *fakeStream) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

type fakeBackend struct {
	mu        sync.Mutex
	encoders  []*fakeEncoder
	urls      []string
	bitrate   int
	encodeErr error
	streams   []*fakeStream
}

func (b *fakeBackend) Encode(url string, opts *dca.EncodeOptions) (opusEncoder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.encodeErr != nil {
		return nil, b.encodeErr
	}
	enc := newFakeEncoder()
	b.encoders = append(b.encoders, enc)
	b.urls = append(b.urls, url)
	b.bitrate = opts.Bitrate
	return enc, nil
}

// Stream reads frames until the encoder runs dry, like dca's streaming session.
func (b *fakeBackend) Stream(src opusEncoder, done chan error) opusStream {
	stream := &fakeStream{}
	b.mu.Lock()
	b.streams = append(b.streams, stream)
	b.mu.Unlock()

	go func() {
		for {
			if _, err := src.OpusFrame(); err != nil {
				done <- err
				return
			}
		}
	}()
	return stream
}

func (b *fakeBackend) streamCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.streams)
}

func (b *fakeBackend) encoder(i int) *fakeEncoder {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.encoders[i]
}

type fakeVoiceConn struct {
	mu           sync.Mutex
	speaking     bool
	channel      string
	disconnected bool
}

func (v *fakeVoiceConn) Speaking(b bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.speaking = b
	return nil
}

func (v *fakeVoiceConn) ChangeChannel(channelID string, _, _ bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.channel = channelID
	return nil
}

func (v *fakeVoiceConn) Disconnect() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disconnected = true
	return nil
}

func (v *fakeVoiceConn) isSpeaking() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.speaking
}

var _ = Describe("DCATransport", func() {
	var (
		ctx       context.Context
		vc        *fakeVoiceConn
		backend   *fakeBackend
		transport *DCATransport
		completed chan error
	)

	onComplete := func(err error) { completed <- err }

	BeforeEach(func() {
		ctx = context.Background()
		vc = &fakeVoiceConn{}
		backend = &fakeBackend{}
		opts := *dca.StdEncodeOptions
		opts.Bitrate = 64
		transport = newDCATransport(vc, backend, 100, opts)
		transport.startDelay = 0
		completed = make(chan error, 4)
	})

	It("reports normal completion when the encoder runs out", func() {
		Expect(transport.Play(ctx, NewURLHandle("https://a.example/1"), onComplete)).To(Succeed())
		Expect(transport.IsPlaying()).To(BeTrue())
		Expect(vc.isSpeaking()).To(BeTrue())
		Expect(backend.bitrate).To(Equal(64))

		enc := backend.encoder(0)
		enc.frames <- []byte{1, 2, 3}
		_ = enc.Stop()

		Eventually(completed).Should(Receive(BeNil()))
		Eventually(transport.IsPlaying).Should(BeFalse())
		Expect(vc.isSpeaking()).To(BeFalse())
	})

	It("reports the encoder error when ffmpeg fails", func() {
		Expect(transport.Play(ctx, NewURLHandle("https://a.example/1"), onComplete)).To(Succeed())

		enc := backend.encoder(0)
		enc.err = errors.New("exit status 1")
		_ = enc.Stop()

		Eventually(completed).Should(Receive(MatchError("exit status 1")))
	})

	It("completes without error when stopped", func() {
		Expect(transport.Play(ctx, NewURLHandle("https://a.example/1"), onComplete)).To(Succeed())
		backend.encoder(0).err = errors.New("killed")

		Expect(transport.Stop(ctx)).To(Succeed())

		Eventually(completed).Should(Receive(BeNil()))
		Expect(transport.IsPlaying()).To(BeFalse())
		Expect(transport.Stop(ctx)).To(MatchError(ErrNothingBound))
	})

	It("never calls back when the encoder cannot start", func() {
		backend.encodeErr = errors.New("ffmpeg not found")

		err := transport.Play(ctx, NewURLHandle("https://a.example/1"), onComplete)

		Expect(err).To(MatchError(ContainSubstring("ffmpeg not found")))
		Consistently(completed, 100*time.Millisecond).ShouldNot(Receive())
	})

	It("pauses and resumes the bound stream", func() {
		Expect(transport.Pause(ctx)).To(MatchError(ErrNothingBound))
		Expect(transport.Play(ctx, NewURLHandle("https://a.example/1"), onComplete)).To(Succeed())

		Expect(transport.Pause(ctx)).To(Succeed())
		Expect(transport.IsPaused()).To(BeTrue())
		Expect(transport.IsPlaying()).To(BeFalse())
		Expect(vc.isSpeaking()).To(BeFalse())

		Expect(transport.Resume(ctx)).To(Succeed())
		Expect(transport.IsPaused()).To(BeFalse())
		Expect(vc.isSpeaking()).To(BeTrue())
	})

	It("halts the previous source when a new one is bound", func() {
		Expect(transport.Play(ctx, NewURLHandle("https://a.example/1"), onComplete)).To(Succeed())
		Expect(transport.Play(ctx, NewURLHandle("https://a.example/2"), onComplete)).To(Succeed())

		Eventually(completed).Should(Receive(BeNil()))
		Expect(transport.IsPlaying()).To(BeTrue())
		Expect(backend.urls).To(Equal([]string{"https://a.example/1", "https://a.example/2"}))
	})

	It("returns from Play before the start delay has passed", func() {
		transport.startDelay = time.Hour

		start := time.Now()
		Expect(transport.Play(ctx, NewURLHandle("https://a.example/1"), onComplete)).To(Succeed())
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
		Expect(transport.IsPlaying()).To(BeTrue())
		Expect(backend.streamCount()).To(BeZero())

		// Pausing before the stream exists is remembered.
		Expect(transport.Pause(ctx)).To(Succeed())
		Expect(transport.IsPaused()).To(BeTrue())

		Expect(transport.Stop(ctx)).To(Succeed())

		Eventually(completed).Should(Receive(BeNil()))
		Expect(backend.streamCount()).To(BeZero())
	})

	It("applies a pause requested during the start delay", func() {
		transport.startDelay = 50 * time.Millisecond
		Expect(transport.Play(ctx, NewURLHandle("https://a.example/1"), onComplete)).To(Succeed())
		Expect(transport.Pause(ctx)).To(Succeed())

		Eventually(backend.streamCount).Should(Equal(1))
		Eventually(func() bool {
			backend.mu.Lock()
			defer backend.mu.Unlock()
			return backend.streams[0].Paused()
		}).Should(BeTrue())
	})

	It("moves between channels", func() {
		Expect(transport.ChannelID()).To(BeEquivalentTo(100))
		Expect(transport.MoveTo(ctx, 300)).To(Succeed())
		Expect(transport.ChannelID()).To(BeEquivalentTo(300))
		Expect(vc.channel).To(Equal("300"))
	})

	It("stops playback on disconnect", func() {
		Expect(transport.Play(ctx, NewURLHandle("https://a.example/1"), onComplete)).To(Succeed())

		Expect(transport.Disconnect(ctx)).To(Succeed())

		Eventually(completed).Should(Receive(BeNil()))
		Expect(vc.disconnected).To(BeTrue())
	})
})
