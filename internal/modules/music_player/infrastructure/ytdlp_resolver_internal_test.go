package infrastructure

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/time/rate"
)

const ytdlpLine = "https://rr1.googlevideo.com/videoplayback?expire=1\thttps://www.youtube.com/watch?v=abc\tNever Gonna Give You Up\thttps://i.ytimg.com/vi/abc/hq.jpg\t213"

func stubRun(out string, err error) ytdlpRunFunc {
	return func(context.Context, ...string) (string, error) {
		return out, err
	}
}

var _ = Describe("parseYtdlpOutput", func() {
	It("parses printed entries", func() {
		results := parseYtdlpOutput(ytdlpLine + "\n")

		Expect(results).To(HaveLen(1))
		Expect(results[0].StreamURL).To(Equal("https://rr1.googlevideo.com/videoplayback?expire=1"))
		Expect(results[0].WebpageURL).To(Equal("https://www.youtube.com/watch?v=abc"))
		Expect(results[0].Title).To(Equal("Never Gonna Give You Up"))
		Expect(results[0].ThumbnailURL).To(Equal("https://i.ytimg.com/vi/abc/hq.jpg"))
		Expect(results[0].Duration).To(Equal(213 * time.Second))
	})

	It("maps placeholders and skips malformed lines", func() {
		out := "garbage\n" +
			"NA\thttps://example.com\tno stream\tNA\t10\n" +
			"https://s.example/1\tNA\tLive\tNA\tNA\n"

		results := parseYtdlpOutput(out)

		Expect(results).To(HaveLen(1))
		Expect(results[0].Title).To(Equal("Live"))
		Expect(results[0].WebpageURL).To(BeEmpty())
		Expect(results[0].Duration).To(BeZero())
	})

	It("handles empty output", func() {
		Expect(parseYtdlpOutput("")).To(BeEmpty())
	})

	It("parses fractional durations", func() {
		Expect(parseSeconds("1.5")).To(Equal(1500 * time.Millisecond))
		Expect(parseSeconds("-3")).To(BeZero())
	})
})

var _ = Describe("YtdlpResolver", func() {
	ctx := context.Background()

	It("returns search results in order", func() {
		r := newYtdlpResolver(YtdlpConfig{}, stubRun(ytdlpLine+"\n"+ytdlpLine, nil), nil)

		results, err := r.Search(ctx, "ytsearch1:rick")

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
	})

	It("wraps tool failures", func() {
		r := newYtdlpResolver(YtdlpConfig{}, stubRun("", errors.New("exit status 2")), nil)

		_, err := r.Search(ctx, "ytsearch1:rick")

		Expect(err).To(MatchError(ContainSubstring("exit status 2")))
	})

	It("treats unavailable videos as not found", func() {
		r := newYtdlpResolver(YtdlpConfig{}, nil, stubRun("", errYtdlpUnavailable))

		result, err := r.Extract(ctx, "https://youtu.be/gone")

		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(BeNil())
	})

	It("extracts the first entry", func() {
		r := newYtdlpResolver(YtdlpConfig{}, nil, stubRun(ytdlpLine, nil))

		result, err := r.Extract(ctx, "https://youtu.be/abc")

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Title).To(Equal("Never Gonna Give You Up"))
	})

	It("waits for the rate limiter", func() {
		r := newYtdlpResolver(YtdlpConfig{RateLimit: rate.Limit(20), RateBurst: 1}, stubRun(ytdlpLine, nil), nil)

		start := time.Now()
		for range 3 {
			_, err := r.Search(ctx, "ytsearch1:rick")
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(time.Since(start)).To(BeNumerically(">=", 90*time.Millisecond))
	})

	It("stops waiting when the context is cancelled", func() {
		r := newYtdlpResolver(YtdlpConfig{RateLimit: rate.Limit(0.1), RateBurst: 1}, stubRun(ytdlpLine, nil), nil)
		_, err := r.Search(ctx, "ytsearch1:first")
		Expect(err).NotTo(HaveOccurred())

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = r.Search(cctx, "ytsearch1:second")

		Expect(err).To(HaveOccurred())
	})

	It("recognizes unavailable messages", func() {
		Expect(isUnavailable("ERROR: [youtube] abc: Video unavailable")).To(BeTrue())
		Expect(isUnavailable("ERROR: [youtube] abc: Private video. Sign in")).To(BeTrue())
		Expect(isUnavailable("ERROR: unable to download webpage")).To(BeFalse())
	})
})
