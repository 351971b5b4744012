package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
	"golang.org/x/time/rate"
)

// ytdlpPrintTemplate prints one tab-separated line per resolved entry.
const ytdlpPrintTemplate = "%(url)s\t%(webpage_url)s\t%(title)s\t%(thumbnail)s\t%(duration)s"

// ytdlpFormat prefers audio-only streams.
const ytdlpFormat = "bestaudio/best"

// YtdlpConfig configures the yt-dlp resolver.
type YtdlpConfig struct {
	Executable string // Empty to look yt-dlp up on PATH
	Proxy      string
	RateLimit  rate.Limit // Invocations per second, 0 for unlimited
	RateBurst  int
}

// ytdlpRunFunc runs yt-dlp with the given arguments and returns its stdout.
type ytdlpRunFunc func(ctx context.Context, args ...string) (string, error)

// YtdlpResolver resolves search terms and watch links with yt-dlp.
type YtdlpResolver struct {
	limiter *rate.Limiter
	search  ytdlpRunFunc
	extract ytdlpRunFunc
}

// NewYtdlpResolver creates a YtdlpResolver.
func NewYtdlpResolver(cfg YtdlpConfig) *YtdlpResolver {
	return newYtdlpResolver(cfg, commandRunner(cfg, false), commandRunner(cfg, true))
}

func newYtdlpResolver(cfg YtdlpConfig, search, extract ytdlpRunFunc) *YtdlpResolver {
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &YtdlpResolver{
		limiter: rate.NewLimiter(limit, burst),
		search:  search,
		extract: extract,
	}
}

func commandRunner(cfg YtdlpConfig, noPlaylist bool) ytdlpRunFunc {
	return func(ctx context.Context, args ...string) (string, error) {
		cmd := ytdlp.New().
			Print(ytdlpPrintTemplate).
			Format(ytdlpFormat).
			SkipDownload().
			NoWarnings().
			IgnoreConfig().
			Quiet()
		if noPlaylist {
			cmd.NoPlaylist()
		}
		if cfg.Executable != "" {
			cmd.SetExecutable(cfg.Executable)
		}
		if cfg.Proxy != "" {
			cmd.Proxy(cfg.Proxy)
		}

		res, err := cmd.Run(ctx, args...)
		if err != nil {
			if res != nil && isUnavailable(res.Stderr) {
				return "", errYtdlpUnavailable
			}
			return "", err
		}
		return res.Stdout, nil
	}
}

var errYtdlpUnavailable = errors.New("video unavailable")

func isUnavailable(stderr string) bool {
	msg := strings.ToLower(stderr)
	return strings.Contains(msg, "video unavailable") ||
		strings.Contains(msg, "private video") ||
		strings.Contains(msg, "has been removed")
}

// Search runs a prefixed search such as "ytsearch1:<terms>".
func (r *YtdlpResolver) Search(ctx context.Context, query string) ([]ports.SearchResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := r.search(ctx, query)
	if err != nil {
		if errors.Is(err, errYtdlpUnavailable) {
			return nil, nil
		}
		return nil, fmt.Errorf("yt-dlp search failed: %w", err)
	}

	results := parseYtdlpOutput(out)
	slog.Debug("yt-dlp search", "query", query, "results", len(results), "took", time.Since(start))
	return results, nil
}

// Extract resolves a single watch link. It returns nil when the video is gone.
func (r *YtdlpResolver) Extract(ctx context.Context, url string) (*ports.SearchResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	out, err := r.extract(ctx, url)
	if err != nil {
		if errors.Is(err, errYtdlpUnavailable) {
			return nil, nil
		}
		return nil, fmt.Errorf("yt-dlp extract failed: %w", err)
	}

	results := parseYtdlpOutput(out)
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// parseYtdlpOutput parses lines printed with ytdlpPrintTemplate.
// Lines without a stream URL are skipped.
func parseYtdlpOutput(out string) []ports.SearchResult {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	results := make([]ports.SearchResult, 0, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, "\t")
		if len(parts) < 5 {
			continue
		}
		streamURL := field(parts[0])
		if streamURL == "" {
			continue
		}
		results = append(results, ports.SearchResult{
			StreamURL:    streamURL,
			WebpageURL:   field(parts[1]),
			Title:        field(parts[2]),
			ThumbnailURL: field(parts[3]),
			Duration:     parseSeconds(parts[4]),
		})
	}
	return results
}

// field maps yt-dlp's "NA" placeholder to an empty string.
func field(s string) string {
	s = strings.TrimSpace(s)
	if s == "NA" {
		return ""
	}
	return s
}

func parseSeconds(s string) time.Duration {
	secs, err := strconv.ParseFloat(field(s), 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// Ensure YtdlpResolver implements ports.SearchResolver.
var _ ports.SearchResolver = (*YtdlpResolver)(nil)
