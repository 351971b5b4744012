package usecases

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/domain"
	"golang.org/x/sync/errgroup"
)

// Requester identifies who asked for a track.
type Requester struct {
	ID   snowflake.ID
	Name string
}

// TrackResolverConfig holds the playlist loading parameters.
type TrackResolverConfig struct {
	SearchSource  domain.SearchSource
	PrefetchCount int           // Playlist entries resolved before the request returns
	BatchSize     int           // Background entries processed between pauses
	BatchPause    time.Duration // Pause between background batches
}

// DefaultTrackResolverConfig returns the default playlist loading parameters.
func DefaultTrackResolverConfig() TrackResolverConfig {
	return TrackResolverConfig{
		SearchSource:  domain.SourceYouTube,
		PrefetchCount: 3,
		BatchSize:     5,
		BatchPause:    2 * time.Second,
	}
}

// PlaylistResolution is the synchronous part of a playlist request.
type PlaylistResolution struct {
	Playlist  *ports.ExternalPlaylist
	Initial   []domain.Track
	NextIndex int // First playlist entry not yet consumed
}

// Remaining returns how many playlist entries are left for background loading.
func (r *PlaylistResolution) Remaining() int {
	return max(0, len(r.Playlist.Items)-r.NextIndex)
}

// TrackResolver turns user queries into tracks.
type TrackResolver struct {
	search   ports.SearchResolver
	metadata ports.MetadataProvider // nil when Spotify is not configured
	cfg      TrackResolverConfig
}

// NewTrackResolver creates a new TrackResolver. metadata may be nil.
func NewTrackResolver(
	search ports.SearchResolver,
	metadata ports.MetadataProvider,
	cfg TrackResolverConfig,
) *TrackResolver {
	def := DefaultTrackResolverConfig()
	if cfg.SearchSource == "" {
		cfg.SearchSource = def.SearchSource
	}
	if cfg.PrefetchCount <= 0 {
		cfg.PrefetchCount = def.PrefetchCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.BatchPause < 0 {
		cfg.BatchPause = 0
	}

	return &TrackResolver{
		search:   search,
		metadata: metadata,
		cfg:      cfg,
	}
}

// Classify parses user input into a query using the configured search source.
func (r *TrackResolver) Classify(input string) *domain.SearchQuery {
	return domain.NewSearchQueryWithSource(input, r.cfg.SearchSource)
}

// ResolveSingle resolves a watch link directly and anything else through search,
// returning the top result.
func (r *TrackResolver) ResolveSingle(
	ctx context.Context,
	query *domain.SearchQuery,
	requester Requester,
) (domain.Track, error) {
	var (
		result *ports.SearchResult
		err    error
	)

	if query.Kind == domain.QueryKindWatchLink {
		result, err = r.search.Extract(ctx, query.Query)
	} else {
		result, err = r.searchFirst(ctx, query.ResolverQuery())
	}
	if err != nil {
		return domain.Track{}, wrapResolution(query.Query, err)
	}
	if result == nil {
		return domain.Track{}, ErrNotFound
	}

	return domain.NewTrack(
		result.StreamURL,
		result.Title,
		result.WebpageURL,
		result.ThumbnailURL,
		result.Duration,
		requester.Name,
		requester.ID,
	), nil
}

// ResolveExternalTrack resolves a Spotify track by searching for its name and artists.
func (r *TrackResolver) ResolveExternalTrack(
	ctx context.Context,
	query *domain.SearchQuery,
	requester Requester,
) (domain.Track, error) {
	if r.metadata == nil {
		return domain.Track{}, ErrProviderUnavailable
	}

	meta, err := r.metadata.GetTrack(ctx, query.ExternalID)
	if err != nil {
		return domain.Track{}, wrapResolution(query.Query, err)
	}
	if meta == nil || !meta.Available {
		return domain.Track{}, ErrNotFound
	}

	return r.resolveExternal(ctx, *meta, requester)
}

// ResolveExternalPlaylist fetches a Spotify playlist and resolves its first
// playable entries. Entries that fail while looking for them are skipped
// and not revisited by ResolveRemaining.
func (r *TrackResolver) ResolveExternalPlaylist(
	ctx context.Context,
	query *domain.SearchQuery,
	requester Requester,
) (*PlaylistResolution, error) {
	if r.metadata == nil {
		return nil, ErrProviderUnavailable
	}

	playlist, err := r.metadata.GetPlaylist(ctx, query.ExternalID)
	if err != nil {
		return nil, wrapResolution(query.Query, err)
	}
	if playlist == nil || len(playlist.Items) == 0 {
		return nil, ErrNotFound
	}
	if playlist.URL == "" {
		playlist.URL = query.Query
	}

	res := &PlaylistResolution{Playlist: playlist}
	for len(res.Initial) < r.cfg.PrefetchCount && res.NextIndex < len(playlist.Items) {
		need := r.cfg.PrefetchCount - len(res.Initial)

		var window []ports.ExternalTrack
		for len(window) < need && res.NextIndex < len(playlist.Items) {
			item := playlist.Items[res.NextIndex]
			res.NextIndex++
			if item.Available {
				window = append(window, item)
			}
		}

		tracks, err := r.resolveWindow(ctx, window, requester)
		if err != nil {
			return nil, err
		}
		res.Initial = append(res.Initial, tracks...)
	}

	if len(res.Initial) == 0 {
		return nil, ErrNotFound
	}

	return res, nil
}

// resolveWindow resolves the given entries concurrently and returns the
// successful ones in their original order.
func (r *TrackResolver) resolveWindow(
	ctx context.Context,
	items []ports.ExternalTrack,
	requester Requester,
) ([]domain.Track, error) {
	results := make([]*domain.Track, len(items))

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			track, err := r.resolveExternal(gctx, item, requester)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slog.Warn("skipping playlist entry",
					"track", item.DisplayTitle(),
					"error", err,
				)
				return nil
			}
			results[i] = &track
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(items))
	for _, t := range results {
		if t != nil {
			tracks = append(tracks, *t)
		}
	}
	return tracks, nil
}

// ResolveRemaining lazily resolves playlist entries from start onwards.
// After every BatchSize entries it pauses for BatchPause. Unavailable entries
// and entries that fail to resolve are skipped. The sequence ends early when
// ctx is cancelled or the consumer stops ranging.
func (r *TrackResolver) ResolveRemaining(
	ctx context.Context,
	playlist *ports.ExternalPlaylist,
	start int,
	requester Requester,
) iter.Seq[domain.Track] {
	return func(yield func(domain.Track) bool) {
		if start >= len(playlist.Items) {
			return
		}

		for n, item := range playlist.Items[start:] {
			if n > 0 && n%r.cfg.BatchSize == 0 {
				if err := sleepContext(ctx, r.cfg.BatchPause); err != nil {
					return
				}
			}
			if ctx.Err() != nil {
				return
			}
			if !item.Available {
				continue
			}

			track, err := r.resolveExternal(ctx, item, requester)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("skipping playlist entry",
					"playlist", playlist.Name,
					"track", item.DisplayTitle(),
					"error", err,
				)
				continue
			}

			if !yield(track) {
				return
			}
		}
	}
}

func (r *TrackResolver) resolveExternal(
	ctx context.Context,
	meta ports.ExternalTrack,
	requester Requester,
) (domain.Track, error) {
	query := string(r.cfg.SearchSource) + "1:" + meta.SearchTerms()

	result, err := r.searchFirst(ctx, query)
	if err != nil {
		return domain.Track{}, wrapResolution(meta.DisplayTitle(), err)
	}
	if result == nil {
		return domain.Track{}, ErrNotFound
	}

	thumbnail := meta.ImageURL
	if thumbnail == "" {
		thumbnail = result.ThumbnailURL
	}
	duration := meta.Duration
	if duration <= 0 {
		duration = result.Duration
	}

	return domain.NewTrack(
		result.StreamURL,
		meta.DisplayTitle(),
		result.WebpageURL,
		thumbnail,
		duration,
		requester.Name,
		requester.ID,
	), nil
}

func (r *TrackResolver) searchFirst(ctx context.Context, query string) (*ports.SearchResult, error) {
	results, err := r.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

func wrapResolution(query string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrNotFound) {
		return err
	}
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return err
	}
	return &ResolutionError{Query: query, Err: err}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
