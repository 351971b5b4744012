package domain

import (
	"net/url"
	"strings"
)

// SearchSource is the yt-dlp search prefix used for plain search terms.
type SearchSource string

const (
	// SourceYouTube searches YouTube.
	SourceYouTube SearchSource = "ytsearch"
	// SourceYouTubeMusic searches YouTube Music.
	SourceYouTubeMusic SearchSource = "ytmsearch"
	// SourceSoundCloud searches SoundCloud.
	SourceSoundCloud SearchSource = "scsearch"
)

// QueryKind classifies a user request.
type QueryKind int

const (
	// QueryKindSearch is a free-text search term.
	QueryKindSearch QueryKind = iota
	// QueryKindWatchLink is a direct link to a video on the watch platform.
	QueryKindWatchLink
	// QueryKindExternalPlaylist is a Spotify playlist link.
	QueryKindExternalPlaylist
	// QueryKindExternalTrack is a Spotify track link.
	QueryKindExternalTrack
)

func (k QueryKind) String() string {
	switch k {
	case QueryKindWatchLink:
		return "watch_link"
	case QueryKindExternalPlaylist:
		return "external_playlist"
	case QueryKindExternalTrack:
		return "external_track"
	default:
		return "search"
	}
}

// SearchQuery represents a classified user request.
type SearchQuery struct {
	Query      string // The search term or URL
	Kind       QueryKind
	Source     SearchSource // Search prefix for QueryKindSearch
	ExternalID string       // Spotify ID for the external kinds
}

// NewSearchQuery classifies user input, searching YouTube for anything that
// is not a recognized link.
func NewSearchQuery(input string) *SearchQuery {
	return NewSearchQueryWithSource(input, SourceYouTube)
}

// NewSearchQueryWithSource classifies user input with a specific search source.
func NewSearchQueryWithSource(input string, source SearchSource) *SearchQuery {
	input = strings.TrimSpace(input)

	q := &SearchQuery{
		Query:  input,
		Kind:   QueryKindSearch,
		Source: source,
	}

	if kind, id, ok := parseSpotifyReference(input); ok {
		q.Kind = kind
		q.ExternalID = id
		return q
	}

	if isWatchLink(input) {
		q.Kind = QueryKindWatchLink
	}

	return q
}

// ResolverQuery returns the query string passed to the search resolver.
func (q *SearchQuery) ResolverQuery() string {
	if q.Kind != QueryKindSearch {
		return q.Query
	}
	return string(q.Source) + "1:" + q.Query
}

// IsValid returns true if the query is not empty.
func (q *SearchQuery) IsValid() bool {
	return q.Query != ""
}

// IsURL reports whether the input looks like a URL.
func (q *SearchQuery) IsURL() bool {
	return isURL(q.Query)
}

// isURL checks if the input looks like a URL.
func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}

var watchHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

func isWatchLink(input string) bool {
	u, ok := parseLink(input)
	if !ok {
		return false
	}
	return watchHosts[strings.ToLower(u.Hostname())]
}

// parseSpotifyReference recognizes open.spotify.com links and spotify: URIs.
func parseSpotifyReference(input string) (QueryKind, string, bool) {
	if rest, ok := strings.CutPrefix(input, "spotify:"); ok {
		kind, id, _ := strings.Cut(rest, ":")
		return spotifyKind(kind, id)
	}

	u, ok := parseLink(input)
	if !ok || !strings.EqualFold(u.Hostname(), "open.spotify.com") {
		return 0, "", false
	}

	// Paths may carry a locale segment, e.g. /intl-de/track/<id>.
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if kind, id, ok := spotifyKind(segments[i], segments[i+1]); ok {
			return kind, id, true
		}
	}

	return 0, "", false
}

func spotifyKind(kind, id string) (QueryKind, string, bool) {
	if id == "" {
		return 0, "", false
	}
	switch kind {
	case "playlist":
		return QueryKindExternalPlaylist, id, true
	case "track":
		return QueryKindExternalTrack, id, true
	default:
		return 0, "", false
	}
}

func parseLink(input string) (*url.URL, bool) {
	if !isURL(input) {
		return nil, false
	}
	if strings.HasPrefix(input, "www.") {
		input = "https://" + input
	}
	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, true
}
