package ports

import (
	"context"
	"time"
)

// SearchResult is one candidate returned by the search resolver.
type SearchResult struct {
	StreamURL    string
	WebpageURL   string
	Title        string
	ThumbnailURL string
	Duration     time.Duration
}

// SearchResolver turns search terms and watch links into stream URLs.
type SearchResolver interface {
	// Search runs a prefixed search such as "ytsearch1:<terms>" and returns
	// candidates in ranking order. An empty slice means nothing was found.
	Search(ctx context.Context, query string) ([]SearchResult, error)

	// Extract resolves a single watch link.
	Extract(ctx context.Context, url string) (*SearchResult, error)
}
