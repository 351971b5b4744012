package infrastructure_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sglre6355/guildtunes/internal/modules/music_player/infrastructure"
)

// fakeSpotifyAPI serves a three entry playlist split over two pages and one
// track, behind a client credentials token endpoint.
func fakeSpotifyAPI(tokenRequests *atomic.Int32) *httptest.Server {
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer","expires_in":3600}`)
	})

	authorized := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":{"status":401,"message":"No token provided"}}`)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			h(w, r)
		}
	}

	mux.HandleFunc("GET /v1/playlists/pl1", authorized(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"id": "pl1",
			"name": "Road Trip",
			"external_urls": {"spotify": "https://open.spotify.com/playlist/pl1"},
			"images": [{"url": "https://i.scdn.co/image/cover"}],
			"tracks": {"total": 3}
		}`)
	}))

	mux.HandleFunc("GET /v1/playlists/pl1/tracks", authorized(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "2" {
			fmt.Fprint(w, `{
				"items": [
					{"is_local": true, "track": {"type": "track", "id": "", "name": "Demo", "duration_ms": 1000, "artists": []}}
				],
				"total": 3,
				"next": ""
			}`)
			return
		}
		fmt.Fprintf(w, `{
			"items": [
				{"track": {
					"type": "track", "id": "t1", "name": "Highway", "duration_ms": 180000,
					"artists": [{"name": "Band"}, {"name": "Singer"}],
					"album": {"images": [{"url": "https://i.scdn.co/image/t1"}]}
				}},
				{"track": null}
			],
			"total": 3,
			"next": "%s/v1/playlists/pl1/tracks?offset=2&limit=2"
		}`, srv.URL)
	}))

	mux.HandleFunc("GET /v1/tracks/t1", authorized(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"type": "track", "id": "t1", "name": "Highway", "duration_ms": 180000,
			"artists": [{"name": "Band"}],
			"album": {"images": []}
		}`)
	}))

	mux.HandleFunc("GET /v1/", authorized(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"status":404,"message":"Resource not found"}}`)
	}))

	srv = httptest.NewServer(mux)
	return srv
}

var _ = Describe("SpotifyProvider", func() {
	var (
		ctx           context.Context
		srv           *httptest.Server
		provider      *infrastructure.SpotifyProvider
		tokenRequests atomic.Int32
	)

	BeforeEach(func() {
		ctx = context.Background()
		tokenRequests.Store(0)
		srv = fakeSpotifyAPI(&tokenRequests)
		DeferCleanup(srv.Close)

		provider = infrastructure.NewSpotifyProvider(ctx, infrastructure.SpotifyConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			BaseURL:      srv.URL + "/v1/",
			TokenURL:     srv.URL + "/token",
		})
	})

	It("fetches every page of a playlist", func() {
		playlist, err := provider.GetPlaylist(ctx, "pl1")

		Expect(err).NotTo(HaveOccurred())
		Expect(playlist.Name).To(Equal("Road Trip"))
		Expect(playlist.URL).To(Equal("https://open.spotify.com/playlist/pl1"))
		Expect(playlist.CoverImageURL).To(Equal("https://i.scdn.co/image/cover"))
		Expect(playlist.Items).To(HaveLen(3))
		Expect(playlist.TrackCount).To(Equal(1))
		Expect(playlist.TotalDuration).To(Equal(3 * time.Minute))

		first := playlist.Items[0]
		Expect(first.Available).To(BeTrue())
		Expect(first.DisplayTitle()).To(Equal("Highway - Band, Singer"))
		Expect(first.ImageURL).To(Equal("https://i.scdn.co/image/t1"))

		Expect(playlist.Items[1].Available).To(BeFalse())
		Expect(playlist.Items[2].Available).To(BeFalse())
	})

	It("reuses the client credentials token", func() {
		_, err := provider.GetPlaylist(ctx, "pl1")
		Expect(err).NotTo(HaveOccurred())
		_, err = provider.GetTrack(ctx, "t1")
		Expect(err).NotTo(HaveOccurred())

		Expect(tokenRequests.Load()).To(BeEquivalentTo(1))
	})

	It("fetches a single track", func() {
		track, err := provider.GetTrack(ctx, "t1")

		Expect(err).NotTo(HaveOccurred())
		Expect(track.SearchTerms()).To(Equal("Highway Band"))
		Expect(track.Duration).To(Equal(3 * time.Minute))
		Expect(track.ImageURL).To(BeEmpty())
	})

	It("returns nil for unknown IDs", func() {
		playlist, err := provider.GetPlaylist(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(playlist).To(BeNil())

		track, err := provider.GetTrack(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(track).To(BeNil())
	})
})
