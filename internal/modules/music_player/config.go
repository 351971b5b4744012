package music_player

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/domain"
)

// Audio backends.
const (
	AudioBackendDCA      = "dca"
	AudioBackendLavalink = "lavalink"
)

// Config holds the music player module configuration.
type Config struct {
	AudioBackend string `env:"AUDIO_BACKEND" envDefault:"dca"`

	LavalinkAddress  string `env:"LAVALINK_ADDRESS"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"`

	// Spotify links are rejected when the credentials are unset.
	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyMarket       string `env:"SPOTIFY_MARKET"`

	SearchSource string `env:"SEARCH_SOURCE" envDefault:"ytsearch"`

	IdleTimeout            time.Duration `env:"IDLE_TIMEOUT"             envDefault:"180s"`
	SourceCacheSize        int           `env:"SOURCE_CACHE_SIZE"        envDefault:"5"`
	PlaylistPrefetch       int           `env:"PLAYLIST_PREFETCH"        envDefault:"3"`
	PlaylistBatchSize      int           `env:"PLAYLIST_BATCH_SIZE"      envDefault:"5"`
	PlaylistBatchPause     time.Duration `env:"PLAYLIST_BATCH_PAUSE"     envDefault:"2s"`
	MaxConsecutiveFailures int           `env:"MAX_CONSECUTIVE_FAILURES" envDefault:"5"`
	QueueDisplayLimit      int           `env:"QUEUE_DISPLAY_LIMIT"      envDefault:"10"`

	YtdlpPath      string  `env:"YTDLP_PATH"`
	YtdlpProxy     string  `env:"YTDLP_PROXY"`
	YtdlpRateLimit float64 `env:"YTDLP_RATE_LIMIT" envDefault:"2"`
	YtdlpRateBurst int     `env:"YTDLP_RATE_BURST" envDefault:"5"`

	DCABitrate int `env:"DCA_BITRATE" envDefault:"96"`
}

// LoadConfig parses the module configuration from environment variables and
// validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	switch c.AudioBackend {
	case AudioBackendDCA:
		if c.DCABitrate < 8 || c.DCABitrate > 512 {
			errs = append(errs, fmt.Errorf("DCA_BITRATE must be between 8 and 512, got %d", c.DCABitrate))
		}
	case AudioBackendLavalink:
		if c.LavalinkAddress == "" {
			errs = append(errs, errors.New("LAVALINK_ADDRESS is required for the lavalink backend"))
		}
		if c.LavalinkPassword == "" {
			errs = append(errs, errors.New("LAVALINK_PASSWORD is required for the lavalink backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUDIO_BACKEND %q", c.AudioBackend))
	}

	if (c.SpotifyClientID == "") != (c.SpotifyClientSecret == "") {
		errs = append(errs, errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set together"))
	}

	switch domain.SearchSource(c.SearchSource) {
	case domain.SourceYouTube, domain.SourceYouTubeMusic, domain.SourceSoundCloud:
	default:
		errs = append(errs, fmt.Errorf("unknown SEARCH_SOURCE %q", c.SearchSource))
	}

	if c.IdleTimeout <= 0 {
		errs = append(errs, errors.New("IDLE_TIMEOUT must be positive"))
	}
	if c.SourceCacheSize <= 0 {
		errs = append(errs, errors.New("SOURCE_CACHE_SIZE must be positive"))
	}
	if c.PlaylistPrefetch <= 0 {
		errs = append(errs, errors.New("PLAYLIST_PREFETCH must be positive"))
	}
	if c.PlaylistBatchSize <= 0 {
		errs = append(errs, errors.New("PLAYLIST_BATCH_SIZE must be positive"))
	}
	if c.PlaylistBatchPause < 0 {
		errs = append(errs, errors.New("PLAYLIST_BATCH_PAUSE must not be negative"))
	}
	if c.MaxConsecutiveFailures <= 0 {
		errs = append(errs, errors.New("MAX_CONSECUTIVE_FAILURES must be positive"))
	}
	if c.QueueDisplayLimit <= 0 {
		errs = append(errs, errors.New("QUEUE_DISPLAY_LIMIT must be positive"))
	}
	if c.YtdlpRateLimit < 0 {
		errs = append(errs, errors.New("YTDLP_RATE_LIMIT must not be negative"))
	}

	return errors.Join(errs...)
}

// SpotifyEnabled reports whether Spotify credentials are configured.
func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}
