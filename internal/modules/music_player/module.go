package music_player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/guildtunes/internal/bot"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/domain"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/presentation/discord"
	"golang.org/x/time/rate"
)

// shutdownTimeout bounds leaving voice channels on shutdown.
const shutdownTimeout = 10 * time.Second

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*MusicPlayerModule)(nil)
	_ bot.ComponentModule    = (*MusicPlayerModule)(nil)
)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config            *Config
	coordinator       *usecases.PlaybackCoordinator
	commandHandlers   *discord.CommandHandlers
	componentHandlers *discord.ComponentHandlers
	eventHandlers     *discord.EventHandlers
	lavalinkAdapter   *infrastructure.LavalinkAdapter

	// Scopes the Lavalink node connection and Spotify token refreshes
	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":   m.commandHandlers.HandlePlay,
		"queue":  m.commandHandlers.HandleQueue,
		"skip":   m.commandHandlers.HandleSkip,
		"pause":  m.commandHandlers.HandlePause,
		"resume": m.commandHandlers.HandleResume,
		"stop":   m.commandHandlers.HandleStop,
	}
}

// ComponentHandlers returns the handlers for the "Now Playing" buttons.
func (m *MusicPlayerModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"music": m.componentHandlers.HandleControl,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("music_player requires a Discord session")
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}
	cfg := m.config

	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return err
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())

	connector, opener, err := m.initAudioBackend(deps.Session)
	if err != nil {
		m.cancel()
		return err
	}

	search := infrastructure.NewYtdlpResolver(infrastructure.YtdlpConfig{
		Executable: cfg.YtdlpPath,
		Proxy:      cfg.YtdlpProxy,
		RateLimit:  rate.Limit(cfg.YtdlpRateLimit),
		RateBurst:  cfg.YtdlpRateBurst,
	})

	var metadata ports.MetadataProvider
	if cfg.SpotifyEnabled() {
		metadata = infrastructure.NewSpotifyProvider(m.ctx, infrastructure.SpotifyConfig{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			Market:       cfg.SpotifyMarket,
		})
	} else {
		slog.Info("spotify credentials not configured, Spotify links are disabled")
	}

	resolver := usecases.NewTrackResolver(search, metadata, usecases.TrackResolverConfig{
		SearchSource:  domain.SearchSource(cfg.SearchSource),
		PrefetchCount: cfg.PlaylistPrefetch,
		BatchSize:     cfg.PlaylistBatchSize,
		BatchPause:    cfg.PlaylistBatchPause,
	})

	cache := infrastructure.NewAudioSourceCache(cfg.SourceCacheSize)

	m.coordinator = usecases.NewPlaybackCoordinator(
		infrastructure.NewVoiceStateProvider(deps.Session),
		resolver,
		connector,
		infrastructure.NewCachingStreamOpener(cache, opener),
		infrastructure.NewNotifier(deps.Session),
		usecases.CoordinatorConfig{
			IdleTimeout:            cfg.IdleTimeout,
			MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
			QueueDisplayLimit:      cfg.QueueDisplayLimit,
		},
	)

	m.commandHandlers = discord.NewCommandHandlers(m.coordinator)
	m.componentHandlers = discord.NewComponentHandlers(m.coordinator)
	m.eventHandlers = discord.NewEventHandlers(botID, m.coordinator)

	slog.Info("music_player module initialized",
		"backend", cfg.AudioBackend,
		"spotify", cfg.SpotifyEnabled(),
		"idle_timeout", cfg.IdleTimeout,
	)

	return nil
}

// initAudioBackend creates the voice connector and stream opener for the
// configured backend.
func (m *MusicPlayerModule) initAudioBackend(
	session *discordgo.Session,
) (ports.VoiceConnector, ports.StreamOpener, error) {
	if m.config.AudioBackend == AudioBackendLavalink {
		adapter, err := infrastructure.NewLavalinkAdapter(m.ctx, session, infrastructure.LavalinkConfig{
			Address:  m.config.LavalinkAddress,
			Password: m.config.LavalinkPassword,
			Secure:   m.config.LavalinkSecure,
		})
		if err != nil {
			return nil, nil, err
		}
		m.lavalinkAdapter = adapter
		return adapter, adapter, nil
	}

	return infrastructure.NewDCAConnector(session, m.config.DCABitrate), infrastructure.URLOpener{}, nil
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	if m.coordinator != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		m.coordinator.Shutdown(ctx)
		cancel()
	}

	// Close Lavalink connection
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	if m.cancel != nil {
		m.cancel()
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}
