package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/guildtunes/internal/bot"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
	colorQueue   = 0x3498DB
)

// playTimeout bounds resolving a request and joining the voice channel.
// Playlist entries beyond the first few load in the background afterwards.
const playTimeout = 2 * time.Minute

// Discord rejects embed field names longer than this.
const maxFieldNameLength = 256

// Coordinator is the playback API the Discord handlers drive.
type Coordinator interface {
	Enqueue(ctx context.Context, input usecases.EnqueueInput) (*usecases.EnqueueOutput, error)
	Pause(ctx context.Context, input usecases.ControlInput) error
	Resume(ctx context.Context, input usecases.ControlInput) error
	TogglePause(ctx context.Context, input usecases.ControlInput) (bool, error)
	Skip(ctx context.Context, input usecases.ControlInput) (*usecases.SkipOutput, error)
	Stop(ctx context.Context, input usecases.ControlInput) error
	ListQueue(guildID snowflake.ID) usecases.QueueListing
	HandleVoiceLost(ctx context.Context, guildID, channelID snowflake.ID)
}

var _ Coordinator = (*usecases.PlaybackCoordinator)(nil)

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	coordinator Coordinator
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(coordinator Coordinator) *CommandHandlers {
	return &CommandHandlers{
		coordinator: coordinator,
	}
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if i.Member == nil || i.Member.User == nil {
		return respondError(r, "Invalid user")
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	notificationChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid notification channel")
	}

	var query string
	options := i.ApplicationCommandData().Options
	for _, opt := range options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	// Resolution can take longer than the interaction deadline.
	if err := r.Defer(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
	defer cancel()

	output, err := h.coordinator.Enqueue(ctx, usecases.EnqueueInput{
		GuildID:               guildID,
		RequesterID:           userID,
		RequesterName:         getDisplayName(i.Member),
		NotificationChannelID: notificationChannelID,
		Query:                 query,
	})
	if err != nil {
		return followUp(r, "❌ "+playErrorMessage(guildID, err))
	}

	return followUp(r, enqueuedMessage(output))
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	listing := h.coordinator.ListQueue(guildID)
	if listing.Current == nil && listing.Total == 0 && !listing.Loading {
		return r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "Queue is empty",
			},
		})
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{QueueEmbed(listing)},
		},
	})
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	notificationChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid notification channel")
	}

	output, err := h.coordinator.Skip(context.Background(), usecases.ControlInput{
		GuildID:               guildID,
		NotificationChannelID: notificationChannelID,
	})
	if err != nil {
		return respondControlError(r, err)
	}

	description := "⏭️ Skipping to next song..."
	if output.Skipped != nil {
		description = fmt.Sprintf("⏭️ Skipped %s.", trackLink(*output.Skipped))
	}
	if output.Next != nil {
		description += fmt.Sprintf("\nUp next: %s", trackLink(*output.Next))
	}
	return respondSuccess(r, description)
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	notificationChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid notification channel")
	}

	err = h.coordinator.Pause(context.Background(), usecases.ControlInput{
		GuildID:               guildID,
		NotificationChannelID: notificationChannelID,
	})
	if err != nil {
		return respondControlError(r, err)
	}

	return respondSuccess(r, "⏸️ Music paused")
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	notificationChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid notification channel")
	}

	err = h.coordinator.Resume(context.Background(), usecases.ControlInput{
		GuildID:               guildID,
		NotificationChannelID: notificationChannelID,
	})
	if err != nil {
		return respondControlError(r, err)
	}

	return respondSuccess(r, "▶️ Music resumed")
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	notificationChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid notification channel")
	}

	err = h.coordinator.Stop(context.Background(), usecases.ControlInput{
		GuildID:               guildID,
		NotificationChannelID: notificationChannelID,
	})
	if err != nil {
		return respondControlError(r, err)
	}

	return respondSuccess(r, "⏹️ Playback stopped")
}

// QueueEmbed renders the current track and the head of the queue.
func QueueEmbed(listing usecases.QueueListing) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📜 Music Queue",
		Color: colorQueue,
	}

	if listing.Current != nil {
		status := "Now Playing"
		if listing.State == domain.PlaybackPaused {
			status = "Paused"
		}
		embed.Description = fmt.Sprintf("**%s:** %s", status, trackLink(*listing.Current))
	}

	for idx, track := range listing.Tracks {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  truncate(fmt.Sprintf("%d. %s", idx+1, track.Title), maxFieldNameLength),
			Value: "\u200b",
		})
	}

	var footer []string
	if listing.Overflow > 0 {
		footer = append(footer, fmt.Sprintf("And %d more songs...", listing.Overflow))
	}
	if listing.Loading {
		footer = append(footer, "⏳ Loading more songs from the playlist")
	}
	if len(footer) > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: strings.Join(footer, " | ")}
	}

	return embed
}

func enqueuedMessage(output *usecases.EnqueueOutput) string {
	if output.Playlist != nil {
		msg := fmt.Sprintf("📌 Added **%d** songs from **%s** to the queue", output.Queued, output.Playlist.Name)
		if output.Pending > 0 {
			msg += fmt.Sprintf("\n⏳ Loading %d more songs in the background...", output.Pending)
		}
		return msg
	}
	if output.Started {
		return fmt.Sprintf("🎵 Now playing: **%s**", output.Track.Title)
	}
	return fmt.Sprintf("🎵 Added to queue: **%s** (position %d)", output.Track.Title, output.Position)
}

func playErrorMessage(guildID snowflake.ID, err error) string {
	switch {
	case errors.Is(err, usecases.ErrNotInVoice):
		return "You must be in a voice channel"
	case errors.Is(err, usecases.ErrEmptyQuery):
		return "Tell me what to play"
	case errors.Is(err, usecases.ErrNotFound):
		return "Song not found"
	case errors.Is(err, usecases.ErrProviderUnavailable):
		return "Spotify links are not supported on this bot"
	}

	var resolutionErr *usecases.ResolutionError
	if errors.As(err, &resolutionErr) {
		return fmt.Sprintf("Error loading song: %v", resolutionErr.Err)
	}

	slog.Error("failed to handle play request", "guild", guildID, "error", err)
	return "Something went wrong while starting playback"
}

// controlErrorMessage returns the user-facing text for expected control
// failures, or "" for unexpected ones.
func controlErrorMessage(err error) string {
	switch {
	case errors.Is(err, usecases.ErrNotConnected):
		return "I'm not in a voice channel."
	case errors.Is(err, usecases.ErrNotPlaying):
		return "Nothing is currently playing."
	case errors.Is(err, usecases.ErrAlreadyPaused):
		return "Playback is already paused."
	case errors.Is(err, usecases.ErrNotPaused):
		return "Playback is not paused."
	default:
		return ""
	}
}

func trackLink(t domain.Track) string {
	if t.WebpageURL == "" {
		return fmt.Sprintf("**%s**", t.Title)
	}
	return fmt.Sprintf("[%s](%s)", t.Title, t.WebpageURL)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// getDisplayName returns the effective display name for a guild member.
// Priority: guild nickname > global display name > username.
func getDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// Response helpers.

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}

func respondSuccess(r bot.Responder, description string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: description,
					Color:       colorSuccess,
				},
			},
		},
	})
}

// respondControlError reports expected failures to the user. Unexpected ones
// are returned so the bot answers with its generic error.
func respondControlError(r bot.Responder, err error) error {
	if msg := controlErrorMessage(err); msg != "" {
		return respondError(r, msg)
	}
	return err
}

func followUp(r bot.Responder, content string) error {
	return r.FollowUp(&discordgo.WebhookParams{
		Content: content,
	})
}
