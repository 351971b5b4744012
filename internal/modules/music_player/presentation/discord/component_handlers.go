package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/guildtunes/internal/bot"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/usecases"
)

// ComponentHandlers handles the playback buttons on "Now Playing" messages.
// Replies are only visible to the user who pressed the button.
type ComponentHandlers struct {
	coordinator Coordinator
}

// NewComponentHandlers creates new ComponentHandlers.
func NewComponentHandlers(coordinator Coordinator) *ComponentHandlers {
	return &ComponentHandlers{
		coordinator: coordinator,
	}
}

// HandleControl dispatches a playback button press by its custom ID.
func (h *ComponentHandlers) HandleControl(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondEphemeral(r, "Invalid guild")
	}

	notificationChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondEphemeral(r, "Invalid notification channel")
	}

	ctx := context.Background()
	input := usecases.ControlInput{
		GuildID:               guildID,
		NotificationChannelID: notificationChannelID,
	}

	switch i.MessageComponentData().CustomID {
	case ports.ControlTogglePause:
		return h.togglePause(ctx, input, r)
	case ports.ControlSkip:
		return h.skip(ctx, input, r)
	case ports.ControlStop:
		return h.stop(ctx, input, r)
	default:
		return respondEphemeral(r, "This button is no longer supported.")
	}
}

func (h *ComponentHandlers) togglePause(
	ctx context.Context,
	input usecases.ControlInput,
	r bot.Responder,
) error {
	paused, err := h.coordinator.TogglePause(ctx, input)
	switch {
	case errors.Is(err, usecases.ErrNotConnected), errors.Is(err, usecases.ErrNotPlaying):
		return respondEphemeral(r, "I'm not playing any music.")
	case err != nil:
		return err
	case paused:
		return respondEphemeral(r, "⏸️ Music paused")
	default:
		return respondEphemeral(r, "▶️ Music resumed")
	}
}

func (h *ComponentHandlers) skip(
	ctx context.Context,
	input usecases.ControlInput,
	r bot.Responder,
) error {
	_, err := h.coordinator.Skip(ctx, input)
	switch {
	case errors.Is(err, usecases.ErrNotConnected):
		return respondEphemeral(r, "I'm not playing any music.")
	case errors.Is(err, usecases.ErrNotPlaying):
		return respondEphemeral(r, "Nothing is currently playing.")
	case err != nil:
		return err
	default:
		return respondEphemeral(r, "⏭️ Skipping to next song...")
	}
}

func (h *ComponentHandlers) stop(
	ctx context.Context,
	input usecases.ControlInput,
	r bot.Responder,
) error {
	err := h.coordinator.Stop(ctx, input)
	switch {
	case errors.Is(err, usecases.ErrNotConnected):
		return respondEphemeral(r, "I'm not in a voice channel.")
	case err != nil:
		return err
	default:
		return respondEphemeral(r, "⏹️ Playback stopped")
	}
}

func respondEphemeral(r bot.Responder, content string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
