package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	botID       snowflake.ID
	coordinator Coordinator
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(botID snowflake.ID, coordinator Coordinator) *EventHandlers {
	return &EventHandlers{
		botID:       botID,
		coordinator: coordinator,
	}
}

// HandleVoiceStateUpdate tears down the guild's session when the bot is
// disconnected from its voice channel by someone else.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	// Only handle updates for the bot itself
	if event.UserID != h.botID.String() {
		return
	}

	// Moves and joins are driven by the session
	if event.ChannelID != "" || event.BeforeUpdate == nil || event.BeforeUpdate.ChannelID == "" {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	channelID, err := snowflake.Parse(event.BeforeUpdate.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	h.coordinator.HandleVoiceLost(context.Background(), guildID, channelID)
}
