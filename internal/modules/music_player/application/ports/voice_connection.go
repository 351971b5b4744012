package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceTransport is one guild's voice connection.
// It is owned by a single playback session and never shared.
type VoiceTransport interface {
	AudioPlayer

	// ChannelID returns the voice channel currently joined.
	ChannelID() snowflake.ID

	// MoveTo moves the connection to another voice channel of the same guild.
	MoveTo(ctx context.Context, channelID snowflake.ID) error

	// Disconnect stops any bound source and leaves the voice channel.
	Disconnect(ctx context.Context) error
}

// VoiceConnector opens voice transports.
type VoiceConnector interface {
	// Connect joins the voice channel and returns the guild's transport.
	Connect(ctx context.Context, guildID, channelID snowflake.ID) (VoiceTransport, error)
}
