package domain

import "github.com/disgoorg/snowflake/v2"

// NowPlaying is the content of a "Now Playing" message: the bound track and
// the queue head at the moment it was bound. Next is a snapshot and is not
// updated when the queue changes afterwards.
type NowPlaying struct {
	Track  Track
	Next   *Track
	Paused bool
}

// NowPlayingMessage identifies a posted "Now Playing" message.
// The channel is stored with the message since the notification channel may
// have changed by the time the message is deleted.
type NowPlayingMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

func NewNowPlayingMessage(channelID, messageID snowflake.ID) NowPlayingMessage {
	return NowPlayingMessage{
		ChannelID: channelID,
		MessageID: messageID,
	}
}
