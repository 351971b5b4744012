package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// PlaybackState is the playback phase of a guild player.
// Background playlist loading is tracked separately since it
// coexists with any of these states.
type PlaybackState int

const (
	PlaybackIdle PlaybackState = iota
	PlaybackPlaying
	PlaybackPaused
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackPlaying:
		return "playing"
	case PlaybackPaused:
		return "paused"
	default:
		return "idle"
	}
}

// PlayerState represents the state of a music player for a guild.
// A track is current exactly when the state is Playing or Paused.
type PlayerState struct {
	guildID               snowflake.ID
	voiceChannelID        snowflake.ID       // Voice channel the bot is connected to, 0 if none
	notificationChannelID snowflake.ID       // Text channel for notifications
	nowPlayingMessage     *NowPlayingMessage // "Now Playing" message (for deletion)
	Queue                 Queue
	current               *Track
	state                 PlaybackState
}

// NewPlayerState creates an idle PlayerState for the given guild.
func NewPlayerState(guildID snowflake.ID) *PlayerState {
	return &PlayerState{
		guildID: guildID,
		Queue:   NewQueue(),
		state:   PlaybackIdle,
	}
}

// GuildID returns the guild ID.
func (p *PlayerState) GuildID() snowflake.ID {
	return p.guildID
}

// VoiceChannelID returns the voice channel the bot is connected to.
func (p *PlayerState) VoiceChannelID() snowflake.ID {
	return p.voiceChannelID
}

// SetVoiceChannelID updates the voice channel ID.
func (p *PlayerState) SetVoiceChannelID(channelID snowflake.ID) {
	p.voiceChannelID = channelID
}

// NotificationChannelID returns the text channel used for notices.
func (p *PlayerState) NotificationChannelID() snowflake.ID {
	return p.notificationChannelID
}

// SetNotificationChannelID updates the notification channel ID.
func (p *PlayerState) SetNotificationChannelID(channelID snowflake.ID) {
	p.notificationChannelID = channelID
}

// State returns the playback state.
func (p *PlayerState) State() PlaybackState {
	return p.state
}

// IsIdle returns true if no track is bound.
func (p *PlayerState) IsIdle() bool {
	return p.state == PlaybackIdle
}

// IsPlaying returns true if a track is bound and not paused.
func (p *PlayerState) IsPlaying() bool {
	return p.state == PlaybackPlaying
}

// IsPaused returns true if a track is bound and paused.
func (p *PlayerState) IsPaused() bool {
	return p.state == PlaybackPaused
}

// Current returns a copy of the current track, or nil when idle.
func (p *PlayerState) Current() *Track {
	if p.current == nil {
		return nil
	}
	t := *p.current
	return &t
}

// SetPlaying marks the given track as bound and playing.
func (p *PlayerState) SetPlaying(track Track) {
	p.current = &track
	p.state = PlaybackPlaying
}

// SetPaused marks the current track as paused. No-op when idle.
func (p *PlayerState) SetPaused() {
	if p.current == nil {
		return
	}
	p.state = PlaybackPaused
}

// SetResumed marks the current track as playing again. No-op when idle.
func (p *PlayerState) SetResumed() {
	if p.current == nil {
		return
	}
	p.state = PlaybackPlaying
}

// SetIdle unbinds the current track.
func (p *PlayerState) SetIdle() {
	p.current = nil
	p.state = PlaybackIdle
}

// Reset clears the queue, unbinds the current track and forgets the voice channel.
// The notification channel is kept so that follow-up notices still have a target.
func (p *PlayerState) Reset() {
	p.Queue.Clear()
	p.SetIdle()
	p.voiceChannelID = 0
}

// NowPlayingMessage returns a copy of the "Now Playing" message info.
func (p *PlayerState) NowPlayingMessage() *NowPlayingMessage {
	if p.nowPlayingMessage == nil {
		return nil
	}
	m := *p.nowPlayingMessage
	return &m
}

// SetNowPlayingMessage stores the "Now Playing" message and returns the one it replaces.
func (p *PlayerState) SetNowPlayingMessage(m NowPlayingMessage) *NowPlayingMessage {
	prev := p.nowPlayingMessage
	p.nowPlayingMessage = &m
	return prev
}

// TakeNowPlayingMessage clears the stored "Now Playing" message and returns it.
func (p *PlayerState) TakeNowPlayingMessage() *NowPlayingMessage {
	prev := p.nowPlayingMessage
	p.nowPlayingMessage = nil
	return prev
}
