package usecases

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// SessionRegistry maps guilds to their playback sessions.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[snowflake.ID]*GuildPlaybackSession
	newFunc  func(guildID snowflake.ID) *GuildPlaybackSession
}

// NewSessionRegistry creates a registry that builds missing sessions with newFunc.
func NewSessionRegistry(newFunc func(guildID snowflake.ID) *GuildPlaybackSession) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[snowflake.ID]*GuildPlaybackSession),
		newFunc:  newFunc,
	}
}

// Get returns the guild's session, or nil if none was created yet.
func (r *SessionRegistry) Get(guildID snowflake.ID) *GuildPlaybackSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[guildID]
}

// GetOrCreate returns the guild's session, creating it on first use.
func (r *SessionRegistry) GetOrCreate(guildID snowflake.ID) *GuildPlaybackSession {
	if s := r.Get(guildID); s != nil {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[guildID]; ok {
		return s
	}
	s := r.newFunc(guildID)
	r.sessions[guildID] = s
	return s
}

// Remove deletes the guild's session from the registry and returns it.
func (r *SessionRegistry) Remove(guildID snowflake.ID) *GuildPlaybackSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[guildID]
	delete(r.sessions, guildID)
	return s
}

// All returns every registered session.
func (r *SessionRegistry) All() []*GuildPlaybackSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*GuildPlaybackSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		result = append(result, s)
	}
	return result
}
