package story

import "fmt"

// SessionStore maps a channel to its single active session. The engine is the
// sole writer: it serializes all inbound event handling, so implementations
// do not need their own locking. Swap in a distributed implementation when
// sessions are sharded across processes.
type SessionStore interface {
	Get(channelID string) (*Session, bool)
	Create(channelID, userID, characterID, chapterID string) (*Session, error)
	Remove(channelID string)
}

// Registry is the in-memory SessionStore.
type Registry struct {
	sessions    map[string]*Session
	historySize int
}

func NewRegistry(historySize int) *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		historySize: historySize,
	}
}

func (r *Registry) Get(channelID string) (*Session, bool) {
	sess, ok := r.sessions[channelID]
	return sess, ok
}

// Create adds a session for the channel. A channel holding an active session
// rejects the new one; a lingering inactive session is superseded.
func (r *Registry) Create(channelID, userID, characterID, chapterID string) (*Session, error) {
	if existing, ok := r.sessions[channelID]; ok && existing.Active {
		return nil, fmt.Errorf("create session in %s: %w", channelID, ErrAlreadyActive)
	}
	sess := NewSession(channelID, userID, characterID, chapterID, r.historySize)
	r.sessions[channelID] = sess
	return sess, nil
}

func (r *Registry) Remove(channelID string) {
	delete(r.sessions, channelID)
}

// Len reports the number of tracked sessions, active or not.
func (r *Registry) Len() int {
	return len(r.sessions)
}
