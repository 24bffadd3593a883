package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InMemory is a Transport backed by maps. Channel ids are minted with a uuid
// suffix on first use and remembered per user/character pair so a finished
// chapter's channel can be reused (and its pending teardown cancelled) by the
// next chapter.
type InMemory struct {
	mu       sync.Mutex
	channels map[string]string   // userID/characterID -> channelID
	messages map[string][]string // channelID -> delivered content
}

func NewInMemory() *InMemory {
	return &InMemory{
		channels: make(map[string]string),
		messages: make(map[string][]string),
	}
}

func (t *InMemory) SendMessage(_ context.Context, channelID, content string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages[channelID] = append(t.messages[channelID], content)
	return nil
}

func (t *InMemory) CreateChannel(_ context.Context, userID, characterID string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := userID + "/" + characterID
	if id, ok := t.channels[key]; ok {
		return id, nil
	}
	id := fmt.Sprintf("story-%s-%s", characterID, uuid.NewString()[:8])
	t.channels[key] = id
	return id, nil
}

func (t *InMemory) DeleteChannel(_ context.Context, channelID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, id := range t.channels {
		if id == channelID {
			delete(t.channels, key)
		}
	}
	delete(t.messages, channelID)
	return nil
}

// Messages returns a copy of everything delivered to the channel.
func (t *InMemory) Messages(channelID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.messages[channelID]...)
}

// HasChannel reports whether the channel still exists.
func (t *InMemory) HasChannel(channelID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range t.channels {
		if id == channelID {
			return true
		}
	}
	return false
}
