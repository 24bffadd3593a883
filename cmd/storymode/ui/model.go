package ui

import (
	"fmt"

	"go.uber.org/zap"

	"storymode/internal/story"
	"storymode/internal/transport"
)

// Model is the dev console: a single-user client that plays chapters against
// the engine through the in-memory transport.
type Model struct {
	engine   *story.Engine
	library  *story.Library
	channels *transport.InMemory
	log      *zap.Logger

	userID    string
	channelID string
	seen      int // messages already pulled from the channel

	messages       []string
	input          string
	width          int
	height         int
	loading        bool
	animationFrame int
	debug          bool
}

func NewModel(
	engine *story.Engine,
	library *story.Library,
	channels *transport.InMemory,
	log *zap.Logger,
	userID string,
	debug bool,
) Model {
	messages := []string{
		"Story Mode console. /chapters lists stories, /play <chapter-id> starts one.",
		"",
	}
	if debug {
		messages = append(messages,
			"[DEBUG] debug logging active",
			fmt.Sprintf("[DEBUG] user id: %s", userID),
			"")
	}
	return Model{
		engine:   engine,
		library:  library,
		channels: channels,
		log:      log,
		userID:   userID,
		messages: messages,
		debug:    debug,
	}
}
