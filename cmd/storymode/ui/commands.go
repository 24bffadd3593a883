package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"storymode/internal/story"
)

// engineResultMsg carries the outcome of one engine call back into the UI
// loop: the channel now bound to the console plus any error to display.
type engineResultMsg struct {
	channelID string
	err       error
	info      string
}

type animationTickMsg struct{}

func animationTimer() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return animationTickMsg{}
	})
}

// dispatch interprets one console line: slash commands drive the engine API,
// anything else is an inbound chat message for the active channel.
func (m *Model) dispatch(line string) tea.Cmd {
	engine := m.engine
	userID := m.userID
	channelID := m.channelID

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "/chapters":
		return func() tea.Msg {
			var b strings.Builder
			for _, ch := range m.library.All() {
				fmt.Fprintf(&b, "%s — %s (%s)\n", ch.ID, ch.Title, ch.Win)
			}
			return engineResultMsg{channelID: channelID, info: strings.TrimSpace(b.String())}
		}

	case "/play":
		if len(fields) != 2 {
			return usage("/play <chapter-id>")
		}
		chapterID := fields[1]
		ch, ok := m.library.Chapter(chapterID)
		if !ok {
			return usage("unknown chapter; see /chapters")
		}
		return func() tea.Msg {
			id, err := engine.BeginChapter(context.Background(), userID, ch.CharacterID, chapterID)
			return engineResultMsg{channelID: id, err: err}
		}

	case "/gift":
		if len(fields) != 2 {
			return usage("/gift <item-id>")
		}
		itemID := fields[1]
		return func() tea.Msg {
			_, err := engine.UseGift(context.Background(), channelID, userID, itemID)
			return engineResultMsg{channelID: channelID, err: err}
		}

	case "/accuse":
		if len(fields) != 2 {
			return usage("/accuse <suspect-id>")
		}
		suspectID := fields[1]
		return func() tea.Msg {
			_, err := engine.AccuseSuspect(context.Background(), channelID, userID, suspectID)
			return engineResultMsg{channelID: channelID, err: err}
		}

	default:
		if strings.HasPrefix(fields[0], "/") {
			return usage("commands: /chapters /play /gift /accuse")
		}
		return func() tea.Msg {
			err := engine.HandleIncomingMessage(context.Background(), channelID, userID, line)
			return engineResultMsg{channelID: channelID, err: err}
		}
	}
}

func usage(text string) tea.Cmd {
	return func() tea.Msg {
		return engineResultMsg{info: text}
	}
}

// displayError renders engine errors the way the product would: resource
// problems as rejections, everything else generically.
func displayError(err error) string {
	switch {
	case errors.Is(err, story.ErrInsufficientItem):
		return "You don't have that item."
	case errors.Is(err, story.ErrAlreadyActive):
		return "A chapter is already running in that channel. Finish it first."
	case errors.Is(err, story.ErrNoSession), errors.Is(err, story.ErrInactiveSession):
		return "No active chapter here. Start one with /play."
	case errors.Is(err, story.ErrWrongPhase):
		return "That doesn't fit this moment of the story."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
