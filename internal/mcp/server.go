// Package mcp exposes the story engine's operations as MCP tools so external
// assistants and tooling can drive chapters over the protocol.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"storymode/internal/story"
	"storymode/internal/transport"
)

const (
	serverName    = "storymode"
	serverVersion = "v1.0.0"
)

// NewServer builds an MCP server wired to the engine. The in-memory channels
// double as the caller's view of delivered messages.
func NewServer(engine *story.Engine, library *story.Library, channels *transport.InMemory) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(server, listChaptersTool(), listChaptersHandler(library))
	mcp.AddTool(server, beginChapterTool(), beginChapterHandler(engine))
	mcp.AddTool(server, sendMessageTool(), sendMessageHandler(engine))
	mcp.AddTool(server, useGiftTool(), useGiftHandler(engine))
	mcp.AddTool(server, accuseSuspectTool(), accuseSuspectHandler(engine))
	mcp.AddTool(server, readMessagesTool(), readMessagesHandler(channels))
	return server
}

// Serve runs the server over stdio until the context ends.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, mcp.NewStdioTransport())
}

type listChaptersArgs struct {
	CharacterID string `json:"character_id,omitempty" jsonschema:"filter to one character"`
}

func listChaptersTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_chapters",
		Description: "List available story chapters, optionally for one character.",
	}
}

func listChaptersHandler(library *story.Library) mcp.ToolHandlerFor[listChaptersArgs, any] {
	return func(_ context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[listChaptersArgs]) (*mcp.CallToolResultFor[any], error) {
		chapters := library.All()
		if params.Arguments.CharacterID != "" {
			chapters = library.ChaptersFor(params.Arguments.CharacterID)
		}
		var b strings.Builder
		for _, ch := range chapters {
			fmt.Fprintf(&b, "%s (%s): %s [%s]\n", ch.ID, ch.CharacterID, ch.Title, ch.Win)
		}
		if b.Len() == 0 {
			b.WriteString("no chapters found")
		}
		return textResult(b.String()), nil
	}
}

type beginChapterArgs struct {
	UserID      string `json:"user_id"`
	CharacterID string `json:"character_id"`
	ChapterID   string `json:"chapter_id"`
}

func beginChapterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "begin_chapter",
		Description: "Start a story chapter for a user, returning the channel id.",
	}
}

func beginChapterHandler(engine *story.Engine) mcp.ToolHandlerFor[beginChapterArgs, any] {
	return func(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[beginChapterArgs]) (*mcp.CallToolResultFor[any], error) {
		args := params.Arguments
		channelID, err := engine.BeginChapter(ctx, args.UserID, args.CharacterID, args.ChapterID)
		if err != nil {
			return errorResult(err), nil
		}
		return textResult("channel: " + channelID), nil
	}
}

type sendMessageArgs struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
}

func sendMessageTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "send_message",
		Description: "Deliver one user message into a story channel.",
	}
}

func sendMessageHandler(engine *story.Engine) mcp.ToolHandlerFor[sendMessageArgs, any] {
	return func(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[sendMessageArgs]) (*mcp.CallToolResultFor[any], error) {
		args := params.Arguments
		if err := engine.HandleIncomingMessage(ctx, args.ChannelID, args.UserID, args.Text); err != nil {
			return errorResult(err), nil
		}
		return textResult("delivered"), nil
	}
}

type useGiftArgs struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	ItemID    string `json:"item_id"`
}

func useGiftTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "use_gift",
		Description: "Offer an inventory item as a gift in a gift-resolution chapter.",
	}
}

func useGiftHandler(engine *story.Engine) mcp.ToolHandlerFor[useGiftArgs, any] {
	return func(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[useGiftArgs]) (*mcp.CallToolResultFor[any], error) {
		args := params.Arguments
		result, err := engine.UseGift(ctx, args.ChannelID, args.UserID, args.ItemID)
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(fmt.Sprintf("accepted (%s band); received: %s",
			result.Rarity, strings.Join(result.Items, ", "))), nil
	}
}

type accuseSuspectArgs struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	SuspectID string `json:"suspect_id"`
}

func accuseSuspectTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "accuse_suspect",
		Description: "Accuse a suspect in a mystery-deduction chapter.",
	}
}

func accuseSuspectHandler(engine *story.Engine) mcp.ToolHandlerFor[accuseSuspectArgs, any] {
	return func(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[accuseSuspectArgs]) (*mcp.CallToolResultFor[any], error) {
		args := params.Arguments
		result, err := engine.AccuseSuspect(ctx, args.ChannelID, args.UserID, args.SuspectID)
		if err != nil {
			return errorResult(err), nil
		}
		switch {
		case result.Correct:
			return textResult("correct; received: " + strings.Join(result.Items, ", ")), nil
		case result.Failed:
			return textResult("wrong; the mystery is closed"), nil
		default:
			return textResult(fmt.Sprintf("wrong; %d guesses remain", result.RemainingGuesses)), nil
		}
	}
}

type readMessagesArgs struct {
	ChannelID string `json:"channel_id"`
}

func readMessagesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "read_messages",
		Description: "Read everything the story has delivered to a channel.",
	}
}

func readMessagesHandler(channels *transport.InMemory) mcp.ToolHandlerFor[readMessagesArgs, any] {
	return func(_ context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[readMessagesArgs]) (*mcp.CallToolResultFor[any], error) {
		messages := channels.Messages(params.Arguments.ChannelID)
		if len(messages) == 0 {
			return textResult("(no messages)"), nil
		}
		return textResult(strings.Join(messages, "\n---\n")), nil
	}
}

func textResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
