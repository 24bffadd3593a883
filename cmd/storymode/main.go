// Story Mode dev console: a terminal client for playing narrative chapters
// against the session engine, with the same LLM-backed characters the product
// ships. Built with Bubble Tea.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"storymode/internal/config"
	"storymode/internal/store"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "progress" {
		if len(os.Args) < 3 {
			fmt.Println("Usage: storymode progress <user-id>")
			os.Exit(1)
		}
		runProgressMode(os.Args[2])
		return
	}

	model, shutdown, err := createApp()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer shutdown()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// runProgressMode prints a user's chapter and collection progress without
// starting the console.
func runProgressMode(userID string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		fmt.Printf("Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	chapters, err := db.CompletedChapters(ctx, userID)
	if err != nil {
		fmt.Printf("Failed to read completions: %v\n", err)
		os.Exit(1)
	}
	if len(chapters) == 0 {
		fmt.Println("No chapters completed yet.")
		return
	}

	fmt.Printf("Completed chapters (%d):\n", len(chapters))
	for _, id := range chapters {
		fmt.Printf("  %s\n", id)
	}

	owned, err := db.OwnedItemIDs(ctx, userID)
	if err != nil {
		fmt.Printf("Failed to read collection: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Collection: %d items\n", len(owned))
}
