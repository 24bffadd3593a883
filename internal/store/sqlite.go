// Package store is the relational persistence collaborator: per-user affinity
// scores, gift inventory, the owned-card collection, chapter completions, and
// a reward grant audit log.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path. Use ":memory:" in tests.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLite) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS affinity (
		user_id      TEXT NOT NULL,
		character_id TEXT NOT NULL,
		score        INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, character_id)
	);

	CREATE TABLE IF NOT EXISTS inventory (
		user_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		qty     INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, item_id)
	);

	CREATE TABLE IF NOT EXISTS collection (
		user_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		PRIMARY KEY (user_id, item_id)
	);

	CREATE TABLE IF NOT EXISTS chapter_completions (
		user_id      TEXT NOT NULL,
		character_id TEXT NOT NULL,
		chapter_id   TEXT NOT NULL,
		completed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, chapter_id)
	);

	CREATE TABLE IF NOT EXISTS reward_grants (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		chapter_id TEXT NOT NULL,
		item_ids   TEXT NOT NULL,
		granted_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Affinity returns the user's score with a character; an unknown pair is 0.
func (s *SQLite) Affinity(ctx context.Context, userID, characterID string) (int, error) {
	var score int
	err := s.db.QueryRowContext(ctx,
		`SELECT score FROM affinity WHERE user_id = ? AND character_id = ?`,
		userID, characterID).Scan(&score)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read affinity %s/%s: %w", userID, characterID, err)
	}
	return score, nil
}

// AddAffinity adjusts the score and returns the new value.
func (s *SQLite) AddAffinity(ctx context.Context, userID, characterID string, delta int) (int, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO affinity (user_id, character_id, score) VALUES (?, ?, ?)
		ON CONFLICT (user_id, character_id) DO UPDATE SET score = score + excluded.score`,
		userID, characterID, delta)
	if err != nil {
		return 0, fmt.Errorf("update affinity %s/%s: %w", userID, characterID, err)
	}
	return s.Affinity(ctx, userID, characterID)
}

// AddInventoryItem credits qty of the item to the user.
func (s *SQLite) AddInventoryItem(ctx context.Context, userID, itemID string, qty int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory (user_id, item_id, qty) VALUES (?, ?, ?)
		ON CONFLICT (user_id, item_id) DO UPDATE SET qty = qty + excluded.qty`,
		userID, itemID, qty)
	if err != nil {
		return fmt.Errorf("add inventory %s x%d for %s: %w", itemID, qty, userID, err)
	}
	return nil
}

// UseInventoryItem consumes qty of the item. Returns false, leaving the row
// untouched, when the user holds fewer than qty.
func (s *SQLite) UseInventoryItem(ctx context.Context, userID, itemID string, qty int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE inventory SET qty = qty - ? WHERE user_id = ? AND item_id = ? AND qty >= ?`,
		qty, userID, itemID, qty)
	if err != nil {
		return false, fmt.Errorf("use inventory %s x%d for %s: %w", itemID, qty, userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("use inventory %s for %s: %w", itemID, userID, err)
	}
	return affected > 0, nil
}

// OwnedItemIDs returns the user's card collection as a set.
func (s *SQLite) OwnedItemIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id FROM collection WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("read collection for %s: %w", userID, err)
	}
	defer rows.Close()

	owned := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("read collection for %s: %w", userID, err)
		}
		owned[id] = true
	}
	return owned, rows.Err()
}

// RecordCompletion marks the chapter complete, credits granted items to the
// collection, and appends the grant audit row, all in one transaction. This
// narrows, without closing, the window where a crash loses a reward.
func (s *SQLite) RecordCompletion(ctx context.Context, userID, characterID, chapterID string, items []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record completion %s for %s: %w", chapterID, userID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chapter_completions (user_id, character_id, chapter_id) VALUES (?, ?, ?)
		ON CONFLICT (user_id, chapter_id) DO NOTHING`,
		userID, characterID, chapterID); err != nil {
		return fmt.Errorf("record completion %s for %s: %w", chapterID, userID, err)
	}

	for _, itemID := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO collection (user_id, item_id) VALUES (?, ?)
			ON CONFLICT (user_id, item_id) DO NOTHING`,
			userID, itemID); err != nil {
			return fmt.Errorf("credit item %s to %s: %w", itemID, userID, err)
		}
	}

	if len(items) > 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reward_grants (user_id, chapter_id, item_ids) VALUES (?, ?, ?)`,
			userID, chapterID, strings.Join(items, ",")); err != nil {
			return fmt.Errorf("log grant for %s: %w", userID, err)
		}
	}
	return tx.Commit()
}

// CompletedChapters lists the chapter ids the user has finished.
func (s *SQLite) CompletedChapters(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chapter_id FROM chapter_completions WHERE user_id = ? ORDER BY completed_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("read completions for %s: %w", userID, err)
	}
	defer rows.Close()

	var chapters []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("read completions for %s: %w", userID, err)
		}
		chapters = append(chapters, id)
	}
	return chapters, rows.Err()
}
