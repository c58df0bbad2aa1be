// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deck keeps the library of built decks in SQLite: it indexes deck
// files for full-text search and topic browsing, exports cards, and stores
// review progress.
package deck

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/commute-review/pkg/types"
)

const (
	builtDir = "built"
	indexDir = "index"
	dbFile   = "decks.db"

	defaultMaxResults = 20
)

// Store manages the deck library database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	log        *zap.Logger
}

// NewStore opens or creates the library database at dir/index/decks.db and
// creates the schema if it does not exist.
func NewStore(cfg types.DeckConfig, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Join(fmt.Errorf("opening database %s: %w", dbPath, err), db.Close())
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		dir:        cfg.Dir,
		maxResults: maxResults,
		log:        log,
	}
	if err := s.createSchema(); err != nil {
		return nil, errors.Join(fmt.Errorf("creating schema: %w", err), db.Close())
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BuiltDir is the directory Ingest reads deck files from.
func (s *Store) BuiltDir() string {
	return filepath.Join(s.dir, builtDir)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS decks (
			name TEXT PRIMARY KEY,
			source_file TEXT,
			generated_at TEXT,
			card_count INTEGER,
			topics TEXT,
			file_mod_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS cards (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			deck TEXT NOT NULL REFERENCES decks(name),
			id TEXT NOT NULL,
			type TEXT NOT NULL,
			topic TEXT NOT NULL,
			prompt TEXT NOT NULL,
			answer TEXT NOT NULL,
			source TEXT,
			UNIQUE(deck, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_topic ON cards(topic)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_type ON cards(type)`,
		`CREATE TABLE IF NOT EXISTS card_states (
			key TEXT PRIMARY KEY,
			ease REAL NOT NULL,
			interval_days REAL NOT NULL,
			reps INTEGER NOT NULL,
			due_ts INTEGER NOT NULL,
			last_ts INTEGER,
			last_grade TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS review_history (
			day TEXT PRIMARY KEY,
			done INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='cards_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE cards_fts USING fts5(prompt, answer, content=cards, content_rowid=rowid)`,
		`CREATE TRIGGER cards_ai AFTER INSERT ON cards BEGIN
			INSERT INTO cards_fts(rowid, prompt, answer) VALUES (new.rowid, new.prompt, new.answer);
		END`,
		`CREATE TRIGGER cards_ad AFTER DELETE ON cards BEGIN
			INSERT INTO cards_fts(cards_fts, rowid, prompt, answer) VALUES('delete', old.rowid, old.prompt, old.answer);
		END`,
		`CREATE TRIGGER cards_au AFTER UPDATE ON cards BEGIN
			INSERT INTO cards_fts(cards_fts, rowid, prompt, answer) VALUES('delete', old.rowid, old.prompt, old.answer);
			INSERT INTO cards_fts(rowid, prompt, answer) VALUES (new.rowid, new.prompt, new.answer);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from a library indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Removed int
	Failed  int
}

// Total returns the number of deck files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest indexes every deck file in dir/built/. Files whose modification
// time matches the last indexing run are skipped; decks whose file has
// disappeared are removed from the library. Their review progress is kept.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	dir := s.BuiltDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading deck directory %s: %w", dir, err)
	}

	var summary IngestSummary
	present := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		present[name] = true

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM decks WHERE name = ?`, name,
		).Scan(&storedModTime)
		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		var deck types.Deck
		if err := json.Unmarshal(data, &deck); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", name, err)
			summary.Failed++
			continue
		}

		if err := s.ingestDeck(ctx, name, &deck, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d cards)\n", name, len(deck.Cards))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d cards)\n", name, len(deck.Cards))
			summary.Indexed++
		}
	}

	removed, err := s.removeMissing(ctx, present)
	if err != nil {
		return summary, err
	}
	for _, name := range removed {
		fmt.Fprintf(w, "removed %s\n", name)
	}
	summary.Removed = len(removed)

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, removed: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Removed, summary.Failed)

	s.log.Debug("ingest finished", zap.String("dir", dir), zap.Int("total", summary.Total()))
	return summary, nil
}

func (s *Store) ingestDeck(ctx context.Context, name string, deck *types.Deck, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE deck = ?`, name); err != nil {
		return fmt.Errorf("deleting old cards: %w", err)
	}

	topics := deck.Meta.Topics
	if topics == nil {
		topics = []string{}
	}
	topicsJSON, _ := json.Marshal(topics)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO decks (name, source_file, generated_at, card_count, topics, file_mod_time)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			source_file=excluded.source_file, generated_at=excluded.generated_at,
			card_count=excluded.card_count, topics=excluded.topics,
			file_mod_time=excluded.file_mod_time`,
		name, deck.Meta.SourceFile, deck.Meta.GeneratedAt, len(deck.Cards),
		string(topicsJSON), modTime,
	)
	if err != nil {
		return fmt.Errorf("upserting deck: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cards (deck, id, type, topic, prompt, answer, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range deck.Cards {
		topic := c.Topic
		if topic == "" {
			topic = types.DefaultTopic
		}
		if _, err := stmt.ExecContext(ctx,
			name, c.ID, string(c.Type), topic, c.Prompt, c.Answer, c.Source,
		); err != nil {
			return fmt.Errorf("inserting card %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// removeMissing drops decks that are not in present and returns their names.
func (s *Store) removeMissing(ctx context.Context, present map[string]bool) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM decks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}
	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning deck: %w", err)
		}
		if !present[name] {
			stale = append(stale, name)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}

	for _, name := range stale {
		if err := s.removeDeck(ctx, name); err != nil {
			return nil, err
		}
	}
	return stale, nil
}

func (s *Store) removeDeck(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE deck = ?`, name); err != nil {
		return fmt.Errorf("removing cards of %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM decks WHERE name = ?`, name); err != nil {
		return fmt.Errorf("removing deck %s: %w", name, err)
	}
	return tx.Commit()
}

// DeckInfo describes an indexed deck.
type DeckInfo struct {
	Name        string   `json:"name" yaml:"name"`
	SourceFile  string   `json:"source_file" yaml:"source_file"`
	GeneratedAt string   `json:"generated_at" yaml:"generated_at"`
	CardCount   int      `json:"card_count" yaml:"card_count"`
	Topics      []string `json:"topics" yaml:"topics"`
}

// Decks lists the indexed decks by name.
func (s *Store) Decks(ctx context.Context) ([]DeckInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, source_file, generated_at, card_count, topics FROM decks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}
	defer rows.Close()

	var decks []DeckInfo
	for rows.Next() {
		var (
			d          DeckInfo
			source     sql.NullString
			generated  sql.NullString
			topicsJSON sql.NullString
		)
		if err := rows.Scan(&d.Name, &source, &generated, &d.CardCount, &topicsJSON); err != nil {
			return nil, fmt.Errorf("scanning deck: %w", err)
		}
		d.SourceFile = source.String
		d.GeneratedAt = generated.String
		if topicsJSON.Valid {
			if err := json.Unmarshal([]byte(topicsJSON.String), &d.Topics); err != nil {
				return nil, fmt.Errorf("parsing topics of %s: %w", d.Name, err)
			}
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}
