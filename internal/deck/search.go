// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/commute-review/internal/review"
	"github.com/pdiddy/commute-review/pkg/types"
)

// QueryOptions holds parameters for card searches.
type QueryOptions struct {
	// Query is a full-text search over prompts and answers. Every word must
	// match.
	Query string

	// Type filters by card type.
	Type types.CardType

	// Topic filters by exact topic.
	Topic string

	// Deck filters by deck name.
	Deck string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Type == "" && q.Topic == "" && q.Deck == ""
}

// Result is a card with the deck it came from.
type Result struct {
	Deck       string `json:"deck" yaml:"deck"`
	types.Card `yaml:",inline"`
}

// Search returns cards matching opts. Full-text queries are ranked by
// relevance; filter-only queries are ordered by deck and card ID.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = strings.TrimSpace(opts.Query) != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT c.deck, c.id, c.type, c.topic, c.prompt, c.answer, c.source
			FROM cards_fts
			JOIN cards c ON c.rowid = cards_fts.rowid
			WHERE cards_fts MATCH ?`)
		args = append(args, ftsQuery(opts.Query))
	} else {
		qb.WriteString(
			`SELECT c.deck, c.id, c.type, c.topic, c.prompt, c.answer, c.source
			FROM cards c
			WHERE 1=1`)
	}

	if opts.Type != "" {
		qb.WriteString(` AND c.type = ?`)
		args = append(args, string(opts.Type))
	}
	if opts.Topic != "" {
		qb.WriteString(` AND c.topic = ?`)
		args = append(args, opts.Topic)
	}
	if opts.Deck != "" {
		qb.WriteString(` AND c.deck = ?`)
		args = append(args, opts.Deck)
	}

	if useFTS {
		qb.WriteString(` ORDER BY cards_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY c.deck, c.id`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying deck library: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery quotes every word of q so punctuation such as "=" or ":" is
// matched literally instead of parsed as FTS5 syntax.
func ftsQuery(q string) string {
	words := strings.Fields(q)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (Result, error) {
	var (
		r        Result
		cardType string
		source   sql.NullString
	)
	if err := row.Scan(&r.Deck, &r.ID, &cardType, &r.Topic, &r.Prompt, &r.Answer, &source); err != nil {
		return Result{}, fmt.Errorf("scanning row: %w", err)
	}
	r.Type = types.CardType(cardType)
	r.Source = source.String
	return r, nil
}

// Card looks up one card.
func (s *Store) Card(ctx context.Context, deck, id string) (types.Card, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT deck, id, type, topic, prompt, answer, source FROM cards WHERE deck = ? AND id = ?`,
		deck, id)
	r, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Card{}, fmt.Errorf("card %s/%s not found", deck, id)
		}
		return types.Card{}, err
	}
	return r.Card, nil
}

// Items returns every card of the library, or of one deck, as review items
// in deck and card ID order.
func (s *Store) Items(ctx context.Context, deck string) ([]review.Item, error) {
	query := `SELECT deck, id, type, topic, prompt, answer, source FROM cards`
	var args []any
	if deck != "" {
		query += ` WHERE deck = ?`
		args = append(args, deck)
	}
	query += ` ORDER BY deck, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading cards: %w", err)
	}
	defer rows.Close()

	var items []review.Item
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, review.Item{Deck: r.Deck, Card: r.Card})
	}
	return items, rows.Err()
}

// Topics lists topics with their card counts, most cards first. A non-empty
// filter keeps topics containing it, ignoring case.
func (s *Store) Topics(ctx context.Context, filter string) ([]review.TopicCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic, count(*) AS n FROM cards GROUP BY topic ORDER BY n DESC, topic`)
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}
	defer rows.Close()

	needle := strings.ToLower(strings.TrimSpace(filter))
	var topics []review.TopicCount
	for rows.Next() {
		var tc review.TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Cards); err != nil {
			return nil, fmt.Errorf("scanning topic: %w", err)
		}
		if needle != "" && !strings.Contains(strings.ToLower(tc.Topic), needle) {
			continue
		}
		topics = append(topics, tc)
	}
	return topics, rows.Err()
}
