// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/commute-review/internal/review"
	"github.com/pdiddy/commute-review/pkg/types"
)

// ErrInvalidProgress is returned when an imported document lacks the cards
// or history object.
var ErrInvalidProgress = errors.New("invalid progress document: expected cards and history")

var _ review.ProgressStore = (*Store)(nil)

// CardStates returns the state of every reviewed card keyed by
// "<deck>/<card id>".
func (s *Store) CardStates(ctx context.Context) (map[string]types.CardState, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, ease, interval_days, reps, due_ts, last_ts, last_grade FROM card_states`)
	if err != nil {
		return nil, fmt.Errorf("loading card states: %w", err)
	}
	defer rows.Close()

	states := make(map[string]types.CardState)
	for rows.Next() {
		key, st, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		states[key] = st
	}
	return states, rows.Err()
}

// CardState returns the state stored for key and whether one exists.
func (s *Store) CardState(ctx context.Context, key string) (types.CardState, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, ease, interval_days, reps, due_ts, last_ts, last_grade FROM card_states WHERE key = ?`, key)
	_, st, err := scanState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CardState{}, false, nil
	}
	if err != nil {
		return types.CardState{}, false, err
	}
	return st, true, nil
}

func scanState(row scanner) (string, types.CardState, error) {
	var (
		key       string
		st        types.CardState
		lastTs    sql.NullInt64
		lastGrade sql.NullString
	)
	if err := row.Scan(&key, &st.Ease, &st.IntervalDays, &st.Reps, &st.DueTs, &lastTs, &lastGrade); err != nil {
		return "", types.CardState{}, fmt.Errorf("scanning card state: %w", err)
	}
	st.LastTs = lastTs.Int64
	st.LastGrade = types.Grade(lastGrade.String)
	return key, st, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveState(ctx context.Context, db execer, key string, st types.CardState) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO card_states (key, ease, interval_days, reps, due_ts, last_ts, last_grade)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			ease=excluded.ease, interval_days=excluded.interval_days, reps=excluded.reps,
			due_ts=excluded.due_ts, last_ts=excluded.last_ts, last_grade=excluded.last_grade`,
		key, st.Ease, st.IntervalDays, st.Reps, st.DueTs,
		nullInt(st.LastTs), nullString(string(st.LastGrade)),
	)
	if err != nil {
		return fmt.Errorf("saving state for %s: %w", key, err)
	}
	return nil
}

// SaveCardState stores the state for key, replacing any previous state.
func (s *Store) SaveCardState(ctx context.Context, key string, st types.CardState) error {
	return saveState(ctx, s.db, key, st)
}

// DoneOn returns the number of reviews recorded on day (YYYY-MM-DD).
func (s *Store) DoneOn(ctx context.Context, day string) (int, error) {
	var done int
	err := s.db.QueryRowContext(ctx, `SELECT done FROM review_history WHERE day = ?`, day).Scan(&done)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("loading history for %s: %w", day, err)
	}
	return done, nil
}

// IncDone adds one review to day's count.
func (s *Store) IncDone(ctx context.Context, day string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO review_history (day, done) VALUES (?, 1)
		 ON CONFLICT(day) DO UPDATE SET done = done + 1`, day)
	if err != nil {
		return fmt.Errorf("recording review on %s: %w", day, err)
	}
	return nil
}

// ResetProgress forgets every card state and the review history.
func (s *Store) ResetProgress(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearProgress(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func clearProgress(ctx context.Context, db execer) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM card_states`); err != nil {
		return fmt.Errorf("clearing card states: %w", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM review_history`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Progress returns the full progress document.
func (s *Store) Progress(ctx context.Context) (types.Progress, error) {
	cards, err := s.CardStates(ctx)
	if err != nil {
		return types.Progress{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT day, done FROM review_history`)
	if err != nil {
		return types.Progress{}, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	history := make(map[string]types.DayHistory)
	for rows.Next() {
		var (
			day  string
			done int
		)
		if err := rows.Scan(&day, &done); err != nil {
			return types.Progress{}, fmt.Errorf("scanning history: %w", err)
		}
		history[day] = types.DayHistory{Done: done}
	}
	if err := rows.Err(); err != nil {
		return types.Progress{}, fmt.Errorf("loading history: %w", err)
	}
	return types.Progress{Cards: cards, History: history}, nil
}

// ExportProgress writes the progress document as indented JSON, the format
// the browser review app imports.
func (s *Store) ExportProgress(ctx context.Context, w io.Writer) error {
	p, err := s.Progress(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}
	return nil
}

// ImportProgress replaces all progress with the document read from r. The
// document must carry both a cards and a history object; otherwise nothing
// changes and ErrInvalidProgress is returned.
func (s *Store) ImportProgress(ctx context.Context, r io.Reader) (types.Progress, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return types.Progress{}, fmt.Errorf("parsing progress: %w", err)
	}
	if !present(raw["cards"]) || !present(raw["history"]) {
		return types.Progress{}, ErrInvalidProgress
	}

	var p types.Progress
	if err := json.Unmarshal(raw["cards"], &p.Cards); err != nil {
		return types.Progress{}, fmt.Errorf("parsing progress cards: %w", err)
	}
	if err := json.Unmarshal(raw["history"], &p.History); err != nil {
		return types.Progress{}, fmt.Errorf("parsing progress history: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Progress{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearProgress(ctx, tx); err != nil {
		return types.Progress{}, err
	}
	for key, st := range p.Cards {
		if st.Ease == 0 {
			st.Ease = review.NewState().Ease
		}
		if err := saveState(ctx, tx, key, st); err != nil {
			return types.Progress{}, err
		}
	}
	for day, h := range p.History {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO review_history (day, done) VALUES (?, ?)`, day, h.Done,
		); err != nil {
			return types.Progress{}, fmt.Errorf("importing history for %s: %w", day, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return types.Progress{}, fmt.Errorf("committing import: %w", err)
	}
	return p, nil
}

// present reports whether a JSON value exists and is not null or false.
func present(v json.RawMessage) bool {
	switch string(v) {
	case "", "null", "false":
		return false
	}
	return true
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
