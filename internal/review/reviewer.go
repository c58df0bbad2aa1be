// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/commute-review/pkg/types"
)

// ProgressStore persists card states and the per-day review history.
// Card keys have the form "<deck>/<card id>" and day keys "YYYY-MM-DD".
type ProgressStore interface {
	CardStates(ctx context.Context) (map[string]types.CardState, error)
	CardState(ctx context.Context, key string) (types.CardState, bool, error)
	SaveCardState(ctx context.Context, key string, st types.CardState) error
	DoneOn(ctx context.Context, day string) (int, error)
	IncDone(ctx context.Context, day string) error
}

// Stats is the home-screen summary of a card pool.
type Stats struct {
	Counts
	DoneToday int `json:"done_today" yaml:"done_today"`
	Goal      int `json:"goal" yaml:"goal"`
}

// Reviewer runs review sessions against a ProgressStore.
type Reviewer struct {
	store    ProgressStore
	settings types.ReviewConfig
	log      *zap.Logger

	now func() time.Time
	rng *rand.Rand
}

// NewReviewer returns a Reviewer. Settings are clamped to their allowed
// ranges and a nil logger discards diagnostics.
func NewReviewer(store ProgressStore, settings types.ReviewConfig, log *zap.Logger) *Reviewer {
	if log == nil {
		log = zap.NewNop()
	}
	seed := uint64(time.Now().UnixNano())
	return &Reviewer{
		store:    store,
		settings: settings.Clamp(),
		log:      log,
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(seed, seed>>32)),
	}
}

// Settings returns the clamped session settings.
func (r *Reviewer) Settings() types.ReviewConfig {
	return r.settings
}

// Session picks the cards for a session. With a topic, the session draws
// only from that topic regardless of due dates.
func (r *Reviewer) Session(ctx context.Context, items []Item, topic string) ([]Item, error) {
	if topic != "" {
		return TopicSession(items, topic, r.settings.Batch, r.rng), nil
	}
	states, err := r.store.CardStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading card states: %w", err)
	}
	picked := ChooseSession(items, states, r.settings, r.now(), r.rng)
	r.log.Debug("session chosen", zap.Int("pool", len(items)), zap.Int("picked", len(picked)))
	return picked, nil
}

// Grade records a review of the card with the given key and counts it
// toward today's goal.
func (r *Reviewer) Grade(ctx context.Context, key string, grade types.Grade) (types.CardState, error) {
	if !grade.Valid() {
		return types.CardState{}, fmt.Errorf("unknown grade %q: use again, hard, good, or easy", grade)
	}
	st, ok, err := r.store.CardState(ctx, key)
	if err != nil {
		return types.CardState{}, fmt.Errorf("loading state for %s: %w", key, err)
	}
	if !ok {
		st = NewState()
	}

	now := r.now()
	next := Update(st, grade, now)
	if err := r.store.SaveCardState(ctx, key, next); err != nil {
		return types.CardState{}, fmt.Errorf("saving state for %s: %w", key, err)
	}
	if err := r.store.IncDone(ctx, DayKey(now)); err != nil {
		return types.CardState{}, fmt.Errorf("recording review: %w", err)
	}

	r.log.Debug("card graded",
		zap.String("card", key),
		zap.String("grade", string(grade)),
		zap.Float64("interval_days", next.IntervalDays),
		zap.Float64("ease", next.Ease),
	)
	return next, nil
}

// Stats reports due and new counts for items plus today's progress.
func (r *Reviewer) Stats(ctx context.Context, items []Item) (Stats, error) {
	states, err := r.store.CardStates(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("loading card states: %w", err)
	}
	now := r.now()
	done, err := r.store.DoneOn(ctx, DayKey(now))
	if err != nil {
		return Stats{}, fmt.Errorf("loading history: %w", err)
	}
	return Stats{
		Counts:    Count(items, states, now),
		DoneToday: done,
		Goal:      r.settings.Goal,
	}, nil
}
