// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/commute-review/pkg/types"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// pool builds due, future and new items in deck "d" and their states.
func pool(due, future, fresh int) ([]Item, map[string]types.CardState) {
	var items []Item
	states := make(map[string]types.CardState)
	n := 0
	add := func(st *types.CardState) {
		n++
		it := Item{Deck: "d", Card: types.Card{ID: fmt.Sprintf("c%05d", n), Topic: "T"}}
		items = append(items, it)
		if st != nil {
			states[it.Key()] = *st
		}
	}
	for range due {
		add(&types.CardState{Ease: 2.5, DueTs: reviewNow.UnixMilli() - 1000})
	}
	for range future {
		add(&types.CardState{Ease: 2.5, DueTs: reviewNow.UnixMilli() + 1000})
	}
	for range fresh {
		add(nil)
	}
	return items, states
}

func classify(picked []Item, states map[string]types.CardState) (due, future, fresh int) {
	for _, it := range picked {
		st, ok := states[it.Key()]
		switch {
		case !ok:
			fresh++
		case IsDue(st, reviewNow):
			due++
		default:
			future++
		}
	}
	return due, future, fresh
}

func uniqueKeys(t *testing.T, items []Item) {
	t.Helper()
	seen := make(map[string]bool)
	for _, it := range items {
		require.False(t, seen[it.Key()], "duplicate %s", it.Key())
		seen[it.Key()] = true
	}
}

func TestItemKey(t *testing.T) {
	it := Item{Deck: "biology", Card: types.Card{ID: "c00042"}}
	assert.Equal(t, "biology/c00042", it.Key())
}

func TestCount(t *testing.T) {
	items, states := pool(4, 3, 2)
	assert.Equal(t, Counts{Due: 4, New: 2}, Count(items, states, reviewNow))
}

func TestChooseSession_SplitsDueAndNew(t *testing.T) {
	items, states := pool(20, 5, 20)
	settings := types.ReviewConfig{Goal: 30, Batch: 15, NewRatio: 0.3}

	picked := ChooseSession(items, states, settings, reviewNow, seeded())

	require.Len(t, picked, 15)
	uniqueKeys(t, picked)
	due, future, fresh := classify(picked, states)
	assert.Equal(t, 10, due)
	assert.Equal(t, 0, future)
	assert.Equal(t, 5, fresh)
}

func TestChooseSession_TopsUpFromRemaining(t *testing.T) {
	items, states := pool(2, 10, 1)
	settings := types.ReviewConfig{Batch: 6, NewRatio: 0.5}

	picked := ChooseSession(items, states, settings, reviewNow, seeded())

	require.Len(t, picked, 6)
	uniqueKeys(t, picked)
	due, future, fresh := classify(picked, states)
	assert.Equal(t, 2, due)
	assert.Equal(t, 1, fresh)
	assert.Equal(t, 3, future)
}

func TestChooseSession_SmallPool(t *testing.T) {
	items, states := pool(1, 1, 1)
	picked := ChooseSession(items, states, types.ReviewConfig{Batch: 15, NewRatio: 0.3}, reviewNow, seeded())
	assert.Len(t, picked, 3)
	uniqueKeys(t, picked)
}

func TestChooseSession_Empty(t *testing.T) {
	assert.Empty(t, ChooseSession(nil, nil, types.ReviewConfig{}, reviewNow, seeded()))
}

func TestChooseSession_ClampsBatch(t *testing.T) {
	items, states := pool(0, 0, 80)
	picked := ChooseSession(items, states, types.ReviewConfig{Batch: 100, NewRatio: 1}, reviewNow, seeded())
	assert.Len(t, picked, 50)
}

func TestChooseSession_Deterministic(t *testing.T) {
	items, states := pool(10, 10, 10)
	settings := types.ReviewConfig{Batch: 10, NewRatio: 0.3}

	a := ChooseSession(items, states, settings, reviewNow, seeded())
	b := ChooseSession(items, states, settings, reviewNow, seeded())
	assert.Equal(t, a, b)
}

func TestTopicSession(t *testing.T) {
	items := []Item{
		{Deck: "d", Card: types.Card{ID: "c00001", Topic: "Cells"}},
		{Deck: "d", Card: types.Card{ID: "c00002", Topic: "Genes"}},
		{Deck: "d", Card: types.Card{ID: "c00003", Topic: "Cells"}},
		{Deck: "e", Card: types.Card{ID: "c00001", Topic: "Cells"}},
		{Deck: "e", Card: types.Card{ID: "c00002"}},
	}

	got := TopicSession(items, "Cells", 2, seeded())
	require.Len(t, got, 2)
	for _, it := range got {
		assert.Equal(t, "Cells", it.Card.Topic)
	}

	assert.Len(t, TopicSession(items, "Cells", 10, seeded()), 3)
	general := TopicSession(items, types.DefaultTopic, 10, seeded())
	require.Len(t, general, 1)
	assert.Equal(t, "e/c00002", general[0].Key())
	assert.Empty(t, TopicSession(items, "Missing", 10, seeded()))
}

func TestTopics(t *testing.T) {
	items := []Item{
		{Card: types.Card{Topic: "Genes"}},
		{Card: types.Card{Topic: "Cells"}},
		{Card: types.Card{Topic: "Cells"}},
		{Card: types.Card{}},
		{Card: types.Card{Topic: "Optics"}},
	}
	assert.Equal(t, []TopicCount{
		{Topic: "Cells", Cards: 2},
		{Topic: "Genes", Cards: 1},
		{Topic: types.DefaultTopic, Cards: 1},
		{Topic: "Optics", Cards: 1},
	}, Topics(items))
}
