// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/pdiddy/commute-review/pkg/types"
)

// Item is a card together with the deck it belongs to.
type Item struct {
	Deck string     `json:"deck" yaml:"deck"`
	Card types.Card `json:"card" yaml:"card"`
}

// Key identifies the item in progress documents: "<deck>/<card id>".
func (it Item) Key() string {
	return it.Deck + "/" + it.Card.ID
}

// Counts summarizes a card pool at a moment in time.
type Counts struct {
	Due int `json:"due" yaml:"due"`
	New int `json:"new" yaml:"new"`
}

// Count returns how many items are due and how many have never been
// reviewed.
func Count(items []Item, states map[string]types.CardState, now time.Time) Counts {
	var c Counts
	for _, it := range items {
		st, ok := states[it.Key()]
		switch {
		case !ok:
			c.New++
		case IsDue(st, now):
			c.Due++
		}
	}
	return c
}

// ChooseSession picks up to settings.Batch items. A share of round(batch *
// new ratio) is reserved for unseen cards and the rest for due cards; any
// shortfall is topped up from the remaining items. The result is shuffled.
func ChooseSession(items []Item, states map[string]types.CardState, settings types.ReviewConfig, now time.Time, rng *rand.Rand) []Item {
	settings = settings.Clamp()

	var due, fresh []Item
	for _, it := range items {
		st, ok := states[it.Key()]
		switch {
		case !ok:
			fresh = append(fresh, it)
		case IsDue(st, now):
			due = append(due, it)
		}
	}

	batch := settings.Batch
	wantNew := int(round(float64(batch) * settings.NewRatio))
	wantDue := batch - wantNew

	picked := take(shuffled(due, rng), wantDue)
	picked = append(picked, take(shuffled(fresh, rng), wantNew)...)

	if len(picked) < batch {
		chosen := make(map[string]bool, len(picked))
		for _, it := range picked {
			chosen[it.Key()] = true
		}
		var rest []Item
		for _, it := range items {
			if !chosen[it.Key()] {
				rest = append(rest, it)
			}
		}
		picked = append(picked, take(shuffled(rest, rng), batch-len(picked))...)
	}

	return shuffled(picked, rng)
}

// TopicSession returns up to batch shuffled items whose card topic is topic.
// Cards without a topic belong to the default topic.
func TopicSession(items []Item, topic string, batch int, rng *rand.Rand) []Item {
	var matched []Item
	for _, it := range items {
		if topicOf(it.Card) == topic {
			matched = append(matched, it)
		}
	}
	return take(shuffled(matched, rng), batch)
}

// TopicCount is a topic name and the number of cards in it.
type TopicCount struct {
	Topic string `json:"topic" yaml:"topic"`
	Cards int    `json:"cards" yaml:"cards"`
}

// Topics lists every topic with its card count, largest first. Ties keep
// first-seen order.
func Topics(items []Item) []TopicCount {
	index := make(map[string]int)
	var out []TopicCount
	for _, it := range items {
		t := topicOf(it.Card)
		i, ok := index[t]
		if !ok {
			i = len(out)
			index[t] = i
			out = append(out, TopicCount{Topic: t})
		}
		out[i].Cards++
	}
	slices.SortStableFunc(out, func(a, b TopicCount) int { return b.Cards - a.Cards })
	return out
}

func topicOf(c types.Card) string {
	if c.Topic == "" {
		return types.DefaultTopic
	}
	return c.Topic
}

func shuffled(items []Item, rng *rand.Rand) []Item {
	out := slices.Clone(items)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func take(items []Item, n int) []Item {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
