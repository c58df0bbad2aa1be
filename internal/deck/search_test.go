package deck

import (
	"context"
	"strings"
	"testing"

	"github.com/pdiddy/commute-review/pkg/types"
)

func searchSetup(t *testing.T) *Store {
	t.Helper()
	store, dir := testSetup(t)
	writeDeck(t, dir, "physics", physicsCards())
	writeDeck(t, dir, "biology", biologyCards())
	ingest(t, store)
	return store
}

func TestSearchFullText(t *testing.T) {
	store := searchSetup(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"prompt term", "Refraction", 1},
		{"answer term", "acceleration", 2},
		{"all words must match", "mass Force", 2},
		{"punctuation is not syntax", "Define:", 2},
		{"no match", "quantum xyzzy", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Search(context.Background(), QueryOptions{Query: tt.query})
			if err != nil {
				t.Fatal(err)
			}
			if len(results) != tt.want {
				t.Errorf("got %d results, want %d: %+v", len(results), tt.want, results)
			}
		})
	}
}

func TestSearchFilters(t *testing.T) {
	store := searchSetup(t)

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{"deck", QueryOptions{Deck: "biology"}, []string{"biology/c00001", "biology/c00002"}},
		{"type", QueryOptions{Type: types.CardCloze}, []string{"biology/c00002", "physics/c00002"}},
		{"topic", QueryOptions{Topic: "Optics"}, []string{"physics/c00003", "physics/c00005"}},
		{"combined", QueryOptions{Query: "light", Topic: "Optics", Type: types.CardRecall}, []string{"physics/c00005"}},
		{"limit", QueryOptions{MaxResults: 3}, []string{"biology/c00001", "biology/c00002", "physics/c00001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Search(context.Background(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, r := range results {
				got = append(got, r.Deck+"/"+r.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchReturnsAllFields(t *testing.T) {
	store := searchSetup(t)

	results, err := store.Search(context.Background(), QueryOptions{Query: "Refraction"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	want := Result{Deck: "physics", Card: physicsCards()[2]}
	if results[0] != want {
		t.Errorf("got %+v, want %+v", results[0], want)
	}
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	if !(QueryOptions{MaxResults: 5}).IsEmpty() {
		t.Error("limit-only options should be empty")
	}
	if (QueryOptions{Topic: "Optics"}).IsEmpty() {
		t.Error("topic filter should not be empty")
	}
}

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Force", `"Force"`},
		{"  mass  force ", `"mass" "force"`},
		{`say "hi"`, `"say" """hi"""`},
		{"Define: F=ma", `"Define:" "F=ma"`},
	}
	for _, tt := range tests {
		if got := ftsQuery(tt.in); got != tt.want {
			t.Errorf("ftsQuery(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestItems(t *testing.T) {
	store := searchSetup(t)

	items, err := store.Items(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 6 {
		t.Fatalf("got %d items, want 6", len(items))
	}
	if items[0].Key() != "biology/c00001" || items[5].Key() != "physics/c00005" {
		t.Errorf("unexpected order: %s .. %s", items[0].Key(), items[5].Key())
	}

	items, err = store.Items(context.Background(), "physics")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 4 {
		t.Errorf("got %d physics items, want 4", len(items))
	}
}

func TestTopics(t *testing.T) {
	store := searchSetup(t)

	topics, err := store.Topics(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, tc := range topics {
		got = append(got, tc.Topic)
	}
	if strings.Join(got, ",") != "Cells,Optics,Physics" {
		t.Errorf("topics = %v", got)
	}
	if topics[0].Cards != 2 {
		t.Errorf("Cells cards = %d, want 2", topics[0].Cards)
	}

	topics, err = store.Topics(context.Background(), " opt ")
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 1 || topics[0].Topic != "Optics" {
		t.Errorf("filtered topics = %+v", topics)
	}
}
