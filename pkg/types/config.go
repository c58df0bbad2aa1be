package types

import "math"

// BuildBackend selects how input documents are read.
type BuildBackend string

const (
	// BackendAuto picks a reader from the file extension.
	BackendAuto       BuildBackend = "auto"
	BackendDocx       BuildBackend = "docx"
	BackendMarkdown   BuildBackend = "markdown"
	BackendMarkitdown BuildBackend = "markitdown"
)

// BuildConfig holds settings for deck builds.
type BuildConfig struct {
	// HeadingStyle is the paragraph style that opens a new topic (default "Heading 1").
	// Only this exact style qualifies; deeper heading levels are body text.
	HeadingStyle string `json:"heading_style" yaml:"heading_style"`

	// Backend selects the document reader.
	Backend BuildBackend `json:"backend" yaml:"backend"`

	// Concurrency caps the number of documents built at once in a batch (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// DeckConfig holds settings for the deck library.
type DeckConfig struct {
	// Dir is the base directory of the library (contains built/, index/).
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ReviewConfig holds review session settings.
type ReviewConfig struct {
	// Goal is the number of reviews aimed for per day (5..200, default 30).
	Goal int `json:"goal" yaml:"goal"`

	// Batch is the number of cards per session (5..50, default 15).
	Batch int `json:"batch" yaml:"batch"`

	// NewRatio is the share of a session reserved for unseen cards (0..1, default 0.3).
	NewRatio float64 `json:"new_ratio" yaml:"new_ratio"`
}

// Review setting bounds and defaults.
const (
	DefaultGoal     = 30
	DefaultBatch    = 15
	DefaultNewRatio = 0.3

	minGoal, maxGoal   = 5, 200
	minBatch, maxBatch = 5, 50
)

// Clamp returns c with every setting forced into its allowed range. Unset
// (zero) goal and batch take their defaults; an invalid ratio becomes the
// default ratio.
func (c ReviewConfig) Clamp() ReviewConfig {
	if c.Goal == 0 {
		c.Goal = DefaultGoal
	}
	if c.Batch == 0 {
		c.Batch = DefaultBatch
	}
	if math.IsNaN(c.NewRatio) {
		c.NewRatio = DefaultNewRatio
	}
	c.Goal = min(max(c.Goal, minGoal), maxGoal)
	c.Batch = min(max(c.Batch, minBatch), maxBatch)
	c.NewRatio = min(max(c.NewRatio, 0), 1)
	return c
}

// AppConfig groups all configuration sections.
type AppConfig struct {
	Build    BuildConfig  `json:"build" yaml:"build"`
	Deck     DeckConfig   `json:"deck" yaml:"deck"`
	Review   ReviewConfig `json:"review" yaml:"review"`
	LogLevel string       `json:"log_level" yaml:"log_level"`
}
