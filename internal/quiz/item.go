package quiz

import (
	"time"
)

// Kind discriminates the two quiz item variants.
type Kind string

const (
	KindRoot Kind = "root"
	KindWord Kind = "word"
)

// Theme groups roots into a named, dated learning unit. Themes are
// read-only reference data on the client side.
type Theme struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	WeekStart   time.Time `json:"week_start"`
	Description string    `json:"description,omitempty"`
}

// Root is an open-response item: the learner is shown a Latin or Greek
// root and asked for its meaning. Meaning is the sole grading oracle.
type Root struct {
	ID          int64    `json:"id"`
	RootText    string   `json:"root_text"`
	OriginLang  string   `json:"origin_lang"`
	Meaning     string   `json:"meaning"`
	Examples    []string `json:"examples"`
	SourceTitle string   `json:"source_title"`
	SourceURL   string   `json:"source_url"`
}

// Word is a multiple-choice item: an English word, a description of the
// roots it is built from, and four candidate meanings of which exactly
// one (Meaning) is correct.
type Word struct {
	ID            int64    `json:"id"`
	Word          string   `json:"word"`
	RootBreakdown string   `json:"root_breakdown"`
	Meaning       string   `json:"meaning"`
	Options       []string `json:"options"`
	OriginLang    string   `json:"origin_lang"`
	SourceTitle   string   `json:"source_title,omitempty"`
	SourceURL     string   `json:"source_url,omitempty"`
}

// ReviewRoot is a root item drawn from the wrong-answer queue, carrying
// queue metadata for display.
type ReviewRoot struct {
	Root
	TimesIncorrect int       `json:"times_incorrect"`
	QueuedAt       time.Time `json:"queued_at"`
}

// Item is the tagged union rendered and graded by the session layer.
// Exactly one of Root/Word is set, matching Kind.
type Item struct {
	Kind Kind
	Root *Root
	Word *Word
}

// RootItem wraps an open-response root as a quiz item.
func RootItem(r Root) Item {
	return Item{Kind: KindRoot, Root: &r}
}

// WordItem wraps a multiple-choice word as a quiz item.
func WordItem(w Word) Item {
	return Item{Kind: KindWord, Word: &w}
}

// ID returns the variant's backend identifier.
func (it Item) ID() int64 {
	switch it.Kind {
	case KindRoot:
		return it.Root.ID
	case KindWord:
		return it.Word.ID
	}
	return 0
}

// Prompt returns the text shown to the learner before answering.
func (it Item) Prompt() string {
	switch it.Kind {
	case KindRoot:
		return it.Root.RootText
	case KindWord:
		return it.Word.Word
	}
	return ""
}

// Stats is the aggregate overview returned by the stats procedure.
type Stats struct {
	TotalAttempts   int64 `json:"total_attempts"`
	CorrectAttempts int64 `json:"correct_attempts"`
	AccuracyPercent int   `json:"accuracy_percent"`
	RootsLearned    int64 `json:"roots_learned"`
	CurrentStreak   int   `json:"current_streak"`
}
