package quiz

import (
	"fmt"
	"math/rand"
	"strings"
)

// Verdict is the outcome of grading one answer. Feedback always reveals
// the canonical meaning so the learner sees the right answer either way.
type Verdict struct {
	Correct bool
	Answer  string
	Meaning string
}

// Feedback renders the user-facing result line.
func (v Verdict) Feedback() string {
	if v.Correct {
		return fmt.Sprintf("Correct! It means %q.", v.Meaning)
	}
	return fmt.Sprintf("Not quite. It means %q.", v.Meaning)
}

// Grade decides correctness for any item variant.
//
// Root items use a lenient rule: after lowercasing and trimming, the
// answer is correct on exact match or when either string contains the
// other. An empty answer never grades correct.
//
// Word items require the selected option to equal the stored meaning
// exactly; display order never affects the comparison.
func Grade(it Item, answer string) (Verdict, error) {
	switch it.Kind {
	case KindRoot:
		return Verdict{
			Correct: gradeRoot(it.Root.Meaning, answer),
			Answer:  answer,
			Meaning: it.Root.Meaning,
		}, nil
	case KindWord:
		return Verdict{
			Correct: answer == it.Word.Meaning,
			Answer:  answer,
			Meaning: it.Word.Meaning,
		}, nil
	default:
		return Verdict{}, fmt.Errorf("grade: unknown item kind %q", it.Kind)
	}
}

func gradeRoot(meaning, answer string) bool {
	a := normalize(answer)
	m := normalize(meaning)
	if a == "" {
		return false
	}
	return a == m || strings.Contains(m, a) || strings.Contains(a, m)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ShuffledOptions returns the word's options in a fresh uniformly random
// order. Call once per item instance; callers keep the returned slice for
// the lifetime of the question so the order is stable while answering.
func ShuffledOptions(w *Word) []string {
	out := make([]string, len(w.Options))
	copy(out, w.Options)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// ValidWord reports whether a word item satisfies the option invariant:
// exactly four options, one of which equals the correct meaning.
func ValidWord(w Word) bool {
	if len(w.Options) != 4 {
		return false
	}
	for _, opt := range w.Options {
		if opt == w.Meaning {
			return true
		}
	}
	return false
}
