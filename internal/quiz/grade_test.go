package quiz

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rootItem(meaning string) Item {
	return RootItem(Root{ID: 1, RootText: "aqua", OriginLang: "Latin", Meaning: meaning})
}

func TestGradeRoot(t *testing.T) {
	cases := []struct {
		name    string
		meaning string
		answer  string
		correct bool
	}{
		{"exact", "water", "water", true},
		{"case and whitespace", "water", "Water ", true},
		{"answer contained in meaning", "to come toward", "come toward", true},
		{"meaning contained in answer", "water", "water or liquid", true},
		{"no overlap", "water", "fire", false},
		{"empty answer", "water", "", false},
		{"whitespace answer", "water", "   ", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Grade(rootItem(tc.meaning), tc.answer)
			require.NoError(t, err)
			assert.Equal(t, tc.correct, v.Correct)
			assert.Equal(t, tc.meaning, v.Meaning, "feedback must reveal the canonical meaning")
		})
	}
}

func TestGradeWordExactOnly(t *testing.T) {
	item := WordItem(Word{
		ID:      7,
		Word:    "aquarium",
		Meaning: "water",
		Options: []string{"water", "fire", "earth", "air"},
	})

	v, err := Grade(item, "water")
	require.NoError(t, err)
	assert.True(t, v.Correct)

	// Substring leniency does not apply to the multiple-choice variant.
	v, err = Grade(item, "wat")
	require.NoError(t, err)
	assert.False(t, v.Correct)

	v, err = Grade(item, "Water")
	require.NoError(t, err)
	assert.False(t, v.Correct)
}

func TestGradeUnknownKind(t *testing.T) {
	_, err := Grade(Item{Kind: Kind("mystery")}, "x")
	assert.Error(t, err)
}

func TestShuffledOptionsPreservesMembers(t *testing.T) {
	w := &Word{Options: []string{"a", "b", "c", "d"}}
	got := ShuffledOptions(w)
	require.Len(t, got, 4)

	sorted := append([]string(nil), got...)
	sort.Strings(sorted)
	assert.Equal(t, []string{"a", "b", "c", "d"}, sorted)
	// Source order untouched.
	assert.Equal(t, []string{"a", "b", "c", "d"}, w.Options)
}

func TestShuffledOptionsVariesOrder(t *testing.T) {
	w := &Word{Options: []string{"a", "b", "c", "d"}}
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		got := ShuffledOptions(w)
		seen[got[0]+got[1]+got[2]+got[3]] = true
	}
	// 24 permutations; 200 draws hitting only one would mean no shuffle.
	assert.Greater(t, len(seen), 1)
}

func TestValidWord(t *testing.T) {
	assert.True(t, ValidWord(Word{Meaning: "x", Options: []string{"x", "y", "z", "w"}}))
	assert.False(t, ValidWord(Word{Meaning: "x", Options: []string{"y", "z", "w", "v"}}), "meaning must appear among options")
	assert.False(t, ValidWord(Word{Meaning: "x", Options: []string{"x", "y", "z"}}), "exactly four options required")
}
