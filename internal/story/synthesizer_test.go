package story

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSynthesizer() *Synthesizer {
	return NewSynthesizer(rand.New(rand.NewSource(42)))
}

func TestSynthesizeBasics(t *testing.T) {
	s := newTestSynthesizer()

	segment := s.Synthesize("You enter the dark cavern.\nSecond line is ignored.", GenreFantasy)

	require.NotEmpty(t, segment.ID, "segment must get a fresh identifier")
	assert.Len(t, segment.ID, 8)
	assert.Equal(t, "You enter the dark cavern.", segment.Text, "story text should be the first non-empty line")
	assert.Len(t, segment.Choices, 3)
}

func TestSynthesizeEmptyInput(t *testing.T) {
	s := newTestSynthesizer()

	// Empty and whitespace-only input degrade to the placeholder sentence.
	for _, input := range []string{"", "\n\n", "   \n  \n"} {
		segment := s.Synthesize(input, GenreFantasy)
		assert.Equal(t, "The story continues...", segment.Text)
		assert.Len(t, segment.Choices, 3, "even degraded segments offer choices")
	}
}

func TestDetectMoodPrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"fear keyword", "The dark tunnel ahead.", "tense"},
		{"joy keyword", "A warm fire crackles.", "cheerful"},
		{"strangeness keyword", "Something strange happens.", "mysterious"},
		{"no keyword", "You walk on.", "neutral"},
		// The fear category is checked first, so mixed text reads tense.
		{"fear beats joy", "A scary yet happy moment.", "tense"},
		{"joy beats strangeness", "A bright and strange glow.", "cheerful"},
		{"case insensitive", "TERRIFYING silence.", "tense"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectMood(tt.text))
		})
	}
}

func TestExtractLocation(t *testing.T) {
	// First match in the fixed scan order wins.
	assert.Equal(t, "Ship", extractLocation("the ship drifted past the city"))
	assert.Equal(t, "Cavern", extractLocation("A CAVERN mouth, then a castle."))
	assert.Equal(t, "Unknown Location", extractLocation("an open plain"))
}

func TestSampleChoices(t *testing.T) {
	s := newTestSynthesizer()

	for i := 0; i < 20; i++ {
		choices := s.sampleChoices(GenreScifi)
		require.Len(t, choices, 3, "samples min(3, catalog size)")

		seen := make(map[string]bool)
		for _, c := range choices {
			assert.False(t, seen[c.Action], "sampling must be without replacement")
			seen[c.Action] = true
			assert.NotEmpty(t, c.Text)
			assert.Empty(t, c.Description)
		}
	}
}

func TestSampleChoicesUnknownGenreUsesFantasyCatalog(t *testing.T) {
	s := newTestSynthesizer()

	fantasyActions := map[string]bool{
		"continue": true, "investigate": true, "use_magic": true, "fight": true, "flee": true,
	}

	for _, c := range s.sampleChoices("western") {
		assert.True(t, fantasyActions[c.Action], "unknown genre should draw from the fantasy catalog, got %q", c.Action)
	}
}

func TestSynthesizeUniqueIDs(t *testing.T) {
	s := newTestSynthesizer()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		segment := s.Synthesize("Another scene.", GenreMystery)
		assert.False(t, seen[segment.ID], "segment ids must not repeat")
		seen[segment.ID] = true
	}
}
