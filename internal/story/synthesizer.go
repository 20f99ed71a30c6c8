package story

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"narrative-forge/internal/models"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// placeholderText is used when the generator hands us nothing usable.
const placeholderText = "The story continues..."

// Mood keyword sets, checked in this exact order. The first set that
// matches wins, so text containing both fear and joy words reads as tense.
var moodKeywords = []struct {
	mood  string
	words []string
}{
	{"tense", []string{"scary", "fear", "terrifying", "dark"}},
	{"cheerful", []string{"happy", "joy", "bright", "warm"}},
	{"mysterious", []string{"mysterious", "strange", "unknown"}},
}

// knownLocations is scanned in order; the first hit is reported.
var knownLocations = []string{"cavern", "ship", "mansion", "forest", "city", "castle"}

// unknownLocation is the sentinel returned when no known place name occurs.
const unknownLocation = "Unknown Location"

// choiceCatalogs holds the candidate (text, action) pairs per genre that
// follow-up segments sample their choices from. Unknown genres use the
// fantasy catalog.
var choiceCatalogs = map[string][]models.Choice{
	GenreFantasy: {
		{Text: "Continue forward", Action: "continue"},
		{Text: "Investigate the area", Action: "investigate"},
		{Text: "Use magic", Action: "use_magic"},
		{Text: "Fight", Action: "fight"},
		{Text: "Run away", Action: "flee"},
	},
	GenreScifi: {
		{Text: "Scan the area", Action: "scan"},
		{Text: "Contact the crew", Action: "contact_crew"},
		{Text: "Use technology", Action: "use_tech"},
		{Text: "Proceed carefully", Action: "proceed_carefully"},
		{Text: "Return to ship", Action: "return_ship"},
	},
	GenreMystery: {
		{Text: "Search for clues", Action: "search"},
		{Text: "Question someone", Action: "question"},
		{Text: "Examine evidence", Action: "examine"},
		{Text: "Follow a lead", Action: "follow_lead"},
		{Text: "Call for backup", Action: "call_backup"},
	},
}

// Synthesizer turns raw generated (or fallback) text into a structured
// Segment: story text, mood, location and a fresh set of choices.
// It never fails; malformed input degrades to the placeholder sentence.
type Synthesizer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSynthesizer creates a Synthesizer drawing choice samples from rnd.
// Pass a seeded source in tests for deterministic choices; nil means
// time-seeded.
func NewSynthesizer(rnd *rand.Rand) *Synthesizer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{rnd: rnd}
}

// Synthesize builds the next Segment from generatedText for the given
// genre. The story text is the first non-empty line of the input.
func (s *Synthesizer) Synthesize(generatedText, genre string) models.Segment {
	text := firstNonEmptyLine(generatedText)
	if text == "" {
		text = placeholderText
	}

	return models.Segment{
		ID:       shortuuid.New()[:8],
		Text:     text,
		Choices:  s.sampleChoices(genre),
		Mood:     detectMood(text),
		Location: extractLocation(text),
	}
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// detectMood classifies the segment text by keyword membership. Category
// order is fixed; only the first matching category is reported.
func detectMood(text string) string {
	lower := strings.ToLower(text)
	for _, set := range moodKeywords {
		for _, word := range set.words {
			if strings.Contains(lower, word) {
				return set.mood
			}
		}
	}
	return "neutral"
}

// extractLocation returns the first known place name occurring in the
// text, title-cased, or the unknown-location sentinel.
func extractLocation(text string) string {
	lower := strings.ToLower(text)
	for _, loc := range knownLocations {
		if strings.Contains(lower, loc) {
			// cases.Caser carries internal state, so build one per call.
			return cases.Title(language.English).String(loc)
		}
	}
	return unknownLocation
}

// sampleChoices draws min(3, len(catalog)) choices without replacement
// from the genre's catalog, in random order.
func (s *Synthesizer) sampleChoices(genre string) []models.Choice {
	catalog, ok := choiceCatalogs[genre]
	if !ok {
		catalog = choiceCatalogs[GenreFantasy]
	}

	n := len(catalog)
	if n > 3 {
		n = 3
	}

	s.mu.Lock()
	perm := s.rnd.Perm(len(catalog))
	s.mu.Unlock()

	choices := make([]models.Choice, 0, n)
	for _, idx := range perm[:n] {
		choices = append(choices, models.Choice{Text: catalog[idx].Text, Action: catalog[idx].Action})
	}
	return choices
}
