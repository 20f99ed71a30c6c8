package generation

import (
	"context"
	"fmt"
	"strings"
)

// cannedResponses maps action identifiers to fixed narrative continuations.
// Actions without an entry get the generic templated sentence.
var cannedResponses = map[string]string{
	"bold_entrance":       "You stride confidently into the Crystal Caverns. The air is thick with ancient magic, and your footsteps echo through the crystalline passages. Suddenly, you hear a low rumble from deep within the mountain...",
	"cautious_approach":   "You carefully examine the entrance, noting the intricate runes carved into the stone. Your careful observation reveals a hidden mechanism that could be either a trap or a blessing...",
	"prepare_equipment":   "You take a moment to check your gear. Your sword gleams in the dim light, and you feel the weight of your magical items. You're as ready as you'll ever be for what lies ahead...",
	"investigate":         "You decide to investigate the distress signal. As you approach the planet's surface, your sensors detect unusual energy readings that don't match any known technology...",
	"scan_planet":         "Your ship's scanners sweep across the planet's surface, revealing structures that defy conventional physics. The readings suggest technology far beyond human capabilities...",
	"enter_mansion":       "You step into the mansion, the floorboards creaking beneath your feet. The air is thick with dust and something else - the lingering presence of secrets waiting to be uncovered...",
	"interview_neighbors": "You approach the neighboring houses, hoping to gather information. The locals seem nervous, their eyes darting around as they speak in hushed tones about the mansion's dark history...",
}

// MockGenerator is the deterministic canned-response backend. It is both a
// selectable backend in its own right and the automatic runtime fallback
// when a real backend fails, so that advance never fails on generator
// problems.
type MockGenerator struct{}

// NewMockGenerator returns the canned-response backend.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate ignores the prompt and keys only on the chosen action. It never
// fails.
func (g *MockGenerator) Generate(_ context.Context, req Request) (string, error) {
	return CannedText(req.Action, req.ChoiceText), nil
}

// CannedText returns the canned continuation for an action, or the generic
// templated sentence when the action has no entry.
func CannedText(action, choiceText string) string {
	if text, ok := cannedResponses[action]; ok {
		return text
	}
	return fmt.Sprintf("You choose to %s. The story continues with new challenges and discoveries ahead...", strings.ToLower(choiceText))
}
