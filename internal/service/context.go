package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"narrative-forge/internal/models"
)

// historyContextWindow limits how many trailing history segments feed the
// generation context.
const historyContextWindow = 3

// buildStoryContext serializes the story for the generator: world and
// character facts, the last few scenes with the action taken in each, and
// the current scene. Joined by newlines.
func buildStoryContext(state *models.StoryState) string {
	var parts []string

	if len(state.WorldInfo) > 0 {
		if b, err := json.Marshal(state.WorldInfo); err == nil {
			parts = append(parts, "World: "+string(b))
		}
	}
	if len(state.CharacterInfo) > 0 {
		if b, err := json.Marshal(state.CharacterInfo); err == nil {
			parts = append(parts, "Characters: "+string(b))
		}
	}

	history := state.StoryHistory
	offset := 0
	if len(history) > historyContextWindow {
		offset = len(history) - historyContextWindow
		history = history[offset:]
	}
	for i, segment := range history {
		parts = append(parts, fmt.Sprintf("Scene %d: %s", i+1, segment.Text))
		if taken, ok := actionTaken(state, segment, offset+i); ok {
			parts = append(parts, "Action: "+taken.Text)
		}
	}

	parts = append(parts, "Current Scene: "+state.CurrentSegment.Text)

	return strings.Join(parts, "\n")
}

// actionTaken resolves which choice the player took at a given history
// position. Prefers the recorded choice; falls back to the segment's first
// choice, which was the historical assumption before choices were tracked.
func actionTaken(state *models.StoryState, segment models.Segment, idx int) (models.Choice, bool) {
	if idx < len(state.ChosenChoices) {
		return state.ChosenChoices[idx], true
	}
	if len(segment.Choices) > 0 {
		return segment.Choices[0], true
	}
	return models.Choice{}, false
}
