package generation

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// continuationTemplate frames the story context and the player's choice for
// the model. The %s slots are context, choice text and action, in order.
const continuationTemplate = `You are a master storyteller creating an interactive adventure. Based on the following context and the player's choice, continue the story in an engaging way.

Context:
%s

Player's Choice: %s (Action: %s)

Continue the story naturally, maintaining consistency with the established world and characters. End with a compelling situation that presents the player with new choices. Keep the response under 150 words.

Story continuation:`

// ContinuationPrompt embeds the serialized story context and the chosen
// choice into the fixed continuation template.
func ContinuationPrompt(storyContext, choiceText, action string) string {
	return fmt.Sprintf(continuationTemplate, storyContext, choiceText, action)
}

// BoundedContinuationPrompt builds the continuation prompt and enforces
// the token budget. When the prompt is over budget, the oldest story
// context lines are dropped first; the instruction frame and the player's
// choice always survive. Best effort: if no tokenizer is available the
// prompt is returned unchanged.
func BoundedContinuationPrompt(storyContext, choiceText, action, model string, budget int) string {
	prompt := ContinuationPrompt(storyContext, choiceText, action)
	if budget <= 0 {
		return prompt
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Unknown models fall back to the common cl100k_base encoding.
		tke, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return prompt
		}
	}
	if len(tke.Encode(prompt, nil, nil)) <= budget {
		return prompt
	}

	lines := strings.Split(storyContext, "\n")
	for len(lines) > 1 {
		lines = lines[1:]
		prompt = ContinuationPrompt(strings.Join(lines, "\n"), choiceText, action)
		if len(tke.Encode(prompt, nil, nil)) <= budget {
			break
		}
	}
	return prompt
}
