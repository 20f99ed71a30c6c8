package generation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkoukk/tiktoken-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContinuationPrompt(t *testing.T) {
	prompt := ContinuationPrompt("World: {}\nCurrent Scene: start", "Enter the mansion", "enter_mansion")

	assert.Contains(t, prompt, "Context:\nWorld: {}\nCurrent Scene: start")
	assert.Contains(t, prompt, "Player's Choice: Enter the mansion (Action: enter_mansion)")
	assert.Contains(t, prompt, "Story continuation:")
}

func TestBoundedContinuationPromptZeroBudget(t *testing.T) {
	storyContext := "line one\nline two"
	assert.Equal(t,
		ContinuationPrompt(storyContext, "Continue forward", "continue"),
		BoundedContinuationPrompt(storyContext, "Continue forward", "continue", "gpt-4o-mini", 0),
	)
}

func TestBoundedContinuationPromptDropsOldestContextFirst(t *testing.T) {
	// The encoding is fetched lazily and cached; without it the function
	// degrades to a passthrough, which this test cannot exercise.
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		t.Skipf("tokenizer unavailable: %v", err)
	}

	scenes := make([]string, 0, 40)
	for i := 1; i <= 40; i++ {
		scenes = append(scenes, fmt.Sprintf("Scene %d: the corridor stretches on and the lamps gutter one by one.", i))
	}
	storyContext := strings.Join(scenes, "\n")

	// An empty model name forces the cl100k_base fallback, matching the
	// encoder used for the budget below.
	frame := len(tke.Encode(ContinuationPrompt("", "Continue forward", "continue"), nil, nil))
	budget := frame + 60

	prompt := BoundedContinuationPrompt(storyContext, "Continue forward", "continue", "", budget)
	require.LessOrEqual(t, len(tke.Encode(prompt, nil, nil)), budget)

	// The instruction frame and the choice survive truncation intact.
	assert.Contains(t, prompt, "You are a master storyteller")
	assert.Contains(t, prompt, "Player's Choice: Continue forward (Action: continue)")
	assert.Contains(t, prompt, "Story continuation:")

	// The newest scenes are kept, the oldest dropped.
	assert.Contains(t, prompt, "Scene 40:")
	assert.NotContains(t, prompt, "Scene 1:")
}
