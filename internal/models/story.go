package models

import "time"

// Choice is a single selectable option offered to the player.
// Choices carry no identity of their own; they are addressed by index
// within the owning segment's choice list.
type Choice struct {
	Text        string `json:"text"`
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
}

// Segment is one unit of narrative text plus the choices offered at that
// point. Segments are immutable once created; superseded segments live on
// as append-only history entries. IDs are unique within one story, not
// globally.
type Segment struct {
	ID                string   `json:"id"`
	Text              string   `json:"text"`
	Choices           []Choice `json:"choices"`
	BackgroundContext string   `json:"background_context,omitempty"`
	Mood              string   `json:"mood,omitempty"`
	Location          string   `json:"location,omitempty"`
}

// StoryState is the complete state of one story.
// CurrentSegment is always the most recently produced segment and never
// appears in StoryHistory until it is superseded, so
// len(StoryHistory) == number of choices made so far.
type StoryState struct {
	StoryID        string    `json:"story_id"`
	CurrentSegment Segment   `json:"current_segment"`
	StoryHistory   []Segment `json:"story_history"`
	// ChosenChoices records, per history entry, the choice the player
	// actually took. Parallel to StoryHistory.
	ChosenChoices []Choice          `json:"chosen_choices,omitempty"`
	CharacterInfo map[string]string `json:"character_info"`
	WorldInfo     map[string]string `json:"world_info"`
	Genre         string            `json:"genre"`
	Difficulty    string            `json:"difficulty"`
	CreatedAt     time.Time         `json:"created_at"`
	LastUpdated   *time.Time        `json:"last_updated,omitempty"`
}

// Session wraps a StoryState for lifecycle tracking. SessionID equals the
// story's StoryID. Ending a session flips IsActive; the state stays
// queryable, nothing is deleted.
type Session struct {
	SessionID   string      `json:"session_id"`
	StoryState  *StoryState `json:"story_state"`
	CreatedAt   time.Time   `json:"created_at"`
	LastUpdated time.Time   `json:"last_updated"`
	IsActive    bool        `json:"is_active"`
}
