package handler

import "narrative-forge/internal/models"

// createStoryRequest is the body of POST /stories. Both fields are
// optional; the service applies the fantasy/medium defaults.
type createStoryRequest struct {
	Genre      string `json:"genre"`
	Difficulty string `json:"difficulty"`
}

// makeChoiceRequest is the body of POST /stories/:session_id/choices.
// ChoiceIndex is a pointer so that an absent field is rejected instead of
// silently reading as choice 0.
type makeChoiceRequest struct {
	ChoiceIndex *int `json:"choice_index" binding:"required"`
}

// storyResponse is the generic success/message/data envelope.
type storyResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// segmentResponse answers a successful choice with the freshly generated
// segment.
type segmentResponse struct {
	Segment   models.Segment `json:"segment"`
	SessionID string         `json:"session_id"`
}

// errorResponse is the standard JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// catalogEntry describes one selectable genre or difficulty.
type catalogEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
