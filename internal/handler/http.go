package handler

import (
	"errors"
	"io"
	"net/http"

	"narrative-forge/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StoryHandler maps HTTP requests onto the StoryService operations.
type StoryHandler struct {
	svc    *service.StoryService
	logger *zap.Logger
}

// NewStoryHandler creates a StoryHandler.
func NewStoryHandler(svc *service.StoryService, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		svc:    svc,
		logger: logger.Named("StoryHandler"),
	}
}

// RegisterRoutes mounts the story API under /api/v1.
func (h *StoryHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/stories", h.createStory)
		api.GET("/stories", h.listActiveStories)
		api.GET("/stories/:session_id", h.getStoryState)
		api.POST("/stories/:session_id/choices", h.makeChoice)
		api.GET("/stories/:session_id/history", h.getStoryHistory)
		api.DELETE("/stories/:session_id", h.endStory)
		api.GET("/genres", h.getGenres)
		api.GET("/difficulties", h.getDifficulties)
	}
}

// createStory handles POST /stories. An empty body is fine; the service
// defaults the genre and difficulty.
func (h *StoryHandler) createStory(c *gin.Context) {
	var req createStoryRequest
	// ContentLength is -1 on chunked requests, so bind unconditionally and
	// treat EOF as the empty body.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	sessionID := h.svc.CreateStory(req.Genre, req.Difficulty)

	c.JSON(http.StatusCreated, storyResponse{
		Success: true,
		Message: "Story created successfully",
		Data:    gin.H{"session_id": sessionID},
	})
}

// getStoryState handles GET /stories/:session_id.
func (h *StoryHandler) getStoryState(c *gin.Context) {
	state, err := h.svc.GetStoryState(c.Param("session_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, storyResponse{
		Success: true,
		Message: "Story state retrieved successfully",
		Data:    state,
	})
}

// makeChoice handles POST /stories/:session_id/choices and returns the
// newly generated segment.
func (h *StoryHandler) makeChoice(c *gin.Context) {
	var req makeChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	segment, err := h.svc.Advance(c.Request.Context(), c.Param("session_id"), *req.ChoiceIndex)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, segmentResponse{
		Segment:   segment,
		SessionID: c.Param("session_id"),
	})
}

// getStoryHistory handles GET /stories/:session_id/history.
func (h *StoryHandler) getStoryHistory(c *gin.Context) {
	state, err := h.svc.GetStoryState(c.Param("session_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, storyResponse{
		Success: true,
		Message: "Story history retrieved successfully",
		Data: gin.H{
			"history":        state.StoryHistory,
			"total_segments": len(state.StoryHistory),
		},
	})
}

// endStory handles DELETE /stories/:session_id. Idempotent; unknown
// sessions still answer success.
func (h *StoryHandler) endStory(c *gin.Context) {
	h.svc.EndStory(c.Param("session_id"))

	c.JSON(http.StatusOK, storyResponse{
		Success: true,
		Message: "Story session ended successfully",
	})
}

// listActiveStories handles GET /stories.
func (h *StoryHandler) listActiveStories(c *gin.Context) {
	active := h.svc.ListActiveSessions()

	c.JSON(http.StatusOK, storyResponse{
		Success: true,
		Message: "Active sessions retrieved successfully",
		Data: gin.H{
			"active_sessions": active,
			"count":           len(active),
		},
	})
}

// getGenres handles GET /genres.
func (h *StoryHandler) getGenres(c *gin.Context) {
	genres := []catalogEntry{
		{ID: "fantasy", Name: "Fantasy", Description: "Epic adventures in magical realms with dragons, wizards, and ancient artifacts"},
		{ID: "scifi", Name: "Science Fiction", Description: "Space exploration, advanced technology, and encounters with the unknown"},
		{ID: "mystery", Name: "Mystery", Description: "Detective work, solving puzzles, and uncovering hidden secrets"},
	}

	c.JSON(http.StatusOK, storyResponse{
		Success: true,
		Message: "Genres retrieved successfully",
		Data:    gin.H{"genres": genres},
	})
}

// getDifficulties handles GET /difficulties.
func (h *StoryHandler) getDifficulties(c *gin.Context) {
	difficulties := []catalogEntry{
		{ID: "easy", Name: "Easy", Description: "Gentle storytelling with straightforward choices"},
		{ID: "medium", Name: "Medium", Description: "Balanced challenge with meaningful consequences"},
		{ID: "hard", Name: "Hard", Description: "Complex narratives with difficult moral choices"},
	}

	c.JSON(http.StatusOK, storyResponse{
		Success: true,
		Message: "Difficulties retrieved successfully",
		Data:    gin.H{"difficulties": difficulties},
	})
}
