package handler

import (
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"narrative-forge/internal/generation"
	"narrative-forge/internal/service"
	"narrative-forge/internal/story"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	synth := story.NewSynthesizer(rand.New(rand.NewSource(1)))
	svc := service.NewStoryService(generation.NewMockGenerator(), synth, service.Options{}, zap.NewNop())

	router := gin.New()
	NewStoryHandler(svc, zap.NewNop()).RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router *gin.Engine, body string) string {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/v1/stories", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			SessionID string `json:"session_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Data.SessionID)
	return resp.Data.SessionID
}

func TestCreateAndReadStory(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, `{"genre":"scifi","difficulty":"easy"}`)

	w := doRequest(t, router, http.MethodGet, "/api/v1/stories/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Genre          string `json:"genre"`
			Difficulty     string `json:"difficulty"`
			CurrentSegment struct {
				ID      string `json:"id"`
				Choices []struct {
					Action string `json:"action"`
				} `json:"choices"`
			} `json:"current_segment"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "scifi", resp.Data.Genre)
	assert.Equal(t, "easy", resp.Data.Difficulty)
	assert.Equal(t, "start", resp.Data.CurrentSegment.ID)
	assert.Len(t, resp.Data.CurrentSegment.Choices, 3)
}

func TestCreateStoryEmptyBodyDefaults(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, "")

	w := doRequest(t, router, http.MethodGet, "/api/v1/stories/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"genre":"fantasy"`)
	assert.Contains(t, w.Body.String(), `"difficulty":"medium"`)
}

func TestCreateStoryChunkedBody(t *testing.T) {
	router := newTestRouter()

	// Wrapping the reader hides its length, so the request carries
	// ContentLength -1 the way a chunked upload does.
	body := io.MultiReader(strings.NewReader(`{"genre":"scifi"}`))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stories", body)
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, int64(-1), req.ContentLength)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			SessionID string `json:"session_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doRequest(t, router, http.MethodGet, "/api/v1/stories/"+resp.Data.SessionID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"genre":"scifi"`, "a chunked body must not be discarded")
}

func TestCreateStoryMalformedBody(t *testing.T) {
	router := newTestRouter()

	w := doRequest(t, router, http.MethodPost, "/api/v1/stories", `{"genre":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestMakeChoiceFlow(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, `{"genre":"mystery"}`)

	w := doRequest(t, router, http.MethodPost, "/api/v1/stories/"+id+"/choices", `{"choice_index":0}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Segment struct {
			ID      string `json:"id"`
			Text    string `json:"text"`
			Choices []any  `json:"choices"`
		} `json:"segment"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.SessionID)
	assert.NotEqual(t, "start", resp.Segment.ID)
	assert.NotEmpty(t, resp.Segment.Text)
	assert.Len(t, resp.Segment.Choices, 3)

	// History now holds the superseded opening segment.
	w = doRequest(t, router, http.MethodGet, "/api/v1/stories/"+id+"/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_segments":1`)
}

func TestMakeChoiceValidation(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, `{"genre":"fantasy"}`)

	// Missing choice_index is a binding error, not choice 0.
	w := doRequest(t, router, http.MethodPost, "/api/v1/stories/"+id+"/choices", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Out-of-range index maps to 400.
	w = doRequest(t, router, http.MethodPost, "/api/v1/stories/"+id+"/choices", `{"choice_index":99}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid choice index")

	// Unknown session maps to 404.
	w = doRequest(t, router, http.MethodPost, "/api/v1/stories/nope/choices", `{"choice_index":0}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUnknownStory(t *testing.T) {
	router := newTestRouter()

	w := doRequest(t, router, http.MethodGet, "/api/v1/stories/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Story session not found")
}

func TestEndStoryAndList(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, `{"genre":"fantasy"}`)

	w := doRequest(t, router, http.MethodGet, "/api/v1/stories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = doRequest(t, router, http.MethodDelete, "/api/v1/stories/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/v1/stories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), id)

	// Ending again (or ending an unknown session) still answers success.
	w = doRequest(t, router, http.MethodDelete, "/api/v1/stories/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, router, http.MethodDelete, "/api/v1/stories/nope", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	router := newTestRouter()

	w := doRequest(t, router, http.MethodGet, "/api/v1/genres", "")
	require.Equal(t, http.StatusOK, w.Code)
	for _, id := range []string{"fantasy", "scifi", "mystery"} {
		assert.Contains(t, w.Body.String(), `"id":"`+id+`"`)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/difficulties", "")
	require.Equal(t, http.StatusOK, w.Code)
	for _, id := range []string{"easy", "medium", "hard"} {
		assert.Contains(t, w.Body.String(), `"id":"`+id+`"`)
	}
}
