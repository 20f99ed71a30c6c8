package service

import (
	"context"
	"sync"
	"time"

	"narrative-forge/internal/generation"
	"narrative-forge/internal/models"
	"narrative-forge/internal/story"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Difficulty levels accepted on story creation. Anything else maps to
// DifficultyMedium. Difficulty is stored but not consulted by generation.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Options tune generation behavior of a StoryService.
type Options struct {
	// Params are forwarded to the text generator on every advance.
	Params generation.Params
	// Model is used for prompt token accounting.
	Model string
	// PromptTokenBudget caps the serialized prompt; zero disables
	// truncation.
	PromptTokenBudget int
}

// sessionEntry pairs a session with its locks. mu serializes the
// read-modify-write of story state for the whole advance, including the
// generation call. metaMu guards the session lifecycle fields (IsActive,
// LastUpdated) and is never held across generation, so listing, ending
// and eviction stay responsive while a generation is in flight.
type sessionEntry struct {
	mu      sync.Mutex
	metaMu  sync.Mutex
	session *models.Session
}

// isStale reports whether the session is inactive and untouched since
// cutoff.
func (e *sessionEntry) isStale(cutoff time.Time) bool {
	e.metaMu.Lock()
	defer e.metaMu.Unlock()
	return !e.session.IsActive && e.session.LastUpdated.Before(cutoff)
}

// StoryService owns the session map and coordinates the template library,
// the text generator and the segment synthesizer. All state is volatile;
// nothing survives a process restart.
type StoryService struct {
	generator generation.TextGenerator
	fallback  *generation.MockGenerator
	synth     *story.Synthesizer
	opts      Options
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewStoryService wires a StoryService. The generator may be any backend;
// its runtime failures are absorbed via the canned-text fallback.
func NewStoryService(generator generation.TextGenerator, synth *story.Synthesizer, opts Options, logger *zap.Logger) *StoryService {
	return &StoryService{
		generator: generator,
		fallback:  generation.NewMockGenerator(),
		synth:     synth,
		opts:      opts,
		logger:    logger.Named("StoryService"),
		sessions:  make(map[string]*sessionEntry),
	}
}

// CreateStory builds a fresh story from the genre template and registers
// an active session for it. Unknown genres silently map to fantasy and
// unknown difficulties to medium, so creation never fails.
func (s *StoryService) CreateStory(genre, difficulty string) string {
	if !story.KnownGenre(genre) {
		genre = story.GenreFantasy
	}
	switch difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		difficulty = DifficultyMedium
	}

	sessionID := uuid.NewString()
	template := story.TemplateFor(genre)
	now := time.Now()

	state := &models.StoryState{
		StoryID: sessionID,
		CurrentSegment: models.Segment{
			ID:                "start",
			Text:              template.Opening,
			Choices:           template.InitialChoices,
			BackgroundContext: template.Background,
		},
		StoryHistory:  []models.Segment{},
		CharacterInfo: template.Characters,
		WorldInfo:     template.World,
		Genre:         genre,
		Difficulty:    difficulty,
		CreatedAt:     now,
	}

	entry := &sessionEntry{
		session: &models.Session{
			SessionID:   sessionID,
			StoryState:  state,
			CreatedAt:   now,
			LastUpdated: now,
			IsActive:    true,
		},
	}

	s.mu.Lock()
	s.sessions[sessionID] = entry
	s.mu.Unlock()

	s.logger.Info("Created new story session",
		zap.String("sessionID", sessionID),
		zap.String("genre", genre),
		zap.String("difficulty", difficulty),
	)
	return sessionID
}

// GetStoryState returns a snapshot of the session's story state.
// Ended sessions remain readable.
func (s *StoryService) GetStoryState(sessionID string) (models.StoryState, error) {
	entry, ok := s.lookup(sessionID)
	if !ok {
		return models.StoryState{}, ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return *entry.session.StoryState, nil
}

// Advance applies the player's choice: the current segment moves into
// history, the generator (or its fallback) produces the continuation, and
// the synthesized result becomes the new current segment. The per-session
// lock is held for the duration, including the generation call; the
// store-level lock is not, so other sessions keep making progress.
func (s *StoryService) Advance(ctx context.Context, sessionID string, choiceIndex int) (models.Segment, error) {
	entry, ok := s.lookup(sessionID)
	if !ok {
		return models.Segment{}, ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	state := entry.session.StoryState
	if choiceIndex < 0 || choiceIndex >= len(state.CurrentSegment.Choices) {
		return models.Segment{}, ErrInvalidChoice
	}
	chosen := state.CurrentSegment.Choices[choiceIndex]

	text := s.generateText(ctx, state, chosen)
	segment := s.synth.Synthesize(text, state.Genre)

	now := time.Now()
	state.StoryHistory = append(state.StoryHistory, state.CurrentSegment)
	state.ChosenChoices = append(state.ChosenChoices, chosen)
	state.CurrentSegment = segment
	state.LastUpdated = &now

	entry.metaMu.Lock()
	entry.session.LastUpdated = now
	entry.metaMu.Unlock()

	s.logger.Info("Generated next segment",
		zap.String("sessionID", sessionID),
		zap.String("segmentID", segment.ID),
		zap.String("action", chosen.Action),
		zap.Int("historyLen", len(state.StoryHistory)),
	)
	return segment, nil
}

// generateText asks the configured backend for a continuation and falls
// back to canned text on any failure. Disabled-at-startup and transient
// failure are the same condition here: both produce the mock text for the
// chosen action, and the synthesizer treats the result identically.
func (s *StoryService) generateText(ctx context.Context, state *models.StoryState, chosen models.Choice) string {
	storyContext := buildStoryContext(state)
	prompt := generation.BoundedContinuationPrompt(storyContext, chosen.Text, chosen.Action, s.opts.Model, s.opts.PromptTokenBudget)

	req := generation.Request{
		Prompt:     prompt,
		ChoiceText: chosen.Text,
		Action:     chosen.Action,
		Params:     s.opts.Params,
	}

	text, err := s.generator.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("Generation unavailable, using canned fallback",
			zap.String("storyID", state.StoryID),
			zap.String("action", chosen.Action),
			zap.Error(err),
		)
		text, _ = s.fallback.Generate(ctx, req)
	}
	return text
}

// EndStory marks the session inactive. Idempotent; unknown sessions are a
// no-op, not an error. State is retained, not purged.
func (s *StoryService) EndStory(sessionID string) {
	entry, ok := s.lookup(sessionID)
	if !ok {
		return
	}

	entry.metaMu.Lock()
	entry.session.IsActive = false
	entry.metaMu.Unlock()

	s.logger.Info("Ended story session", zap.String("sessionID", sessionID))
}

// ListActiveSessions returns the ids of sessions still marked active, in
// unspecified order. Only the lifecycle lock is taken per entry, so the
// listing does not wait on in-flight generations.
func (s *StoryService) ListActiveSessions() []string {
	s.mu.RLock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, entry := range s.sessions {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry.metaMu.Lock()
		if entry.session.IsActive {
			ids = append(ids, entry.session.SessionID)
		}
		entry.metaMu.Unlock()
	}
	return ids
}

// EvictStale removes sessions that are inactive and untouched for longer
// than ttl. Returns the number evicted. Active sessions are never evicted
// regardless of age; the default server configuration never calls this.
// Staleness is evaluated on a snapshot so the store write lock is never
// held while other sessions create or advance.
func (s *StoryService) EvictStale(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.RLock()
	candidates := make(map[string]*sessionEntry, len(s.sessions))
	for id, entry := range s.sessions {
		candidates[id] = entry
	}
	s.mu.RUnlock()

	stale := make([]string, 0)
	for id, entry := range candidates {
		if entry.isStale(cutoff) {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	evicted := 0
	s.mu.Lock()
	for _, id := range stale {
		// Re-check under the write lock: the session may have been
		// touched again since the snapshot.
		if entry, ok := s.sessions[id]; ok && entry.isStale(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	s.mu.Unlock()

	if evicted > 0 {
		s.logger.Info("Evicted stale sessions", zap.Int("count", evicted), zap.Duration("ttl", ttl))
	}
	return evicted
}

func (s *StoryService) lookup(sessionID string) (*sessionEntry, bool) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	return entry, ok
}
