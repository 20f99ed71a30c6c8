package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrGenerationFailed signals that the text backend was unavailable or
// returned nothing usable. Callers are expected to absorb it and fall back
// to canned text; it must never surface to API clients.
var ErrGenerationFailed = errors.New("text generation failed")

// Backend identifiers accepted by New.
const (
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
	BackendMock   = "mock"
)

var (
	genRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narrative_forge_generation_requests_total",
			Help: "Total number of text generation requests.",
		},
		[]string{"backend", "status"},
	)
	genRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "narrative_forge_generation_duration_seconds",
			Help:    "Histogram of text generation request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)
	genTotalTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "narrative_forge_generation_total_tokens",
			Help:    "Histogram of total token counts (prompt + completion).",
			Buckets: prometheus.LinearBuckets(100, 100, 20),
		},
		[]string{"backend"},
	)
)

// Params are the sampling knobs passed through to the model backend.
type Params struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Request carries everything a backend may need to continue a story.
// Real backends consume Prompt; the mock backend keys on Action only.
type Request struct {
	Prompt     string
	ChoiceText string
	Action     string
	Params     Params
}

// TextGenerator produces a narrative continuation for a request.
// Implementations may be slow (bounded by Params.MaxTokens) and may fail;
// a failure is reported as ErrGenerationFailed.
type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a generation backend.
type Config struct {
	Backend string
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// New creates a TextGenerator for the configured backend.
func New(cfg Config, logger *zap.Logger) (TextGenerator, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendOpenAI:
		openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			openaiConfig.BaseURL = cfg.BaseURL
		}
		openaiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
		logger.Info("Using OpenAI generation backend",
			zap.String("baseURL", openaiConfig.BaseURL),
			zap.String("model", cfg.Model),
			zap.Duration("timeout", cfg.Timeout),
		)
		return &openAIGenerator{
			client: openaigo.NewClientWithConfig(openaiConfig),
			model:  cfg.Model,
			logger: logger.Named("OpenAIGenerator"),
		}, nil
	case BackendOllama:
		return newOllamaGenerator(cfg, logger)
	case BackendMock:
		logger.Info("Using deterministic mock generation backend")
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown generation backend: %q", cfg.Backend)
	}
}

// --- OpenAI backend ---

type openAIGenerator struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

func (g *openAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: g.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: req.Prompt},
		},
		MaxTokens:   req.Params.MaxTokens,
		Temperature: float32(req.Params.Temperature),
		TopP:        float32(req.Params.TopP),
	})
	duration := time.Since(start)

	if err != nil {
		g.logger.Warn("OpenAI request failed", zap.Duration("duration", duration), zap.Error(err))
		genRequestsTotal.With(prometheus.Labels{"backend": BackendOpenAI, "status": "error"}).Inc()
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		g.logger.Warn("OpenAI returned an empty response", zap.Duration("duration", duration))
		genRequestsTotal.With(prometheus.Labels{"backend": BackendOpenAI, "status": "error_empty_response"}).Inc()
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	genRequestsTotal.With(prometheus.Labels{"backend": BackendOpenAI, "status": "success"}).Inc()
	genRequestDuration.With(prometheus.Labels{"backend": BackendOpenAI}).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		genTotalTokens.With(prometheus.Labels{"backend": BackendOpenAI}).Observe(float64(resp.Usage.TotalTokens))
	}

	g.logger.Debug("OpenAI response received",
		zap.Duration("duration", duration),
		zap.Int("chars", len(resp.Choices[0].Message.Content)),
		zap.Int("totalTokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

// --- Ollama backend ---

type ollamaGenerator struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOllamaGenerator(cfg Config, logger *zap.Logger) (TextGenerator, error) {
	// api.NewClient wants the bare host URL, without the /v1 suffix an
	// OpenAI-compatible config might carry.
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/v1")
	baseURL = strings.TrimSuffix(baseURL, "/")

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL %q: %w", baseURL, err)
	}

	logger.Info("Using Ollama generation backend",
		zap.String("baseURL", baseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout),
	)

	return &ollamaGenerator{
		client:  api.NewClient(parsedURL, &http.Client{Timeout: cfg.Timeout}),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("OllamaGenerator"),
	}, nil
}

func (g *ollamaGenerator) Generate(ctx context.Context, req Request) (string, error) {
	chatReq := &api.ChatRequest{
		Model: g.model,
		Messages: []api.Message{
			{Role: "system", Content: req.Prompt},
		},
		Stream: func(b bool) *bool { return &b }(false),
		Options: map[string]interface{}{
			"temperature": req.Params.Temperature,
			"top_p":       req.Params.TopP,
			"num_predict": req.Params.MaxTokens,
		},
	}

	requestCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	var resp api.ChatResponse
	err := g.client.Chat(requestCtx, chatReq, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			g.logger.Warn("Ollama request timed out", zap.Duration("timeout", g.timeout), zap.Error(err))
		} else {
			g.logger.Warn("Ollama request failed", zap.Duration("duration", duration), zap.Error(err))
		}
		genRequestsTotal.With(prometheus.Labels{"backend": BackendOllama, "status": "error"}).Inc()
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if resp.Message.Content == "" {
		g.logger.Warn("Ollama returned an empty response", zap.Duration("duration", duration))
		genRequestsTotal.With(prometheus.Labels{"backend": BackendOllama, "status": "error_empty_response"}).Inc()
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	genRequestsTotal.With(prometheus.Labels{"backend": BackendOllama, "status": "success"}).Inc()
	genRequestDuration.With(prometheus.Labels{"backend": BackendOllama}).Observe(duration.Seconds())
	if total := resp.PromptEvalCount + resp.EvalCount; total > 0 {
		genTotalTokens.With(prometheus.Labels{"backend": BackendOllama}).Observe(float64(total))
	}

	g.logger.Debug("Ollama response received",
		zap.Duration("duration", duration),
		zap.Int("chars", len(resp.Message.Content)),
	)
	return resp.Message.Content, nil
}
