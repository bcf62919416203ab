package meaning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"lyrics-meaning-api/circuitbreaker"
	"lyrics-meaning-api/logcolors"
	"lyrics-meaning-api/services/notifier"

	log "github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
	defaultTimeout = 60 * time.Second

	// Sampling parameters for annotation generation
	genTemperature     = 0.4
	genTopP            = 0.9
	genMaxOutputTokens = 4096
)

// GeneratorConfig holds the Gemini credentials and client settings
type GeneratorConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Generator produces lyrics annotations through the Gemini REST API,
// guarded by a circuit breaker
type Generator struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewGenerator creates a generator. The breaker may be nil, in which case
// every call goes straight to the API.
func NewGenerator(cfg GeneratorConfig, breaker *circuitbreaker.CircuitBreaker) *Generator {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Generator{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
	}
}

// Model returns the configured model name
func (g *Generator) Model() string {
	return g.model
}

type promptPart struct {
	Text string `json:"text"`
}

type promptContent struct {
	Parts []promptPart `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateRequest struct {
	Contents         []promptContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content promptContent `json:"content"`
	} `json:"candidates"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate runs a single model invocation over the given lyrics and
// parses the output into an Annotation. The model is called exactly once
// per Generate; parse failures are not retried.
func (g *Generator) Generate(ctx context.Context, lyrics string, songID *int64, customInstructions string) (*Annotation, error) {
	if g.breaker != nil && !g.breaker.Allow() {
		return nil, fmt.Errorf("generation unavailable: %w", circuitbreaker.ErrCircuitOpen)
	}

	annotation, err := g.callModel(ctx, buildPrompt(lyrics, songID, customInstructions))
	if g.breaker != nil {
		if err != nil {
			g.breaker.RecordFailure()
		} else {
			g.breaker.RecordSuccess()
		}
	}
	return annotation, err
}

func (g *Generator) callModel(ctx context.Context, prompt string) (*Annotation, error) {
	reqBody := generateRequest{
		Contents: []promptContent{{Parts: []promptPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      genTemperature,
			TopP:             genTopP,
			MaxOutputTokens:  genMaxOutputTokens,
			ResponseMimeType: "application/json",
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &GenerationError{Kind: KindTransport, Message: "failed to encode request", Err: err}
	}

	requestURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", requestURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &GenerationError{Kind: KindTransport, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debugf("%s Calling %s (%d char prompt)", logcolors.LogGemini, g.model, len(prompt))

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, &GenerationError{Kind: KindTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GenerationError{Kind: KindTransport, Message: "failed to read response", Err: err}
	}

	var genResp generateResponse
	if unmarshalErr := json.Unmarshal(body, &genResp); unmarshalErr != nil && resp.StatusCode == http.StatusOK {
		return nil, &GenerationError{Kind: KindTransport, Message: "unreadable API response", Err: unmarshalErr}
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests || genResp.Error.Status == "RESOURCE_EXHAUSTED" {
			log.Warnf("%s Quota exhausted for model %s", logcolors.LogGemini, g.model)
			notifier.PublishGenerationQuota(g.model)
			return nil, &GenerationError{Kind: KindRateLimited, Message: "API quota exceeded"}
		}
		return nil, &GenerationError{
			Kind:    KindTransport,
			Message: fmt.Sprintf("API returned status %d: %s", resp.StatusCode, genResp.Error.Message),
		}
	}

	text := ""
	if len(genResp.Candidates) > 0 && len(genResp.Candidates[0].Content.Parts) > 0 {
		text = genResp.Candidates[0].Content.Parts[0].Text
	}
	if text == "" {
		return nil, &GenerationError{Kind: KindEmptyResponse, Message: "model returned an empty response"}
	}

	return parseAnnotation(text)
}
