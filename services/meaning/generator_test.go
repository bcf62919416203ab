package meaning

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lyrics-meaning-api/circuitbreaker"
)

func geminiResponse(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{"parts": []map[string]string{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGenerate_Success(t *testing.T) {
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/gemini-1.5-flash:generateContent") {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Write([]byte(geminiResponse(`{"songId": 5, "lyricsMeaning": [{"LineNo": 0, "Line": "x", "Type": "Lyric"}]}`)))
	}))
	defer server.Close()

	gen := NewGenerator(GeneratorConfig{APIKey: "key", BaseURL: server.URL}, nil)
	songID := int64(5)

	annotation, err := gen.Generate(context.Background(), "some lyrics\nsecond line", &songID, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if annotation.SongID == nil || *annotation.SongID != 5 {
		t.Errorf("Expected songId 5, got %v", annotation.SongID)
	}
	if len(annotation.Lines) != 1 {
		t.Errorf("Expected 1 line, got %d", len(annotation.Lines))
	}

	// Sampling parameters ride along on every request
	cfg := gotBody.GenerationConfig
	if cfg.Temperature != 0.4 {
		t.Errorf("Expected temperature 0.4, got %v", cfg.Temperature)
	}
	if cfg.TopP != 0.9 {
		t.Errorf("Expected topP 0.9, got %v", cfg.TopP)
	}
	if cfg.MaxOutputTokens != 4096 {
		t.Errorf("Expected maxOutputTokens 4096, got %v", cfg.MaxOutputTokens)
	}
	if cfg.ResponseMimeType != "application/json" {
		t.Errorf("Expected JSON response mime type, got %q", cfg.ResponseMimeType)
	}

	// Prompt carries the lyrics and the songId to echo
	prompt := gotBody.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "some lyrics\nsecond line") {
		t.Errorf("Expected lyrics in prompt")
	}
	if !strings.Contains(prompt, "songId to include: 5") {
		t.Errorf("Expected songId in prompt, got %q", prompt)
	}
}

func TestGenerate_NilSongID(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body generateRequest
		json.NewDecoder(r.Body).Decode(&body)
		prompt = body.Contents[0].Parts[0].Text
		w.Write([]byte(geminiResponse(`{"songId": null, "lyricsMeaning": []}`)))
	}))
	defer server.Close()

	gen := NewGenerator(GeneratorConfig{APIKey: "key", BaseURL: server.URL}, nil)
	if _, err := gen.Generate(context.Background(), "lyrics", nil, ""); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "songId to include: null") {
		t.Errorf("Expected null songId in prompt, got %q", prompt)
	}
}

func TestGenerate_CustomInstructions(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body generateRequest
		json.NewDecoder(r.Body).Decode(&body)
		prompt = body.Contents[0].Parts[0].Text
		w.Write([]byte(geminiResponse(`{"songId": null, "lyricsMeaning": []}`)))
	}))
	defer server.Close()

	gen := NewGenerator(GeneratorConfig{APIKey: "key", BaseURL: server.URL}, nil)
	_, err := gen.Generate(context.Background(), "lyrics", nil, "Focus on metaphors")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "Additional Instructions:\nFocus on metaphors") {
		t.Errorf("Expected custom instructions in prompt, got %q", prompt)
	}
}

func TestGenerate_RateLimited(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{
			name:   "HTTP 429",
			status: http.StatusTooManyRequests,
			body:   `{"error": {"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"}}`,
		},
		{
			name:   "RESOURCE_EXHAUSTED on other status",
			status: http.StatusForbidden,
			body:   `{"error": {"code": 403, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gen := NewGenerator(GeneratorConfig{APIKey: "key", BaseURL: server.URL}, nil)
			_, err := gen.Generate(context.Background(), "lyrics", nil, "")

			if !IsRateLimited(err) {
				t.Errorf("Expected rate-limited error, got %v", err)
			}
		})
	}
}

func TestGenerate_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"code": 500, "message": "internal", "status": "INTERNAL"}}`))
	}))
	defer server.Close()

	gen := NewGenerator(GeneratorConfig{APIKey: "key", BaseURL: server.URL}, nil)
	_, err := gen.Generate(context.Background(), "lyrics", nil, "")

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected GenerationError, got %v", err)
	}
	if genErr.Kind != KindTransport {
		t.Errorf("Expected KindTransport, got %q", genErr.Kind)
	}
	if IsRateLimited(err) {
		t.Error("Expected 500 not to classify as rate-limited")
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	gen := NewGenerator(GeneratorConfig{APIKey: "key", BaseURL: server.URL}, nil)
	_, err := gen.Generate(context.Background(), "lyrics", nil, "")

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected GenerationError, got %v", err)
	}
	if genErr.Kind != KindEmptyResponse {
		t.Errorf("Expected KindEmptyResponse, got %q", genErr.Kind)
	}
}

func TestGenerate_InvalidModelOutputNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(geminiResponse(`this is not json at all`)))
	}))
	defer server.Close()

	gen := NewGenerator(GeneratorConfig{APIKey: "key", BaseURL: server.URL}, nil)
	_, err := gen.Generate(context.Background(), "lyrics", nil, "")

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected GenerationError, got %v", err)
	}
	if genErr.Kind != KindInvalidJSON {
		t.Errorf("Expected KindInvalidJSON, got %q", genErr.Kind)
	}
	if calls != 1 {
		t.Errorf("Expected exactly one model call, got %d", calls)
	}
}

func TestGenerate_CircuitOpenBlocksCall(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"code": 500, "message": "down", "status": "INTERNAL"}}`))
	}))
	defer server.Close()

	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:      "gemini",
		Threshold: 1,
		Cooldown:  time.Minute,
	})
	gen := NewGenerator(GeneratorConfig{APIKey: "key", BaseURL: server.URL}, breaker)

	// First call fails and trips the breaker
	if _, err := gen.Generate(context.Background(), "lyrics", nil, ""); err == nil {
		t.Fatal("Expected first call to fail")
	}

	// Second call is rejected without touching the API
	_, err := gen.Generate(context.Background(), "lyrics", nil, "")
	if !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 API call, got %d", calls)
	}
}

func TestNewGenerator_Defaults(t *testing.T) {
	gen := NewGenerator(GeneratorConfig{APIKey: "key"}, nil)
	if gen.model != defaultModel {
		t.Errorf("Expected default model %q, got %q", defaultModel, gen.model)
	}
	if gen.baseURL != defaultBaseURL {
		t.Errorf("Expected default base URL %q, got %q", defaultBaseURL, gen.baseURL)
	}
	if gen.http.Timeout != defaultTimeout {
		t.Errorf("Expected default timeout %v, got %v", defaultTimeout, gen.http.Timeout)
	}
}
