package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"lyrics-meaning-api/logcolors"

	log "github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://www.googleapis.com/customsearch/v1"
	defaultTimeout = 10 * time.Second

	// Number of results requested per query
	resultCount = 10
)

// ErrNoResults is returned when the search engine has no hits for a query
var ErrNoResults = errors.New("search: no results")

// Config holds the Custom Search credentials and client settings
type Config struct {
	APIKey   string
	EngineID string
	BaseURL  string
	Timeout  time.Duration
}

// Client queries the Google Custom Search JSON API
type Client struct {
	apiKey   string
	engineID string
	baseURL  string
	http     *http.Client
}

// NewClient creates a search client. Zero-value BaseURL and Timeout fall
// back to the production endpoint and a 10 second timeout.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		baseURL:  cfg.BaseURL,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// Search runs a web search for the query. When the engine reports a
// spelling correction, the corrected query is issued exactly once and its
// results replace the originals; a correction on the re-query is ignored.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	resp, err := c.query(ctx, query)
	if err != nil {
		return nil, err
	}

	if corrected := resp.Spelling.CorrectedQuery; corrected != "" {
		log.Infof("%s Spelling correction %q -> %q", logcolors.LogSearch, query, corrected)
		if fixed, err := c.query(ctx, corrected); err == nil {
			resp = fixed
		} else {
			log.Warnf("%s Corrected query failed, keeping original results: %v", logcolors.LogSearch, err)
		}
	}

	if len(resp.Items) == 0 {
		return nil, ErrNoResults
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, Result{URL: item.Link, Title: item.Title})
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	return results, nil
}

func (c *Client) query(ctx context.Context, query string) (*searchResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", resultCount))

	requestURL := c.baseURL + "?" + params.Encode()

	log.Debugf("%s Querying: %s", logcolors.LogSearch, query)

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API error: %s (code: %d)", apiErr.Error.Message, apiErr.Error.Code)
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &searchResp, nil
}
