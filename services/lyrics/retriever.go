package lyrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"lyrics-meaning-api/logcolors"
	"lyrics-meaning-api/services/extract"
	"lyrics-meaning-api/services/search"

	log "github.com/sirupsen/logrus"
)

const (
	defaultFetchTimeout = 10 * time.Second

	// Desktop UA; lyrics sites block obvious bots
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// ErrNotFound is returned when no search candidate yields lyrics
var ErrNotFound = errors.New("lyrics: not found in any search result")

// Document is a retrieved lyrics page: the candidate's search title and
// the extracted lyrics text
type Document struct {
	Title  string `json:"title"`
	Lyrics string `json:"lyrics"`
}

// Searcher is the query interface the retriever depends on
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Retriever finds lyrics for a song name by searching the web and running
// the extraction cascade over each candidate page in order
type Retriever struct {
	searcher Searcher
	http     *http.Client
}

// NewRetriever creates a retriever. A zero fetchTimeout falls back to 10s.
func NewRetriever(searcher Searcher, fetchTimeout time.Duration) *Retriever {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Retriever{
		searcher: searcher,
		http:     &http.Client{Timeout: fetchTimeout},
	}
}

// Retrieve searches for "<songName> lyrics" and returns the first
// candidate whose page yields lyrics. Candidate failures of any kind
// (fetch errors, bad status, no extractable lyrics) are logged and the
// next candidate is tried.
func (r *Retriever) Retrieve(ctx context.Context, songName string) (*Document, error) {
	results, err := r.searcher.Search(ctx, songName+" lyrics")
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	log.Infof("%s Found %d candidates for %q", logcolors.LogLyrics, len(results), songName)

	for i, candidate := range results {
		text, err := r.extractFrom(ctx, candidate.URL)
		if err != nil {
			log.Debugf("%s Candidate %d (%s) failed: %v", logcolors.LogLyrics, i+1, candidate.URL, err)
			continue
		}

		log.Infof("%s Extracted lyrics from candidate %d: %s", logcolors.LogLyrics, i+1, candidate.Title)
		return &Document{Title: candidate.Title, Lyrics: text}, nil
	}

	return nil, ErrNotFound
}

func (r *Retriever) extractFrom(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}

	return extract.Extract(string(body))
}
