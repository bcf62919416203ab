package lyrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lyrics-meaning-api/services/search"
)

type stubSearcher struct {
	results []search.Result
	err     error
	queries []string
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func lyricsPage() string {
	lines := make([]string, 8)
	for i := range lines {
		lines[i] = fmt.Sprintf("Walking down the empty road again, line %d", i+1)
	}
	return `<html><body><div class="lyrics">` + strings.Join(lines, "\n") + `</div></body></html>`
}

func TestRetrieve_AppendsLyricsSuffix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(lyricsPage()))
	}))
	defer server.Close()

	searcher := &stubSearcher{results: []search.Result{{URL: server.URL, Title: "Song Lyrics"}}}
	retriever := NewRetriever(searcher, 0)

	_, err := retriever.Retrieve(context.Background(), "shape of you")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(searcher.queries) != 1 || searcher.queries[0] != "shape of you lyrics" {
		t.Errorf("Expected query 'shape of you lyrics', got %v", searcher.queries)
	}
}

func TestRetrieve_FirstCandidateWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(lyricsPage()))
	}))
	defer server.Close()

	searcher := &stubSearcher{results: []search.Result{
		{URL: server.URL + "/first", Title: "First Result"},
		{URL: server.URL + "/second", Title: "Second Result"},
	}}
	retriever := NewRetriever(searcher, 0)

	doc, err := retriever.Retrieve(context.Background(), "some song")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if doc.Title != "First Result" {
		t.Errorf("Expected title from first candidate, got %q", doc.Title)
	}
	if !strings.Contains(doc.Lyrics, "Walking down the empty road") {
		t.Errorf("Expected extracted lyrics, got %q", doc.Lyrics)
	}
}

func TestRetrieve_FallsThroughFailedCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/blocked":
			w.WriteHeader(http.StatusForbidden)
		case "/empty":
			w.Write([]byte(`<html><body><p>Nothing here</p></body></html>`))
		default:
			w.Write([]byte(lyricsPage()))
		}
	}))
	defer server.Close()

	searcher := &stubSearcher{results: []search.Result{
		{URL: server.URL + "/blocked", Title: "Blocked Site"},
		{URL: server.URL + "/empty", Title: "No Lyrics Here"},
		{URL: server.URL + "/good", Title: "Third Time Lucky"},
	}}
	retriever := NewRetriever(searcher, 0)

	doc, err := retriever.Retrieve(context.Background(), "some song")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if doc.Title != "Third Time Lucky" {
		t.Errorf("Expected third candidate to win, got %q", doc.Title)
	}
}

func TestRetrieve_AllCandidatesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	searcher := &stubSearcher{results: []search.Result{
		{URL: server.URL + "/a", Title: "A"},
		{URL: server.URL + "/b", Title: "B"},
	}}
	retriever := NewRetriever(searcher, 0)

	_, err := retriever.Retrieve(context.Background(), "some song")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRetrieve_SearchError(t *testing.T) {
	searcher := &stubSearcher{err: search.ErrNoResults}
	retriever := NewRetriever(searcher, 0)

	_, err := retriever.Retrieve(context.Background(), "gibberish")
	if !errors.Is(err, search.ErrNoResults) {
		t.Errorf("Expected wrapped ErrNoResults, got %v", err)
	}
}

func TestRetrieve_SendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(lyricsPage()))
	}))
	defer server.Close()

	searcher := &stubSearcher{results: []search.Result{{URL: server.URL, Title: "X"}}}
	retriever := NewRetriever(searcher, 0)

	if _, err := retriever.Retrieve(context.Background(), "song"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Errorf("Expected desktop User-Agent to be sent, got %q", gotUA)
	}
}
