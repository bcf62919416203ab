package meaning

import (
	"context"
	"strings"

	"lyrics-meaning-api/logcolors"
	"lyrics-meaning-api/services/lyrics"
	"lyrics-meaning-api/stats"

	log "github.com/sirupsen/logrus"
)

// AnnotationStore is the persistence interface the pipeline depends on.
// Lookup misses and storage failures are both reported as (nil, false);
// the pipeline never fails a request over storage.
type AnnotationStore interface {
	Lookup(songID *int64, title, artist string) (*Annotation, bool)
	Save(songID *int64, title, artist string, a *Annotation) error
}

// AnnotationGenerator produces an annotation for normalized lyrics
type AnnotationGenerator interface {
	Generate(ctx context.Context, lyricsText string, songID *int64, customInstructions string) (*Annotation, error)
}

// LyricsSource retrieves lyrics for a song name
type LyricsSource interface {
	Retrieve(ctx context.Context, songName string) (*lyrics.Document, error)
}

// Request carries everything a caller can provide for annotation
type Request struct {
	SongID             *int64
	Title              string
	Artist             string
	SongName           string
	Lyrics             string
	CustomInstructions string
}

// Result is an annotation plus whether it came from the store
type Result struct {
	Annotation *Annotation
	Cached     bool
}

// Pipeline orchestrates the annotate-and-cache flow: store lookup first,
// then lyrics resolution, generation, and best-effort persistence
type Pipeline struct {
	store     AnnotationStore
	generator AnnotationGenerator
	retriever LyricsSource
}

func NewPipeline(store AnnotationStore, generator AnnotationGenerator, retriever LyricsSource) *Pipeline {
	return &Pipeline{
		store:     store,
		generator: generator,
		retriever: retriever,
	}
}

// Annotate handles direct annotation requests: the caller supplies the
// lyrics text. The store is checked first by songId, then title+artist,
// then title; on a miss the lyrics are normalized and sent to the model.
func (p *Pipeline) Annotate(ctx context.Context, req Request) (*Result, error) {
	if cached, ok := p.lookup(req); ok {
		return &Result{Annotation: cached, Cached: true}, nil
	}

	text, err := lyrics.Normalize(req.Lyrics)
	if err != nil {
		return nil, err
	}

	annotation, err := p.generate(ctx, text, req)
	if err != nil {
		return nil, err
	}

	p.save(req.SongID, req.Title, req.Artist, annotation)
	return &Result{Annotation: annotation}, nil
}

// AnnotateCached handles the orchestrated flow: when the caller has no
// lyrics, they are retrieved by song name before generation, and the
// stored payload includes the lyrics alongside the annotation.
func (p *Pipeline) AnnotateCached(ctx context.Context, req Request) (*Result, error) {
	if cached, ok := p.lookup(req); ok {
		return &Result{Annotation: cached, Cached: true}, nil
	}

	text, title, err := p.resolveLyrics(ctx, req)
	if err != nil {
		return nil, err
	}

	annotation, err := p.generate(ctx, text, req)
	if err != nil {
		return nil, err
	}

	combined := &Annotation{
		SongID: annotation.SongID,
		Title:  title,
		Artist: req.Artist,
		Lyrics: text,
		Lines:  annotation.Lines,
	}

	p.save(req.SongID, title, req.Artist, combined)
	return &Result{Annotation: combined}, nil
}

// resolveLyrics returns normalized lyrics text and the best-known title:
// provided lyrics win over retrieval, and a retrieved page title only
// fills in a missing request title
func (p *Pipeline) resolveLyrics(ctx context.Context, req Request) (string, string, error) {
	if strings.TrimSpace(req.Lyrics) != "" {
		text, err := lyrics.Normalize(req.Lyrics)
		return text, req.Title, err
	}

	songName := strings.TrimSpace(req.SongName)
	if songName == "" {
		return "", "", ErrNoInput
	}

	doc, err := p.retriever.Retrieve(ctx, songName)
	if err != nil {
		return "", "", err
	}

	text, err := lyrics.Normalize(doc.Lyrics)
	if err != nil {
		return "", "", err
	}

	title := req.Title
	if title == "" {
		title = doc.Title
	}
	return text, title, nil
}

func (p *Pipeline) lookup(req Request) (*Annotation, bool) {
	annotation, ok := p.store.Lookup(req.SongID, req.Title, req.Artist)
	if ok {
		log.Infof("%s Store hit for songId=%v title=%q", logcolors.LogPipeline, req.SongID, req.Title)
		stats.Get().RecordMeaningCacheHit()
		return annotation, true
	}
	stats.Get().RecordMeaningCacheMiss()
	return nil, false
}

func (p *Pipeline) generate(ctx context.Context, text string, req Request) (*Annotation, error) {
	annotation, err := p.generator.Generate(ctx, text, req.SongID, req.CustomInstructions)
	stats.Get().RecordGeneration(err, IsRateLimited(err))
	if err != nil {
		return nil, err
	}
	return annotation, nil
}

// save persists an annotation for future lookups. Failures are logged
// and swallowed; the response already in hand is worth more than the
// cache entry.
func (p *Pipeline) save(songID *int64, title, artist string, annotation *Annotation) {
	if err := p.store.Save(songID, title, artist, annotation); err != nil {
		log.Warnf("%s Failed to persist annotation: %v", logcolors.LogPipeline, err)
	}
}
