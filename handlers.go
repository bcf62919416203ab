package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lyrics-meaning-api/circuitbreaker"
	"lyrics-meaning-api/logcolors"
	"lyrics-meaning-api/services/lyrics"
	"lyrics-meaning-api/services/meaning"
	"lyrics-meaning-api/services/search"
	"lyrics-meaning-api/stats"

	log "github.com/sirupsen/logrus"
)

func getLyrics(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest("/api/lyrics")
	resp := Respond(w, r)

	var req lyricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp.Error(http.StatusBadRequest, "Request body is required")
		return
	}

	songName := strings.TrimSpace(req.SongName)
	if songName == "" {
		resp.Error(http.StatusBadRequest, "song_name is required")
		return
	}

	cacheOnlyMode, _ := r.Context().Value(cacheOnlyModeKey).(bool)
	cacheKey := lyricsCacheKey(songName)

	if doc, ok := getCachedLyricsDoc(cacheKey); ok {
		stats.Get().RecordCacheHit()
		log.Infof("%s Found cached lyrics for %q", logcolors.LogCacheLyrics, songName)
		resp.SetCacheStatus("HIT").Success(buildLyricsData(doc, songName))
		return
	}
	stats.Get().RecordCacheMiss()

	// Cached tier covers cached answers only
	if cacheOnlyMode {
		stats.Get().RecordRateLimit("exceeded")
		log.Warnf("%s Cache-only mode but no cache for %q", logcolors.LogCacheLyrics, songName)
		w.Header().Set("Retry-After", "60")
		resp.SetCacheStatus("MISS").Error(http.StatusTooManyRequests,
			"Rate limit exceeded. This request requires cached data, but no cache is available for this query.")
		return
	}

	doc, err := lyricsRetriever.Retrieve(r.Context(), songName)
	if err != nil {
		if errors.Is(err, lyrics.ErrNotFound) || errors.Is(err, search.ErrNoResults) {
			resp.SetCacheStatus("MISS").Error(http.StatusNotFound, "Could not find lyrics for this song")
			return
		}
		log.Errorf("%s Retrieval failed for %q: %v", logcolors.LogLyrics, songName, err)
		resp.SetCacheStatus("MISS").Error(http.StatusInternalServerError, err.Error())
		return
	}

	setCachedLyricsDoc(cacheKey, doc)
	resp.SetCacheStatus("MISS").Success(buildLyricsData(doc, songName))
}

func buildLyricsData(doc *lyrics.Document, songName string) lyricsData {
	return lyricsData{
		Title:      doc.Title,
		Lyrics:     doc.Lyrics,
		SongName:   songName,
		Characters: len(doc.Lyrics),
		Lines:      strings.Count(doc.Lyrics, "\n") + 1,
		Words:      len(strings.Fields(doc.Lyrics)),
	}
}

func getLyricsMeaning(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest("/api/lyrics/meaning")
	resp := Respond(w, r)

	req, ok := decodeMeaningRequest(w, r, resp)
	if !ok {
		return
	}

	result, err := annotationPipeline.Annotate(r.Context(), req)
	if err != nil {
		writeMeaningError(resp, err)
		return
	}

	resp.SuccessCached(result.Annotation, result.Cached)
}

func getLyricsMeaningCached(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest("/api/lyrics/meaning/cached")
	resp := Respond(w, r)

	req, ok := decodeMeaningRequest(w, r, resp)
	if !ok {
		return
	}

	// Under the cached tier only a store hit may be served
	if cacheOnlyMode, _ := r.Context().Value(cacheOnlyModeKey).(bool); cacheOnlyMode {
		if cached, hit := annotationStore.Lookup(req.SongID, req.Title, req.Artist); hit {
			stats.Get().RecordMeaningCacheHit()
			resp.SetCacheStatus("HIT").SuccessCached(cached, true)
			return
		}
		stats.Get().RecordRateLimit("exceeded")
		w.Header().Set("Retry-After", "60")
		resp.SetCacheStatus("MISS").Error(http.StatusTooManyRequests,
			"Rate limit exceeded. This request requires cached data, but no cached annotation exists for this song.")
		return
	}

	result, err := annotationPipeline.AnnotateCached(r.Context(), req)
	if err != nil {
		writeMeaningError(resp, err)
		return
	}

	resp.SuccessCached(result.Annotation, result.Cached)
}

func decodeMeaningRequest(w http.ResponseWriter, r *http.Request, resp *APIResponse) (meaning.Request, bool) {
	var body meaningRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		resp.Error(http.StatusBadRequest, "Request body is required")
		return meaning.Request{}, false
	}

	return meaning.Request{
		SongID:             body.SongID,
		Title:              body.Title,
		Artist:             body.Artist,
		SongName:           body.SongName,
		Lyrics:             body.Lyrics,
		CustomInstructions: body.CustomInstructions,
	}, true
}

func writeMeaningError(resp *APIResponse, err error) {
	var verr *lyrics.ValidationError
	var genErr *meaning.GenerationError

	switch {
	case errors.As(err, &verr):
		resp.Error(http.StatusBadRequest, verr.Error())
	case errors.Is(err, meaning.ErrNoInput):
		resp.Error(http.StatusBadRequest, "Provide either lyrics or song_name to extract lyrics")
	case errors.Is(err, lyrics.ErrNotFound), errors.Is(err, search.ErrNoResults):
		resp.Error(http.StatusNotFound, "Could not find lyrics for this song")
	case meaning.IsRateLimited(err):
		resp.Error(http.StatusTooManyRequests, "Generation quota exceeded. Please wait before retrying.")
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		resp.Error(http.StatusServiceUnavailable, "Generation temporarily unavailable. Please retry later.")
	case errors.As(err, &genErr):
		resp.Error(http.StatusBadGateway, genErr.Error())
	default:
		resp.Error(http.StatusInternalServerError, err.Error())
	}
}

func getHealthStatus(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest("/api/health")

	health := map[string]interface{}{
		"status":  "ok",
		"service": "Lyrics Meaning API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"lyrics":                "/api/lyrics (POST)",
			"lyrics_meaning":        "/api/lyrics/meaning (POST)",
			"lyrics_meaning_cached": "/api/lyrics/meaning/cached (POST)",
			"health":                "/api/health (GET)",
		},
	}

	if geminiBreaker != nil {
		state := geminiBreaker.State().String()
		health["circuit_breaker"] = state
		if geminiBreaker.IsOpen() {
			health["status"] = "degraded"
			health["circuit_breaker_retry_in"] = geminiBreaker.TimeUntilRetry().String()
		}
	}

	if conf.Configuration.GeminiAPIKey == "" || conf.Configuration.SearchAPIKey == "" {
		health["status"] = "unconfigured"
	}

	Respond(w, r).JSON(health)
}

func getStats(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest("/stats")

	if r.Header.Get("Authorization") != conf.Configuration.CacheAccessToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	snapshot := stats.Get().Snapshot()

	if persistentCache != nil {
		numKeys, sizeInKB := persistentCache.Stats()
		snapshot["cache_storage"] = map[string]interface{}{
			"keys":    numKeys,
			"size_kb": sizeInKB,
			"size_mb": float64(sizeInKB) / 1024,
		}
	}

	if geminiBreaker != nil {
		snapshot["circuit_breaker"] = map[string]interface{}{
			"state":              geminiBreaker.State().String(),
			"failures":           geminiBreaker.Failures(),
			"cooldown_remaining": geminiBreaker.TimeUntilRetry().String(),
		}
	}

	Respond(w, r).JSON(snapshot)
}

func getCacheDump(w http.ResponseWriter, r *http.Request) {
	stats.Get().RecordRequest("/cache")

	if r.Header.Get("Authorization") != conf.Configuration.CacheAccessToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	numKeys, sizeInKB := persistentCache.Stats()
	Respond(w, r).JSON(CacheDumpResponse{
		NumberOfKeys: numKeys,
		SizeInKB:     sizeInKB,
		SizeInMB:     float64(sizeInKB) / 1024,
		Keys:         persistentCache.Keys(),
	})
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(map[string]interface{}{
		"message": "Lyrics Meaning API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"lyrics":                "/api/lyrics (POST)",
			"lyrics_meaning":        "/api/lyrics/meaning (POST)",
			"lyrics_meaning_cached": "/api/lyrics/meaning/cached (POST)",
			"health":                "/api/health (GET)",
		},
		"usage": map[string]interface{}{
			"method":   "POST",
			"endpoint": "/api/lyrics",
			"body": map[string]string{
				"song_name": "string (required)",
			},
		},
	})
}
