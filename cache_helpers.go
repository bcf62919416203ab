package main

import (
	"encoding/json"
	"strings"

	"lyrics-meaning-api/logcolors"
	"lyrics-meaning-api/services/lyrics"

	log "github.com/sirupsen/logrus"
)

// lyricsCacheKey builds a normalized cache key so hits don't depend on
// input casing or stray whitespace
func lyricsCacheKey(songName string) string {
	return "lyrics:" + strings.Join(strings.Fields(strings.ToLower(songName)), " ")
}

// getCachedLyricsDoc loads a lyrics document from the persistent cache
func getCachedLyricsDoc(key string) (*lyrics.Document, bool) {
	if persistentCache == nil {
		return nil, false
	}

	raw, ok := persistentCache.Get(key)
	if !ok {
		return nil, false
	}

	var doc lyrics.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		log.Errorf("%s Undecodable cache entry %q: %v", logcolors.LogCacheLyrics, key, err)
		persistentCache.Delete(key)
		return nil, false
	}

	return &doc, true
}

// setCachedLyricsDoc stores a lyrics document, best-effort
func setCachedLyricsDoc(key string, doc *lyrics.Document) {
	if persistentCache == nil {
		return
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		log.Errorf("%s Failed to marshal cache value: %v", logcolors.LogCacheLyrics, err)
		return
	}

	if err := persistentCache.Set(key, string(raw)); err != nil {
		log.Errorf("%s Failed to cache lyrics for %q: %v", logcolors.LogCacheLyrics, key, err)
	}
}
