package main

type contextKey string

const (
	cacheOnlyModeKey contextKey = "cacheOnlyMode"
	rateLimitTypeKey contextKey = "rateLimitType"
)

// lyricsRequest is the body of POST /api/lyrics
type lyricsRequest struct {
	SongName string `json:"song_name"`
}

// meaningRequest is the body of POST /api/lyrics/meaning and
// /api/lyrics/meaning/cached. The cached variant additionally honors
// song_name for retrieval when no lyrics are given.
type meaningRequest struct {
	Lyrics             string `json:"lyrics"`
	SongID             *int64 `json:"songId"`
	Title              string `json:"title"`
	Artist             string `json:"artist"`
	SongName           string `json:"song_name"`
	CustomInstructions string `json:"customInstructions"`
}

// lyricsData is the data payload of a successful /api/lyrics response
type lyricsData struct {
	Title      string `json:"title"`
	Lyrics     string `json:"lyrics"`
	SongName   string `json:"song_name"`
	Characters int    `json:"characters"`
	Lines      int    `json:"lines"`
	Words      int    `json:"words"`
}

// CacheDumpResponse is the response format for the /cache endpoint
type CacheDumpResponse struct {
	NumberOfKeys int      `json:"number_of_keys"`
	SizeInKB     int      `json:"size_kb"`
	SizeInMB     float64  `json:"size_mb"`
	Keys         []string `json:"keys"`
}
