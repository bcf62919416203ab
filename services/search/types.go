package search

// Result is a single web search hit
type Result struct {
	URL   string
	Title string
}

// searchResponse mirrors the Google Custom Search JSON API response,
// reduced to the fields the pipeline uses
type searchResponse struct {
	Items []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"items"`
	Spelling struct {
		CorrectedQuery string `json:"correctedQuery"`
	} `json:"spelling"`
}

// errorResponse is the API error envelope
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
