package extract

import (
	"errors"
	"regexp"
	"strings"

	"lyrics-meaning-api/logcolors"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// ErrNoLyrics is returned when no strategy finds lyrics in a page
var ErrNoLyrics = errors.New("extract: no lyrics found in page")

const (
	// Minimum plausible lyrics length for targeted strategies
	minLyricsLen = 100

	// Generic fallback requires a larger block with real line structure
	minGenericLen      = 200
	minGenericNewlines = 10
)

// Pages that match these words in a candidate block are boilerplate,
// not lyrics
var boilerplateWords = []string{"copyright", "privacy", "terms", "advertisement"}

var (
	blankLineRe  = regexp.MustCompile(`\n\s*\n`)
	sectionTagRe = regexp.MustCompile(`\[.*?\]`)
)

// Strategy attempts to pull lyrics out of a parsed HTML document
type Strategy interface {
	Name() string
	TryExtract(doc *goquery.Document) (string, bool)
}

// strategies run in order; the first hit wins
var strategies = []Strategy{
	structuredStrategy{},
	selectorStrategy{},
	genericStrategy{},
}

// Extract parses an HTML page and runs the strategy cascade over it.
// A panic inside one strategy counts as a miss for that strategy only.
func Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, s := range strategies {
		lyrics, ok := tryStrategy(s, doc)
		if ok {
			log.Debugf("%s Strategy %q matched (%d chars)", logcolors.LogExtract, s.Name(), len(lyrics))
			return lyrics, nil
		}
	}

	return "", ErrNoLyrics
}

func tryStrategy(s Strategy, doc *goquery.Document) (lyrics string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("%s Strategy %q panicked: %v", logcolors.LogExtract, s.Name(), r)
			lyrics, ok = "", false
		}
	}()
	return s.TryExtract(doc)
}

// structuredStrategy targets pages with dedicated lyrics markup: a legacy
// .lyrics block, or modern Lyrics__Container divs where <br> tags carry
// the line breaks.
type structuredStrategy struct{}

func (structuredStrategy) Name() string { return "structured" }

func (structuredStrategy) TryExtract(doc *goquery.Document) (string, bool) {
	if sel := doc.Find(".lyrics").First(); sel.Length() > 0 {
		lyrics := strings.TrimSpace(sel.Text())
		if len(lyrics) > minLyricsLen {
			return lyrics, true
		}
	}

	containers := doc.Find(`div[class*="Lyrics__Container"]`)
	if containers.Length() > 0 {
		var sb strings.Builder
		containers.Each(func(_ int, container *goquery.Selection) {
			container.Find("br").Each(func(_ int, br *goquery.Selection) {
				br.ReplaceWithHtml("\n")
			})
			sb.WriteString(container.Text())
		})
		lyrics := strings.TrimSpace(sb.String())
		if len(lyrics) > minLyricsLen {
			return lyrics, true
		}
	}

	return "", false
}

// selectorStrategy walks an ordered list of selectors common across
// lyrics sites, joining paragraph text with blank lines.
type selectorStrategy struct{}

var lyricsSelectors = []string{
	".lyrics-col p",
	".lyric-content p",
	"#main_lyrics p",
	".lyrics p",
	`[class*="lyrics"] p`,
	`[id*="lyrics"] p`,
}

func (selectorStrategy) Name() string { return "selector" }

func (selectorStrategy) TryExtract(doc *goquery.Document) (string, bool) {
	for _, selector := range lyricsSelectors {
		elements := doc.Find(selector)
		if elements.Length() == 0 {
			continue
		}

		var sb strings.Builder
		elements.Each(func(_ int, el *goquery.Selection) {
			sb.WriteString(strings.TrimSpace(el.Text()))
			sb.WriteString("\n\n")
		})

		lyrics := strings.TrimSpace(sb.String())
		if len(lyrics) > minLyricsLen {
			return lyrics, true
		}
	}

	return "", false
}

// genericStrategy is the last-resort fallback: any substantial text block
// with enough line breaks that doesn't read like site boilerplate.
type genericStrategy struct{}

func (genericStrategy) Name() string { return "generic" }

func (genericStrategy) TryExtract(doc *goquery.Document) (string, bool) {
	var lyrics string
	var found bool

	doc.Find("p, div, span").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		text := strings.TrimSpace(block.Text())

		if len(text) <= minGenericLen || strings.Count(text, "\n") <= minGenericNewlines {
			return true
		}
		if containsBoilerplate(text) {
			return true
		}

		text = blankLineRe.ReplaceAllString(text, "\n\n")
		text = sectionTagRe.ReplaceAllString(text, "")

		lyrics = strings.TrimSpace(text)
		found = true
		return false
	})

	return lyrics, found
}

func containsBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range boilerplateWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
