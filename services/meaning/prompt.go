package meaning

import (
	"fmt"
	"strings"
)

const basePrompt = `You are given song lyrics. Produce ONLY valid JSON matching EXACTLY this schema, with no markdown, no commentary, and no extra keys.

Schema: {
  "songId": number | null,
  "lyricsMeaning": [
    { "LineNo": number, "Line": string, "Type": "Lyric" | "Meaning" | "Stanza" }
  ]
}

Rules:
- Start LineNo at 0 and increment by 1 for each item in lyricsMeaning; strictly ascending.
- For each non-empty lyric line from the input, include one Lyric entry with the original line text.
- Immediately after each Lyric entry, include a Meaning entry explaining ONLY that lyric line concisely.
- After each group of 4-5 lyric/meaning pairs, insert one Stanza entry summarizing the preceding group.
- Omit Meaning/Stanza for purely blank lines; skip empty lines in Lyric entries.
- Keep explanations faithful, concise, and neutral.
- Output must be minified JSON (no code fences).

`

// buildPrompt assembles the annotation prompt: schema, rules, optional
// caller instructions, then the lyrics between delimiters and the songId
// the model must echo back
func buildPrompt(lyrics string, songID *int64, customInstructions string) string {
	var sb strings.Builder
	sb.WriteString(basePrompt)

	if customInstructions != "" {
		sb.WriteString("Additional Instructions:\n")
		sb.WriteString(customInstructions)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Input lyrics begin after this line:\n")
	sb.WriteString("================================\n")
	sb.WriteString(lyrics)
	sb.WriteString("\n================================\n")

	id := "null"
	if songID != nil {
		id = fmt.Sprintf("%d", *songID)
	}
	sb.WriteString("songId to include: " + id + "\n")

	return sb.String()
}
