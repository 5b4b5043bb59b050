// Package textnorm cleans raw legal text before it is shown to the model.
// The source documents arrive with inline header metadata left over from
// the XML conversion; Clean strips that, normalizes whitespace, re-segments
// the text around numbered paragraph markers and caps the length.
package textnorm

import (
	"regexp"
	"strings"
)

// MaxWords caps the cleaned output; anything past it is dropped.
const MaxWords = 600

// Header keywords injected by the XML-to-text conversion. Each match is
// removed together with everything up to the next letter.
var metadataRe = regexp.MustCompile(
	`(?:XML generert|LegacyID|DocumentID|Departement|Publisert i|Korttittel|Tittel|Innhold|Kunngjort|Annet om dokumentet|Etat|Hjemmel|Endrer|I kraft fra)[^\p{L}]*`,
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	markerRe     = regexp.MustCompile(`§\s*\d+\s?[a-z]?\b`)
)

// Clean normalizes one block of law text. When the text contains numbered
// paragraph markers, everything before the first marker is discarded; text
// without markers is kept as-is after whitespace normalization.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	cleaned := metadataRe.ReplaceAllString(text, " ")
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return ""
	}

	if locs := markerRe.FindAllStringIndex(cleaned, -1); len(locs) > 0 {
		// Concatenating marker-to-marker segments drops any preamble.
		var b strings.Builder
		for i, loc := range locs {
			end := len(cleaned)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			b.WriteString(cleaned[loc[0]:end])
		}
		cleaned = strings.TrimSpace(b.String())
	}

	words := strings.Fields(cleaned)
	if len(words) > MaxWords {
		words = words[:MaxWords]
	}
	return strings.Join(words, " ")
}
