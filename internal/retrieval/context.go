package retrieval

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kommunelab/lovassistent/internal/textnorm"
)

// DefaultMaxContextWords caps the assembled context block.
const DefaultMaxContextWords = 400

// LinksHeading titles the citation list appended to a chat response.
const LinksHeading = "Relevante lovhenvisninger:"

const lovdataBase = "https://lovdata.no"

// Word counting mirrors the budget the rest of the pipeline uses. Unicode
// classes, so æ/ø/å do not split Norwegian words.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// LawLink points one included paragraph at its public lovdata.no location.
type LawLink struct {
	Title string `json:"title"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// CountWords counts word tokens the same way the context budget does.
func CountWords(text string) int {
	return len(wordRe.FindAllString(text, -1))
}

// BuildContext renders the ranked paragraphs of a retrieval into a context
// block no larger than maxWords, cutting off at a paragraph boundary. It
// also collects one law link per included paragraph, in order and without
// deduplication.
func BuildContext(result *Result, maxWords int) (string, []LawLink) {
	if result == nil || len(result.Paragraphs) == 0 {
		return "", nil
	}
	if maxWords <= 0 {
		maxWords = DefaultMaxContextWords
	}

	titles := make(map[string]string, len(result.Laws))
	for _, law := range result.Laws {
		title := law.Metadata.Title()
		if title == "" {
			title = "Lov ID " + law.LawID
		}
		titles[law.LawID] = title
	}

	var blocks []string
	var links []LawLink
	used := 0
	for _, hit := range result.Paragraphs {
		title, listed := titles[hit.LawID]
		if !listed {
			// Soft reference: the paragraph points at a law that is not in
			// the result set (or no longer exists).
			title = "Ukjent lov"
		}
		label := ParagraphLabel(hit.ParagraphNumber)
		block := fmt.Sprintf("Fra %s - §%s: %s", title, label, textnorm.Clean(hit.Text))
		n := CountWords(block)
		if used+n > maxWords {
			break
		}
		used += n
		blocks = append(blocks, block)
		links = append(links, LawLink{
			Title: title,
			Label: label,
			URL:   LawURL(hit.LawID, label),
		})
	}
	return strings.Join(blocks, "\n\n"), links
}

// ParagraphLabel reduces a stored paragraph number like "§ 4 a" to its bare
// label "4a".
func ParagraphLabel(paragraphNumber string) string {
	label := strings.TrimPrefix(strings.TrimSpace(paragraphNumber), "§")
	return strings.ReplaceAll(strings.TrimSpace(label), " ", "")
}

// LawURL builds the public lovdata.no address for a law id derived from the
// publisher filename, e.g. nl-20180615-038 -> /lov/2018-06-15-38. Forskrift
// ids (sf-) route under /forskrift/.
func LawURL(lawID, label string) string {
	route := "/lov/"
	if strings.Contains(lawID, "sf") {
		route = "/forskrift/"
	}
	url := lovdataBase + route
	if len(lawID) >= 11 {
		url += lawID[3:7] + "-" + lawID[7:9] + "-" + lawID[9:11]
		if len(lawID) > 12 {
			if seq := strings.TrimLeft(lawID[12:], "0"); seq != "" {
				url += "-" + seq
			}
		}
	} else {
		url += lawID
	}
	if label != "" {
		url += "/§" + label
	}
	return url
}

// RenderLinks renders the citation list appended under a chat response.
func RenderLinks(links []LawLink) string {
	if len(links) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(LinksHeading)
	for _, link := range links {
		b.WriteString(fmt.Sprintf("\n- [%s §%s](%s)", link.Title, link.Label, link.URL))
	}
	return b.String()
}
