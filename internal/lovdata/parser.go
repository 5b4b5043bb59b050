package lovdata

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/kommunelab/lovassistent/internal/model"
)

// TOCItem is one entry of a document's table of contents.
type TOCItem struct {
	Title       string    `json:"title"`
	Subsections []TOCItem `json:"subsections,omitempty"`
}

// Article is one legal article (a numbered paragraph) of a document.
type Article struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Paragraphs []string `json:"paragraphs"`
}

// Document is the structured form of one publisher XHTML file.
type Document struct {
	Metadata        model.Metadata `json:"metadata"`
	TableOfContents []TOCItem      `json:"table_of_contents"`
	Articles        []Article      `json:"articles"`
}

// ParseDocument parses a publisher XHTML law document. Metadata comes from
// the key-info definition list, value lists are kept as lists. Every
// legalArticle becomes one article carrying its flattened text.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	doc := &Document{Metadata: model.Metadata{}}

	if dl := findFirst(root, isElement("dl", "data-document-key-info")); dl != nil {
		terms := childElements(dl, "dt")
		defs := childElements(dl, "dd")
		for i, dt := range terms {
			if i >= len(defs) {
				break
			}
			key := nodeText(dt)
			if key == "" {
				continue
			}
			dd := defs[i]
			if findFirst(dd, isElement("ul", "")) != nil {
				var values []string
				for _, li := range findAll(dd, isElement("li", "")) {
					values = append(values, nodeText(li))
				}
				doc.Metadata[key] = values
			} else {
				doc.Metadata[key] = nodeText(dd)
			}
		}
	}

	if tocDD := findFirst(root, isElement("dd", "table-of-contents")); tocDD != nil {
		if ul := firstChildElement(tocDD, "ul"); ul != nil {
			doc.TableOfContents = parseTOC(ul)
		}
	}

	for _, node := range findAll(root, isElement("article", "legalArticle")) {
		article := Article{
			Title: attr(node, "data-name"),
			URL:   attr(node, "data-lovdata-url"),
		}
		if text := nodeText(node); text != "" {
			article.Paragraphs = append(article.Paragraphs, text)
		}
		doc.Articles = append(doc.Articles, article)
	}
	return doc, nil
}

func parseTOC(ul *html.Node) []TOCItem {
	var items []TOCItem
	for _, li := range childElements(ul, "li") {
		var parts []string
		var sub *html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "ul" {
				if sub == nil {
					sub = c
				}
				continue
			}
			if text := nodeText(c); text != "" {
				parts = append(parts, text)
			}
		}
		item := TOCItem{Title: strings.Join(parts, " ")}
		if sub != nil {
			item.Subsections = parseTOC(sub)
		}
		items = append(items, item)
	}
	return items
}

func isElement(tag, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag && (class == "" || hasClass(n, class))
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var nodes []*html.Node
	if match(n) {
		nodes = append(nodes, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, findAll(c, match)...)
	}
	return nodes
}

func childElements(n *html.Node, tag string) []*html.Node {
	var nodes []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			nodes = append(nodes, c)
		}
	}
	return nodes
}

func firstChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

// nodeText flattens all text below n, one space between fragments.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, strings.Join(strings.Fields(text), " "))
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
