package lovdata

import (
	"strings"
	"testing"
)

const sampleDocument = `<!DOCTYPE html>
<html>
<body>
<header>
<dl class="data-document-key-info">
  <dt>Tittel</dt>
  <dd>Lov om hundehold (hundeloven)</dd>
  <dt>Departement</dt>
  <dd>Landbruks- og matdepartementet</dd>
  <dt>Endrer</dt>
  <dd><ul><li>LOV-2003-07-04-74</li><li>LOV-1961-11-24-1</li></ul></dd>
  <dt>Innhold</dt>
  <dd class="table-of-contents">
    <ul>
      <li>Kapittel 1. Innledende bestemmelser
        <ul>
          <li>&#167; 1. Form&#229;l</li>
          <li>&#167; 2. Definisjoner</li>
        </ul>
      </li>
      <li>Kapittel 2. Sikring av hund</li>
    </ul>
  </dd>
</dl>
</header>
<main>
<article class="legalArticle" data-name="&#167; 1" data-lovdata-url="/lov/2018-06-15-38/&#167;1">
  <h3>&#167; 1. Form&#229;l</h3>
  <article class="legalP">Loven skal bidra til et hundehold som ivaretar hensynet til sikkerhet.</article>
</article>
<article class="legalArticle" data-name="&#167; 2" data-lovdata-url="/lov/2018-06-15-38/&#167;2">
  <h3>&#167; 2. Definisjoner</h3>
  <article class="legalP">Med hundeholder menes den som eier en hund.</article>
</article>
</main>
</body>
</html>`

func TestParseDocumentMetadata(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Metadata["Tittel"]; got != "Lov om hundehold (hundeloven)" {
		t.Errorf("Tittel = %v", got)
	}
	if got := doc.Metadata["Departement"]; got != "Landbruks- og matdepartementet" {
		t.Errorf("Departement = %v", got)
	}
	values, ok := doc.Metadata["Endrer"].([]string)
	if !ok || len(values) != 2 || values[0] != "LOV-2003-07-04-74" {
		t.Errorf("Endrer = %v", doc.Metadata["Endrer"])
	}
	if doc.Metadata.Title() != "Lov om hundehold (hundeloven)" {
		t.Errorf("Title() = %q", doc.Metadata.Title())
	}
}

func TestParseDocumentTableOfContents(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.TableOfContents) != 2 {
		t.Fatalf("toc entries = %d", len(doc.TableOfContents))
	}
	first := doc.TableOfContents[0]
	if first.Title != "Kapittel 1. Innledende bestemmelser" {
		t.Errorf("toc title = %q", first.Title)
	}
	if len(first.Subsections) != 2 || first.Subsections[0].Title != "§ 1. Formål" {
		t.Errorf("toc subsections = %v", first.Subsections)
	}
	if len(doc.TableOfContents[1].Subsections) != 0 {
		t.Errorf("flat entry grew subsections: %v", doc.TableOfContents[1])
	}
}

func TestParseDocumentArticles(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Articles) < 2 {
		t.Fatalf("articles = %d", len(doc.Articles))
	}
	first := doc.Articles[0]
	if first.Title != "§ 1" {
		t.Errorf("article title = %q", first.Title)
	}
	if first.URL != "/lov/2018-06-15-38/§1" {
		t.Errorf("article url = %q", first.URL)
	}
	if len(first.Paragraphs) != 1 || !strings.Contains(first.Paragraphs[0], "Loven skal bidra") {
		t.Errorf("article paragraphs = %v", first.Paragraphs)
	}
}

func TestParseDocumentEmpty(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Metadata) != 0 || len(doc.Articles) != 0 || len(doc.TableOfContents) != 0 {
		t.Fatalf("expected an empty document, got %+v", doc)
	}
}
