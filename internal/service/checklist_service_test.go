package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kommunelab/lovassistent/internal/pkg/errs"
)

func TestParseChecklist(t *testing.T) {
	markdown := `Her er sjekklisten:

- Sjekk båndtvangperioden
- Varsle hundeholderen
* Dokumenter vedtaket

Ta kontakt ved spørsmål.`

	items := ParseChecklist(markdown)
	if len(items) != 3 {
		t.Fatalf("items = %v", items)
	}
	want := []string{"Sjekk båndtvangperioden", "Varsle hundeholderen", "Dokumenter vedtaket"}
	for i, item := range items {
		if item.Text != want[i] {
			t.Errorf("item %d = %q, want %q", i, item.Text, want[i])
		}
		if item.Done {
			t.Errorf("item %d unexpectedly done", i)
		}
	}
}

func TestParseChecklistTaskMarkers(t *testing.T) {
	items := ParseChecklist("- [x] Ferdig punkt\n- [ ] Åpent punkt\n")
	if len(items) != 2 {
		t.Fatalf("items = %v", items)
	}
	if !items[0].Done || items[0].Text != "Ferdig punkt" {
		t.Errorf("first = %+v", items[0])
	}
	if items[1].Done || items[1].Text != "Åpent punkt" {
		t.Errorf("second = %+v", items[1])
	}
}

func TestParseChecklistNestedAndEmpty(t *testing.T) {
	items := ParseChecklist("- Hovedpunkt\n  - Underpunkt\n")
	if len(items) != 2 {
		t.Fatalf("items = %v", items)
	}
	if items[0].Text != "Hovedpunkt" || items[1].Text != "Underpunkt" {
		t.Fatalf("items = %v", items)
	}
	if got := ParseChecklist("Ingen punkter her, bare tekst."); len(got) != 0 {
		t.Fatalf("prose must yield no items, got %v", got)
	}
}

func TestChecklistGenerate(t *testing.T) {
	gen := &fakeGenerator{answer: "- Punkt en\n- Punkt to\n"}
	svc := NewChecklistService(&fakeRetriever{result: retrieved()}, gen, 400, 0.27)

	items, err := svc.Generate(context.Background(), "hundehold")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 2 || items[0].Text != "Punkt en" {
		t.Fatalf("items = %v", items)
	}
	for _, want := range []string{"Hunder skal holdes i bånd.", "Tema: hundehold"} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(gen.prompt, "Unntak fra sikringsreglene.") {
		t.Error("paragraph past the threshold leaked into prompt")
	}
}

func TestChecklistGenerateBlankTopic(t *testing.T) {
	svc := NewChecklistService(&fakeRetriever{}, &fakeGenerator{}, 400, 0.27)
	if _, err := svc.Generate(context.Background(), " "); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

func TestChecklistGeneratePropagatesRetrievalFailure(t *testing.T) {
	svc := NewChecklistService(&fakeRetriever{err: errors.New("db down")}, &fakeGenerator{}, 400, 0.27)
	if _, err := svc.Generate(context.Background(), "hundehold"); err == nil {
		t.Fatal("expected retrieval failure to propagate")
	}
}
