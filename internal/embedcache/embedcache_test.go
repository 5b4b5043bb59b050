package embedcache

import (
	"context"
	"testing"
	"time"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.calls++
	return []float32{float32(len(text))}, nil
}

func (c *countingEmbedder) ModelName() string { return "test-model" }
func (c *countingEmbedder) Dimension() int    { return 1 }

func TestWrapLRUCachesPerText(t *testing.T) {
	inner := &countingEmbedder{}
	e := WrapLRU(inner, 16, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := e.Embed(context.Background(), "hundehold i borettslag", "RETRIEVAL_QUERY"); err != nil {
			t.Fatalf("embed: %v", err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", inner.calls)
	}

	if _, err := e.Embed(context.Background(), "noe annet", "RETRIEVAL_QUERY"); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 provider calls after distinct text, got %d", inner.calls)
	}
}

func TestWrapLRUReturnsCopies(t *testing.T) {
	inner := &countingEmbedder{}
	e := WrapLRU(inner, 16, time.Minute)

	first, _ := e.Embed(context.Background(), "tekst", "")
	first[0] = -1
	second, _ := e.Embed(context.Background(), "tekst", "")
	if second[0] == -1 {
		t.Fatal("cached embedding was mutated through a returned slice")
	}
}

func TestWrapLRUDisabled(t *testing.T) {
	inner := &countingEmbedder{}
	if got := WrapLRU(inner, 0, time.Minute); got != inner {
		t.Fatal("zero size should return the embedder unchanged")
	}
	if got := WrapLRU(inner, 10, 0); got != inner {
		t.Fatal("zero ttl should return the embedder unchanged")
	}
}
