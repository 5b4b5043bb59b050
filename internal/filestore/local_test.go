package filestore

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/kommunelab/lovassistent/internal/config"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := New(config.ArchiveConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	if err := store.Save(ctx, "nl-20180615-038.xml", strings.NewReader("<html/>")); err != nil {
		t.Fatalf("save: %v", err)
	}
	rc, err := store.Open(ctx, "nl-20180615-038.xml")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<html/>" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestLocalStoreRejectsPathKeys(t *testing.T) {
	store, err := New(config.ArchiveConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "../escape.xml", "a/b.xml", `a\b.xml`} {
		if err := store.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q): expected an error", key)
		}
	}
}

func TestNewUnknownType(t *testing.T) {
	if _, err := New(config.ArchiveConfig{Type: "ftp"}); err == nil {
		t.Fatal("expected an error for an unsupported store type")
	}
	if _, err := New(config.ArchiveConfig{}); err == nil {
		t.Fatal("expected an error for a missing store type")
	}
}
