package lovdata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractSelected(t *testing.T) {
	dir := t.TempDir()
	wanted := map[string]struct{}{"wanted.xml": {}}

	count, err := ExtractSelected(filepath.Join("testdata", "sample.tar.bz2"), wanted, dir)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 extracted member, got %d", count)
	}

	// Members are written under their base filename, without archive paths.
	data, err := os.ReadFile(filepath.Join(dir, "wanted.xml"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("extracted file is empty")
	}
	if _, err := os.Stat(filepath.Join(dir, "unwanted.xml")); !os.IsNotExist(err) {
		t.Fatal("unselected member was extracted")
	}
	if _, err := os.Stat(filepath.Join(dir, "nested")); !os.IsNotExist(err) {
		t.Fatal("archive directory structure leaked into the target directory")
	}
}

func TestExtractSelectedMissingArchive(t *testing.T) {
	if _, err := ExtractSelected(filepath.Join(t.TempDir(), "missing.tar.bz2"), nil, t.TempDir()); err == nil {
		t.Fatal("expected an error for a missing archive")
	}
}
