package lovdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kommunelab/lovassistent/internal/pkg/errs"
)

func TestListFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"filename":"laws.tar.bz2","size":1234},{"size":99},{"filename":"other.zip","size":5}]`))
	}))
	defer srv.Close()

	files, err := NewClient(srv.URL).ListFiles(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected entries without a filename dropped, got %v", files)
	}
	if files[0].Filename != "laws.tar.bz2" || files[0].Size != 1234 {
		t.Fatalf("unexpected first entry: %+v", files[0])
	}
}

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get/download" || r.URL.Query().Get("filename") != "laws.tar.bz2" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("archive-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := NewClient(srv.URL).DownloadFile(context.Background(), "laws.tar.bz2", dir)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if path != filepath.Join(dir, "laws.tar.bz2") {
		t.Fatalf("unexpected path: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "archive-bytes" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestDownloadFileRejectsIllegalFilenames(t *testing.T) {
	client := NewClient("http://unused.invalid")
	for _, name := range []string{
		"../etc/passwd.zip",
		"laws.tar.gz",
		"laws;rm.zip",
		"laws.xml",
		"",
	} {
		if _, err := client.DownloadFile(context.Background(), name, t.TempDir()); !errors.Is(err, errs.ErrInvalid) {
			t.Errorf("DownloadFile(%q): expected invalid filename error, got %v", name, err)
		}
	}
}

func TestDownloadFileStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).DownloadFile(context.Background(), "laws.tar.bz2", t.TempDir()); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}
