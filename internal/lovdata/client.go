package lovdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/kommunelab/lovassistent/internal/pkg/errs"
)

// DefaultBaseURL is the publisher's public data API.
const DefaultBaseURL = "https://api.lovdata.no/v1/publicData"

// Filenames are used both in request parameters and as local paths, so
// anything outside this set is rejected before it reaches either.
var filenameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+\.(zip|tar\.bz2)$`)

// FileInfo is one entry of the publisher's file listing.
type FileInfo struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 180 * time.Second},
	}
}

// ListFiles fetches the publisher's file listing. Entries without a
// filename are dropped.
func (c *Client) ListFiles(ctx context.Context) ([]FileInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/list", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	rsp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list public files: %w", err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list public files: unexpected status %d", rsp.StatusCode)
	}
	var items []FileInfo
	if err := json.NewDecoder(rsp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode file listing: %w", err)
	}
	files := make([]FileInfo, 0, len(items))
	for _, item := range items {
		if item.Filename == "" {
			continue
		}
		files = append(files, item)
	}
	return files, nil
}

// DownloadFile streams one archive from the publisher into outDir and
// returns the local path.
func (c *Client) DownloadFile(ctx context.Context, filename string, outDir string) (string, error) {
	if !filenameRe.MatchString(filename) {
		return "", fmt.Errorf("%w: illegal filename: %s", errs.ErrInvalid, filename)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	u := c.baseURL + "/get/download?" + url.Values{"filename": {filename}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	rsp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", filename, err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %d", filename, rsp.StatusCode)
	}

	path := filepath.Join(outDir, filename)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, rsp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return path, nil
}
