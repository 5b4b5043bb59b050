package lovdata

import (
	"archive/tar"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ExtractSelected extracts the archive members whose base filename is in
// wanted into destDir and returns how many were written. Only the basename
// of a member is ever used, so a crafted member path cannot escape destDir.
func ExtractSelected(archivePath string, wanted map[string]struct{}, destDir string) (int, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, err
	}
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	tr := tar.NewReader(bzip2.NewReader(f))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read archive %s: %w", archivePath, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := filepath.Base(hdr.Name)
		if _, ok := wanted[name]; !ok {
			continue
		}
		if err := writeMember(tr, filepath.Join(destDir, name)); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func writeMember(r io.Reader, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", path, err)
	}
	return out.Close()
}
