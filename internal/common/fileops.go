package common

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteBlob copies exactly n bytes from src to dst. A short source is
// reported as io.ErrUnexpectedEOF so a declared Content-Length is never
// silently underrun.
func WriteBlob(dst io.Writer, src io.Reader, n int64) (int64, error) {
	written, err := io.CopyN(dst, src, n)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return written, err
}

// IsRegularFile reports whether path names an existing regular file.
// Symlinks are followed.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Within reports whether path lies inside root. Both must be clean absolute
// paths.
func Within(root, path string) bool {
	if path == root {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
