package httpserver

import (
	"fmt"
	"os"
	"path/filepath"

	"webserver/internal/common"
)

// FileResolver maps request paths onto regular files below a public root.
type FileResolver struct {
	root string
}

// NewFileResolver returns a resolver for root. The root need not exist yet;
// while it is missing every lookup reports ErrNotFound.
func NewFileResolver(root string) (*FileResolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("public root %q: %w", root, err)
	}
	if canon, err := filepath.EvalSymlinks(abs); err == nil {
		abs = canon
	}
	return &FileResolver{root: abs}, nil
}

// Root returns the canonical public root.
func (fr *FileResolver) Root() string {
	return fr.root
}

// Resolve opens the file for urlPath, which must already be validated (rooted,
// no ".."). The canonical location must be a regular file inside the root,
// otherwise the error wraps ErrNotFound. Any other error means the file exists
// but could not be opened.
func (fr *FileResolver) Resolve(urlPath string) (*os.File, int64, error) {
	joined := filepath.Join(fr.root, filepath.FromSlash(urlPath))
	canon, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", urlPath, ErrNotFound)
	}
	if !common.Within(fr.root, canon) || !common.IsRegularFile(canon) {
		return nil, 0, fmt.Errorf("%s: %w", urlPath, ErrNotFound)
	}

	f, err := os.Open(canon)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", urlPath, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat %s: %w", urlPath, err)
	}
	return f, info.Size(), nil
}
