// Package workspace hands out per-request scratch directories.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"acordex/internal/port"
)

// Workspace creates scratch directories under a base directory.
type Workspace struct {
	baseDir string
}

// New creates a Workspace rooted at baseDir, creating it if needed.
func New(baseDir string) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: create base dir: %w", err)
	}
	return &Workspace{baseDir: baseDir}, nil
}

// Acquire creates a fresh directory for requestID. Callers must Release it.
func (w *Workspace) Acquire(requestID string) (port.Scratch, error) {
	dir, err := os.MkdirTemp(w.baseDir, "acordex-"+filepath.Base(requestID)+"-")
	if err != nil {
		return nil, fmt.Errorf("workspace: acquire: %w", err)
	}
	return &scratch{dir: dir}, nil
}

type scratch struct {
	dir string
}

func (s *scratch) Dir() string { return s.dir }

// Release removes the directory and everything in it. It is safe to call
// more than once.
func (s *scratch) Release() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("workspace: release %s: %w", s.dir, err)
	}
	return nil
}
