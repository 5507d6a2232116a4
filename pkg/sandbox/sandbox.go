package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutOfBounds reports an attempted access outside the sandbox root.
var ErrOutOfBounds = errors.New("path escapes sandbox root")

// Sandbox confines path resolution to a single root directory. The root is
// canonicalized once at construction and never changes.
type Sandbox struct {
	root string
}

func New(root string) (*Sandbox, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("canonicalize root: %w", err)
	}
	info, err := os.Stat(canon)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", canon)
	}
	return &Sandbox{root: canon}, nil
}

// Root returns the canonical root directory.
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve maps a caller-supplied path to an absolute path and verifies the
// result stays inside the root. Relative inputs are joined against the root;
// absolute inputs must already point inside it. Symlinks in every existing
// ancestor are resolved before the boundary check so a link cannot smuggle
// the path outside.
func (s *Sandbox) Resolve(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", errors.New("empty path")
	}
	candidate := input
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(s.root, candidate)
	}
	canon, err := canonicalize(filepath.Clean(candidate))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", input, err)
	}
	if !s.contains(canon) {
		return "", fmt.Errorf("%q: %w", input, ErrOutOfBounds)
	}
	return canon, nil
}

// Rel converts a resolved absolute path back to its root-relative form with
// forward slashes, the shape reported in operation results.
func (s *Sandbox) Rel(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// contains accepts the root itself or a strict descendant. The separator is
// part of the comparison so a sibling like /data-secret never passes for a
// root of /data.
func (s *Sandbox) contains(path string) bool {
	if path == s.root {
		return true
	}
	return strings.HasPrefix(path, s.root+string(filepath.Separator))
}

// canonicalize resolves symlinks on the deepest existing ancestor so paths
// that do not exist yet (move destinations, delete targets already gone) can
// still be boundary-checked.
func canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	dir := filepath.Dir(path)
	if dir == path {
		return "", err
	}
	parent, err := canonicalize(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, filepath.Base(path)), nil
}
