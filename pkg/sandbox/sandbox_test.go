package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestSandbox(t *testing.T) (*Sandbox, string) {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "data")
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(base, "data-secret"), 0o755); err != nil {
		t.Fatalf("mkdir sibling: %v", err)
	}
	sb, err := New(root)
	if err != nil {
		t.Fatalf("new sandbox: %v", err)
	}
	return sb, base
}

func TestResolveInside(t *testing.T) {
	sb, _ := newTestSandbox(t)

	for _, input := range []string{"a.txt", "sub", "sub/../a.txt", ".", "sub/new-file.txt"} {
		got, err := sb.Resolve(input)
		if err != nil {
			t.Fatalf("resolve %q: %v", input, err)
		}
		if got != sb.Root() && !filepath.IsAbs(got) {
			t.Fatalf("resolve %q: expected absolute path, got %q", input, got)
		}
	}

	// absolute path already inside the root is fine
	inside := filepath.Join(sb.Root(), "a.txt")
	if _, err := sb.Resolve(inside); err != nil {
		t.Fatalf("resolve absolute inside: %v", err)
	}
}

func TestResolveEscapes(t *testing.T) {
	sb, _ := newTestSandbox(t)

	escapes := []string{
		"../../etc/passwd",
		"..",
		"/etc/passwd",
		"../data-secret/x",
		"sub/../../data-secret/x",
	}
	for _, input := range escapes {
		if _, err := sb.Resolve(input); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("resolve %q: expected ErrOutOfBounds, got %v", input, err)
		}
	}
}

func TestResolveSiblingPrefix(t *testing.T) {
	sb, base := newTestSandbox(t)

	// /data must never accept /data-secret even though it shares a prefix
	sibling := filepath.Join(base, "data-secret", "x")
	if _, err := sb.Resolve(sibling); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected sibling rejection, got %v", err)
	}
}

func TestResolveSymlinkEscape(t *testing.T) {
	sb, base := newTestSandbox(t)

	outside := filepath.Join(base, "outside")
	if err := os.MkdirAll(outside, 0o755); err != nil {
		t.Fatalf("mkdir outside: %v", err)
	}
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(sb.Root(), "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	for _, input := range []string{"link", "link/secret.txt", "link/new.txt"} {
		if _, err := sb.Resolve(input); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("resolve %q through symlink: expected ErrOutOfBounds, got %v", input, err)
		}
	}
}

func TestResolveEmpty(t *testing.T) {
	sb, _ := newTestSandbox(t)
	if _, err := sb.Resolve("  "); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestRel(t *testing.T) {
	sb, _ := newTestSandbox(t)
	abs, err := sb.Resolve("sub/x.txt")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := sb.Rel(abs); got != "sub/x.txt" {
		t.Fatalf("rel: expected sub/x.txt, got %q", got)
	}
}
