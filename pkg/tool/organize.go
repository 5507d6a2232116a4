package tool

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sameehj/warden/pkg/sandbox"
)

// OrganizeFilesTool moves every file under the root into a directory named
// after its group key. Moves are not transactional: a failed rename aborts
// the remaining work and leaves earlier moves in place.
type OrganizeFilesTool struct {
	sandbox *sandbox.Sandbox
}

func (t *OrganizeFilesTool) Name() string {
	return "organize_files"
}

func (t *OrganizeFilesTool) Description() string {
	return "Group all files under the root into directories by extension or modification date"
}

func (t *OrganizeFilesTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"by": map[string]string{"type": "string", "description": "Grouping key: extension or date"},
		},
		"required": []string{"by"},
	}
}

func (t *OrganizeFilesTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	by := stringArg(args, "by")
	if by != "extension" && by != "date" {
		return nil, fmt.Errorf("by must be extension or date, got %q", by)
	}

	// Collect first so the walk never descends into directories created by
	// the moves below.
	var files []string
	err := filepath.WalkDir(t.sandbox.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]string)
	for _, src := range files {
		key, err := groupKey(src, by)
		if err != nil {
			return nil, err
		}
		dst, err := t.sandbox.Resolve(filepath.Join(key, filepath.Base(src)))
		if err != nil {
			return nil, err
		}
		if dst != src {
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return nil, fmt.Errorf("create group directory %s: %w", key, err)
			}
			if err := os.Rename(src, dst); err != nil {
				return nil, fmt.Errorf("move %s: %w", t.sandbox.Rel(src), err)
			}
		}
		groups[key] = append(groups[key], t.sandbox.Rel(dst))
	}
	return groups, nil
}

func groupKey(path, by string) (string, error) {
	if by == "extension" {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if ext == "" {
			ext = "other"
		}
		return ext, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return info.ModTime().UTC().Format("2006-01-02"), nil
}
