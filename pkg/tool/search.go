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

// SearchFilesTool finds files under the root by name, content, or
// modification date.
type SearchFilesTool struct {
	sandbox *sandbox.Sandbox
}

func (t *SearchFilesTool) Name() string {
	return "search_files"
}

func (t *SearchFilesTool) Description() string {
	return "Search files under the root by name, content, or modification date"
}

func (t *SearchFilesTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]string{"type": "string", "description": "Search query"},
			"by":    map[string]string{"type": "string", "description": "One of name, content, date (default name)"},
		},
		"required": []string{"query"},
	}
}

func (t *SearchFilesTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	query := stringArg(args, "query")
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	by := stringArg(args, "by")
	if by == "" {
		by = "name"
	}

	results := []string{}
	err := filepath.WalkDir(t.sandbox.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		match, err := t.matches(path, d, query, by)
		if err != nil {
			return err
		}
		if match {
			results = append(results, t.sandbox.Rel(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (t *SearchFilesTool) matches(path string, d fs.DirEntry, query, by string) (bool, error) {
	switch by {
	case "name":
		return strings.Contains(d.Name(), query), nil
	case "content":
		data, err := os.ReadFile(path)
		if err != nil {
			// unreadable files are skipped, not fatal
			return false, nil
		}
		return strings.Contains(string(data), query), nil
	case "date":
		info, err := d.Info()
		if err != nil {
			return false, nil
		}
		return info.ModTime().UTC().Format("2006-01-02") == query, nil
	default:
		return false, fmt.Errorf("unsupported search mode %q", by)
	}
}
