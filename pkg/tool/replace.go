package tool

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sameehj/warden/pkg/sandbox"
)

// ReplaceTextTool rewrites every match of a pattern in one file. A match the
// replacement already extends in place is left alone, so repeating a call
// like http -> https never produces httpss.
type ReplaceTextTool struct {
	sandbox *sandbox.Sandbox
}

func (t *ReplaceTextTool) Name() string {
	return "replace_text"
}

func (t *ReplaceTextTool) Description() string {
	return "Replace every match of a regular expression in a file"
}

func (t *ReplaceTextTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"filename": map[string]string{"type": "string", "description": "File path relative to the root"},
			"search":   map[string]string{"type": "string", "description": "Regular expression to match"},
			"replace":  map[string]string{"type": "string", "description": "Literal replacement text"},
		},
		"required": []string{"filename", "search", "replace"},
	}
}

func (t *ReplaceTextTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	filename := stringArg(args, "filename")
	search := stringArg(args, "search")
	replacement := stringArg(args, "replace")
	if filename == "" || search == "" {
		return nil, fmt.Errorf("filename and search are required")
	}

	path, err := t.sandbox.Resolve(filename)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(search)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", search, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	updated, count := replaceAll(string(data), re, replacement)
	if count > 0 {
		if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
			return nil, err
		}
	}
	return fmt.Sprintf("replaced %d occurrence(s) of %q in %s", count, search, filename), nil
}

func replaceAll(content string, re *regexp.Regexp, replacement string) (string, int) {
	locs := re.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return content, 0
	}

	var b strings.Builder
	last, count := 0, 0
	for _, loc := range locs {
		// skip a match the replacement already extends in place, so that
		// rewriting http as https leaves an existing https alone
		if strings.HasPrefix(replacement, content[loc[0]:loc[1]]) &&
			strings.HasPrefix(content[loc[0]:], replacement) {
			continue
		}
		b.WriteString(content[last:loc[0]])
		b.WriteString(replacement)
		last = loc[1]
		count++
	}
	b.WriteString(content[last:])
	return b.String(), count
}
