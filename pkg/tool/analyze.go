package tool

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sameehj/warden/pkg/sandbox"
)

// AnalyzeLogsTool scans a file line by line for a regular expression.
type AnalyzeLogsTool struct {
	sandbox *sandbox.Sandbox
}

func (t *AnalyzeLogsTool) Name() string {
	return "analyze_logs"
}

func (t *AnalyzeLogsTool) Description() string {
	return "Scan a log file for lines matching a regular expression"
}

func (t *AnalyzeLogsTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"filename": map[string]string{"type": "string", "description": "File path relative to the root"},
			"pattern":  map[string]string{"type": "string", "description": "Regular expression to match"},
		},
		"required": []string{"filename", "pattern"},
	}
}

func (t *AnalyzeLogsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	filename := stringArg(args, "filename")
	pattern := stringArg(args, "pattern")
	if filename == "" || pattern == "" {
		return nil, fmt.Errorf("filename and pattern are required")
	}

	path, err := t.sandbox.Resolve(filename)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	matches := []string{}
	for _, line := range strings.Split(string(data), "\n") {
		if re.MatchString(line) {
			matches = append(matches, line)
		}
	}
	return map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	}, nil
}
