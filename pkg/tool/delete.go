package tool

import (
	"context"
	"fmt"
	"os"

	"github.com/sameehj/warden/pkg/sandbox"
)

const deleteToolName = "delete_file"

// DeleteFileTool removes a single file. It stays registered even when
// deletion is disabled so a direct call is refused with a clear message
// instead of "unknown operation".
type DeleteFileTool struct {
	sandbox *sandbox.Sandbox
	enabled bool
}

func (t *DeleteFileTool) Name() string {
	return deleteToolName
}

func (t *DeleteFileTool) Description() string {
	return "Delete a file under the root"
}

func (t *DeleteFileTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"filename": map[string]string{"type": "string", "description": "File path relative to the root"},
		},
		"required": []string{"filename"},
	}
}

func (t *DeleteFileTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if !t.enabled {
		return nil, fmt.Errorf("delete_file is disabled by configuration")
	}
	filename := stringArg(args, "filename")
	if filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	path, err := t.sandbox.Resolve(filename)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil {
		return nil, err
	}
	return fmt.Sprintf("deleted %s", filename), nil
}
