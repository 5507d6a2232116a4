package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sameehj/warden/pkg/sandbox"
	"github.com/sameehj/warden/pkg/tool"
)

func newTestServer(t *testing.T, allowDelete bool) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	sb, err := sandbox.New(root)
	if err != nil {
		t.Fatalf("new sandbox: %v", err)
	}
	return NewServer(tool.NewRegistry(sb, allowDelete)), sb.Root()
}

func initializeTools(t *testing.T, s *Server) []string {
	t.Helper()
	resp := s.Handle(context.Background(), Request{JSONRPC: "2.0", Method: "initialize"})
	if resp.Error != nil {
		t.Fatalf("initialize: %v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	caps := result["capabilities"].(map[string]interface{})
	return caps["tools"].([]string)
}

func TestInitializeGatesDelete(t *testing.T) {
	s, _ := newTestServer(t, false)
	for _, name := range initializeTools(t, s) {
		if name == "delete_file" {
			t.Fatalf("delete_file announced while disabled")
		}
	}

	s, _ = newTestServer(t, true)
	found := false
	for _, name := range initializeTools(t, s) {
		if name == "delete_file" {
			found = true
		}
	}
	if !found {
		t.Fatalf("delete_file missing while enabled")
	}
}

func TestHandleInvalidMethod(t *testing.T) {
	s, _ := newTestServer(t, false)
	resp := s.Handle(context.Background(), Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`42`),
		Method:  "shutdown",
	})
	if resp.Error == nil || resp.Error.Code != CodeInvalidMethod {
		t.Fatalf("expected %d, got %+v", CodeInvalidMethod, resp.Error)
	}
	if string(resp.ID) != "42" {
		t.Fatalf("id not echoed: %q", resp.ID)
	}
}

func TestHandleToolCall(t *testing.T) {
	s, root := newTestServer(t, false)
	if err := os.WriteFile(filepath.Join(root, "app.log"), []byte("error 404\nok\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	params, _ := json.Marshal(map[string]interface{}{
		"name":      "analyze_logs",
		"arguments": map[string]string{"filename": "app.log", "pattern": "error"},
	})
	resp := s.Handle(context.Background(), Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`"req-1"`),
		Method:  "tool_call",
		Params:  params,
	})
	if resp.Error != nil {
		t.Fatalf("tool_call: %v", resp.Error)
	}
	if string(resp.ID) != `"req-1"` {
		t.Fatalf("id not echoed: %q", resp.ID)
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content shape: %v", content)
	}
	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), &parsed); err != nil {
		t.Fatalf("result text is not JSON: %v", err)
	}
	if parsed.Count != 1 {
		t.Fatalf("expected count 1, got %d", parsed.Count)
	}
}

func TestHandleToolCallFailures(t *testing.T) {
	s, _ := newTestServer(t, false)

	for name, req := range map[string]Request{
		"unknown tool": {
			Method: "tool_call",
			ID:     json.RawMessage(`1`),
			Params: json.RawMessage(`{"name":"format_disk","arguments":{}}`),
		},
		"missing params": {
			Method: "tool_call",
			ID:     json.RawMessage(`2`),
		},
		"missing name": {
			Method: "tool_call",
			ID:     json.RawMessage(`3`),
			Params: json.RawMessage(`{"arguments":{}}`),
		},
		"sandbox escape": {
			Method: "tool_call",
			ID:     json.RawMessage(`4`),
			Params: json.RawMessage(`{"name":"analyze_logs","arguments":{"filename":"../../etc/passwd","pattern":"x"}}`),
		},
	} {
		resp := s.Handle(context.Background(), req)
		if resp.Error == nil || resp.Error.Code != CodeExecution {
			t.Fatalf("%s: expected %d, got %+v", name, CodeExecution, resp.Error)
		}
		if string(resp.ID) != string(req.ID) {
			t.Fatalf("%s: id not echoed", name)
		}
	}
}
