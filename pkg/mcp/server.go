package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sameehj/warden/pkg/tool"
	"github.com/sameehj/warden/pkg/version"
)

// Server dispatches decoded protocol requests against the tool registry.
// Every dispatch terminates in exactly one envelope; tool failures never
// propagate past Handle.
type Server struct {
	registry *tool.Registry
	logger   *slog.Logger
}

func NewServer(registry *tool.Registry) *Server {
	return &Server{registry: registry}
}

func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *Server) Handle(ctx context.Context, req Request) Response {
	switch req.Method {
	case "initialize":
		return successResponse(req.ID, map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"serverInfo": map[string]string{
				"name":    "warden",
				"version": version.String(),
			},
			"capabilities": map[string]interface{}{
				"tools": s.registry.Names(),
			},
			"tools": s.registry.Definitions(),
		})
	case "tool_call":
		return s.handleToolCall(ctx, req)
	default:
		return errorResponse(req.ID, CodeInvalidMethod, fmt.Sprintf("invalid method %q", req.Method))
	}
}

func (s *Server) handleToolCall(ctx context.Context, req Request) Response {
	var call toolCallParams
	if len(req.Params) == 0 {
		return errorResponse(req.ID, CodeExecution, "missing params")
	}
	if err := json.Unmarshal(req.Params, &call); err != nil {
		return errorResponse(req.ID, CodeExecution, fmt.Sprintf("decode params: %v", err))
	}
	if call.Name == "" {
		return errorResponse(req.ID, CodeExecution, "missing tool name")
	}

	t, ok := s.registry.Get(call.Name)
	if !ok {
		return errorResponse(req.ID, CodeExecution, fmt.Sprintf("unknown operation %q", call.Name))
	}

	args := map[string]interface{}{}
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return errorResponse(req.ID, CodeExecution, fmt.Sprintf("decode arguments: %v", err))
		}
	}

	result, err := t.Execute(ctx, args)
	if err != nil {
		s.logWarn("tool_failed", "tool", call.Name, "error", err)
		return errorResponse(req.ID, CodeExecution, err.Error())
	}

	text, err := json.Marshal(result)
	if err != nil {
		return errorResponse(req.ID, CodeExecution, fmt.Sprintf("encode result: %v", err))
	}

	s.logInfo("tool_ok", "tool", call.Name)
	return successResponse(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(text)},
		},
	})
}

func (s *Server) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Server) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
