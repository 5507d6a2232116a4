package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const httpShutdownTimeout = 5 * time.Second

// HTTPTransport is the authenticated front-end: it accepts single or batched
// JSON-RPC requests on POST /mcp and the same envelope per message on
// GET /ws, checks the bearer token before touching the body, and feeds each
// item through the dispatcher strictly in order.
type HTTPTransport struct {
	server *Server
	token  string
	logger *slog.Logger
}

func NewHTTPTransport(server *Server, token string) *HTTPTransport {
	return &HTTPTransport{server: server, token: token}
}

func (t *HTTPTransport) SetLogger(logger *slog.Logger) {
	t.logger = logger
}

// Handler returns the HTTP routing for the transport. Everything outside
// /mcp and /ws is a 404 envelope.
func (t *HTTPTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", t.handleMCP)
	mux.HandleFunc("/ws", t.handleWS)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, errorResponse(nil, CodeInvalidMethod, "not found"))
	})
	return mux
}

// ListenAndServe runs the transport until the context is cancelled.
func (t *HTTPTransport) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: t.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	t.logInfo("transport_listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (t *HTTPTransport) handleMCP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	defer t.recoverRequest(w)

	if r.Method != http.MethodPost {
		writeEnvelope(w, http.StatusNotFound, errorResponse(nil, CodeInvalidMethod, "not found"))
		return
	}
	if !t.authorized(r) {
		t.logWarn("auth_failed", "remote", r.RemoteAddr)
		writeEnvelope(w, http.StatusUnauthorized, errorResponse(nil, CodeAuth, "authentication failed"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, errorResponse(nil, CodeInvalidMethod, "read body: "+err.Error()))
		return
	}

	connID := uuid.NewString()

	// mirror the input shape: array in, array out
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []Request
		if err := json.Unmarshal(body, &batch); err != nil {
			writeEnvelope(w, http.StatusInternalServerError, errorResponse(nil, CodeInvalidMethod, "parse error"))
			return
		}
		t.logInfo("batch_received", "conn", connID, "remote", r.RemoteAddr, "items", len(batch))
		responses := make([]Response, 0, len(batch))
		for _, req := range batch {
			responses = append(responses, t.server.Handle(r.Context(), req))
		}
		writeJSON(w, http.StatusOK, responses)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeEnvelope(w, http.StatusInternalServerError, errorResponse(nil, CodeInvalidMethod, "parse error"))
		return
	}
	t.logInfo("request_received", "conn", connID, "remote", r.RemoteAddr, "method", req.Method)
	writeEnvelope(w, http.StatusOK, t.server.Handle(r.Context(), req))
}

func (t *HTTPTransport) authorized(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	presented, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return presented == t.token
}

// recoverRequest keeps a panicking handler from taking down the listener.
func (t *HTTPTransport) recoverRequest(w http.ResponseWriter) {
	if rec := recover(); rec != nil {
		t.logError("request_panic", "panic", rec)
		writeEnvelope(w, http.StatusInternalServerError, errorResponse(nil, CodeExecution, "internal error"))
	}
}

func writeEnvelope(w http.ResponseWriter, status int, resp Response) {
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (t *HTTPTransport) logInfo(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Info(msg, args...)
	}
}

func (t *HTTPTransport) logWarn(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}

func (t *HTTPTransport) logError(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Error(msg, args...)
	}
}
