package mcp

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestWebSocketDispatch(t *testing.T) {
	srv, _ := newTestTransport(t, false)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	header := http.Header{}
	header.Set("Authorization", "Bearer "+testToken)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Request{JSONRPC: "2.0", ID: []byte(`1`), Method: "initialize"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Error != nil || string(resp.ID) != "1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if err := conn.WriteJSON(Request{JSONRPC: "2.0", ID: []byte(`2`), Method: "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != CodeInvalidMethod {
		t.Fatalf("expected invalid method, got %+v", resp.Error)
	}
}

func TestWebSocketAuth(t *testing.T) {
	srv, _ := newTestTransport(t, false)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatalf("expected unauthenticated dial to fail")
	}
}
