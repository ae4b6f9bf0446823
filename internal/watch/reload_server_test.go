package watch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialReload(t *testing.T, rs *ReloadServer) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(rs.HandleWebSocket))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Wait for the server to register the connection
	deadline := time.Now().Add(2 * time.Second)
	for rs.ConnectionCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ReloadMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var msg ReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Invalid message JSON: %v", err)
	}
	return msg
}

func TestReloadServer_NotifyReload(t *testing.T) {
	rs := NewReloadServer()
	defer rs.Close()
	conn := dialReload(t, rs)

	rs.NotifyReload("clock", 150*time.Millisecond)

	msg := readMessage(t, conn)
	if msg.Type != "reload" {
		t.Errorf("Type: got %s, want reload", msg.Type)
	}
	if msg.WidgetID != "clock" {
		t.Errorf("WidgetID: got %s", msg.WidgetID)
	}
	if msg.Duration != 150 {
		t.Errorf("Duration: got %f, want 150", msg.Duration)
	}
}

func TestReloadServer_NotifyBuildingThenErrors(t *testing.T) {
	rs := NewReloadServer()
	defer rs.Close()
	conn := dialReload(t, rs)

	rs.NotifyBuilding("ticker")
	rs.NotifyErrors("ticker", []string{"SYN001: unterminated element"})

	building := readMessage(t, conn)
	if building.Type != "building" || building.WidgetID != "ticker" {
		t.Errorf("building message: %+v", building)
	}

	errMsg := readMessage(t, conn)
	if errMsg.Type != "error" {
		t.Errorf("Type: got %s, want error", errMsg.Type)
	}
	if len(errMsg.Errors) != 1 || !strings.Contains(errMsg.Errors[0], "SYN001") {
		t.Errorf("Errors: got %v", errMsg.Errors)
	}
}

func TestReloadServer_NotifyAfterCloseDoesNotBlock(t *testing.T) {
	rs := NewReloadServer()
	rs.Close()

	done := make(chan struct{})
	go func() {
		// Well past the broadcast buffer: would deadlock without the
		// shutdown guard on sends
		for i := 0; i < 300; i++ {
			rs.NotifyReload("clock", time.Millisecond)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked after Close")
	}
}

func TestReloadServer_ClientDisconnectAfterClose(t *testing.T) {
	rs := NewReloadServer()
	conn := dialReload(t, rs)

	rs.Close()

	// The reader goroutine must exit instead of blocking on unregister
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	if rs.ConnectionCount() != 0 {
		t.Errorf("connections after close: %d", rs.ConnectionCount())
	}
}

func TestReloadServer_CloseIdempotent(t *testing.T) {
	rs := NewReloadServer()
	rs.Close()
	rs.Close()

	if rs.ConnectionCount() != 0 {
		t.Errorf("connections after close: %d", rs.ConnectionCount())
	}
}
