package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/gorilla/websocket"
	"github.com/hazyhaar/inspector/domrelay/frontend"
)

func testMessage() frontend.Message {
	return frontend.Message{
		ID:        "msg-1",
		Session:   "sess-1",
		Method:    "DOM.childNodeRemoved",
		Params:    &proto.DOMChildNodeRemoved{ParentNodeID: 1, NodeID: 2},
		Timestamp: 1708700000000,
	}
}

type wireMessage struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params struct {
		ParentNodeID int `json:"parentNodeId"`
		NodeID       int `json:"nodeId"`
	} `json:"params"`
}

func checkWire(t *testing.T, data []byte) {
	t.Helper()
	var got wireMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	if got.ID != "msg-1" || got.Method != "DOM.childNodeRemoved" || got.Params.ParentNodeID != 1 || got.Params.NodeID != 2 {
		t.Errorf("wire message: %s", data)
	}
}

func TestStdout(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdout(&buf)
	for i := 0; i < 2; i++ {
		if err := s.Send(context.Background(), testMessage()); err != nil {
			t.Fatal(err)
		}
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}
	checkWire(t, []byte(lines[0]))
}

func TestRouter_FanOut(t *testing.T) {
	errA := errors.New("a failed")
	var got []string

	a := NewCallback(func(_ context.Context, m frontend.Message) error { got = append(got, "a"); return errA })
	b := NewCallback(func(_ context.Context, m frontend.Message) error { got = append(got, "b"); return nil })
	c := NewCallback(nil)

	r := NewRouter(nil, a, b, c)
	err := r.Send(context.Background(), testMessage())
	if !errors.Is(err, errA) {
		t.Errorf("error: got %v, want %v", err, errA)
	}
	if strings.Join(got, ",") != "a,b" {
		t.Errorf("delivery order: %v", got)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestWebhook_Retry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, _ := io.ReadAll(r.Body)
		checkWire(t, body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookBackoff(time.Millisecond))
	if err := wh.Send(context.Background(), testMessage()); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("hits: got %d, want 2", hits.Load())
	}
}

func TestWebhook_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookRetries(1), WithWebhookBackoff(time.Millisecond))
	err := wh.Send(context.Background(), testMessage())
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("got %v", err)
	}
}

func TestWebSocket(t *testing.T) {
	received := make(chan []byte, 2)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- data
		}
	}))
	defer srv.Close()

	ws := NewWebSocket("ws" + strings.TrimPrefix(srv.URL, "http"))
	defer ws.Close()

	for i := 0; i < 2; i++ {
		if err := ws.Send(context.Background(), testMessage()); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 2; i++ {
		select {
		case data := <-received:
			checkWire(t, data)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for frame")
		}
	}
}

func TestWebSocket_DialError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	ws := NewWebSocket(url)
	if err := ws.Send(context.Background(), testMessage()); err == nil {
		t.Fatal("expected dial error")
	}
	if err := ws.Close(); err != nil {
		t.Errorf("Close without connection: %v", err)
	}
}

func TestWebSocket_HeaderAndTimeout(t *testing.T) {
	auth := make(chan string, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.ReadMessage()
	}))
	defer srv.Close()

	ws := NewWebSocket("ws"+strings.TrimPrefix(srv.URL, "http"),
		WithWebSocketHeader(http.Header{"Authorization": {"Bearer t0k"}}),
		WithWebSocketWriteTimeout(250*time.Millisecond))
	defer ws.Close()

	if ws.writeTimeout != 250*time.Millisecond {
		t.Errorf("write timeout: got %s", ws.writeTimeout)
	}
	if err := ws.Send(context.Background(), testMessage()); err != nil {
		t.Fatal(err)
	}
	if got := <-auth; got != "Bearer t0k" {
		t.Errorf("Authorization: got %q", got)
	}
}
