package domrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/gorilla/websocket"
	"github.com/hazyhaar/inspector/domrelay/dispatch"
	"github.com/hazyhaar/inspector/domrelay/frontend"
	"github.com/hazyhaar/inspector/domrelay/script"
)

func newTestRelay(t *testing.T, cfg *Config) (*Relay, *[]frontend.Message) {
	t.Helper()
	var got []frontend.Message
	cb := NewCallbackSink(func(_ context.Context, m frontend.Message) error {
		got = append(got, m)
		return nil
	})
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r, err := New(cfg, logger, cb)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	return r, &got
}

func TestRelay_DetachedIsSilent(t *testing.T) {
	r, got := newTestRelay(t, nil)
	ctx := context.Background()

	if r.Attached() {
		t.Fatal("new relay is attached")
	}
	if err := r.Call(ctx, dispatch.EventDocumentUpdated, nil); err != nil {
		t.Fatal(err)
	}
	if len(*got) != 0 {
		t.Errorf("messages: got %d, want 0", len(*got))
	}
}

func TestRelay_EndToEnd(t *testing.T) {
	r, got := newTestRelay(t, &Config{Relay: RelayConfig{Session: "dbg-7"}})
	ctx := context.Background()
	r.Attach()

	node := `{"nodeId":21,"nodeType":1,"nodeName":"LI","localName":"li","nodeValue":""}`
	calls := []struct {
		ev   dispatch.Event
		args script.Args
	}{
		{dispatch.EventDocumentUpdated, nil},
		{dispatch.EventChildNodeInserted, script.Args{script.Number(20), script.Number(0), script.String(node)}},
		{dispatch.EventAttributeModified, script.Args{script.Number(21), script.String("class"), script.String("done")}},
		{dispatch.EventAttributeRemoved, script.Args{script.Number(21), script.String("class")}},
		{dispatch.EventChildNodeRemoved, script.Args{script.Number(20), script.Number(21)}},
	}
	for _, c := range calls {
		if err := r.Call(ctx, c.ev, c.args); err != nil {
			t.Fatalf("%s: %v", c.ev, err)
		}
	}

	if len(*got) != len(calls) {
		t.Fatalf("messages: got %d, want %d", len(*got), len(calls))
	}
	for i, m := range *got {
		if m.Method != "DOM."+string(calls[i].ev) {
			t.Errorf("msg[%d]: method %q", i, m.Method)
		}
		if m.Session != "dbg-7" {
			t.Errorf("msg[%d]: session %q", i, m.Session)
		}
	}
	inserted := (*got)[1].Params.(*proto.DOMChildNodeInserted)
	if inserted.ParentNodeID != 20 || inserted.Node.BackendNodeID != 21 {
		t.Errorf("inserted: %+v", inserted)
	}

	r.Detach()
	r.Call(ctx, dispatch.EventDocumentUpdated, nil)
	if len(*got) != len(calls) {
		t.Error("message sent after detach")
	}
}

func TestRelay_StrictIDs(t *testing.T) {
	r, _ := newTestRelay(t, &Config{Relay: RelayConfig{StrictIDs: true}})
	r.Attach()

	err := r.Call(context.Background(), dispatch.EventChildNodeRemoved, script.Args{script.Number(1), script.Number(1 << 40)})
	if !errors.Is(err, dispatch.ErrInvalidArguments) {
		t.Fatalf("got %v", err)
	}
}

func TestRelay_SinkFailureIsInternal(t *testing.T) {
	errDown := errors.New("down")
	r, err := New(nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		NewCallbackSink(func(context.Context, frontend.Message) error { return errDown }))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	r.Attach()

	err = r.Call(context.Background(), dispatch.EventDocumentUpdated, nil)
	if !errors.Is(err, dispatch.ErrInternal) || !errors.Is(err, errDown) {
		t.Fatalf("got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Error: internal exception: ") {
		t.Errorf("message: %q", err.Error())
	}
}

func TestRelay_Handler(t *testing.T) {
	r, got := newTestRelay(t, nil)
	r.Attach()
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	body, _ := json.Marshal([]any{3, "title", "x"})
	resp, err := http.Post(srv.URL+"/dom/attributeModified", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if len(*got) != 1 || (*got)[0].Method != "DOM.attributeModified" {
		t.Errorf("messages: %+v", *got)
	}
}

func TestSinksFromConfig(t *testing.T) {
	retries := 1
	cfg := &Config{Sinks: []SinkConfig{
		{Type: "stdout"},
		{Type: "webhook", URL: "http://localhost/x", Retries: &retries},
		{Type: "websocket", URL: "ws://localhost/y"},
	}}
	sinks, err := SinksFromConfig(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(sinks) != 3 {
		t.Errorf("sinks: got %d", len(sinks))
	}

	if _, err := SinksFromConfig(&Config{Sinks: []SinkConfig{{Type: "nats"}}}, nil); err == nil {
		t.Error("unknown sink type accepted")
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := &Config{Relay: RelayConfig{BackendID: "bogus"}}
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("bogus backend_id accepted")
	}
}

func TestNew_LeavesCallerConfig(t *testing.T) {
	cfg := &Config{Relay: RelayConfig{Session: "s"}}
	if _, err := New(cfg, nil); err != nil {
		t.Fatal(err)
	}
	if cfg.Relay.BackendID != "" || cfg.HTTP.Addr != "" {
		t.Errorf("caller config modified: %+v", cfg)
	}
}

type removedRecorder struct {
	frontend.Frontend
	removed int
}

func (r *removedRecorder) ChildNodeRemoved(context.Context, proto.DOMNodeID, proto.DOMNodeID) error {
	r.removed++
	return nil
}

func TestRelay_AttachFrontend(t *testing.T) {
	r, got := newTestRelay(t, nil)
	fe := &removedRecorder{}
	r.AttachFrontend(fe)
	if !r.Attached() {
		t.Fatal("not attached")
	}

	args := script.Args{script.Number(1), script.Number(2)}
	if err := r.Dispatcher().ChildNodeRemoved(context.Background(), args); err != nil {
		t.Fatal(err)
	}
	if fe.removed != 1 {
		t.Errorf("custom frontend calls: got %d, want 1", fe.removed)
	}
	if len(*got) != 0 {
		t.Errorf("sink messages: got %d, want 0", len(*got))
	}
}

func TestSinksFromConfig_WebhookNoRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	zero := 0
	sinks, err := SinksFromConfig(&Config{Sinks: []SinkConfig{{Type: "webhook", URL: srv.URL, Retries: &zero}}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := sinks[0].Send(context.Background(), frontend.Message{Method: "DOM.documentUpdated"}); err == nil {
		t.Fatal("expected error")
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("requests: got %d, want 1", n)
	}
}

func TestSinksFromConfig_WebSocketHeaders(t *testing.T) {
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

	cfg := &Config{Sinks: []SinkConfig{{
		Type:         "websocket",
		URL:          "ws" + strings.TrimPrefix(srv.URL, "http"),
		Headers:      map[string]string{"Authorization": "Bearer t0k"},
		WriteTimeout: time.Second,
	}}}
	sinks, err := SinksFromConfig(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer sinks[0].Close()

	if err := sinks[0].Send(context.Background(), frontend.Message{Method: "DOM.documentUpdated"}); err != nil {
		t.Fatal(err)
	}
	if got := <-auth; got != "Bearer t0k" {
		t.Errorf("Authorization: got %q", got)
	}
}
