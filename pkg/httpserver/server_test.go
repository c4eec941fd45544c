package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/viewdeck/viewdeck/pkg/push"
	"github.com/viewdeck/viewdeck/pkg/registry"
	"github.com/viewdeck/viewdeck/pkg/store"
	"github.com/viewdeck/viewdeck/pkg/ui"
	"github.com/viewdeck/viewdeck/pkg/view"
)

func newTestServer(t *testing.T) (*httptest.Server, *view.Manager) {
	t.Helper()
	manager := view.New(view.DefaultConfig(), store.NewMemoryStore(0), push.NewChannel(nil, nil), registry.New(), nil)
	s := New(DefaultConfig(), manager, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, manager
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestListViews(t *testing.T) {
	ts, manager := newTestServer(t)
	ctx := context.Background()

	manager.CreateView(ctx, "Sales", "sales", nil, nil)

	resp, err := http.Get(ts.URL + "/views")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		Views []*ui.View `json:"views"`
		Total int        `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 1 || out.Views[0].ID != "sales" {
		t.Errorf("unexpected response %+v", out)
	}
}

func TestGetViewAdapters(t *testing.T) {
	ts, manager := newTestServer(t)
	ctx := context.Background()

	manager.CreateView(ctx, "Board", "board", nil, nil)

	resp, err := http.Get(ts.URL + "/views/board")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected json content type, got %s", ct)
	}
	var decoded ui.View
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != "board" {
		t.Errorf("expected board, got %s", decoded.ID)
	}

	htmlResp, err := http.Get(ts.URL + "/views/board?adapter=html")
	if err != nil {
		t.Fatalf("get html: %v", err)
	}
	defer htmlResp.Body.Close()
	if ct := htmlResp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %s", ct)
	}

	missing, err := http.Get(ts.URL + "/views/ghost")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing view, got %d", missing.StatusCode)
	}

	badAdapter, err := http.Get(ts.URL + "/views/board?adapter=pdf")
	if err != nil {
		t.Fatalf("get bad adapter: %v", err)
	}
	defer badAdapter.Body.Close()
	if badAdapter.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown adapter, got %d", badAdapter.StatusCode)
	}
}

func TestWebSocketReceivesUpdates(t *testing.T) {
	ts, manager := newTestServer(t)
	ctx := context.Background()

	v, _ := manager.CreateView(ctx, "Live", "", nil, nil)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?client_id=frontend&subscribe=" + v.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the connect to land in the channel before mutating.
	deadline := time.Now().Add(time.Second)
	for manager.Channel().Status().ConnectedClients == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := manager.AddComponent(ctx, v.ID, view.AddComponentParams{
		Type:  ui.TypeText,
		Props: map[string]any{"content": "hello"},
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update ui.Update
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if update.Action != ui.ActionAddComponent || update.ViewID != v.ID {
		t.Errorf("unexpected update %+v", update)
	}
	if update.Version != 2 {
		t.Errorf("expected version 2, got %d", update.Version)
	}
}

func TestSSEReceivesUpdates(t *testing.T) {
	ts, manager := newTestServer(t)
	ctx := context.Background()

	v, _ := manager.CreateView(ctx, "Stream", "", nil, nil)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/events?client_id=sse-1&subscribe="+v.ID, nil)
	reqCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	resp, err := http.DefaultClient.Do(req.WithContext(reqCtx))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)

	// First frame confirms the connection.
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(line, "event: connected") {
		t.Fatalf("expected connected event, got %q", line)
	}

	deadline := time.Now().Add(time.Second)
	for manager.Channel().Status().ConnectedClients == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := manager.AddComponent(ctx, v.ID, view.AddComponentParams{
		Type:  ui.TypeText,
		Props: map[string]any{"content": "hi"},
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Scan forward to the update's data line.
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read update: %v", err)
		}
		if !strings.HasPrefix(line, "data: {") {
			continue
		}
		var update ui.Update
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &update); err != nil {
			continue // connected frame
		}
		if update.Action == ui.ActionAddComponent && update.ViewID == v.ID {
			return
		}
	}
}
