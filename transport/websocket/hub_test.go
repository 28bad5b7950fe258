package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/exploretui/game/component"
	"github.com/wricardo/mcp-training/exploretui/game/service"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.accounts == nil {
		t.Error("Hub accounts map is nil")
	}
	if hub.broadcast == nil || cap(hub.broadcast) != broadcastBuffer {
		t.Error("Hub broadcast channel is not buffered")
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub registration channels are nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:     hub,
		account: "0xabc",
		send:    make(chan []byte, 256),
	}
	hub.registerClient(client)

	if !hub.accounts["0xabc"][client] {
		t.Error("Client was not registered for account")
	}
	if got := hub.ClientCount("0xABC"); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:     hub,
		account: "0xabc",
		send:    make(chan []byte, 256),
	}
	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.accounts["0xabc"]; exists {
		t.Error("Empty account should be removed")
	}
	if _, ok := <-client.send; ok {
		t.Error("Client send channel should be closed")
	}

	// Unregistering twice must not close the channel again
	hub.unregisterClient(client)
}

func TestHubMultipleClients(t *testing.T) {
	hub := NewHub()

	a1 := &Client{hub: hub, account: "0x1", send: make(chan []byte, 256)}
	a2 := &Client{hub: hub, account: "0x1", send: make(chan []byte, 256)}
	b := &Client{hub: hub, account: "0x2", send: make(chan []byte, 256)}
	hub.registerClient(a1)
	hub.registerClient(a2)
	hub.registerClient(b)

	if hub.ClientCount("0x1") != 2 || hub.ClientCount("0x2") != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", hub.ClientCount("0x1"), hub.ClientCount("0x2"))
	}

	hub.unregisterClient(a1)
	if hub.ClientCount("0x1") != 1 {
		t.Errorf("ClientCount(0x1) = %d, want 1", hub.ClientCount("0x1"))
	}
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub()

	watcher := &Client{hub: hub, account: "0xabc", send: make(chan []byte, 256)}
	other := &Client{hub: hub, account: "0xdef", send: make(chan []byte, 256)}
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.broadcastMessage(service.Notification{
		Account:         "0xabc",
		Event:           service.EventStateChanged,
		System:          service.SystemReveal,
		TransactionHash: component.FeltFromUint64(0x2a),
	})

	select {
	case data := <-watcher.send:
		var n service.Notification
		if err := json.Unmarshal(data, &n); err != nil {
			t.Fatalf("Failed to unmarshal notification: %v", err)
		}
		if n.System != service.SystemReveal || n.TransactionHash.Uint64() != 0x2a {
			t.Errorf("notification = %+v", n)
		}
	default:
		t.Error("Watcher did not receive notification")
	}

	select {
	case <-other.send:
		t.Error("Other account should not receive notification")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()

	slow := &Client{hub: hub, account: "0xabc", send: make(chan []byte)}
	hub.registerClient(slow)
	hub.broadcastMessage(service.Notification{Account: "0xabc", Event: service.EventStateChanged})

	if hub.ClientCount("0xabc") != 0 {
		t.Error("Slow client should be unregistered")
	}
}

func TestHubNotifyNormalises(t *testing.T) {
	hub := NewHub()
	hub.Notify(service.Notification{Account: "0xABC"})

	n := <-hub.broadcast
	if n.Account != "0xabc" || n.Event != service.EventStateChanged {
		t.Errorf("queued notification = %+v", n)
	}
}

func TestHubNotifyNeverBlocks(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.Notify(service.Notification{Account: "0x1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked with no hub running")
	}
}

func newWatchServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("account"))
	}))
	t.Cleanup(server.Close)
	return server
}

func waitForClients(t *testing.T, hub *Hub, account string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(account) != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount(%s) = %d, want %d", account, hub.ClientCount(account), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServeWSUpgrade(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	server := newWatchServer(t, hub)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?account=0xabc"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	waitForClients(t, hub, "0xabc", 1)

	conn.Close()
	waitForClients(t, hub, "0xabc", 0)
}

func TestWatchReceivesNotifications(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	server := newWatchServer(t, hub)
	account := component.MustParseFelt("0xABC")
	wsURL, err := WatchURL(server.URL, account)
	if err != nil {
		t.Fatalf("WatchURL() error = %v", err)
	}

	notes, err := Watch(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	waitForClients(t, hub, "0xabc", 1)

	hub.Notify(service.Notification{Account: "0xabc", System: service.SystemMove})
	hub.Notify(service.Notification{Account: "0xabc", System: service.SystemReveal})

	for _, want := range []string{service.SystemMove, service.SystemReveal} {
		select {
		case n := <-notes:
			if n.System != want || n.Event != service.EventStateChanged {
				t.Errorf("notification = %+v, want system %s", n, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Timeout waiting for %s notification", want)
		}
	}

	cancel()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-notes:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("Watch channel not closed after cancel")
		}
	}
}

func TestWatchDialFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	if _, err := Watch(context.Background(), wsURL, nil); err == nil {
		t.Error("Watch() should fail without an upgrade")
	}
}

func TestWatchURL(t *testing.T) {
	account := component.MustParseFelt("0xABC")
	tests := []struct {
		base    string
		want    string
		wantErr bool
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws?account=0xabc", false},
		{"https://example.com/", "wss://example.com/ws?account=0xabc", false},
		{"https://example.com/world", "wss://example.com/world/ws?account=0xabc", false},
		{"ws://h:1", "ws://h:1/ws?account=0xabc", false},
		{"ftp://h", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := WatchURL(tt.base, account)
			if tt.wantErr {
				if err == nil {
					t.Errorf("WatchURL(%q) should fail", tt.base)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("WatchURL(%q) = %q, %v, want %q", tt.base, got, err, tt.want)
			}
		})
	}
}
