package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/exploretui/game/component"
	"github.com/wricardo/mcp-training/exploretui/game/service"
)

// WatchURL turns a gateway base URL into the watch endpoint for account
func WatchURL(base string, account component.Felt) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	u.RawQuery = url.Values{"account": {account.Hex()}}.Encode()
	return u.String(), nil
}

// Watch subscribes to the notifications of one account. The returned channel
// is closed when ctx is done or the connection drops.
func Watch(ctx context.Context, wsURL string, header http.Header) (<-chan service.Notification, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", wsURL, err)
	}

	out := make(chan service.Notification, 16)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("Watch connection closed: %v", err)
				}
				return
			}
			for _, line := range bytes.Split(data, []byte{'\n'}) {
				var n service.Notification
				if err := json.Unmarshal(line, &n); err != nil {
					log.Printf("Watch: bad notification %q: %v", line, err)
					continue
				}
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
