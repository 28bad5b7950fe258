package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/mcp-training/exploretui/game/component"
	"github.com/wricardo/mcp-training/exploretui/game/service"
	"github.com/wricardo/mcp-training/exploretui/game/session"
)

var testAccount = component.MustParseFelt("0xabc")

// newTestClient returns a client whose default account plays on a 3x3
// memory port with the player in the middle
func newTestClient(t *testing.T) (*Client, *service.MemoryPort) {
	t.Helper()
	port := service.NewMemoryPort(component.GameState{Name: "Pragma Hackathon", Alive: true, Level: 1, Size: 3, X: 1, Y: 1})
	port.Inventory.Kits = 2
	port.SetTile(component.TileState{Explored: true, Clue: 1, X: 1, Y: 1})

	client := NewClient(testAccount, func(account component.Felt) (*session.Controller, error) {
		if account != testAccount {
			return nil, errors.New("unknown account")
		}
		return session.NewController(port), nil
	})
	return client, port
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("handler returned no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return text.Text, result.IsError
}

func TestNewClient(t *testing.T) {
	client, _ := newTestClient(t)

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
	if client.GetMCPServer() != client.mcpServer {
		t.Error("GetMCPServer() should return the MCP server")
	}
	if len(client.controllers) != 0 {
		t.Error("Controllers should be created lazily")
	}
}

func TestClient_GameState(t *testing.T) {
	client, port := newTestClient(t)

	text, isErr := callTool(t, client.handleGameState, map[string]interface{}{})
	if isErr {
		t.Fatalf("game_state failed: %s", text)
	}
	for _, want := range []string{"Name: Pragma Hackathon", "Status: Active", "Defuse kits remaining: 2", "Move mode: Move", "<1>"} {
		if !strings.Contains(text, want) {
			t.Errorf("game_state missing %q:\n%s", want, text)
		}
	}

	// First use syncs once to create the snapshot, then game_state syncs again
	if got := port.CountCalls("get_game"); got != 2 {
		t.Errorf("get_game calls = %d, want 2", got)
	}
}

func TestClient_Move(t *testing.T) {
	client, port := newTestClient(t)

	text, isErr := callTool(t, client.handleMove, map[string]interface{}{"direction": "up_left", "intent": "corner"})
	if isErr {
		t.Fatalf("move failed: %s", text)
	}
	if port.Game.X != 0 || port.Game.Y != 0 {
		t.Errorf("position = (%d,%d), want (0,0)", port.Game.X, port.Game.Y)
	}
	if !strings.Contains(text, session.MoveOKMessage) {
		t.Errorf("move result missing status:\n%s", text)
	}

	port.FailMove = errors.New("rejected")
	text, isErr = callTool(t, client.handleMove, map[string]interface{}{"direction": "down"})
	if !isErr || text != session.MoveFailedMessage {
		t.Errorf("failed move = %q, isError %v", text, isErr)
	}

	text, isErr = callTool(t, client.handleMove, map[string]interface{}{"direction": "sideways"})
	if !isErr || !strings.Contains(text, "unknown direction") {
		t.Errorf("bad direction = %q, isError %v", text, isErr)
	}
}

func TestClient_Defuse(t *testing.T) {
	client, port := newTestClient(t)

	text, isErr := callTool(t, client.handleDefuse, map[string]interface{}{"direction": "left"})
	if isErr {
		t.Fatalf("defuse failed: %s", text)
	}
	if port.Inventory.Kits != 1 {
		t.Errorf("kits = %d, want 1", port.Inventory.Kits)
	}
	if port.CountCalls("submit_move") != 0 {
		t.Error("defuse should not submit a move")
	}

	ctrl := client.controllers[testAccount.Hex()]
	if ctrl.Mode() != session.ModeMove {
		t.Errorf("mode after defuse = %s, want Move", ctrl.Mode())
	}
}

func TestClient_ToggleModeRoutesMove(t *testing.T) {
	client, port := newTestClient(t)

	text, _ := callTool(t, client.handleToggleMode, map[string]interface{}{})
	if text != "Move mode: Defuse" {
		t.Errorf("toggle_mode = %q", text)
	}

	callTool(t, client.handleMove, map[string]interface{}{"direction": "right"})
	if port.CountCalls("submit_defuse") != 1 || port.CountCalls("submit_move") != 0 {
		t.Errorf("calls = %v, want a defuse in defuse mode", port.Calls())
	}
}

func TestClient_RevealAndNewGame(t *testing.T) {
	client, port := newTestClient(t)

	port.FailReveal = errors.New("tile already revealed")
	text, isErr := callTool(t, client.handleReveal, map[string]interface{}{})
	if !isErr || !strings.Contains(text, "tile already revealed") {
		t.Errorf("failed reveal = %q, isError %v", text, isErr)
	}

	port.FailReveal = nil
	text, isErr = callTool(t, client.handleReveal, map[string]interface{}{})
	if isErr || !strings.Contains(text, session.RevealOKMessage) {
		t.Errorf("reveal = %q, isError %v", text, isErr)
	}

	text, isErr = callTool(t, client.handleNewGame, map[string]interface{}{})
	if isErr || !strings.Contains(text, session.NewGameOKMessage) {
		t.Errorf("new_game = %q, isError %v", text, isErr)
	}

	port.FailNewGame = errors.New("down")
	text, isErr = callTool(t, client.handleNewGame, map[string]interface{}{})
	if !isErr || !strings.Contains(text, "new game") {
		t.Errorf("failed new_game = %q, isError %v", text, isErr)
	}
}

func TestClient_Accounts(t *testing.T) {
	client, _ := newTestClient(t)

	tests := []struct {
		name    string
		account interface{}
		wantErr string
	}{
		{"explicit default", "0xABC", ""},
		{"bad hex", "abc", "account"},
		{"unknown account", "0x1", "unknown account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := callTool(t, client.handleGameState, map[string]interface{}{"account": tt.account})
			if tt.wantErr == "" {
				if isErr {
					t.Errorf("game_state failed: %s", text)
				}
				return
			}
			if !isErr || !strings.Contains(text, tt.wantErr) {
				t.Errorf("game_state = %q, want error containing %q", text, tt.wantErr)
			}
		})
	}

	noDefault := NewClient(component.Felt{}, nil)
	text, isErr := callTool(t, noDefault.handleGameState, map[string]interface{}{})
	if !isErr || text != "account is required" {
		t.Errorf("game_state without account = %q", text)
	}
}

func TestClient_SyncFailure(t *testing.T) {
	client, port := newTestClient(t)
	port.FailGame = errors.New("node down")

	text, isErr := callTool(t, client.handleGameState, map[string]interface{}{})
	if !isErr || !strings.Contains(text, "node down") {
		t.Errorf("game_state = %q, isError %v", text, isErr)
	}
}

func TestClient_ServeHTTP(t *testing.T) {
	client, _ := newTestClient(t)
	server := httptest.NewServer(client)
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", resp.StatusCode)
	}

	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	resp, err = http.Post(server.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	var listed struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	names := map[string]bool{}
	for _, tool := range listed.Result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"game_state", "move", "defuse", "reveal", "new_game", "toggle_mode"} {
		if !names[want] {
			t.Errorf("tools/list missing %s", want)
		}
	}
}
