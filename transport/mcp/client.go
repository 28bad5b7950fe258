package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/exploretui/game/component"
	"github.com/wricardo/mcp-training/exploretui/game/render"
	"github.com/wricardo/mcp-training/exploretui/game/session"
)

// ControllerFactory builds the controller for one account
type ControllerFactory func(account component.Felt) (*session.Controller, error)

// Client exposes session controllers as MCP tools. Controllers are created
// on first use per account and every tool call holds the client lock, so
// each controller runs one operation at a time.
type Client struct {
	mu             sync.Mutex
	defaultAccount component.Felt
	newController  ControllerFactory
	controllers    map[string]*session.Controller
	mcpServer      *server.MCPServer
}

// NewClient creates an MCP client. defaultAccount is used when a tool call
// does not name one; it may be zero, in which case account is required.
func NewClient(defaultAccount component.Felt, factory ControllerFactory) *Client {
	c := &Client{
		defaultAccount: defaultAccount,
		newController:  factory,
		controllers:    make(map[string]*session.Controller),
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Explore",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Explore - MCP Interface

Walk a hidden square board of mines. Reveal the tile you stand on to learn how many
of its neighbours are dangerous, then move to a neighbouring tile. You can only move
off a tile once it has been revealed.

AVAILABLE TOOLS:
- game_state: Current board, score panel and last status message
- move: Move one tile in one of 8 directions (defuses instead while in defuse mode)
- defuse: Spend a defuse kit on a neighbouring tile
- reveal: Reveal the tile under the player
- new_game: Start a new game
- toggle_mode: Switch between move and defuse mode

BOARD LEGEND: "< >" is the player, digits are clues, circled digits are clues on
dangerous tiles, blank cells are unexplored.`),
	)

	c.registerTools()
}

func accountProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Account address (0x hex). Optional when the server has a default account",
	}
}

func directionProperty(description string) map[string]interface{} {
	names := make([]string, len(component.Directions))
	for i, d := range component.Directions {
		names[i] = d.String()
	}
	return map[string]interface{}{
		"type":        "string",
		"enum":        names,
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Read the game from the world and show the board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"account": accountProperty(),
			},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one tile. In defuse mode this defuses the tile instead",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"account":   accountProperty(),
				"direction": directionProperty("Direction to move"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move",
				},
			},
			Required: []string{"direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "defuse",
		Description: "Spend a defuse kit on the neighbouring tile in direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"account":   accountProperty(),
				"direction": directionProperty("Direction of the tile to defuse"),
			},
			Required: []string{"direction"},
		},
	}, c.handleDefuse)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reveal",
		Description: "Reveal the tile under the player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"account": accountProperty(),
			},
		},
	}, c.handleReveal)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game for the account",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"account": accountProperty(),
			},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "toggle_mode",
		Description: "Switch between move and defuse mode",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"account": accountProperty(),
			},
		},
	}, c.handleToggleMode)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the tools over stdin/stdout until stdin closes
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// ServeHTTP answers one JSON-RPC message per POST
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(responseData)
}

// controller returns the synced controller for the account named in args.
// Callers hold c.mu.
func (c *Client) controller(ctx context.Context, args map[string]interface{}) (*session.Controller, error) {
	account := c.defaultAccount
	if s, _ := args["account"].(string); s != "" {
		parsed, err := component.ParseFelt(s)
		if err != nil {
			return nil, fmt.Errorf("account: %w", err)
		}
		account = parsed
	}
	if account.IsZero() {
		return nil, fmt.Errorf("account is required")
	}

	key := account.Hex()
	ctrl, ok := c.controllers[key]
	if !ok {
		var err error
		ctrl, err = c.newController(account)
		if err != nil {
			return nil, err
		}
		c.controllers[key] = ctrl
	}
	if ctrl.State() == session.StateEmpty {
		if err := ctrl.Sync(ctx); err != nil {
			return nil, err
		}
	}
	return ctrl, nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

func direction(args map[string]interface{}) (component.Direction, error) {
	name, _ := args["direction"].(string)
	return component.ParseDirection(name)
}

// Tool handlers

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctrl, err := c.controller(ctx, arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := ctrl.Sync(ctx); err != nil {
		return mcp.NewToolResultError(ctrl.Status()), nil
	}
	return mcp.NewToolResultText(formatView(ctrl.View())), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	args := arguments(request)
	dir, err := direction(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ctrl, err := c.controller(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Intent serves as rubber duck debugging; it is not processed
	intent, _ := args["intent"].(string)
	_ = intent

	if err := ctrl.HandleMove(ctx, dir); err != nil {
		return mcp.NewToolResultError(ctrl.Status()), nil
	}
	return mcp.NewToolResultText(formatView(ctrl.View())), nil
}

func (c *Client) handleDefuse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	args := arguments(request)
	dir, err := direction(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ctrl, err := c.controller(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switched := ctrl.Mode() != session.ModeDefuse
	if switched {
		ctrl.ToggleMode()
	}
	err = ctrl.HandleMove(ctx, dir)
	if switched {
		ctrl.ToggleMode()
	}
	if err != nil {
		return mcp.NewToolResultError(ctrl.Status()), nil
	}
	return mcp.NewToolResultText(formatView(ctrl.View())), nil
}

func (c *Client) handleReveal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctrl, err := c.controller(ctx, arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := ctrl.HandleReveal(ctx); err != nil {
		return mcp.NewToolResultError(ctrl.Status()), nil
	}
	return mcp.NewToolResultText(formatView(ctrl.View())), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctrl, err := c.controller(ctx, arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := ctrl.HandleNewGame(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatView(ctrl.View())), nil
}

func (c *Client) handleToggleMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctrl, err := c.controller(ctx, arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode := ctrl.ToggleMode()
	return mcp.NewToolResultText(fmt.Sprintf("Move mode: %s", mode)), nil
}

// formatView renders the board, the score panel and the status as text
func formatView(v render.View) string {
	var result strings.Builder

	for _, line := range render.ScoreLines(v) {
		if line == "" {
			continue
		}
		result.WriteString(line + "\n")
	}

	if lines := render.BoardLines(v); len(lines) > 0 {
		result.WriteString("\n")
		for _, line := range lines {
			result.WriteString(line + "\n")
		}
	} else {
		result.WriteString("\nNo game yet. Use new_game to start one.\n")
	}

	if v.Status != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", v.Status))
	}
	return result.String()
}
