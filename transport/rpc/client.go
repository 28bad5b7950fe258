package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/exploretui/game/component"
	"github.com/wricardo/mcp-training/exploretui/game/service"
)

var (
	// ErrUnreachable is returned by Ping when the gateway cannot be reached at all
	ErrUnreachable   = errors.New("remote endpoint unreachable")
	ErrInvalidConfig = errors.New("invalid client configuration")
)

// DefaultGameName is the name passed to the Create system
const DefaultGameName = "Pragma Hackathon"

// System names called on the world
const (
	systemCreate = "Create"
	systemMove   = "Move"
	systemDefuse = "Defuse"
	systemReveal = "Reveal"
)

// Config binds a Client to one world and account
type Config struct {
	URL      string
	World    component.Felt
	Account  component.Felt
	APIKey   string
	GameName string

	// MoveAction, when set, is appended to Move calldata
	MoveAction *component.Action

	Timeout time.Duration
}

// Client implements service.GamePort over the world gateway HTTP API
type Client struct {
	baseURL    string
	cfg        Config
	name       component.Felt
	httpClient *http.Client
}

var _ service.GamePort = (*Client)(nil)

// NewClient validates cfg and returns a client. No request is made.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: rpc url %q", ErrInvalidConfig, cfg.URL)
	}
	if cfg.Account.IsZero() {
		return nil, fmt.Errorf("%w: account address is required", ErrInvalidConfig)
	}
	if cfg.GameName == "" {
		cfg.GameName = DefaultGameName
	}
	name, err := component.ShortString(cfg.GameName)
	if err != nil {
		return nil, fmt.Errorf("%w: game name: %v", ErrInvalidConfig, err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		cfg:     cfg,
		name:    name,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Account returns the account the client acts for
func (c *Client) Account() component.Felt {
	return c.cfg.Account
}

// APIError is a non-2xx gateway response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error: %d", e.Status)
}

// apiCall sends body as JSON and decodes the response into result
func (c *Client) apiCall(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("X-Account", c.cfg.Account.Hex())
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		return &APIError{Status: resp.StatusCode, Message: errResp["error"]}
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Ping checks the gateway health endpoint. Transport failures match
// ErrUnreachable; any other failure means the endpoint answered badly.
func (c *Client) Ping(ctx context.Context) error {
	var health struct {
		Status string `json:"status"`
	}
	err := c.apiCall(ctx, http.MethodGet, "/api/health", nil, &health)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) {
			return fmt.Errorf("%w at %s: %v", ErrUnreachable, c.baseURL, err)
		}
		return fmt.Errorf("health check: %w", err)
	}
	if health.Status != "healthy" {
		return fmt.Errorf("health check: gateway reports %q", health.Status)
	}
	return nil
}

func (c *Client) entity(ctx context.Context, kind component.Kind, keys ...component.Felt) ([]component.Felt, error) {
	req := service.EntityRequest{
		World:     c.cfg.World.Hex(),
		Component: kind,
		Keys:      append([]component.Felt{c.cfg.Account}, keys...),
	}
	var resp service.EntityResponse
	if err := c.apiCall(ctx, http.MethodPost, "/api/entities", req, &resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (c *Client) execute(ctx context.Context, system string, calldata ...component.Felt) (service.ReceiptID, error) {
	if calldata == nil {
		calldata = []component.Felt{}
	}
	req := service.SystemRequest{
		World:    c.cfg.World.Hex(),
		Account:  c.cfg.Account,
		Calldata: calldata,
	}
	var resp service.SystemResponse
	if err := c.apiCall(ctx, http.MethodPost, "/api/systems/"+system, req, &resp); err != nil {
		return "", err
	}
	return service.ReceiptID(resp.TransactionHash.Hex()), nil
}

// GetGame reads the Game component
func (c *Client) GetGame(ctx context.Context) (component.GameState, error) {
	values, err := c.entity(ctx, component.KindGame)
	if err != nil {
		return component.GameState{}, service.NewRemoteError("get_game", err)
	}
	game, err := component.DecodeGame(values)
	if err != nil {
		return component.GameState{}, fmt.Errorf("get_game: %w", err)
	}
	return game, nil
}

// GetTile reads the Tile component at (x, y). A tile that was never written
// reads as zeros and is returned with the requested coordinate.
func (c *Client) GetTile(ctx context.Context, x, y uint16) (component.TileState, error) {
	values, err := c.entity(ctx, component.KindTile, component.FeltFromUint64(uint64(x)), component.FeltFromUint64(uint64(y)))
	if err != nil {
		return component.TileState{}, service.NewRemoteError("get_tile", err)
	}
	tile, err := component.DecodeTile(values)
	if err != nil {
		return component.TileState{}, fmt.Errorf("get_tile (%d,%d): %w", x, y, err)
	}
	if tile == (component.TileState{}) {
		tile.X, tile.Y = x, y
	}
	return tile, nil
}

// GetInventory reads the Inventory component
func (c *Client) GetInventory(ctx context.Context) (component.InventoryState, error) {
	values, err := c.entity(ctx, component.KindInventory)
	if err != nil {
		return component.InventoryState{}, service.NewRemoteError("get_inventory", err)
	}
	inv, err := component.DecodeInventory(values)
	if err != nil {
		return component.InventoryState{}, fmt.Errorf("get_inventory: %w", err)
	}
	return inv, nil
}

// SubmitMove executes Move with the direction code, plus the action code
// when the client is configured with one
func (c *Client) SubmitMove(ctx context.Context, dir component.Direction) (service.ReceiptID, error) {
	calldata := []component.Felt{dir.Felt()}
	if c.cfg.MoveAction != nil {
		calldata = append(calldata, c.cfg.MoveAction.Felt())
	}
	id, err := c.execute(ctx, systemMove, calldata...)
	return id, service.NewRemoteError("submit_move", err)
}

// SubmitDefuse executes Defuse toward dir
func (c *Client) SubmitDefuse(ctx context.Context, dir component.Direction) (service.ReceiptID, error) {
	id, err := c.execute(ctx, systemDefuse, dir.Felt())
	return id, service.NewRemoteError("submit_defuse", err)
}

// SubmitReveal executes Reveal on the player's tile
func (c *Client) SubmitReveal(ctx context.Context) (service.ReceiptID, error) {
	id, err := c.execute(ctx, systemReveal)
	return id, service.NewRemoteError("submit_reveal", err)
}

// SubmitNewGame executes Create with the configured game name
func (c *Client) SubmitNewGame(ctx context.Context) (service.ReceiptID, error) {
	id, err := c.execute(ctx, systemCreate, c.name)
	return id, service.NewRemoteError("submit_new_game", err)
}
