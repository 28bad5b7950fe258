package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wricardo/mcp-training/exploretui/game/component"
)

// ErrInjected is the default failure returned by MemoryPort fault injection
var ErrInjected = errors.New("injected failure")

// MemoryPort is an in-memory GamePort for tests and offline play. Submits
// apply a minimal effect so a following sync observes the change.
type MemoryPort struct {
	mu sync.Mutex

	Game      component.GameState
	Inventory component.InventoryState
	tiles     map[[2]uint16]component.TileState

	// Fault injection. FailTileAt fails the Nth GetTile call (1-based)
	// counted since the last ResetCounters; 0 disables it.
	FailGame      error
	FailInventory error
	FailTileAt    int
	FailMove      error
	FailDefuse    error
	FailReveal    error
	FailNewGame   error

	// GameName is used by SubmitNewGame
	GameName string

	tileCalls int
	receipts  int
	calls     []string
}

// NewMemoryPort returns a port holding game and no tiles
func NewMemoryPort(game component.GameState) *MemoryPort {
	return &MemoryPort{
		Game:     game,
		tiles:    make(map[[2]uint16]component.TileState),
		GameName: "Pragma Hackathon",
	}
}

// SetTile stores t at its own coordinate
func (p *MemoryPort) SetTile(t component.TileState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tiles[[2]uint16{t.X, t.Y}] = t
}

// Calls returns the operations invoked so far, in order
func (p *MemoryPort) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// CountCalls returns how many calls were made to op
func (p *MemoryPort) CountCalls(op string) int {
	n := 0
	for _, c := range p.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

// ResetCounters clears the call log and the tile call counter
func (p *MemoryPort) ResetCounters() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
	p.tileCalls = 0
}

func (p *MemoryPort) record(op string) {
	p.calls = append(p.calls, op)
}

func (p *MemoryPort) receipt() ReceiptID {
	p.receipts++
	return ReceiptID(fmt.Sprintf("0x%x", p.receipts))
}

func (p *MemoryPort) GetGame(ctx context.Context) (component.GameState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("get_game")
	if p.FailGame != nil {
		return component.GameState{}, NewRemoteError("get_game", p.FailGame)
	}
	return p.Game, nil
}

func (p *MemoryPort) GetTile(ctx context.Context, x, y uint16) (component.TileState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("get_tile")
	p.tileCalls++
	if p.FailTileAt > 0 && p.tileCalls == p.FailTileAt {
		return component.TileState{}, NewRemoteError("get_tile", fmt.Errorf("%w at (%d,%d)", ErrInjected, x, y))
	}
	if t, ok := p.tiles[[2]uint16{x, y}]; ok {
		return t, nil
	}
	return component.TileState{X: x, Y: y}, nil
}

func (p *MemoryPort) GetInventory(ctx context.Context) (component.InventoryState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("get_inventory")
	if p.FailInventory != nil {
		return component.InventoryState{}, NewRemoteError("get_inventory", p.FailInventory)
	}
	return p.Inventory, nil
}

// SubmitMove steps the player when the target is on the board
func (p *MemoryPort) SubmitMove(ctx context.Context, dir component.Direction) (ReceiptID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("submit_move")
	if p.FailMove != nil {
		return "", NewRemoteError("submit_move", p.FailMove)
	}
	dx, dy := dir.Delta()
	x, y := int(p.Game.X)+dx, int(p.Game.Y)+dy
	if p.Game.OnBoard(x, y) {
		p.Game.X, p.Game.Y = uint16(x), uint16(y)
	}
	return p.receipt(), nil
}

// SubmitDefuse consumes a kit
func (p *MemoryPort) SubmitDefuse(ctx context.Context, dir component.Direction) (ReceiptID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("submit_defuse")
	if p.FailDefuse != nil {
		return "", NewRemoteError("submit_defuse", p.FailDefuse)
	}
	if p.Inventory.Kits > 0 {
		p.Inventory.Kits--
	}
	return p.receipt(), nil
}

// SubmitReveal explores the tile under the player
func (p *MemoryPort) SubmitReveal(ctx context.Context) (ReceiptID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("submit_reveal")
	if p.FailReveal != nil {
		return "", NewRemoteError("submit_reveal", p.FailReveal)
	}
	key := [2]uint16{p.Game.X, p.Game.Y}
	t := p.tiles[key]
	t.X, t.Y = key[0], key[1]
	t.Explored = true
	p.tiles[key] = t
	p.Game.Score++
	return p.receipt(), nil
}

// SubmitNewGame resets the player to a fresh game of the same size
func (p *MemoryPort) SubmitNewGame(ctx context.Context) (ReceiptID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("submit_new_game")
	if p.FailNewGame != nil {
		return "", NewRemoteError("submit_new_game", p.FailNewGame)
	}
	size := p.Game.Size
	if size == 0 {
		size = 3
	}
	p.Game = component.GameState{Name: p.GameName, Alive: true, Level: 1, Size: size}
	p.tiles = make(map[[2]uint16]component.TileState)
	return p.receipt(), nil
}
