package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/exploretui/game/component"
)

var (
	ErrGameOver         = errors.New("game is over")
	ErrNotRevealed      = errors.New("current tile has not been revealed")
	ErrOffBoard         = errors.New("target is outside the board")
	ErrNoKits           = errors.New("no defuse kits left")
	ErrAlreadyExplored  = errors.New("tile already explored")
	ErrInvalidDirection = errors.New("invalid direction")
)

// Engine provides the rules of the dev world for a single account
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	NewGame(name string, seed [32]byte) *GameState
	IsAlive() bool

	// Systems
	Move(dir component.Direction, action component.Action) error
	Defuse(dir component.Direction) error
	Reveal() error

	// Component views
	Game() component.GameState
	Tile(x, y int) component.TileState
	Inventory() component.InventoryState

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetHistory() []HistoryEntry
	GetLastAction() *HistoryEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
	now    func() time.Time
}

// NewEngine creates an engine with no game yet; NewGame starts one
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return &GameEngine{
		config: config,
		now:    time.Now,
	}, nil
}

// NewEngineWithDefaults creates an engine with the built-in configuration
func NewEngineWithDefaults() *GameEngine {
	return &GameEngine{
		config: DefaultConfig(),
		now:    time.Now,
	}
}

// GetState returns the current game state, nil before the first NewGame
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	for i, row := range state.Grid {
		if len(row) != len(state.Grid) {
			return fmt.Errorf("state grid row %d has %d cells, want %d", i, len(row), len(state.Grid))
		}
	}
	if len(state.Grid) > 0 && !state.OnBoard(state.PlayerPos.X, state.PlayerPos.Y) {
		return fmt.Errorf("player position (%d,%d) is off the board", state.PlayerPos.X, state.PlayerPos.Y)
	}
	e.state = state
	return nil
}

// NewGame replaces any current game with a fresh one
func (e *GameEngine) NewGame(name string, seed [32]byte) *GameState {
	var history []HistoryEntry
	total := 0
	if e.state != nil {
		history = e.state.History
		total = e.state.TotalActions
	}

	e.state = InitGameStateFromConfig(e.config, name, seed, e.now())

	// History is cumulative across games
	if history != nil {
		e.state.History = history
		e.state.TotalActions = total
	}
	e.state.AddToHistory("create", Position{}, Position{}, true)
	return e.state
}

// IsAlive returns whether a game exists and the player is still alive
func (e *GameEngine) IsAlive() bool {
	return e.state != nil && e.state.Alive
}

// Move executes the Move system
func (e *GameEngine) Move(dir component.Direction, action component.Action) error {
	if e.state == nil {
		return ErrGameOver
	}
	from := e.state.PlayerPos
	err := e.state.MovePlayer(dir, action, e.config)
	e.record("move "+dir.String(), from, err)
	return err
}

// Defuse executes the Defuse system
func (e *GameEngine) Defuse(dir component.Direction) error {
	if e.state == nil {
		return ErrGameOver
	}
	from := e.state.PlayerPos
	err := e.state.DefuseToward(dir, e.config)
	e.record("defuse "+dir.String(), from, err)
	return err
}

// Reveal executes the Reveal system
func (e *GameEngine) Reveal() error {
	if e.state == nil {
		return ErrGameOver
	}
	from := e.state.PlayerPos
	err := e.state.RevealTile(e.config)
	e.record("reveal", from, err)
	return err
}

func (e *GameEngine) record(action string, from Position, err error) {
	e.state.AddToHistory(action, from, e.state.PlayerPos, err == nil)
	if err == nil {
		e.state.CommittedAt = uint64(e.now().Unix())
	}
}

// Game returns the Game component of the current state. Without a game
// every field is zero.
func (e *GameEngine) Game() component.GameState {
	if e.state == nil {
		return component.GameState{}
	}
	s := e.state
	return component.GameState{
		Name:        s.Name,
		Alive:       s.Alive,
		Score:       s.Score,
		Seed:        s.Seed,
		CommittedAt: s.CommittedAt,
		X:           uint16(s.PlayerPos.X),
		Y:           uint16(s.PlayerPos.Y),
		Level:       uint8(s.Level),
		Size:        uint16(s.Size()),
	}
}

// Tile returns the Tile component at (x, y). Off-board tiles are zero apart
// from their coordinate.
func (e *GameEngine) Tile(x, y int) component.TileState {
	tile := component.TileState{X: uint16(x), Y: uint16(y)}
	if e.state == nil || !e.state.OnBoard(x, y) {
		return tile
	}
	cell := e.state.Grid[y][x]
	tile.Explored = cell.Explored
	tile.Danger = cell.Danger()
	if cell.Explored {
		tile.Clue = cell.Clue
	}
	return tile
}

// Inventory returns the Inventory component of the current state
func (e *GameEngine) Inventory() component.InventoryState {
	if e.state == nil {
		return component.InventoryState{}
	}
	return component.InventoryState{
		Shield: e.state.Shield,
		Kits:   uint16(e.state.Kits),
	}
}

// GetConfig returns the current world configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new world configuration; the next game uses it
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	e.config = config
	return nil
}

// GetHistory returns the complete history
func (e *GameEngine) GetHistory() []HistoryEntry {
	if e.state == nil {
		return nil
	}
	return e.state.History
}

// GetLastAction returns the last recorded execution, or nil if none
func (e *GameEngine) GetLastAction() *HistoryEntry {
	if e.state == nil || len(e.state.History) == 0 {
		return nil
	}
	return &e.state.History[len(e.state.History)-1]
}
