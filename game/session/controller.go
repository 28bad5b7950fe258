package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/wricardo/mcp-training/exploretui/game/board"
	"github.com/wricardo/mcp-training/exploretui/game/component"
	"github.com/wricardo/mcp-training/exploretui/game/render"
	"github.com/wricardo/mcp-training/exploretui/game/service"
)

// Status messages shown after an action
const (
	MoveFailedMessage = "Move failed. Remember you can only move once the current square has been revealed. You also cannot move outside the board."
	MoveOKMessage     = "Move successful"
	DefuseOKMessage   = "Defuse successful"
	RevealOKMessage   = "Reveal successful"
	NewGameOKMessage  = "New game started"
	syncFailedPrefix  = "Sync failed: "
)

// ErrPartialSync matches every failed sync
var ErrPartialSync = errors.New("partial sync failure")

// PartialSyncError reports which read aborted a sync. X and Y are set for
// the tile stage only.
type PartialSyncError struct {
	Stage string
	X, Y  int
	Err   error
}

// Sync stages
const (
	StageGame      = "game"
	StageInventory = "inventory"
	StageTile      = "tile"
)

func (e *PartialSyncError) Error() string {
	if e.Stage == StageTile {
		return fmt.Sprintf("sync aborted reading tile (%d,%d): %v", e.X, e.Y, e.Err)
	}
	return fmt.Sprintf("sync aborted reading %s: %v", e.Stage, e.Err)
}

func (e *PartialSyncError) Unwrap() error { return e.Err }

func (e *PartialSyncError) Is(target error) bool { return target == ErrPartialSync }

// Mode decides what a direction key submits
type Mode int

const (
	ModeMove Mode = iota
	ModeDefuse
)

func (m Mode) String() string {
	if m == ModeDefuse {
		return "Defuse"
	}
	return "Move"
}

// State is the lifecycle of a Controller
type State int

const (
	StateEmpty State = iota
	StateReady
	StateSyncing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	case StateSyncing:
		return "syncing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is the client's copy of the remote game. Tiles are in sync order,
// rows top to bottom.
type Snapshot struct {
	Game      component.GameState      `json:"game"`
	Inventory component.InventoryState `json:"inventory"`
	Tiles     []component.TileState    `json:"tiles"`
}

// Clone returns a deep copy of s
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Tiles = append([]component.TileState(nil), s.Tiles...)
	return &c
}

// Controller drives one client session against a GamePort. It is not safe
// for concurrent use: callers issue one operation at a time.
type Controller struct {
	port     service.GamePort
	snapshot *Snapshot
	grid     *board.Grid
	state    State
	mode     Mode
	status   string
}

// NewController returns an empty controller bound to port
func NewController(port service.GamePort) *Controller {
	return &Controller{port: port}
}

// Snapshot returns a copy of the current snapshot, or nil before the first
// successful sync
func (c *Controller) Snapshot() *Snapshot {
	return c.snapshot.Clone()
}

// Grid returns the projected board of the current snapshot
func (c *Controller) Grid() *board.Grid {
	return c.grid
}

func (c *Controller) State() State   { return c.state }
func (c *Controller) Mode() Mode     { return c.mode }
func (c *Controller) Status() string { return c.status }

// SetStatus replaces the status message
func (c *Controller) SetStatus(msg string) {
	c.status = msg
}

// ToggleMode flips between moving and defusing
func (c *Controller) ToggleMode() Mode {
	if c.mode == ModeMove {
		c.mode = ModeDefuse
	} else {
		c.mode = ModeMove
	}
	return c.mode
}

// View returns what the render planner needs
func (c *Controller) View() render.View {
	v := render.View{
		Grid:   c.grid,
		Status: c.status,
		Defuse: c.mode == ModeDefuse,
	}
	if c.snapshot != nil {
		v.Game = c.snapshot.Game
		v.Inventory = c.snapshot.Inventory
	}
	return v
}

// Sync reads game, inventory and every tile and replaces the snapshot. If
// any read fails the previous snapshot is kept, the status reports the
// failure and a *PartialSyncError is returned.
func (c *Controller) Sync(ctx context.Context) error {
	c.state = StateSyncing
	snap, err := c.fetch(ctx)
	if c.snapshot == nil {
		c.state = StateEmpty
	} else {
		c.state = StateReady
	}
	if err != nil {
		log.Printf("[SYNC] %v", err)
		c.status = syncFailedPrefix + err.Error()
		return err
	}

	c.snapshot = snap
	c.grid = board.Project(snap.Game, snap.Tiles)
	c.state = StateReady
	return nil
}

func (c *Controller) fetch(ctx context.Context) (*Snapshot, error) {
	game, err := c.port.GetGame(ctx)
	if err != nil {
		return nil, &PartialSyncError{Stage: StageGame, Err: err}
	}
	inv, err := c.port.GetInventory(ctx)
	if err != nil {
		return nil, &PartialSyncError{Stage: StageInventory, Err: err}
	}

	size := int(game.Size)
	tiles := make([]component.TileState, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			tile, err := c.port.GetTile(ctx, uint16(x), uint16(y))
			if err != nil {
				return nil, &PartialSyncError{Stage: StageTile, X: x, Y: y, Err: err}
			}
			tiles = append(tiles, tile)
		}
	}
	return &Snapshot{Game: game, Inventory: inv, Tiles: tiles}, nil
}

// HandleMove submits dir as a move, or as a defuse in defuse mode. A
// rejected submission only sets the status; the snapshot is not touched.
// The returned error is the submission failure, for callers that report it.
func (c *Controller) HandleMove(ctx context.Context, dir component.Direction) error {
	var err error
	ok := MoveOKMessage
	if c.mode == ModeDefuse {
		_, err = c.port.SubmitDefuse(ctx, dir)
		ok = DefuseOKMessage
	} else {
		_, err = c.port.SubmitMove(ctx, dir)
	}
	if err != nil {
		log.Printf("[%s] direction=%s status=FAILED err=%v", c.mode, dir, err)
		c.status = MoveFailedMessage
		return err
	}

	c.status = ok
	c.Sync(ctx)
	return nil
}

// HandleReveal reveals the tile under the player. Failures are shown
// verbatim.
func (c *Controller) HandleReveal(ctx context.Context) error {
	if _, err := c.port.SubmitReveal(ctx); err != nil {
		log.Printf("[REVEAL] status=FAILED err=%v", err)
		c.status = err.Error()
		return err
	}

	c.status = RevealOKMessage
	c.Sync(ctx)
	return nil
}

// HandleNewGame starts a new game. A failed request is returned to the
// caller, which is expected to stop the session.
func (c *Controller) HandleNewGame(ctx context.Context) error {
	if _, err := c.port.SubmitNewGame(ctx); err != nil {
		return fmt.Errorf("new game: %w", err)
	}

	c.status = NewGameOKMessage
	c.Sync(ctx)
	return nil
}
