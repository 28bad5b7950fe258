package board

import (
	"fmt"

	"github.com/wricardo/mcp-training/exploretui/game/component"
)

// CellState distinguishes cells the client never fetched from cells it knows
// to be hidden.
type CellState int

const (
	CellUnknown CellState = iota
	CellHidden
	CellExplored
)

func (s CellState) String() string {
	switch s {
	case CellUnknown:
		return "unknown"
	case CellHidden:
		return "hidden"
	case CellExplored:
		return "explored"
	default:
		return fmt.Sprintf("cell_state(%d)", int(s))
	}
}

// Cell is the projected content of one board position. Clue is meaningful
// only for explored cells.
type Cell struct {
	State  CellState `json:"state"`
	Clue   uint8     `json:"clue"`
	Danger bool      `json:"danger"`
}

// Grid is a dense size×size view of the board, indexed by (x, y) with y as
// the row.
type Grid struct {
	Size  int
	cells []Cell
}

// NewGrid returns a grid of size×size unknown cells.
func NewGrid(size int) *Grid {
	if size < 0 {
		size = 0
	}
	return &Grid{Size: size, cells: make([]Cell, size*size)}
}

// Len returns the number of cells, always Size*Size.
func (g *Grid) Len() int {
	return len(g.cells)
}

// InBounds reports whether (x, y) is a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Size && y < g.Size
}

// At returns the cell at (x, y). Out of range positions report an unknown
// cell and false.
func (g *Grid) At(x, y int) (Cell, bool) {
	if !g.InBounds(x, y) {
		return Cell{}, false
	}
	return g.cells[y*g.Size+x], true
}

func (g *Grid) set(x, y int, c Cell) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.cells[y*g.Size+x] = c
	return true
}

// Count returns how many cells are in state s.
func (g *Grid) Count(s CellState) int {
	n := 0
	for _, c := range g.cells {
		if c.State == s {
			n++
		}
	}
	return n
}

// Rows returns a copy of the grid as rows of cells.
func (g *Grid) Rows() [][]Cell {
	rows := make([][]Cell, g.Size)
	for y := 0; y < g.Size; y++ {
		rows[y] = make([]Cell, g.Size)
		copy(rows[y], g.cells[y*g.Size:(y+1)*g.Size])
	}
	return rows
}

// CellFromTile maps a fetched tile onto its cell content.
func CellFromTile(t component.TileState) Cell {
	if !t.Explored {
		return Cell{State: CellHidden, Danger: t.Danger}
	}
	return Cell{State: CellExplored, Clue: t.Clue, Danger: t.Danger}
}

// Project builds the grid for game from tiles. Positions absent from tiles
// stay unknown. Tiles outside the board are ignored and, for repeated
// positions, the later tile wins.
func Project(game component.GameState, tiles []component.TileState) *Grid {
	g := NewGrid(int(game.Size))
	for _, t := range tiles {
		g.set(int(t.X), int(t.Y), CellFromTile(t))
	}
	return g
}
