package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/wricardo/mcp-training/exploretui/game/board"
	"github.com/wricardo/mcp-training/exploretui/game/component"
)

// Align is the horizontal placement of panel lines
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Panel names produced by Plan
const (
	PanelBoard    = "board"
	PanelScore    = "score"
	PanelControls = "controls"
	PanelStatus   = "status"
)

// Panel is one region of the frame and the text drawn into it
type Panel struct {
	Name   string
	Area   Rect
	Title  string
	Lines  []string
	Border bool
	Align  Align
}

// View is everything the planner needs from the client session. Grid is nil
// before the first successful sync.
type View struct {
	Game      component.GameState
	Inventory component.InventoryState
	Grid      *board.Grid
	Status    string
	Defuse    bool
}

// BoardInsetPercent is how much of the board region the board itself uses
const BoardInsetPercent = 80

// ControlLines describes the key table shown in the controls panel
var ControlLines = []string{
	"1: Move down left",
	"2: Move down",
	"3: Move down right",
	"4: Move left",
	"6: Move right",
	"7: Move up left",
	"8: Move up",
	"9: Move up right",
	"",
	"R: Reveal current tile",
	"<Space>: Toggle defuse mode",
	"",
	"N: Start a new game",
	"Q: Quit the game",
}

// Plan lays out a frame of the given size. The result always holds the
// board, score, controls and status panels in that order.
func Plan(v View, screen Rect) []Panel {
	main, status := SplitVertical(screen, 80)
	boardArea, sidebar := SplitHorizontal(main, 70)
	score, controls := SplitVertical(sidebar, 50)

	return []Panel{
		{
			Name:  PanelBoard,
			Area:  Inset(boardArea, BoardInsetPercent),
			Lines: BoardLines(v),
			Align: AlignCenter,
		},
		{
			Name:   PanelScore,
			Area:   score,
			Title:  "Score",
			Lines:  ScoreLines(v),
			Border: true,
		},
		{
			Name:   PanelControls,
			Area:   controls,
			Title:  "Controls",
			Lines:  ControlLines,
			Border: true,
		},
		{
			Name:   PanelStatus,
			Area:   status,
			Title:  "Info",
			Lines:  wrap(v.Status, status.Inner().W),
			Border: true,
		},
	}
}

// CellGlyph returns the glyph drawn for (x, y), before padding
func CellGlyph(v View, x, y int) string {
	glyph := UnknownGlyph
	if v.Grid != nil {
		if c, ok := v.Grid.At(x, y); ok {
			switch c.State {
			case board.CellExplored:
				glyph = ClueGlyph(c.Clue, c.Danger)
			case board.CellHidden:
				glyph = HiddenGlyph
			}
		}
	}

	if x == int(v.Game.X) && y == int(v.Game.Y) {
		if !v.Game.Alive {
			return ExplosionGlyph
		}
		return PlayerGlyph(glyph)
	}
	return glyph
}

// BoardLines draws the grid as text, one row of cells between horizontal
// rules. An empty grid draws nothing.
func BoardLines(v View) []string {
	if v.Grid == nil || v.Grid.Size == 0 {
		return nil
	}
	size := v.Grid.Size
	rule := strings.Repeat("─", size*(cellWidth+1)+1)

	lines := make([]string, 0, 2*size+1)
	lines = append(lines, rule)
	for y := 0; y < size; y++ {
		var b strings.Builder
		b.WriteString("│")
		for x := 0; x < size; x++ {
			b.WriteString(padCell(CellGlyph(v, x, y)))
			b.WriteString("│")
		}
		lines = append(lines, b.String(), rule)
	}
	return lines
}

// ScoreLines describes the game and inventory
func ScoreLines(v View) []string {
	status := "Game Over"
	if v.Game.Alive {
		status = "Active"
	}
	mode := "Move"
	if v.Defuse {
		mode = "Defuse"
	}
	return []string{
		"Name: " + v.Game.Name,
		"Status: " + status,
		fmt.Sprintf("Level: %d", v.Game.Level),
		fmt.Sprintf("Score: %d", v.Game.Score),
		"",
		fmt.Sprintf("Shield: %t", v.Inventory.Shield),
		fmt.Sprintf("Defuse kits remaining: %d", v.Inventory.Kits),
		"",
		"Move mode: " + mode,
	}
}

// wrap breaks s into lines of at most width columns, on spaces when possible
func wrap(s string, width int) []string {
	if s == "" {
		return nil
	}
	if width <= 0 {
		return []string{s}
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			for runewidth.StringWidth(word) > width {
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					// a single glyph wider than the line
					head = string([]rune(word)[:1])
				}
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, head)
				word = word[len(head):]
			}
			switch {
			case line == "":
				line = word
			case runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		lines = append(lines, line)
	}
	return lines
}
