package terminal

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/wricardo/mcp-training/exploretui/game/render"
)

// Draw plans a frame for v at the current surface size and prints it
func Draw(s Surface, v render.View) error {
	w, h := s.Size()
	s.Clear()
	for _, p := range render.Plan(v, render.Rect{W: w, H: h}) {
		drawPanel(s, p)
	}
	return s.Flush()
}

func drawPanel(s Surface, p render.Panel) {
	if p.Area.Empty() {
		return
	}
	content := p.Area
	if p.Border {
		drawBorder(s, p.Area, p.Title)
		content = p.Area.Inner()
	}
	if content.Empty() {
		return
	}

	lines := p.Lines
	if len(lines) > content.H {
		lines = lines[:content.H]
	}
	top := content.Y
	if p.Align == render.AlignCenter {
		top += (content.H - len(lines)) / 2
	}
	for i, line := range lines {
		line = runewidth.Truncate(line, content.W, "")
		x := content.X
		if p.Align == render.AlignCenter {
			x += (content.W - runewidth.StringWidth(line)) / 2
		}
		s.Print(x, top+i, line)
	}
}

func drawBorder(s Surface, r render.Rect, title string) {
	if r.W < 2 || r.H < 2 {
		return
	}
	right, bottom := r.X+r.W-1, r.Y+r.H-1
	horizontal := strings.Repeat("─", r.W-2)

	s.Print(r.X, r.Y, "┌"+horizontal+"┐")
	for y := r.Y + 1; y < bottom; y++ {
		s.Print(r.X, y, "│")
		s.Print(right, y, "│")
	}
	s.Print(r.X, bottom, "└"+horizontal+"┘")

	if title != "" && r.W > 4 {
		s.Print(r.X+2, r.Y, runewidth.Truncate(" "+title+" ", r.W-4, ""))
	}
}
