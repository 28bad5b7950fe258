package render

import "github.com/mattn/go-runewidth"

// Clue glyphs, indexed by clue value. Hazard tiles use the circled table so a
// number on a mine never reads like a number on a safe tile.
var (
	SafeClueGlyphs   = [10]string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	HazardClueGlyphs = [10]string{"⓪", "①", "②", "③", "④", "⑤", "⑥", "⑦", "⑧", "⑨"}
)

const (
	HiddenGlyph    = " "
	UnknownGlyph   = "?"
	ExplosionGlyph = "💥"

	// cellWidth is the number of columns a cell takes, without its separator
	cellWidth = 3
)

// ClueGlyph returns the glyph for an explored tile. Clues beyond the table
// are clamped to 9.
func ClueGlyph(clue uint8, hazard bool) string {
	if clue > 9 {
		clue = 9
	}
	if hazard {
		return HazardClueGlyphs[clue]
	}
	return SafeClueGlyphs[clue]
}

// PlayerGlyph wraps the glyph of the cell under the player
func PlayerGlyph(cell string) string {
	return "<" + cell + ">"
}

// padCell centers s in cellWidth columns
func padCell(s string) string {
	w := runewidth.StringWidth(s)
	if w >= cellWidth {
		return runewidth.Truncate(s, cellWidth, "")
	}
	left := (cellWidth - w) / 2
	return runewidth.FillRight(runewidth.FillLeft(s, w+left), cellWidth)
}
