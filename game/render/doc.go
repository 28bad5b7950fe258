// Package render turns a client view into panels of text. It does no I/O:
// the terminal package draws what Plan returns.
//
// The frame is split 80/20 into the main area and the status line, the main
// area 70/30 into the board and a sidebar, and the sidebar into equal score
// and controls panels. The board is inset to 80% of its region, centered.
package render
