// Package terminal is the interactive front end: a termbox-backed Surface,
// the key table and the event loop that feeds a session.Controller.
//
// Keys:
//
//	q / Ctrl-C  quit
//	n           new game
//	r           reveal the current tile
//	space       toggle defuse mode
//	7 8 9       move up-left, up, up-right
//	4   6       move left, right
//	1 2 3       move down-left, down, down-right
//	arrows      move up, down, left, right
//
// Run restores the terminal on every exit path by closing the surface in a
// deferred call; Screen.Close is idempotent so callers may close it again.
package terminal
