package terminal

// EventType classifies a Surface event
type EventType int

const (
	EventKey EventType = iota
	EventResize
	EventInterrupt
	EventError
)

// Key is a non-character key
type Key int

const (
	KeyNone Key = iota
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeySpace
	KeyCtrlC
	KeyEsc
)

// Event is one input event. Ch is set for character keys, Key otherwise.
type Event struct {
	Type EventType
	Key  Key
	Ch   rune
	Err  error
}

// Surface is the terminal as the loop sees it: a cell grid to print on and
// a source of input events.
type Surface interface {
	Size() (width, height int)
	Clear()
	// Print writes s starting at (x, y) and returns the column after it
	Print(x, y int, s string) int
	Flush() error

	// PollEvent blocks until the next event
	PollEvent() Event
	// Close restores the terminal. It is safe to call more than once.
	Close()
}
