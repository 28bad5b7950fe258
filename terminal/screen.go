package terminal

import (
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"
)

// Screen is a termbox-backed Surface. Creating one switches the terminal
// to raw mode; Close switches it back.
type Screen struct {
	closeOnce sync.Once
}

// NewScreen takes over the terminal
func NewScreen() (*Screen, error) {
	if err := termbox.Init(); err != nil {
		return nil, err
	}
	termbox.SetInputMode(termbox.InputEsc)
	return &Screen{}, nil
}

func (s *Screen) Size() (int, int) {
	return termbox.Size()
}

func (s *Screen) Clear() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
}

func (s *Screen) Print(x, y int, text string) int {
	for _, r := range text {
		termbox.SetCell(x, y, r, termbox.ColorDefault, termbox.ColorDefault)
		x += runewidth.RuneWidth(r)
	}
	return x
}

func (s *Screen) Flush() error {
	return termbox.Flush()
}

func (s *Screen) PollEvent() Event {
	return translateEvent(termbox.PollEvent())
}

func (s *Screen) Close() {
	s.closeOnce.Do(termbox.Close)
}

var termboxKeys = map[termbox.Key]Key{
	termbox.KeyArrowUp:    KeyArrowUp,
	termbox.KeyArrowDown:  KeyArrowDown,
	termbox.KeyArrowLeft:  KeyArrowLeft,
	termbox.KeyArrowRight: KeyArrowRight,
	termbox.KeySpace:      KeySpace,
	termbox.KeyCtrlC:      KeyCtrlC,
	termbox.KeyEsc:        KeyEsc,
}

func translateEvent(ev termbox.Event) Event {
	switch ev.Type {
	case termbox.EventKey:
		if ev.Ch != 0 {
			return Event{Type: EventKey, Ch: ev.Ch}
		}
		return Event{Type: EventKey, Key: termboxKeys[ev.Key]}
	case termbox.EventResize:
		return Event{Type: EventResize}
	case termbox.EventInterrupt:
		return Event{Type: EventInterrupt}
	case termbox.EventError:
		return Event{Type: EventError, Err: ev.Err}
	default:
		return Event{Type: EventKey, Key: KeyNone}
	}
}
