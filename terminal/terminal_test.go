package terminal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/wricardo/mcp-training/exploretui/game/component"
	"github.com/wricardo/mcp-training/exploretui/game/render"
	"github.com/wricardo/mcp-training/exploretui/game/service"
	"github.com/wricardo/mcp-training/exploretui/game/session"
)

// fakeSurface records printed cells and serves events from a channel
type fakeSurface struct {
	mu      sync.Mutex
	w, h    int
	cells   [][]rune
	events  chan Event
	flushes int
	closes  int

	panicOnFlush bool
}

func newFakeSurface(w, h int) *fakeSurface {
	f := &fakeSurface{w: w, h: h, events: make(chan Event)}
	f.Clear()
	return f
}

func (f *fakeSurface) Size() (int, int) { return f.w, f.h }

func (f *fakeSurface) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cells = make([][]rune, f.h)
	for y := range f.cells {
		f.cells[y] = []rune(strings.Repeat(" ", f.w))
	}
}

func (f *fakeSurface) Print(x, y int, s string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range s {
		if y >= 0 && y < f.h && x >= 0 && x < f.w {
			f.cells[y][x] = r
			if runewidth.RuneWidth(r) == 2 && x+1 < f.w {
				f.cells[y][x+1] = 0
			}
		}
		x += runewidth.RuneWidth(r)
	}
	return x
}

func (f *fakeSurface) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOnFlush {
		panic("flush exploded")
	}
	f.flushes++
	return nil
}

func (f *fakeSurface) PollEvent() Event { return <-f.events }

func (f *fakeSurface) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
}

func (f *fakeSurface) row(y int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var b strings.Builder
	for _, r := range f.cells[y] {
		if r != 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (f *fakeSurface) screen() string {
	lines := make([]string, f.h)
	for y := range lines {
		lines[y] = f.row(y)
	}
	return strings.Join(lines, "\n")
}

func key(ch rune) Event { return Event{Type: EventKey, Ch: ch} }

func newTestPort() *service.MemoryPort {
	port := service.NewMemoryPort(component.GameState{Name: "Pragma Hackathon", Alive: true, Level: 1, Size: 3, X: 1, Y: 1})
	port.Inventory.Kits = 2
	port.SetTile(component.TileState{Explored: true, Clue: 2, X: 0, Y: 0})
	return port
}

// runLoop starts Run in the background and returns a wait function
func runLoop(t *testing.T, ctx context.Context, s *fakeSurface, ctrl *session.Controller, remote <-chan service.Notification) func() error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- Run(ctx, s, ctrl, remote) }()
	return func() error {
		select {
		case err := <-errc:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return")
			return nil
		}
	}
}

func send(t *testing.T, s *fakeSurface, evs ...Event) {
	t.Helper()
	for _, ev := range evs {
		select {
		case s.events <- ev:
		case <-time.After(2 * time.Second):
			t.Fatalf("loop did not accept event %+v", ev)
		}
	}
}

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want Command
	}{
		{"q", key('q'), Command{Action: ActionQuit}},
		{"Q", key('Q'), Command{Action: ActionQuit}},
		{"ctrl-c", Event{Type: EventKey, Key: KeyCtrlC}, Command{Action: ActionQuit}},
		{"n", key('n'), Command{Action: ActionNewGame}},
		{"r", key('r'), Command{Action: ActionReveal}},
		{"space rune", key(' '), Command{Action: ActionToggleMode}},
		{"space key", Event{Type: EventKey, Key: KeySpace}, Command{Action: ActionToggleMode}},
		{"1", key('1'), Command{Action: ActionMove, Direction: component.DownLeft}},
		{"2", key('2'), Command{Action: ActionMove, Direction: component.Down}},
		{"3", key('3'), Command{Action: ActionMove, Direction: component.DownRight}},
		{"4", key('4'), Command{Action: ActionMove, Direction: component.Left}},
		{"6", key('6'), Command{Action: ActionMove, Direction: component.Right}},
		{"7", key('7'), Command{Action: ActionMove, Direction: component.UpLeft}},
		{"8", key('8'), Command{Action: ActionMove, Direction: component.Up}},
		{"9", key('9'), Command{Action: ActionMove, Direction: component.UpRight}},
		{"up", Event{Type: EventKey, Key: KeyArrowUp}, Command{Action: ActionMove, Direction: component.Up}},
		{"down", Event{Type: EventKey, Key: KeyArrowDown}, Command{Action: ActionMove, Direction: component.Down}},
		{"left", Event{Type: EventKey, Key: KeyArrowLeft}, Command{Action: ActionMove, Direction: component.Left}},
		{"right", Event{Type: EventKey, Key: KeyArrowRight}, Command{Action: ActionMove, Direction: component.Right}},
		{"5 unbound", key('5'), Command{}},
		{"x unbound", key('x'), Command{}},
		{"esc unbound", Event{Type: EventKey, Key: KeyEsc}, Command{}},
		{"resize", Event{Type: EventResize}, Command{Action: ActionRedraw}},
		{"interrupt", Event{Type: EventInterrupt}, Command{Action: ActionQuit}},
		{"error", Event{Type: EventError}, Command{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TranslateKey(tt.ev); got != tt.want {
				t.Errorf("TranslateKey(%+v) = %+v, want %+v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestDraw(t *testing.T) {
	s := newFakeSurface(100, 50)
	ctrl := session.NewController(newTestPort())
	if err := ctrl.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	ctrl.SetStatus("hello there")

	if err := Draw(s, ctrl.View()); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if s.flushes != 1 {
		t.Errorf("flushes = %d, want 1", s.flushes)
	}

	screen := s.screen()
	for _, want := range []string{"│ 2 │   │   │", "│   │< >│   │", " Score ", " Controls ", " Info ", "hello there", "Name: Pragma Hackathon", "Defuse kits remaining: 2"} {
		if !strings.Contains(screen, want) {
			t.Errorf("screen missing %q:\n%s", want, screen)
		}
	}

	// Score panel border starts at column 70 on the first row
	if row := []rune(s.row(0)); row[70] != '┌' || row[99] != '┐' {
		t.Errorf("score border row = %q", s.row(0))
	}
	// Status panel occupies the bottom fifth
	if row := []rune(s.row(40)); row[0] != '┌' {
		t.Errorf("status border row = %q", s.row(40))
	}
}

func TestDrawTinyScreen(t *testing.T) {
	s := newFakeSurface(3, 2)
	if err := Draw(s, render.View{Status: "a long status line"}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
}

func TestRunQuit(t *testing.T) {
	s := newFakeSurface(100, 50)
	port := newTestPort()
	ctrl := session.NewController(port)

	wait := runLoop(t, context.Background(), s, ctrl, nil)
	send(t, s, key('q'))
	if err := wait(); err != nil {
		t.Errorf("Run() error = %v", err)
	}

	if s.closes != 1 {
		t.Errorf("surface closed %d times, want 1", s.closes)
	}
	if ctrl.State() != session.StateReady {
		t.Errorf("state = %s, want Ready after initial sync", ctrl.State())
	}
	if s.flushes != 1 {
		t.Errorf("flushes = %d, want only the initial frame", s.flushes)
	}
}

func TestRunDispatch(t *testing.T) {
	s := newFakeSurface(100, 50)
	port := newTestPort()
	ctrl := session.NewController(port)

	wait := runLoop(t, context.Background(), s, ctrl, nil)
	send(t, s,
		key('r'),
		Event{Type: EventKey, Key: KeyArrowRight},
		key(' '),
		key('4'),
		key('x'),
		Event{Type: EventResize},
		key('q'),
	)
	if err := wait(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var submits []string
	for _, c := range port.Calls() {
		if strings.HasPrefix(c, "submit_") {
			submits = append(submits, c)
		}
	}
	want := []string{"submit_reveal", "submit_move", "submit_defuse"}
	if strings.Join(submits, ",") != strings.Join(want, ",") {
		t.Errorf("submits = %v, want %v", submits, want)
	}
	if ctrl.Mode() != session.ModeDefuse {
		t.Errorf("mode = %s, want Defuse", ctrl.Mode())
	}
	// Initial frame plus one per handled event before quit
	if s.flushes != 7 {
		t.Errorf("flushes = %d, want 7", s.flushes)
	}
}

func TestRunNewGameFailureIsFatal(t *testing.T) {
	s := newFakeSurface(100, 50)
	port := newTestPort()
	port.FailNewGame = errors.New("account not deployed")
	ctrl := session.NewController(port)

	wait := runLoop(t, context.Background(), s, ctrl, nil)
	send(t, s, key('n'))
	err := wait()
	if !errors.Is(err, service.ErrRemoteCallFailed) {
		t.Errorf("Run() error = %v, want remote failure", err)
	}
	if s.closes != 1 {
		t.Errorf("surface closed %d times, want 1", s.closes)
	}
}

func TestRunMoveFailureKeepsRunning(t *testing.T) {
	s := newFakeSurface(100, 50)
	port := newTestPort()
	port.FailMove = errors.New("not revealed")
	ctrl := session.NewController(port)

	wait := runLoop(t, context.Background(), s, ctrl, nil)
	send(t, s, key('6'), key('q'))
	if err := wait(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ctrl.Status() != session.MoveFailedMessage {
		t.Errorf("status = %q", ctrl.Status())
	}
}

func waitFlushes(t *testing.T, s *fakeSurface, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		got := s.flushes
		s.mu.Unlock()
		if got >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("flushes = %d, want %d", got, n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRunRemoteNotifications(t *testing.T) {
	s := newFakeSurface(100, 50)
	port := newTestPort()
	ctrl := session.NewController(port)
	remote := make(chan service.Notification)

	wait := runLoop(t, context.Background(), s, ctrl, remote)
	waitFlushes(t, s, 1)
	before := port.CountCalls("get_game")

	remote <- service.Notification{Account: "0xabc", Event: service.EventStateChanged, System: service.SystemMove}
	waitFlushes(t, s, 2)
	if got := port.CountCalls("get_game"); got != before+1 {
		t.Errorf("get_game calls = %d, want %d", got, before+1)
	}

	close(remote)
	waitFlushes(t, s, 3)
	send(t, s, key('q'))
	if err := wait(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if ctrl.Status() != WatchClosedMessage {
		t.Errorf("status = %q, want watch closed message", ctrl.Status())
	}
}

func TestRunContextCancel(t *testing.T) {
	s := newFakeSurface(100, 50)
	ctx, cancel := context.WithCancel(context.Background())
	wait := runLoop(t, ctx, s, session.NewController(newTestPort()), nil)
	cancel()
	if err := wait(); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if s.closes != 1 {
		t.Errorf("surface closed %d times, want 1", s.closes)
	}
}

func TestRunInputError(t *testing.T) {
	s := newFakeSurface(100, 50)
	wait := runLoop(t, context.Background(), s, session.NewController(newTestPort()), nil)
	boom := errors.New("tty gone")
	send(t, s, Event{Type: EventError, Err: boom})
	if err := wait(); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestRunRestoresOnPanic(t *testing.T) {
	s := newFakeSurface(100, 50)
	s.panicOnFlush = true

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected the panic to propagate")
			}
		}()
		Run(context.Background(), s, session.NewController(newTestPort()), nil)
	}()

	if s.closes != 1 {
		t.Errorf("surface closed %d times after panic, want 1", s.closes)
	}
}
