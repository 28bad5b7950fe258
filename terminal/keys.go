package terminal

import "github.com/wricardo/mcp-training/exploretui/game/component"

// Action is what an input event asks the loop to do
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionNewGame
	ActionReveal
	ActionToggleMode
	ActionMove
	ActionRedraw
)

// Command is a translated input event. Direction is set for ActionMove.
type Command struct {
	Action    Action
	Direction component.Direction
}

// Numpad layout: 7 8 9 / 4 . 6 / 1 2 3
var runeDirections = map[rune]component.Direction{
	'1': component.DownLeft,
	'2': component.Down,
	'3': component.DownRight,
	'4': component.Left,
	'6': component.Right,
	'7': component.UpLeft,
	'8': component.Up,
	'9': component.UpRight,
}

var keyDirections = map[Key]component.Direction{
	KeyArrowUp:    component.Up,
	KeyArrowDown:  component.Down,
	KeyArrowLeft:  component.Left,
	KeyArrowRight: component.Right,
}

// TranslateKey maps an event onto a command. Unbound keys give ActionNone.
func TranslateKey(ev Event) Command {
	switch ev.Type {
	case EventResize:
		return Command{Action: ActionRedraw}
	case EventInterrupt:
		return Command{Action: ActionQuit}
	case EventKey:
	default:
		return Command{}
	}

	if ev.Ch != 0 {
		switch ev.Ch {
		case 'q', 'Q':
			return Command{Action: ActionQuit}
		case 'n', 'N':
			return Command{Action: ActionNewGame}
		case 'r', 'R':
			return Command{Action: ActionReveal}
		case ' ':
			return Command{Action: ActionToggleMode}
		}
		if dir, ok := runeDirections[ev.Ch]; ok {
			return Command{Action: ActionMove, Direction: dir}
		}
		return Command{}
	}

	switch ev.Key {
	case KeyCtrlC:
		return Command{Action: ActionQuit}
	case KeySpace:
		return Command{Action: ActionToggleMode}
	}
	if dir, ok := keyDirections[ev.Key]; ok {
		return Command{Action: ActionMove, Direction: dir}
	}
	return Command{}
}
