package component

import (
	"fmt"
	"strings"
)

// Direction is one of the eight compass moves. The numeric value is the wire
// code passed as calldata to the Move and Defuse systems.
type Direction uint8

const (
	Left      Direction = 0
	UpLeft    Direction = 1
	Up        Direction = 2
	UpRight   Direction = 3
	Right     Direction = 4
	DownRight Direction = 5
	Down      Direction = 6
	DownLeft  Direction = 7
)

// Directions lists every direction in wire-code order.
var Directions = []Direction{Left, UpLeft, Up, UpRight, Right, DownRight, Down, DownLeft}

var directionNames = [...]string{
	Left:      "left",
	UpLeft:    "up_left",
	Up:        "up",
	UpRight:   "up_right",
	Right:     "right",
	DownRight: "down_right",
	Down:      "down",
	DownLeft:  "down_left",
}

// dx, dy per direction in screen coordinates (y grows downwards)
var directionDeltas = [...][2]int{
	Left:      {-1, 0},
	UpLeft:    {-1, -1},
	Up:        {0, -1},
	UpRight:   {1, -1},
	Right:     {1, 0},
	DownRight: {1, 1},
	Down:      {0, 1},
	DownLeft:  {-1, 1},
}

// Code returns the wire code of d.
func (d Direction) Code() uint8 {
	return uint8(d)
}

// Felt returns d as calldata.
func (d Direction) Felt() Felt {
	return FeltFromUint64(uint64(d))
}

// Valid reports whether d is one of the eight directions.
func (d Direction) Valid() bool {
	return int(d) < len(directionNames)
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// Delta returns the (dx, dy) offset of a single step in d.
func (d Direction) Delta() (dx, dy int) {
	if !d.Valid() {
		return 0, 0
	}
	return directionDeltas[d][0], directionDeltas[d][1]
}

// DirectionFromCode maps a wire code back to its Direction.
func DirectionFromCode(code uint64) (Direction, error) {
	if code >= uint64(len(directionNames)) {
		return 0, fmt.Errorf("invalid direction code %d", code)
	}
	return Direction(code), nil
}

// ParseDirection accepts names like "up", "down_left", "down-left" or "downleft".
func ParseDirection(s string) (Direction, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, d := range Directions {
		if strings.ReplaceAll(directionNames[d], "_", "") == norm {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Action selects a cautious or risky move in worlds that accept it.
type Action uint8

const (
	Safe   Action = 0
	Unsafe Action = 1
)

// Code returns the wire code of a.
func (a Action) Code() uint8 {
	return uint8(a)
}

// Felt returns a as calldata.
func (a Action) Felt() Felt {
	return FeltFromUint64(uint64(a))
}

func (a Action) String() string {
	switch a {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// ActionFromCode maps a wire code back to its Action.
func ActionFromCode(code uint64) (Action, error) {
	switch code {
	case 0:
		return Safe, nil
	case 1:
		return Unsafe, nil
	default:
		return 0, fmt.Errorf("invalid action code %d", code)
	}
}

// ParseAction accepts "safe" or "unsafe".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "safe":
		return Safe, nil
	case "unsafe":
		return Unsafe, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}
