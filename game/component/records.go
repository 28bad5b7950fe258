package component

import "fmt"

// GameState is the Game component of one account.
type GameState struct {
	Name        string   `json:"name"`
	Alive       bool     `json:"alive"`
	Score       uint64   `json:"score"`
	Seed        [32]byte `json:"seed"`
	CommittedAt uint64   `json:"commited_block_timestamp"`
	X           uint16   `json:"x"`
	Y           uint16   `json:"y"`
	Level       uint8    `json:"level"`
	Size        uint16   `json:"size"`
}

func (GameState) Kind() Kind { return KindGame }

// OnBoard reports whether (x, y) lies inside the size×size board.
func (g GameState) OnBoard(x, y int) bool {
	return x >= 0 && y >= 0 && x < int(g.Size) && y < int(g.Size)
}

// TileState is the Tile component at one coordinate.
type TileState struct {
	Explored bool   `json:"explored"`
	Danger   bool   `json:"danger"`
	Clue     uint8  `json:"clue"`
	X        uint16 `json:"x"`
	Y        uint16 `json:"y"`
}

func (TileState) Kind() Kind { return KindTile }

// InventoryState is the Inventory component of one account.
type InventoryState struct {
	Shield bool   `json:"shield"`
	Kits   uint16 `json:"kits"`
}

func (InventoryState) Kind() Kind { return KindInventory }

func boolFelt(b bool) Felt {
	if b {
		return FeltFromUint64(1)
	}
	return Felt{}
}

// Encode returns the wire form of rec. Decode(rec.Kind(), Encode(rec))
// yields rec again for every record whose text fields fit in a short string.
func Encode(rec Record) ([]Felt, error) {
	switch r := rec.(type) {
	case GameState:
		name, err := ShortString(r.Name)
		if err != nil {
			return nil, err
		}
		return []Felt{
			name,
			boolFelt(r.Alive),
			FeltFromUint64(r.Score),
			FeltFromBytes(r.Seed[:]),
			FeltFromUint64(r.CommittedAt),
			FeltFromUint64(uint64(r.X)),
			FeltFromUint64(uint64(r.Y)),
			FeltFromUint64(uint64(r.Level)),
			FeltFromUint64(uint64(r.Size)),
		}, nil
	case TileState:
		return []Felt{
			boolFelt(r.Explored),
			boolFelt(r.Danger),
			FeltFromUint64(uint64(r.Clue)),
			FeltFromUint64(uint64(r.X)),
			FeltFromUint64(uint64(r.Y)),
		}, nil
	case InventoryState:
		return []Felt{
			boolFelt(r.Shield),
			FeltFromUint64(uint64(r.Kits)),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, rec)
	}
}
