package component

import (
	"errors"
	"fmt"
)

// Kind names a component record kind. The value is the component name used
// by the world.
type Kind string

const (
	KindGame      Kind = "Game"
	KindTile      Kind = "Tile"
	KindInventory Kind = "Inventory"
)

var (
	ErrArityMismatch = errors.New("arity mismatch")
	ErrFieldOverflow = errors.New("field overflow")
	ErrInvalidUTF8   = errors.New("invalid utf-8")
	ErrUnknownKind   = errors.New("unknown component kind")
)

// DecodeError describes a failed decode. Index is -1 for arity errors.
type DecodeError struct {
	Kind  Kind
	Index int
	Field string
	Err   error
	msg   string
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("decode %s: %v: %s", e.Kind, e.Err, e.msg)
	}
	if e.msg != "" {
		return fmt.Sprintf("decode %s field %d (%s): %v: %s", e.Kind, e.Index, e.Field, e.Err, e.msg)
	}
	return fmt.Sprintf("decode %s field %d (%s): %v", e.Kind, e.Index, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FieldType is the declared target width and meaning of a field.
type FieldType int

const (
	FieldBool FieldType = iota
	FieldU8
	FieldU16
	FieldU64
	FieldBytes32
	FieldShortString
)

func (t FieldType) String() string {
	switch t {
	case FieldBool:
		return "bool"
	case FieldU8:
		return "u8"
	case FieldU16:
		return "u16"
	case FieldU64:
		return "u64"
	case FieldBytes32:
		return "bytes32"
	case FieldShortString:
		return "short_string"
	default:
		return "unknown"
	}
}

func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *FieldType) UnmarshalText(text []byte) error {
	for c := FieldBool; c <= FieldShortString; c++ {
		if c.String() == string(text) {
			*t = c
			return nil
		}
	}
	return fmt.Errorf("unknown field type %q", text)
}

func (t FieldType) bits() int {
	switch t {
	case FieldU8:
		return 8
	case FieldU16:
		return 16
	case FieldU64:
		return 64
	default:
		return 256
	}
}

// Field is one entry of a record's field table. A nonzero Max further bounds
// integer fields.
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
	Max  uint64    `json:"max,omitempty"`
}

// MaxClue is the largest clue a tile can carry.
const MaxClue = 9

var schemas = map[Kind][]Field{
	KindGame: {
		{Name: "name", Type: FieldShortString},
		{Name: "status", Type: FieldBool},
		{Name: "score", Type: FieldU64},
		{Name: "seed", Type: FieldBytes32},
		{Name: "commited_block_timestamp", Type: FieldU64},
		{Name: "x", Type: FieldU16},
		{Name: "y", Type: FieldU16},
		{Name: "level", Type: FieldU8},
		{Name: "size", Type: FieldU16},
	},
	KindTile: {
		{Name: "explored", Type: FieldBool},
		{Name: "danger", Type: FieldBool},
		{Name: "clue", Type: FieldU8, Max: MaxClue},
		{Name: "x", Type: FieldU16},
		{Name: "y", Type: FieldU16},
	},
	KindInventory: {
		{Name: "shield", Type: FieldBool},
		{Name: "kits", Type: FieldU16},
	},
}

// Kinds lists every known record kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindGame, KindTile, KindInventory}
}

// Schema returns a copy of the field table for kind.
func Schema(kind Kind) ([]Field, bool) {
	fields, ok := schemas[kind]
	if !ok {
		return nil, false
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	return out, true
}

// Arity returns the exact number of values a record of kind carries, or 0
// for an unknown kind.
func Arity(kind Kind) int {
	return len(schemas[kind])
}

// Record is a decoded component.
type Record interface {
	Kind() Kind
}

// value is the decoded form of a single field.
type value struct {
	b     bool
	u     uint64
	bytes [32]byte
	s     string
}

func decodeField(field Field, raw Felt) (value, string, error) {
	switch field.Type {
	case FieldBool:
		return value{b: !raw.IsZero()}, "", nil
	case FieldU8, FieldU16, FieldU64:
		if raw.BitLen() > field.Type.bits() {
			return value{}, fmt.Sprintf("%s does not fit in %s", raw.Hex(), field.Type), ErrFieldOverflow
		}
		v := raw.Uint64()
		if field.Max > 0 && v > field.Max {
			return value{}, fmt.Sprintf("%d exceeds %d", v, field.Max), ErrFieldOverflow
		}
		return value{u: v}, "", nil
	case FieldBytes32:
		return value{bytes: raw.Bytes32()}, "", nil
	case FieldShortString:
		s, err := raw.ShortStringValue()
		if err != nil {
			return value{}, "", err
		}
		return value{s: s}, "", nil
	default:
		return value{}, "", fmt.Errorf("unsupported field type %d", field.Type)
	}
}

// Decode converts raw into the typed record for kind. The returned record is
// a GameState, TileState or InventoryState value.
func Decode(kind Kind, raw []Felt) (Record, error) {
	fields, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if len(raw) != len(fields) {
		return nil, &DecodeError{
			Kind:  kind,
			Index: -1,
			Err:   ErrArityMismatch,
			msg:   fmt.Sprintf("expected %d values, got %d", len(fields), len(raw)),
		}
	}

	values := make([]value, len(fields))
	for i, field := range fields {
		v, detail, err := decodeField(field, raw[i])
		if err != nil {
			return nil, &DecodeError{Kind: kind, Index: i, Field: field.Name, Err: err, msg: detail}
		}
		values[i] = v
	}

	switch kind {
	case KindGame:
		return GameState{
			Name:        values[0].s,
			Alive:       values[1].b,
			Score:       values[2].u,
			Seed:        values[3].bytes,
			CommittedAt: values[4].u,
			X:           uint16(values[5].u),
			Y:           uint16(values[6].u),
			Level:       uint8(values[7].u),
			Size:        uint16(values[8].u),
		}, nil
	case KindTile:
		return TileState{
			Explored: values[0].b,
			Danger:   values[1].b,
			Clue:     uint8(values[2].u),
			X:        uint16(values[3].u),
			Y:        uint16(values[4].u),
		}, nil
	default:
		return InventoryState{
			Shield: values[0].b,
			Kits:   uint16(values[1].u),
		}, nil
	}
}

// DecodeGame decodes a Game record.
func DecodeGame(raw []Felt) (GameState, error) {
	rec, err := Decode(KindGame, raw)
	if err != nil {
		return GameState{}, err
	}
	return rec.(GameState), nil
}

// DecodeTile decodes a Tile record.
func DecodeTile(raw []Felt) (TileState, error) {
	rec, err := Decode(KindTile, raw)
	if err != nil {
		return TileState{}, err
	}
	return rec.(TileState), nil
}

// DecodeInventory decodes an Inventory record.
func DecodeInventory(raw []Felt) (InventoryState, error) {
	rec, err := Decode(KindInventory, raw)
	if err != nil {
		return InventoryState{}, err
	}
	return rec.(InventoryState), nil
}
