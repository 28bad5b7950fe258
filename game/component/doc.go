// Package component decodes the raw component tuples exposed by the remote
// world into typed records.
//
// A component is a named, fixed-arity tuple of field elements (felts). Each
// record kind has a field table describing the order, name and target width
// of every field:
//
//	Game      name, status, score, seed, commited_block_timestamp, x, y, level, size
//	Tile      explored, danger, clue, x, y
//	Inventory shield, kits
//
// Decode enforces the exact arity of the table and the width of every field.
// Boolean fields follow a single convention: any nonzero value is true.
//
// The package also owns the small-integer wire codes sent as system calldata
// (Direction and Action). These codes cross the network boundary and must not
// change.
//
// Usage:
//
//	rec, err := component.Decode(component.KindTile, values)
//	if err != nil {
//		var derr *component.DecodeError
//		if errors.As(err, &derr) {
//			log.Printf("bad field %d: %v", derr.Index, derr.Err)
//		}
//		return err
//	}
//	tile := rec.(component.TileState)
package component
