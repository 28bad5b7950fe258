// Package board projects the sparse tile list of a snapshot onto a dense
// size×size grid.
//
// A cell is Unknown until a tile for its coordinate is seen, Hidden when the
// tile exists but is not explored, and Explored otherwise. Projection never
// fails: out-of-range tiles are dropped and duplicate coordinates resolve to
// the last tile in the list.
package board
