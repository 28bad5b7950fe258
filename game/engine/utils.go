package engine

// countAdjacentMines counts mines in the eight tiles around (x, y)
func countAdjacentMines(grid [][]Cell, x, y int) int {
	count := 0
	for _, p := range Neighbors(len(grid), x, y) {
		if grid[p.Y][p.X].Type == Mine {
			count++
		}
	}
	return count
}

// Neighbors returns the on-board positions around (x, y) on a size×size board
func Neighbors(size, x, y int) []Position {
	out := make([]Position, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx >= 0 && ny >= 0 && nx < size && ny < size {
				out = append(out, Position{X: nx, Y: ny})
			}
		}
	}
	return out
}

// CountCellType counts the total number of cells of a specific type in the grid
func CountCellType(grid [][]Cell, cellType CellType) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell.Type == cellType {
				count++
			}
		}
	}
	return count
}

// SafeTilesRemaining counts unexplored tiles that are not mines
func SafeTilesRemaining(grid [][]Cell) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell.Type != Mine && !cell.Explored {
				count++
			}
		}
	}
	return count
}
