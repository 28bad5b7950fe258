// Command validate checks the dev world configuration JSON files in a
// directory (configs by default). It checks:
//   - JSON structure and the rules enforced by the world engine
//   - Playability: on sample boards the start tile is not boxed in by mines
//   - Reachability: how much of the safe ground is reachable from the start
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/exploretui/game/engine"
)

// sampleBoards is the number of seeds each config is played out on
const sampleBoards = 16

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single configuration JSON file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	reach := validateReachability(&config)
	if !reach.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, reach.Errors...)

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", config.GridSize, config.GridSize))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Mines: %d (%.0f%% of the board)", config.Mines, 100*float64(config.Mines)/float64(config.GridSize*config.GridSize)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Pickups: %d shields, %d kits", config.ShieldPickups, config.KitPickups))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Start: %d kits, shield %t", config.StartingKits, config.StartingShield))
	}

	return result
}

// validateReachability generates sample level-one boards and flood fills
// the safe tiles reachable from the start using 8-directional moves. A
// config whose start is boxed in by mines on every sample, with no kit or
// shield to get out, is rejected.
func validateReachability(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	boxed := 0
	reachable, safe := 0, 0
	now := time.Unix(0, 0)
	for i := 0; i < sampleBoards; i++ {
		var seed [32]byte
		seed[0], seed[31] = byte(i), byte(i*7+1)
		state := engine.InitGameStateFromConfig(config, "validate", seed, now)

		r, s := floodSafe(state.Grid)
		if r == 1 {
			boxed++
		}
		reachable += r
		safe += s
	}

	escape := config.StartingKits > 0 || config.StartingShield
	if boxed == sampleBoards && !escape {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Playability failure: start is surrounded by mines on all %d sample boards", sampleBoards))
		return result
	}
	if boxed > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Playability: start boxed in on %d/%d sample boards", boxed, sampleBoards))
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Playability: start open on all %d sample boards", sampleBoards))
	}
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Reachability: %.0f%% of safe tiles reachable without crossing a mine", 100*float64(reachable)/float64(safe)))
	return result
}

// floodSafe returns how many non-mine tiles are reachable from (0,0) and
// how many non-mine tiles the grid has
func floodSafe(grid [][]engine.Cell) (reachable, safe int) {
	size := len(grid)
	isSafe := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < size && y < size && grid[y][x].Type != engine.Mine
	}

	for y := range grid {
		for x := range grid[y] {
			if isSafe(x, y) {
				safe++
			}
		}
	}

	visited := make(map[engine.Position]bool)
	queue := []engine.Position{{X: 0, Y: 0}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if visited[p] {
			continue
		}
		visited[p] = true

		for _, n := range engine.Neighbors(size, p.X, p.Y) {
			if !visited[n] && isSafe(n.X, n.Y) {
				queue = append(queue, n)
			}
		}
	}
	return len(visited), safe
}

// main validates every *.json file in the directory given as the first
// argument, printing a concise report and exiting with non-zero status if
// any are invalid
func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
