package engine

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ValidateGameConfig validates a world configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}

	// Validate board population
	if config.Mines < 1 {
		return fmt.Errorf("config validation: mines must be at least 1, got %d", config.Mines)
	}
	if config.ShieldPickups < 0 || config.KitPickups < 0 {
		return fmt.Errorf("config validation: pickups cannot be negative")
	}
	free := config.GridSize*config.GridSize - 1
	if used := config.Mines + config.ShieldPickups + config.KitPickups; used > free {
		return fmt.Errorf("config validation: mines and pickups need %d tiles but a %dx%d board only has %d besides the start",
			used, config.GridSize, config.GridSize, free)
	}

	// Validate inventory settings
	if config.StartingKits < 0 || config.StartingKits > MaxKits {
		return fmt.Errorf("config validation: starting_kits must be between 0 and %d, got %d", MaxKits, config.StartingKits)
	}
	if config.DefuseBonus < 0 {
		return fmt.Errorf("config validation: defuse_bonus cannot be negative, got %d", config.DefuseBonus)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.MineHit == "" {
		return fmt.Errorf("config validation: messages.mine_hit is required")
	}
	if config.StartingShield || config.ShieldPickups > 0 {
		if config.Messages.ShieldUsed == "" {
			return fmt.Errorf("config validation: messages.shield_used is required when shields are in play")
		}
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Revealed, "%d") {
		return fmt.Errorf("config validation: messages.revealed must contain %%d for score")
	}
	if !strings.Contains(config.Messages.LevelUp, "%d") {
		return fmt.Errorf("config validation: messages.level_up must contain %%d for level")
	}
	if config.Messages.Defused != "" && !strings.Contains(config.Messages.Defused, "%d") {
		return fmt.Errorf("config validation: messages.defused must contain %%d for remaining kits")
	}

	return nil
}

// LoadGameConfig loads a world configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns the built-in world rules
func DefaultConfig() *GameConfig {
	config := &GameConfig{
		Name:           "Classic Explore",
		Description:    "An 8x8 field with ten mines, a spare shield and a couple of defuse kits",
		GridSize:       8,
		Mines:          10,
		ShieldPickups:  1,
		KitPickups:     2,
		StartingKits:   1,
		StartingShield: false,
		DefuseBonus:    5,
	}
	config.Messages.Welcome = "Welcome explorer! Reveal your square before you move."
	config.Messages.Revealed = "Tile revealed! Score: %d"
	config.Messages.MineHit = "BOOM! You stepped on a mine. Game Over!"
	config.Messages.ShieldUsed = "Your shield absorbed the blast!"
	config.Messages.ShieldFound = "You found a shield!"
	config.Messages.KitFound = "You found a defuse kit!"
	config.Messages.Defused = "Mine defused! Kits left: %d"
	config.Messages.KitWasted = "Nothing to defuse there, the kit is gone"
	config.Messages.LevelUp = "Field cleared! Welcome to level %d"
	return config
}

// rngFromSeed returns a deterministic generator for seed
func rngFromSeed(seed [32]byte, level int) *rand.Rand {
	hi := binary.BigEndian.Uint64(seed[0:8]) ^ binary.BigEndian.Uint64(seed[16:24])
	lo := binary.BigEndian.Uint64(seed[8:16]) ^ binary.BigEndian.Uint64(seed[24:32])
	return rand.New(rand.NewPCG(hi, lo+uint64(level)))
}

// boardSizeForLevel grows the board by one per level, capped at MaxGridSize
func boardSizeForLevel(config *GameConfig, level int) int {
	size := config.GridSize + level - 1
	if size > MaxGridSize {
		size = MaxGridSize
	}
	return size
}

// generateGrid places mines and pickups for one level. The start tile (0,0)
// is always empty.
func generateGrid(config *GameConfig, seed [32]byte, level int) [][]Cell {
	size := boardSizeForLevel(config, level)
	grid := make([][]Cell, size)
	for i := range grid {
		grid[i] = make([]Cell, size)
		for j := range grid[i] {
			grid[i][j] = Cell{Type: Empty}
		}
	}

	// Every tile but the start, shuffled
	free := make([]Position, 0, size*size-1)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x == 0 && y == 0 {
				continue
			}
			free = append(free, Position{X: x, Y: y})
		}
	}
	rng := rngFromSeed(seed, level)
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	mines := config.Mines + level - 1
	place := func(n int, t CellType) {
		for ; n > 0 && len(free) > 0; n-- {
			p := free[0]
			free = free[1:]
			grid[p.Y][p.X].Type = t
		}
	}
	place(mines, Mine)
	place(config.ShieldPickups, ShieldPickup)
	place(config.KitPickups, KitPickup)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			grid[y][x].Clue = uint8(countAdjacentMines(grid, x, y))
		}
	}
	return grid
}

// InitGameStateFromConfig creates a fresh level-one game for the given name and seed
func InitGameStateFromConfig(config *GameConfig, name string, seed [32]byte, now time.Time) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	return &GameState{
		Name:         name,
		Alive:        true,
		Score:        0,
		Seed:         seed,
		CommittedAt:  uint64(now.Unix()),
		PlayerPos:    Position{X: 0, Y: 0},
		Level:        1,
		Grid:         generateGrid(config, seed, 1),
		Shield:       config.StartingShield,
		Kits:         config.StartingKits,
		Message:      config.Messages.Welcome,
		ConfigName:   config.Name,
		History:      []HistoryEntry{},
		TotalActions: 0,
	}
}
