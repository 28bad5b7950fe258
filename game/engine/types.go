package engine

// CellType represents what lies under a tile of the dev world
type CellType string

const (
	Empty        CellType = "empty"
	Mine         CellType = "mine"
	ShieldPickup CellType = "shield"
	KitPickup    CellType = "kit"

	// Validation constants
	MinGridSize  = 3
	MaxGridSize  = 32
	MaxKits      = 99
	MaxLevel     = 255
	MaxNameBytes = 31
)

// Cell represents a single board tile
type Cell struct {
	Type     CellType `json:"type"`
	Explored bool     `json:"explored,omitempty"`
	Defused  bool     `json:"defused,omitempty"`
	Clue     uint8    `json:"clue"`
}

// Danger reports whether the tile is a known hazard. Unexplored mines are
// never reported.
func (c Cell) Danger() bool {
	return c.Explored && c.Type == Mine
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GameConfig represents the world rules loaded from JSON
type GameConfig struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	GridSize       int    `json:"grid_size"`
	Mines          int    `json:"mines"`
	ShieldPickups  int    `json:"shield_pickups"`
	KitPickups     int    `json:"kit_pickups"`
	StartingKits   int    `json:"starting_kits"`
	StartingShield bool   `json:"starting_shield"`
	DefuseBonus    int    `json:"defuse_bonus"`
	Messages       struct {
		Welcome     string `json:"welcome"`
		Revealed    string `json:"revealed"`
		MineHit     string `json:"mine_hit"`
		ShieldUsed  string `json:"shield_used"`
		ShieldFound string `json:"shield_found"`
		KitFound    string `json:"kit_found"`
		Defused     string `json:"defused"`
		KitWasted   string `json:"kit_wasted"`
		LevelUp     string `json:"level_up"`
	} `json:"messages"`
}

// GameState represents the complete state of one account's game
type GameState struct {
	Name        string   `json:"name"`
	Alive       bool     `json:"alive"`
	Score       uint64   `json:"score"`
	Seed        [32]byte `json:"seed"`
	CommittedAt uint64   `json:"commited_block_timestamp"`
	PlayerPos   Position `json:"player_pos"`
	Level       int      `json:"level"`
	Grid        [][]Cell `json:"grid"`
	Shield      bool     `json:"shield"`
	Kits        int      `json:"kits"`
	Message     string   `json:"message"`
	ConfigName  string   `json:"config_name"`

	History      []HistoryEntry `json:"history"`
	TotalActions int            `json:"total_actions"`
}

// Size returns the board edge length.
func (gs *GameState) Size() int {
	return len(gs.Grid)
}

// HistoryEntry represents a single system execution against the game
type HistoryEntry struct {
	Action       string   `json:"action"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Success      bool     `json:"success"`
	Timestamp    int64    `json:"timestamp"`
	Number       int      `json:"number"`
}
