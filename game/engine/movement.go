package engine

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/exploretui/game/component"
)

// OnBoard checks whether (x, y) lies on the board
func (gs *GameState) OnBoard(x, y int) bool {
	size := gs.Size()
	return x >= 0 && y >= 0 && x < size && y < size
}

// CurrentCell returns the tile under the player
func (gs *GameState) CurrentCell() *Cell {
	return &gs.Grid[gs.PlayerPos.Y][gs.PlayerPos.X]
}

// target returns the position one step from the player in dir
func (gs *GameState) target(dir component.Direction) Position {
	dx, dy := dir.Delta()
	return Position{X: gs.PlayerPos.X + dx, Y: gs.PlayerPos.Y + dy}
}

// checkStep validates the preconditions shared by Move and Defuse
func (gs *GameState) checkStep(dir component.Direction) (Position, error) {
	if !gs.Alive {
		return Position{}, ErrGameOver
	}
	if !dir.Valid() {
		return Position{}, fmt.Errorf("%w: %d", ErrInvalidDirection, uint8(dir))
	}
	if !gs.CurrentCell().Explored {
		return Position{}, ErrNotRevealed
	}
	to := gs.target(dir)
	if !gs.OnBoard(to.X, to.Y) {
		return Position{}, ErrOffBoard
	}
	return to, nil
}

// RevealTile explores the tile under the player
func (gs *GameState) RevealTile(config *GameConfig) error {
	if !gs.Alive {
		return ErrGameOver
	}
	cell := gs.CurrentCell()
	if cell.Explored {
		return ErrAlreadyExplored
	}
	cell.Explored = true

	switch cell.Type {
	case Mine:
		if gs.Shield {
			gs.Shield = false
			gs.Message = config.Messages.ShieldUsed
		} else {
			gs.Alive = false
			gs.Message = config.Messages.MineHit
		}
		return nil

	case ShieldPickup:
		gs.Shield = true
		cell.Type = Empty
		gs.Message = config.Messages.ShieldFound

	case KitPickup:
		if gs.Kits < MaxKits {
			gs.Kits++
		}
		cell.Type = Empty
		gs.Message = config.Messages.KitFound

	default:
		gs.Message = fmt.Sprintf(config.Messages.Revealed, gs.Score+1)
	}

	gs.Score++
	gs.checkLevelComplete(config)
	return nil
}

// MovePlayer steps one tile in dir. An Unsafe action also reveals the
// destination tile.
func (gs *GameState) MovePlayer(dir component.Direction, action component.Action, config *GameConfig) error {
	to, err := gs.checkStep(dir)
	if err != nil {
		return err
	}

	gs.PlayerPos = to
	if action == component.Unsafe && !gs.CurrentCell().Explored {
		return gs.RevealTile(config)
	}
	if gs.CurrentCell().Explored {
		gs.Message = fmt.Sprintf("Moved %s", dir)
	} else {
		gs.Message = fmt.Sprintf("Moved %s onto an unexplored tile", dir)
	}
	return nil
}

// DefuseToward spends a kit on the tile one step away in dir
func (gs *GameState) DefuseToward(dir component.Direction, config *GameConfig) error {
	to, err := gs.checkStep(dir)
	if err != nil {
		return err
	}
	if gs.Kits <= 0 {
		return ErrNoKits
	}
	gs.Kits--

	cell := &gs.Grid[to.Y][to.X]
	if cell.Type != Mine || cell.Explored {
		gs.Message = config.Messages.KitWasted
		return nil
	}

	cell.Explored = true
	cell.Defused = true
	gs.Score += uint64(config.DefuseBonus)
	if config.Messages.Defused != "" {
		gs.Message = fmt.Sprintf(config.Messages.Defused, gs.Kits)
	}
	gs.checkLevelComplete(config)
	return nil
}

// checkLevelComplete starts the next, larger level once every safe tile is explored
func (gs *GameState) checkLevelComplete(config *GameConfig) {
	if !gs.Alive || SafeTilesRemaining(gs.Grid) > 0 {
		return
	}
	if gs.Level >= MaxLevel {
		return
	}
	gs.Level++
	gs.Score += uint64(gs.Size())
	gs.Grid = generateGrid(config, gs.Seed, gs.Level)
	gs.PlayerPos = Position{X: 0, Y: 0}
	gs.Message = fmt.Sprintf(config.Messages.LevelUp, gs.Level)
}

// AddToHistory records a system execution
func (gs *GameState) AddToHistory(action string, fromPos, toPos Position, success bool) {
	gs.TotalActions++
	gs.History = append(gs.History, HistoryEntry{
		Action:       action,
		FromPosition: fromPos,
		ToPosition:   toPos,
		Success:      success,
		Timestamp:    time.Now().Unix(),
		Number:       gs.TotalActions,
	})
}
