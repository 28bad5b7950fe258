// Package engine provides the rules of the local dev world used to run the
// Explore client without a chain.
//
// The engine package implements:
//   - Deterministic mine placement from the game seed
//   - The Create, Move, Defuse and Reveal systems
//   - Shield and defuse kit pickups
//   - Level progression, each level one tile wider than the last
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the contract for one account's game,
// implemented by GameEngine. GameState holds the full board including the
// hidden mine layout, while Game, Tile and Inventory return the component
// records a client is allowed to see.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/default.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	eng.NewGame("Pragma Hackathon", seed)
//	if err := eng.Reveal(); err != nil {
//		log.Printf("reveal rejected: %v", err)
//	}
//	err = eng.Move(component.Right, component.Safe)
//
// Game Rules:
//
// The player starts on the top-left tile, which is never a mine. A tile must
// be revealed before the player may leave it. Revealing a mine ends the game
// unless a shield is held, in which case the shield is consumed. A defuse kit
// spent towards an adjacent mine neutralises it. Once every safe tile is
// explored the next level starts on a larger board.
package engine
