// Package mcp exposes an Explore game to AI agents over the Model Context
// Protocol.
//
// Every tool runs through a session.Controller, so agents see the same
// error policy as the terminal client: a rejected move reports the fixed
// move failure message, a rejected reveal reports the remote error verbatim
// and a sync failure keeps the previous snapshot.
//
// MCP Tools:
//   - game_state: sync and show the board, score panel and status
//   - move: move one tile, or defuse while in defuse mode
//   - defuse: defuse a neighbouring tile regardless of mode
//   - reveal: reveal the tile under the player
//   - new_game: start a new game
//   - toggle_mode: switch between move and defuse mode
//
// Every tool takes an optional account. Controllers are created per account
// by the ControllerFactory on first use.
//
// Transport Modes:
//
//	// Stdio, against a remote gateway
//	client := mcp.NewClient(account, func(a component.Felt) (*session.Controller, error) {
//		return session.NewController(rpcClient), nil
//	})
//	client.ServeStdio()
//
//	// HTTP, mounted on the dev world server
//	router.Handle("/mcp", client)
package mcp
