// Package api serves the dev world over the gateway protocol the client
// speaks.
//
// Endpoints:
//   - POST /api/entities - read one component entity as raw felts
//   - POST /api/systems/{name} - execute Create, Move, Defuse or Reveal
//   - GET /api/components - component schemas
//   - GET /api/accounts - accounts with a game
//   - GET /api/configs - available world configurations
//   - GET /api/health - {"status":"healthy"}
//   - GET /ws?account=0x.. - state change notifications
//   - GET /metrics - Prometheus exposition
//   - POST /mcp - MCP JSON-RPC, when mounted with WithMCP
//
// Request/Response Format:
//
// Felts travel as 0x-prefixed hex strings.
//
//	POST /api/entities
//	{"world":"0x..","component":"Tile","keys":["0xabc","0x1","0x0"]}
//	=> {"values":["0x1","0x0","0x2","0x1","0x0"]}
//
//	POST /api/systems/Move
//	{"world":"0x..","account":"0xabc","calldata":["0x4"]}
//	=> {"transaction_hash":"0x.."}
//
// A never-written entity reads as zeros of the component's arity.
//
// Error Handling:
//
// Errors are returned as {"error": "message"}: 400 for malformed calldata or
// keys, 401 for a missing api key, 404 for an unknown system or world and
// 422 when the world rejects an execution.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	server := api.NewServer(world, hub, api.WithAPIKey(key))
//	http.ListenAndServe(":8080", server)
package api
