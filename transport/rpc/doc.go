// Package rpc is the production GamePort. It reads components and executes
// systems through the world gateway's JSON API:
//
//	POST /api/entities        {"world", "component", "keys"} -> {"values"}
//	POST /api/systems/{name}  {"world", "account", "calldata"} -> {"transaction_hash"}
//	GET  /api/health
//
// Felts travel as 0x-prefixed hex strings. Every request carries a fresh
// X-Request-ID and the X-Account header, plus a bearer token when an API key
// is configured.
package rpc
