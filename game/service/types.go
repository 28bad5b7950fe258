package service

import (
	"time"

	"github.com/wricardo/mcp-training/exploretui/game/component"
)

// EntityRequest is the body of a component read
type EntityRequest struct {
	World     string           `json:"world"`
	Component component.Kind   `json:"component"`
	Keys      []component.Felt `json:"keys"`
}

// EntityResponse carries the raw component values
type EntityResponse struct {
	Values []component.Felt `json:"values"`
}

// SystemRequest is the body of a system execution
type SystemRequest struct {
	World    string           `json:"world"`
	Account  component.Felt   `json:"account"`
	Calldata []component.Felt `json:"calldata"`
}

// SystemResponse is returned for an accepted execution
type SystemResponse struct {
	TransactionHash component.Felt `json:"transaction_hash"`
}

// ExecuteResult contains the result of a system execution
type ExecuteResult struct {
	TransactionHash component.Felt `json:"transaction_hash"`
	Account         string         `json:"account"`
	System          string         `json:"system"`
	Message         string         `json:"message"`
	Alive           bool           `json:"alive"`
}

// ComponentInfo describes one component schema
type ComponentInfo struct {
	Name   component.Kind    `json:"name"`
	Arity  int               `json:"arity"`
	Fields []component.Field `json:"fields"`
	Keys   []string          `json:"keys"`
}

// AccountInfo provides information about an account in the dev world
type AccountInfo struct {
	Account        string    `json:"account"`
	ConfigName     string    `json:"config_name"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	Level          int       `json:"level"`
	Score          uint64    `json:"score"`
	Alive          bool      `json:"alive"`
}

// Notification is pushed to watchers of an account after a state change
type Notification struct {
	Account         string         `json:"account"`
	Event           string         `json:"event"`
	System          string         `json:"system,omitempty"`
	TransactionHash component.Felt `json:"transaction_hash"`
}

// EventStateChanged is the only notification event
const EventStateChanged = "state_changed"

// ConfigInfo provides information about a world configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	GridSize    int    `json:"grid_size"`
	Mines       int    `json:"mines"`
}
