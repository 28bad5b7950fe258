package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/exploretui/game/component"
	"github.com/wricardo/mcp-training/exploretui/game/engine"
)

// WorldService defines the operations of the local dev world
type WorldService interface {
	// Component reads
	Entity(ctx context.Context, kind component.Kind, keys []component.Felt) ([]component.Felt, error)
	ListComponents(ctx context.Context) ([]*ComponentInfo, error)

	// System execution
	Execute(ctx context.Context, account component.Felt, system string, calldata []component.Felt) (*ExecuteResult, error)

	// Accounts
	ListAccounts(ctx context.Context) ([]*AccountInfo, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
}

// SessionManager defines account storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles world configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session is one account's game in the dev world
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
