package session

import (
	"time"

	"github.com/wricardo/mcp-training/exploretui/game/engine"
	"github.com/wricardo/mcp-training/exploretui/game/service"
)

// SessionPersistence stores dev world sessions between restarts
type SessionPersistence interface {
	Save(session *service.Session) error
	Load(id string) (*service.Session, error)
	Delete(id string) error
	ListAll() ([]string, error)
	Exists(id string) bool
}

// PersistedSessionData is the on-disk form of a session. GameState is nil
// for an account that was created but never started a game.
type PersistedSessionData struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}
