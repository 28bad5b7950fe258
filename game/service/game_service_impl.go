package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/exploretui/game/component"
	"github.com/wricardo/mcp-training/exploretui/game/engine"
)

var (
	ErrUnknownSystem  = errors.New("unknown system")
	ErrInvalidKeys    = errors.New("invalid entity keys")
	ErrInvalidCall    = errors.New("invalid calldata")
	ErrSystemRejected = errors.New("system execution rejected")
)

// System names understood by the dev world
const (
	SystemCreate = "Create"
	SystemMove   = "Move"
	SystemDefuse = "Defuse"
	SystemReveal = "Reveal"
)

// worldServiceImpl implements the WorldService interface
type worldServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewWorldService creates a new dev world instance
func NewWorldService(sessions SessionManager, configs ConfigManager) WorldService {
	return &worldServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// AccountID normalises an account felt into the session key
func AccountID(account component.Felt) string {
	return strings.ToLower(account.Hex())
}

// entityKeys returns the key names of kind
func entityKeys(kind component.Kind) []string {
	if kind == component.KindTile {
		return []string{"player", "x", "y"}
	}
	return []string{"player"}
}

// Entity returns the raw values of one component entity. Entities that were
// never written read as all zeros.
func (s *worldServiceImpl) Entity(ctx context.Context, kind component.Kind, keys []component.Felt) ([]component.Felt, error) {
	arity := component.Arity(kind)
	if arity == 0 {
		return nil, fmt.Errorf("%w: %q", component.ErrUnknownKind, kind)
	}
	if want := len(entityKeys(kind)); len(keys) != want {
		return nil, fmt.Errorf("%w: %s takes %d keys, got %d", ErrInvalidKeys, kind, want, len(keys))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	zero := make([]component.Felt, arity)
	session, err := s.sessions.Get(AccountID(keys[0]))
	if err != nil || session.Engine.GetState() == nil {
		return zero, nil
	}
	eng := session.Engine

	var rec component.Record
	switch kind {
	case component.KindGame:
		rec = eng.Game()
	case component.KindInventory:
		rec = eng.Inventory()
	case component.KindTile:
		if keys[1].BitLen() > 16 || keys[2].BitLen() > 16 {
			return zero, nil
		}
		x, y := int(keys[1].Uint64()), int(keys[2].Uint64())
		if !eng.GetState().OnBoard(x, y) {
			return zero, nil
		}
		rec = eng.Tile(x, y)
	}
	return component.Encode(rec)
}

// ListComponents returns the schema of every component
func (s *worldServiceImpl) ListComponents(ctx context.Context) ([]*ComponentInfo, error) {
	kinds := component.Kinds()
	result := make([]*ComponentInfo, 0, len(kinds))
	for _, kind := range kinds {
		fields, _ := component.Schema(kind)
		result = append(result, &ComponentInfo{
			Name:   kind,
			Arity:  len(fields),
			Fields: fields,
			Keys:   entityKeys(kind),
		})
	}
	return result, nil
}

// Execute runs a system for account
func (s *worldServiceImpl) Execute(ctx context.Context, account component.Felt, system string, calldata []component.Felt) (*ExecuteResult, error) {
	if account.IsZero() {
		return nil, fmt.Errorf("%w: account is required", ErrInvalidCall)
	}
	id := AccountID(account)

	s.mu.Lock()
	defer s.mu.Unlock()

	var session *Session
	var err error
	if system == SystemCreate {
		session, err = s.sessions.GetOrCreate(id, s.configs.GetDefault())
		if err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
	} else {
		session, err = s.sessions.Get(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: no game for account %s", ErrSystemRejected, system, id)
		}
	}

	if err := s.run(session.Engine, id, system, calldata); err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(id)
	if err := s.sessions.Save(id); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	state := session.Engine.GetState()
	return &ExecuteResult{
		TransactionHash: transactionHash(),
		Account:         id,
		System:          system,
		Message:         state.Message,
		Alive:           state.Alive,
	}, nil
}

// run decodes calldata and dispatches to the engine
func (s *worldServiceImpl) run(eng *engine.GameEngine, id, system string, calldata []component.Felt) error {
	arity := func(n ...int) error {
		for _, want := range n {
			if len(calldata) == want {
				return nil
			}
		}
		return fmt.Errorf("%w: %s takes %v arguments, got %d", ErrInvalidCall, system, n, len(calldata))
	}

	switch system {
	case SystemCreate:
		if err := arity(1); err != nil {
			return err
		}
		name, err := calldata[0].ShortStringValue()
		if err != nil {
			return fmt.Errorf("%w: name: %v", ErrInvalidCall, err)
		}
		eng.NewGame(name, newSeed(id))
		return nil

	case SystemMove:
		if err := arity(1, 2); err != nil {
			return err
		}
		dir, err := component.DirectionFromCode(calldata[0].Uint64())
		if err != nil || calldata[0].BitLen() > 8 {
			return fmt.Errorf("%w: direction %s", ErrInvalidCall, calldata[0])
		}
		action := component.Safe
		if len(calldata) == 2 {
			action, err = component.ActionFromCode(calldata[1].Uint64())
			if err != nil || calldata[1].BitLen() > 8 {
				return fmt.Errorf("%w: action %s", ErrInvalidCall, calldata[1])
			}
		}
		return rejected(system, eng.Move(dir, action))

	case SystemDefuse:
		if err := arity(1); err != nil {
			return err
		}
		dir, err := component.DirectionFromCode(calldata[0].Uint64())
		if err != nil || calldata[0].BitLen() > 8 {
			return fmt.Errorf("%w: direction %s", ErrInvalidCall, calldata[0])
		}
		return rejected(system, eng.Defuse(dir))

	case SystemReveal:
		if err := arity(0); err != nil {
			return err
		}
		return rejected(system, eng.Reveal())

	default:
		return fmt.Errorf("%w: %q", ErrUnknownSystem, system)
	}
}

func rejected(system string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrSystemRejected, system, err)
}

// ListAccounts returns every account with a game, sorted by account
func (s *worldServiceImpl) ListAccounts(ctx context.Context) ([]*AccountInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*AccountInfo, 0, len(sessions))
	for _, sess := range sessions {
		info := &AccountInfo{
			Account:        sess.ID,
			ConfigName:     sess.Config.Name,
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
		}
		if state := sess.Engine.GetState(); state != nil {
			info.Level = state.Level
			info.Score = state.Score
			info.Alive = state.Alive
		}
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Account < result[j].Account })
	return result, nil
}

// ListConfigs returns available world configurations
func (s *worldServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// newSeed derives a fresh game seed for account
func newSeed(account string) [32]byte {
	id := uuid.New()
	return sha256.Sum256(append([]byte(account), id[:]...))
}

// transactionHash returns a unique felt identifying one execution
func transactionHash() component.Felt {
	id := uuid.New()
	return component.FeltFromBytes(id[:])
}
