package service

import (
	"context"
	"fmt"

	"github.com/wricardo/mcp-training/exploretui/game/component"
)

// WorldPort is a GamePort bound to one account of an in-process
// WorldService. It goes through the same felt encoding as the gateway.
type WorldPort struct {
	world    WorldService
	account  component.Felt
	name     component.Felt
	action   *component.Action
	executed func(*ExecuteResult)
}

// NewWorldPort binds account to world. name is the game name sent by
// SubmitNewGame.
func NewWorldPort(world WorldService, account component.Felt, name string) (*WorldPort, error) {
	nameFelt, err := component.ShortString(name)
	if err != nil {
		return nil, fmt.Errorf("game name: %w", err)
	}
	return &WorldPort{world: world, account: account, name: nameFelt}, nil
}

// WithMoveAction makes SubmitMove append the action code
func (p *WorldPort) WithMoveAction(a component.Action) *WorldPort {
	p.action = &a
	return p
}

// OnExecute registers fn to run after every accepted system execution
func (p *WorldPort) OnExecute(fn func(*ExecuteResult)) *WorldPort {
	p.executed = fn
	return p
}

func (p *WorldPort) entity(ctx context.Context, kind component.Kind, keys ...component.Felt) ([]component.Felt, error) {
	return p.world.Entity(ctx, kind, append([]component.Felt{p.account}, keys...))
}

func (p *WorldPort) execute(ctx context.Context, op, system string, calldata ...component.Felt) (ReceiptID, error) {
	result, err := p.world.Execute(ctx, p.account, system, calldata)
	if err != nil {
		return "", NewRemoteError(op, err)
	}
	if p.executed != nil {
		p.executed(result)
	}
	return ReceiptID(result.TransactionHash.Hex()), nil
}

func (p *WorldPort) GetGame(ctx context.Context) (component.GameState, error) {
	values, err := p.entity(ctx, component.KindGame)
	if err != nil {
		return component.GameState{}, NewRemoteError("get_game", err)
	}
	game, err := component.DecodeGame(values)
	if err != nil {
		return component.GameState{}, fmt.Errorf("get_game: %w", err)
	}
	return game, nil
}

func (p *WorldPort) GetTile(ctx context.Context, x, y uint16) (component.TileState, error) {
	values, err := p.entity(ctx, component.KindTile, component.FeltFromUint64(uint64(x)), component.FeltFromUint64(uint64(y)))
	if err != nil {
		return component.TileState{}, NewRemoteError("get_tile", err)
	}
	tile, err := component.DecodeTile(values)
	if err != nil {
		return component.TileState{}, fmt.Errorf("get_tile (%d,%d): %w", x, y, err)
	}
	if tile == (component.TileState{}) {
		tile.X, tile.Y = x, y
	}
	return tile, nil
}

func (p *WorldPort) GetInventory(ctx context.Context) (component.InventoryState, error) {
	values, err := p.entity(ctx, component.KindInventory)
	if err != nil {
		return component.InventoryState{}, NewRemoteError("get_inventory", err)
	}
	inv, err := component.DecodeInventory(values)
	if err != nil {
		return component.InventoryState{}, fmt.Errorf("get_inventory: %w", err)
	}
	return inv, nil
}

func (p *WorldPort) SubmitMove(ctx context.Context, dir component.Direction) (ReceiptID, error) {
	calldata := []component.Felt{dir.Felt()}
	if p.action != nil {
		calldata = append(calldata, p.action.Felt())
	}
	return p.execute(ctx, "submit_move", SystemMove, calldata...)
}

func (p *WorldPort) SubmitDefuse(ctx context.Context, dir component.Direction) (ReceiptID, error) {
	return p.execute(ctx, "submit_defuse", SystemDefuse, dir.Felt())
}

func (p *WorldPort) SubmitReveal(ctx context.Context) (ReceiptID, error) {
	return p.execute(ctx, "submit_reveal", SystemReveal)
}

func (p *WorldPort) SubmitNewGame(ctx context.Context) (ReceiptID, error) {
	return p.execute(ctx, "submit_new_game", SystemCreate, p.name)
}

var _ GamePort = (*WorldPort)(nil)
