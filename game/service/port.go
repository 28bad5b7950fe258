package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/exploretui/game/component"
)

// ErrRemoteCallFailed matches every transport or remote failure reported by
// a GamePort. The cause is opaque: callers must not rely on distinguishing
// reasons. Values that arrive but fail to decode are reported as
// *component.DecodeError instead.
var ErrRemoteCallFailed = errors.New("remote call failed")

// ReceiptID identifies an accepted system execution
type ReceiptID string

// GamePort is the capability surface the client needs from a remote world,
// bound to a single account. Every call may block on I/O and may fail.
type GamePort interface {
	GetGame(ctx context.Context) (component.GameState, error)
	GetTile(ctx context.Context, x, y uint16) (component.TileState, error)
	GetInventory(ctx context.Context) (component.InventoryState, error)

	SubmitMove(ctx context.Context, dir component.Direction) (ReceiptID, error)
	SubmitDefuse(ctx context.Context, dir component.Direction) (ReceiptID, error)
	SubmitReveal(ctx context.Context) (ReceiptID, error)
	SubmitNewGame(ctx context.Context) (ReceiptID, error)
}

// RemoteError wraps a failed port operation
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is reports every RemoteError as ErrRemoteCallFailed
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteCallFailed
}

// NewRemoteError returns err wrapped for op, or nil when err is nil
func NewRemoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) && re.Op == op {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}
