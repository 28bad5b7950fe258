package terminal

import (
	"context"
	"fmt"
	"log"

	"github.com/wricardo/mcp-training/exploretui/game/service"
	"github.com/wricardo/mcp-training/exploretui/game/session"
)

// WatchClosedMessage is shown when the remote change feed ends
const WatchClosedMessage = "Lost connection to the change feed; the board updates on your next action"

// Run drives ctrl from the surface's input until the user quits. Every
// notification on remote triggers a sync; remote may be nil. Input and
// notifications are handled one at a time, each to completion.
//
// The surface is closed on every return path, panics included. A failed
// new game request ends the session with an error.
func Run(ctx context.Context, s Surface, ctrl *session.Controller, remote <-chan service.Notification) error {
	defer s.Close()

	// The poller may stay blocked in PollEvent after Run returns
	events := make(chan Event)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(s, events, done)

	ctrl.Sync(ctx)
	if err := Draw(s, ctrl.View()); err != nil {
		return fmt.Errorf("draw: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if ev.Type == EventError {
				return fmt.Errorf("terminal input: %w", ev.Err)
			}
			quit, err := apply(ctx, ctrl, TranslateKey(ev))
			if err != nil {
				return err
			}
			if quit {
				return nil
			}

		case n, ok := <-remote:
			if !ok {
				remote = nil
				ctrl.SetStatus(WatchClosedMessage)
				break
			}
			log.Printf("[WATCH] event=%s system=%s tx=%s", n.Event, n.System, n.TransactionHash)
			ctrl.Sync(ctx)
		}

		if err := Draw(s, ctrl.View()); err != nil {
			return fmt.Errorf("draw: %w", err)
		}
	}
}

// apply runs one command. It reports whether the loop should stop.
func apply(ctx context.Context, ctrl *session.Controller, cmd Command) (bool, error) {
	switch cmd.Action {
	case ActionQuit:
		return true, nil
	case ActionNewGame:
		if err := ctrl.HandleNewGame(ctx); err != nil {
			return true, err
		}
	case ActionReveal:
		ctrl.HandleReveal(ctx)
	case ActionToggleMode:
		ctrl.ToggleMode()
	case ActionMove:
		ctrl.HandleMove(ctx, cmd.Direction)
	}
	return false, nil
}

func pollEvents(s Surface, events chan<- Event, done <-chan struct{}) {
	for {
		ev := s.PollEvent()
		select {
		case events <- ev:
		case <-done:
			return
		}
		if ev.Type == EventError {
			return
		}
	}
}
