package session

import (
	"context"
	"errors"
	"fmt"
)

// Action names a session control sent by a client.
type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionReset  Action = "reset"
)

// ErrUnknownAction is returned by ParseAction for names it does not know.
var ErrUnknownAction = errors.New("unknown session action")

// ParseAction validates a client-supplied action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionStart, ActionPause, ActionResume, ActionReset:
		return a, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownAction, s)
	}
}

// Control applies action to the plan's session and returns the new state.
// Only start touches the store; invalid transitions are no-ops.
func (m *Manager) Control(ctx context.Context, planID string, action Action) (Snapshot, error) {
	switch action {
	case ActionStart:
		return m.Start(ctx, planID)
	case ActionPause:
		return m.Pause(planID), nil
	case ActionResume:
		return m.Resume(planID), nil
	case ActionReset:
		return m.Reset(planID), nil
	default:
		return Snapshot{}, fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
}
