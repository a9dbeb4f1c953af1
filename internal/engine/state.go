package engine

// State is the lifecycle state of a resolution session.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateRunning
	StateWaitingUser
	StatePaused
	StateCompleted
	StateCancelled
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateRunning:
		return "running"
	case StateWaitingUser:
		return "waiting_user"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the state ends the session.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateError:
		return true
	default:
		return false
	}
}

// allowedTransition encodes the session state machine. Cancellation is legal
// from any non-terminal state and is handled before this check.
func allowedTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateScanning
	case StateScanning:
		return to == StateRunning || to == StateCompleted || to == StateError
	case StateRunning:
		return to == StateRunning || to == StateWaitingUser || to == StatePaused ||
			to == StateCompleted || to == StateError
	case StateWaitingUser:
		return to == StateRunning || to == StatePaused || to == StateError
	case StatePaused:
		return to == StateRunning || to == StateError
	default:
		return false
	}
}
