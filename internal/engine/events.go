package engine

import "time"

// Event is a structured progress/log record emitted on a session's event
// channel. Purely informational: consumers may lag or ignore it without
// affecting the session.
type Event struct {
	Time      time.Time `json:"time"`
	Level     string    `json:"level"` // debug, info, warn, error
	Message   string    `json:"message"`
	SessionID string    `json:"session_id"`
}

const eventBuffer = 64

// emit publishes an event without ever blocking the driver loop. Events are
// dropped when the consumer falls behind.
func (s *Session) emit(level, message string) {
	ev := Event{
		Time:      time.Now(),
		Level:     level,
		Message:   message,
		SessionID: s.id,
	}
	select {
	case s.events <- ev:
	default:
	}
}
