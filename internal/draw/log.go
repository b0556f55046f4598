package draw

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type EventKind string

const (
	EventDrawStarted     EventKind = "draw_started"
	EventRosterLoaded    EventKind = "roster_loaded"
	EventRoundStarted    EventKind = "round_started"
	EventPairingMade     EventKind = "pairing_made"
	EventPairingRejected EventKind = "pairing_rejected"
	EventBacktrack       EventKind = "backtrack"
	EventRoundCompleted  EventKind = "round_completed"
	EventDrawCompleted   EventKind = "draw_completed"
	EventDrawFailed      EventKind = "draw_failed"
	EventWarning         EventKind = "warning"
)

// Event is one structural decision taken during a draw.
type Event struct {
	At      time.Time `json:"at"`
	Kind    EventKind `json:"kind"`
	Round   int       `json:"round,omitempty"`
	Message string    `json:"message"`
}

func (e Event) String() string {
	return fmt.Sprintf("[%s] %s", e.At.UTC().Format(time.RFC3339Nano), e.Message)
}

// eventLog is the append-only diagnostic log of a single draw run.
type eventLog struct {
	now    func() time.Time
	events []Event
	mirror *zerolog.Logger
}

func newEventLog(now func() time.Time, mirror *zerolog.Logger) *eventLog {
	return &eventLog{now: now, mirror: mirror}
}

func (l *eventLog) add(kind EventKind, round int, format string, args ...any) {
	event := Event{
		At:      l.now(),
		Kind:    kind,
		Round:   round,
		Message: fmt.Sprintf(format, args...),
	}
	l.events = append(l.events, event)
	if l.mirror != nil {
		l.mirror.Debug().
			Str("event", string(kind)).
			Int("round", round).
			Msg(event.Message)
	}
}

func (l *eventLog) snapshot() ([]string, []Event) {
	lines := make([]string, len(l.events))
	for i, event := range l.events {
		lines[i] = event.String()
	}
	events := make([]Event, len(l.events))
	copy(events, l.events)
	return lines, events
}
