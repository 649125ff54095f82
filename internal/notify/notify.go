// Package notify publishes the outcome of compilation rounds to listeners
// outside the process. The watch command uses it to keep dashboards and
// editors informed.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event describes one compilation round.
type Event struct {
	ID    string    `json:"id"`
	Paths []string  `json:"paths"`
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

// NewEvent records the outcome of compiling paths.
func NewEvent(paths []string, err error) Event {
	e := Event{ID: uuid.NewString(), Paths: paths, OK: err == nil, At: time.Now().UTC()}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// Notifier delivers events.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
func (Nop) Close() error                        { return nil }
