// Package notify publishes "rendered" events so a live preview can pick up
// new images as soon as a directive has been rendered.
package notify

import (
	"context"
	"time"
)

// Event describes one finished render.
type Event struct {
	Script string
	Line   int
	Text   string
	Name   string
	PNG    string
	At     time.Time
}

// Payload is the wire form of the event.
func (e Event) Payload() map[string]any {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	return map[string]any{
		"script": e.Script,
		"line":   e.Line,
		"text":   e.Text,
		"name":   e.Name,
		"png":    e.PNG,
		"at":     at.UTC().Format(time.RFC3339Nano),
	}
}

// Notifier receives render events.
type Notifier interface {
	Rendered(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Rendered(context.Context, Event) error { return nil }
func (Nop) Close() error                          { return nil }
