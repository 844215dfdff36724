package buttons

import "context"

type Event string

const (
	Pause  Event = "pause"
	Clear  Event = "clear"
	Toggle Event = "toggle" // start when stopped, stop otherwise
	Exit   Event = "exit"
)

type Buttons interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

type NoopButtons struct{ ch chan Event }

func NewNoopButtons() *NoopButtons { return &NoopButtons{ch: make(chan Event)} }

func (n *NoopButtons) Start(ctx context.Context) error { return nil }
func (n *NoopButtons) Stop() error                     { return nil }
func (n *NoopButtons) Events() <-chan Event            { return n.ch }

// Linux input-event-codes.h
const (
	keyQ  = 16
	keyP  = 25
	keyS  = 31
	keyC  = 46
	keyF4 = 62
)

// eventForKey maps a pressed key code to a host action.
func eventForKey(code uint16) (Event, bool) {
	switch code {
	case keyP:
		return Pause, true
	case keyC:
		return Clear, true
	case keyS:
		return Toggle, true
	case keyQ, keyF4:
		return Exit, true
	}
	return "", false
}
