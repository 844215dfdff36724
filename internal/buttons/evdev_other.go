//go:build !linux

package buttons

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Keyboard has no input source off Linux.
type Keyboard struct{ NoopButtons }

func NewKeyboard(l logger) *Keyboard {
	return &Keyboard{NoopButtons: *NewNoopButtons()}
}
