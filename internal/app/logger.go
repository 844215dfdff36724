package app

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Logger is the component-scoped logging shape used across the module.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// CharmLogger writes timestamped, levelled lines with the component as a key.
type CharmLogger struct{ l *log.Logger }

func NewLogger(w io.Writer, debug bool) CharmLogger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "matrixrain",
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return CharmLogger{l: l}
}

func (c CharmLogger) Infof(component string, format string, args ...interface{}) {
	c.l.Info(fmt.Sprintf(format, args...), "component", component)
}

func (c CharmLogger) Errorf(component string, format string, args ...interface{}) {
	c.l.Error(fmt.Sprintf(format, args...), "component", component)
}

// Debugf is only emitted at debug level.
func (c CharmLogger) Debugf(component string, format string, args ...interface{}) {
	c.l.Debug(fmt.Sprintf(format, args...), "component", component)
}
