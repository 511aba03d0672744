package logbridge

import (
	"sync"

	"github.com/charmbracelet/log"
)

var (
	installOnce sync.Once
	installed   *Bridge
)

// Install builds a [Bridge] for sink and makes its logger the process-wide default.
//
// Only the first call has any effect; later calls return the already installed bridge.
func Install(sink Sink, opts ...Option) *Bridge {
	installOnce.Do(func() {
		installed = New(sink, opts...)
		log.SetDefault(installed.Logger())
	})
	return installed
}

// Installed returns the installed bridge, or nil before [Install].
func Installed() *Bridge {
	return installed
}

// Named returns the process-wide logger with name as its prefix.
func Named(name string) *log.Logger {
	return log.Default().WithPrefix(name)
}

// ConsoleSink renders forwarded records on l, keeping the source line as a field.
func ConsoleSink(l *log.Logger) Sink {
	return func(level log.Level, name string, line int, message string) error {
		target := l
		if name != "" {
			target = l.WithPrefix(name)
		}
		target.Log(level, message, "line", line)
		return nil
	}
}

// Multi fans a record out to every sink, returning the first error.
func Multi(sinks ...Sink) Sink {
	return func(level log.Level, name string, line int, message string) error {
		var first error
		for _, s := range sinks {
			if err := s(level, name, line, message); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
}
