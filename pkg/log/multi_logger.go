package log

// MultiLogger sends events to multiple loggers. Useful when both console
// output (SlogAdapter) and file capture (FileLogger) are wanted.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger fanning out to all given loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log sends the event to all configured loggers.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
