package interfaces

// Logger is a deliberately small, framework-agnostic logging interface.
// Implementations live outside the packages that consume it so any logger
// can be swapped in.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning.
	Warn(msg string, fields ...Field)

	// Error logs an error.
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for constructing a Field at call sites.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
