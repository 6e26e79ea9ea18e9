package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
)

// Field is re-exported so callers don't need a second import for the common
// case of passing fields to a logger they received.
type Field = interfaces.Field

// Level is the minimum severity a JSONLogger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level. Unknown strings fall back to
// Info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// JSONLogger prints JSON lines to a writer. It implements interfaces.Logger
// and is the default logger for the CLI and both servers.
type JSONLogger struct {
	mu        sync.Mutex
	out       io.Writer
	min       Level
	component string
	fields    []interfaces.Field
}

// NewLogger creates a JSONLogger writing to stdout at Info level. component
// is carried on every line and on children created via With.
func NewLogger(component string) *JSONLogger {
	return &JSONLogger{out: os.Stdout, min: LevelInfo, component: component}
}

// NewLoggerTo creates a JSONLogger with an explicit writer and level.
// Tests use this to capture output.
func NewLoggerTo(out io.Writer, min Level, component string) *JSONLogger {
	return &JSONLogger{out: out, min: min, component: component}
}

func (l *JSONLogger) log(level Level, name, msg string, fields []interfaces.Field) {
	if level < l.min {
		return
	}
	m := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	entry := struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}{
		Level:     name,
		Msg:       msg,
		Component: l.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}
	enc, err := json.Marshal(entry)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		fmt.Fprintf(l.out, "%s %s %v\n", name, msg, m)
		return
	}
	fmt.Fprintln(l.out, string(enc))
}

func (l *JSONLogger) Debug(msg string, fields ...interfaces.Field) {
	l.log(LevelDebug, "debug", msg, fields)
}

func (l *JSONLogger) Info(msg string, fields ...interfaces.Field) {
	l.log(LevelInfo, "info", msg, fields)
}

func (l *JSONLogger) Warn(msg string, fields ...interfaces.Field) {
	l.log(LevelWarn, "warn", msg, fields)
}

func (l *JSONLogger) Error(msg string, fields ...interfaces.Field) {
	l.log(LevelError, "error", msg, fields)
}

// With returns a child logger whose persistent fields are appended to every
// line. A "component" field overrides the component name instead.
func (l *JSONLogger) With(fields ...interfaces.Field) interfaces.Logger {
	child := &JSONLogger{
		out:       l.out,
		min:       l.min,
		component: l.component,
		fields:    append([]interfaces.Field(nil), l.fields...),
	}
	for _, f := range fields {
		if f.Key == "component" {
			if s, ok := f.Value.(string); ok {
				child.component = s
				continue
			}
		}
		child.fields = append(child.fields, f)
	}
	return child
}
