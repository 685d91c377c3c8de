package event

import (
	"context"

	"github.com/rs/zerolog"
)

// Logger writes events through a zerolog logger. Tolerated failures are
// logged at warn level so they stay visible without failing operations.
type Logger struct {
	log zerolog.Logger
}

// NewLogger returns a Sink backed by the provided logger.
func NewLogger(log zerolog.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Emit(_ context.Context, name string, fields map[string]any) {
	level := zerolog.InfoLevel
	if _, failed := fields["error"]; failed {
		level = zerolog.WarnLevel
	}
	l.log.WithLevel(level).Fields(fields).Msg(name)
}
