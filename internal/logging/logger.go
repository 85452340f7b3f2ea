// Package logging adapts zerolog to the doli.Logger interface.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// Logger implements doli.Logger on top of zerolog.
type Logger struct {
	log zerolog.Logger
}

// New returns a logger writing human readable lines to w.
// Debug messages are dropped unless debug is true.
func New(w io.Writer, debug bool) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}

	return &Logger{log: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// NewJSON returns a logger writing one JSON object per line to w.
func NewJSON(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{log: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Debug implements doli.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug().Fields(fields).Msg(msg)
}

// Info implements doli.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.log.Info().Fields(fields).Msg(msg)
}

// Warn implements doli.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn().Fields(fields).Msg(msg)
}

// Error implements doli.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.log.Error().Fields(fields).Msg(msg)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, map[string]interface{}) {}
func (Nop) Info(string, map[string]interface{})  {}
func (Nop) Warn(string, map[string]interface{})  {}
func (Nop) Error(string, map[string]interface{}) {}

var (
	_ doli.Logger = (*Logger)(nil)
	_ doli.Logger = Nop{}
)
