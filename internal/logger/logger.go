// Package logger provides the leveled logging backend of the cryptid command.
package logger

import (
	"fmt"
	"io"

	"gopkg.in/op/go-logging.v1"
)

const fmtString = `%{color}%{time:15:04:05.000} %{module}/%{shortfunc} ▶ %{level:.4s}%{color:reset} %{message}`

// Logger owns the backend shared by every per-module logger.
type Logger struct {
	backend logging.LeveledBackend
}

// New builds a Logger writing to w at the given level ("DEBUG", "INFO", ...).
// A nil w discards all output.
func New(w io.Writer, level string) (*Logger, error) {
	lvl, err := logging.LogLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger: %q: %w", level, err)
	}
	if w == nil {
		w = io.Discard
	}

	base := logging.NewLogBackend(w, "", 0)
	formatted := logging.NewBackendFormatter(base, logging.MustStringFormatter(fmtString))
	backend := logging.AddModuleLevel(formatted)
	backend.SetLevel(lvl, "")

	return &Logger{backend: backend}, nil
}

// GetLogger returns a per-module logger that writes to the backend.
func (l *Logger) GetLogger(module string) *logging.Logger {
	log := logging.MustGetLogger(module)
	log.SetBackend(l.backend)
	return log
}
