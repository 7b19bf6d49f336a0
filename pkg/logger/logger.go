package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New builds the application logger. Unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "f1sim",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}

// NewFile logs to path, appending, in addition to w.
func NewFile(w io.Writer, path, level string) (*log.Logger, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return New(io.MultiWriter(w, f), level), f, nil
}

func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OrDiscard returns l, or a logger that drops everything when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
