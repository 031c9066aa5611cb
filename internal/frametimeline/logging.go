package frametimeline

import (
	"io"
	"log"
	"sync"
)

// LogLevel identifies one of the three independent logging streams.
type LogLevel int

const (
	// LogOps routes protocol violations and lifecycle transitions.
	LogOps LogLevel = iota
	// LogDiag routes per-frame classification summaries.
	LogDiag
	// LogTrace routes every ingest call at high frequency.
	LogTrace
)

// LogWriters holds the io.Writers for each logging stream. A nil field
// disables that stream.
type LogWriters struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

var (
	logMu       sync.RWMutex
	opsLogger   *log.Logger
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters configures all three logging streams at once. Pass a
// zero-value LogWriters to disable all of them.
func SetLogWriters(w LogWriters) {
	logMu.Lock()
	defer logMu.Unlock()
	opsLogger = newLogger("[frametimeline] ", w.Ops)
	diagLogger = newLogger("[frametimeline] ", w.Diag)
	traceLogger = newLogger("[frametimeline] ", w.Trace)
}

// SetLogWriter configures a single logging stream, leaving the others
// untouched. Pass nil to disable the stream.
func SetLogWriter(level LogLevel, w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	switch level {
	case LogOps:
		opsLogger = newLogger("[frametimeline] ", w)
	case LogDiag:
		diagLogger = newLogger("[frametimeline] ", w)
	case LogTrace:
		traceLogger = newLogger("[frametimeline] ", w)
	}
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// opsf logs a protocol violation or lifecycle event. Never allocates
// when the ops stream is disabled.
func opsf(format string, args ...interface{}) {
	logMu.RLock()
	l := opsLogger
	logMu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// diagf logs a per-frame classification summary.
func diagf(format string, args ...interface{}) {
	logMu.RLock()
	l := diagLogger
	logMu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// tracef logs a single ingest call. High frequency; keep the hot path
// cheap by checking the logger outside any other lock.
func tracef(format string, args ...interface{}) {
	logMu.RLock()
	l := traceLogger
	logMu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}
