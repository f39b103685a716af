// Copyright © 2024 The cxxlint authors

package linttest

import (
	"bytes"
	"io"
	"sync"
	"testing"
)

// Logger is an io.Writer that forwards complete lines to t.Log, so that log
// output of the code under test shows up next to the failing test. It keeps
// every line for later assertions.
type Logger struct {
	t     testing.TB
	mu    sync.Mutex
	buf   []byte
	lines []string
}

var _ io.Writer = (*Logger)(nil)

// NewLogger returns a Logger writing to t.
func NewLogger(t testing.TB) *Logger {
	return &Logger{t: t}
}

func (log *Logger) Write(b []byte) (int, error) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.buf = append(log.buf, b...)
	for {
		i := bytes.IndexByte(log.buf, '\n')
		if i < 0 {
			return len(b), nil
		}
		log.emit(string(log.buf[:i]))
		log.buf = log.buf[i+1:]
	}
}

// Flush logs a trailing partial line, if any.
func (log *Logger) Flush() {
	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.buf) == 0 {
		return
	}
	log.emit(string(log.buf))
	log.buf = nil
}

// Lines returns the lines logged so far.
func (log *Logger) Lines() []string {
	log.mu.Lock()
	defer log.mu.Unlock()
	return append([]string(nil), log.lines...)
}

func (log *Logger) emit(line string) {
	log.t.Helper()
	log.t.Log(line)
	log.lines = append(log.lines, line)
}
