// Package logger provides the leveled run logger used by the CLI and
// the batch runner. The simulation core itself never logs.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level tags a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelTrade Level = "TRADE"
)

// Logger writes leveled, timestamped entries to a writer, optionally
// mirrored to a per-run file under a log directory.
type Logger struct {
	mu     sync.Mutex
	out    *log.Logger
	file   *os.File
	runTag string
}

// New creates a logger writing to w.
func New(w io.Writer, runTag string) *Logger {
	return &Logger{
		out:    log.New(w, "", 0),
		runTag: runTag,
	}
}

// NewFileLogger creates a logger that writes to a dated file in dir,
// named after the run tag.
func NewFileLogger(dir, runTag string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.log", runTag, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := New(file, runTag)
	l.file = file
	return l, nil
}

// Close releases the underlying file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) write(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("2006-01-02 15:04:05")
	l.out.Printf("[%s] [%s] [%s] %s", ts, level, l.runTag, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{})  { l.write(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.write(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.write(LevelError, format, args...) }

// Trade logs one executed simulation trade.
func (l *Logger) Trade(side string, size, price float64) {
	l.write(LevelTrade, "%s %.6f @ %.4f", side, size, price)
}
