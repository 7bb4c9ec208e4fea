// Package logger provides the leveled console logger used by all pscan
// frontends. Output goes to a writer with [HH:MM:SS] timestamps; color is
// enabled automatically when writing to a TTY.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Console is a thread-safe leveled logger writing to an io.Writer.
// Valid levels: trace, debug, info, warn, error (case-insensitive);
// empty or unknown levels default to "info".
type Console struct {
	writer      io.Writer
	level       string
	mu          sync.Mutex
	colorOutput bool
}

// NewConsole creates a Console writing to w at the given level.
// If w is nil, messages are silently discarded. Color output is enabled
// when w is a terminal (and NO_COLOR is not set).
func NewConsole(w io.Writer, level string) *Console {
	return &Console{
		writer:      w,
		level:       normalizeLevel(level),
		colorOutput: isTerminal(w),
	}
}

// isTerminal reports whether the writer is a color-capable TTY.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLevel lowercases and validates a level string, defaulting to
// "info".
func normalizeLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

func levelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog reports whether a message at messageLevel passes the filter.
func (c *Console) shouldLog(messageLevel string) bool {
	return levelToInt(messageLevel) >= levelToInt(c.level)
}

// Tracef logs a trace-level message (most verbose).
func (c *Console) Tracef(format string, args ...interface{}) {
	c.logf("TRACE", format, args...)
}

// Debugf logs a debug-level message.
func (c *Console) Debugf(format string, args ...interface{}) {
	c.logf("DEBUG", format, args...)
}

// Infof logs an info-level message.
func (c *Console) Infof(format string, args ...interface{}) {
	c.logf("INFO", format, args...)
}

// Warnf logs a warning-level message.
func (c *Console) Warnf(format string, args ...interface{}) {
	c.logf("WARN", format, args...)
}

// Errorf logs an error-level message.
func (c *Console) Errorf(format string, args ...interface{}) {
	c.logf("ERROR", format, args...)
}

// logf formats and writes a message if the filter allows it.
// Format: "[HH:MM:SS] [LEVEL] <message>"
func (c *Console) logf(level, format string, args ...interface{}) {
	if c.writer == nil {
		return
	}
	if !c.shouldLog(strings.ToLower(level)) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ts := time.Now().Format("15:04:05")
	message := fmt.Sprintf(format, args...)

	if c.colorOutput {
		fmt.Fprintf(c.writer, "[%s] [%s] %s\n", ts, colorLevel(level), message)
		return
	}
	fmt.Fprintf(c.writer, "[%s] [%s] %s\n", ts, level, message)
}

// colorLevel wraps a level tag in its ANSI color.
func colorLevel(level string) string {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}
