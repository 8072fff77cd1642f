// Package logger provides leveled console logging with streaming support.
// The daemon prints human-readable lines to stdout and fans every entry
// out to subscriber channels, which is how the optional log file sink and
// tests observe output without scraping the console.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log severities. Entries below the logger's minimum
// level are dropped before formatting.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (lv Level) String() string {
	switch lv {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel reads a level name from configuration. Unknown names fall
// back to info so a typo in a config file never silences the daemon.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// ANSI codes for console output
const (
	colorReset        = "\033[0m"
	colorCyan         = "\033[36m"
	colorGreen        = "\033[32m"
	colorBrightRed    = "\033[91m"
	colorBrightYellow = "\033[93m"
	colorBrightGray   = "\033[90m"
)

// componentWidth fixes the component column so multi-line output stays aligned.
const componentWidth = 12

// LogEntry is a single log record as delivered to subscribers.
type LogEntry struct {
	Time    time.Time
	Level   string
	Message string
}

// Logger writes leveled entries to the console and to any subscribers.
type Logger struct {
	component string
	version   string

	mu             sync.RWMutex
	min            Level
	subscribers    []chan LogEntry
	colorEnabled   bool
	disableConsole bool
}

// New creates a logger for the named component.
func New(component, version string) *Logger {
	return &Logger{
		component:    component,
		version:      version,
		min:          LevelInfo,
		colorEnabled: isTerminal(),
	}
}

// SetLevel changes the minimum level that produces output.
func (l *Logger) SetLevel(min Level) {
	l.mu.Lock()
	l.min = min
	l.mu.Unlock()
}

// DisableConsoleOutput stops console printing while entries keep
// flowing to subscribers. Used when a file sink replaces stdout.
func (l *Logger) DisableConsoleOutput() {
	l.mu.Lock()
	l.disableConsole = true
	l.mu.Unlock()
}

// Subscribe returns a channel that receives every entry at or above
// the minimum level. Slow subscribers lose entries rather than block
// the logging call site.
func (l *Logger) Subscribe() <-chan LogEntry {
	ch := make(chan LogEntry, 100)

	l.mu.Lock()
	l.subscribers = append(l.subscribers, ch)
	l.mu.Unlock()

	return ch
}

// isTerminal checks if we're outputting to a terminal (for color support)
func isTerminal() bool {
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

func levelColor(lv Level) string {
	switch lv {
	case LevelDebug:
		return colorBrightGray
	case LevelInfo:
		return colorGreen
	case LevelWarn:
		return colorBrightYellow
	default:
		return colorBrightRed
	}
}

func levelBadge(lv Level) string {
	switch lv {
	case LevelDebug:
		return "◦ DEBUG"
	case LevelInfo:
		return "ℹ INFO"
	case LevelWarn:
		return "⚠ WARN"
	case LevelError:
		return "✗ ERROR"
	default:
		return "✗ FATAL"
	}
}

func (l *Logger) formatLine(now time.Time, lv Level, message string) string {
	component := l.component
	if len(component) > componentWidth {
		component = component[:componentWidth-1] + "…"
	}

	color, reset := "", ""
	if l.colorEnabled {
		color, reset = levelColor(lv), colorReset
	}

	return fmt.Sprintf("%s[%s] [%-*s] [%s%-9s%s] %s%s",
		colorCyan, now.Format("2006-01-02 15:04:05.000"), componentWidth, component,
		color, levelBadge(lv), reset, message, reset)
}

func (l *Logger) log(lv Level, message string) {
	l.mu.RLock()
	min := l.min
	console := !l.disableConsole
	l.mu.RUnlock()

	if lv < min {
		return
	}

	now := time.Now()
	if console {
		fmt.Println(l.formatLine(now, lv, message))
	}

	entry := LogEntry{Time: now, Level: lv.String(), Message: message}

	l.mu.RLock()
	for _, ch := range l.subscribers {
		select {
		case ch <- entry:
		default:
			// Skip if channel is full
		}
	}
	l.mu.RUnlock()
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...))
}

// Info logs an info message with optional formatting.
func (l *Logger) Info(message string, args ...interface{}) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	l.log(LevelInfo, message)
}

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn logs a warning message with optional formatting.
func (l *Logger) Warn(message string, args ...interface{}) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	l.log(LevelWarn, message)
}

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs an error message with optional formatting.
func (l *Logger) Error(message string, args ...interface{}) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	l.log(LevelError, message)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...))
}

// Fatalf logs a formatted fatal message and exits.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(LevelFatal, fmt.Sprintf(format, args...))
	os.Exit(1)
}
