// Package logging writes log-style lines filtered by level. Events carry
// bracketed tags such as [CACHE_HIT] in the message itself.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level orders log severities
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of Level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel accepts debug, info, warn (or warning) and error
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// Logger filters messages below its level and writes the rest through a
// std log.Logger.
type Logger struct {
	mu    sync.Mutex
	out   *log.Logger
	level Level
	tags  map[Level]*color.Color
}

// New creates a logger writing to w. Level tags are coloured when w is a
// terminal.
func New(w io.Writer, level Level) *Logger {
	l := &Logger{
		out:   log.New(w, "", log.LstdFlags),
		level: level,
		tags: map[Level]*color.Color{
			LevelDebug: color.New(color.FgHiBlack),
			LevelInfo:  color.New(color.FgCyan),
			LevelWarn:  color.New(color.FgYellow),
			LevelError: color.New(color.FgRed, color.Bold),
		},
	}
	useColor := isTerminal(w)
	for _, c := range l.tags {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return l
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(io.Discard, LevelError+1)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetLevel changes the minimum level written
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the minimum level written
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Log writes message at the named level. Unknown level names log at info.
func (l *Logger) Log(level, message string) {
	lvl, _ := ParseLevel(level)
	l.write(lvl, message)
}

func (l *Logger) Debugf(format string, args ...any) { l.write(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.write(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.write(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.write(LevelError, fmt.Sprintf(format, args...)) }

func (l *Logger) write(level Level, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	tag := strings.ToUpper(level.String())
	if c, ok := l.tags[level]; ok {
		tag = c.Sprint(tag)
	}
	l.out.Printf("%s %s", tag, message)
}
