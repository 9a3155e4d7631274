package taskq

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger defines logging methods used by the library. Implementations should be cheap.
// Default is FmtLogger which writes to stdout/stderr using fmt.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Level is the minimum severity a FmtLogger prints.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps "debug", "info", "warn" and "error" (any case) to a Level.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// FmtLogger is a minimal logger that prints messages with level prefixes.
// Debug/Info go to stdout and Warn/Error to stderr, unless Out is set, in
// which case every level goes to Out.
type FmtLogger struct {
	Min Level
	Out io.Writer
}

// NewFmtLogger creates a FmtLogger that prints everything.
func NewFmtLogger() *FmtLogger { return &FmtLogger{Min: LevelDebug} }

// NewFmtLoggerLevel creates a FmtLogger that drops messages below min.
func NewFmtLoggerLevel(min Level) *FmtLogger { return &FmtLogger{Min: min} }

func (l FmtLogger) low() io.Writer {
	if l.Out != nil {
		return l.Out
	}
	return os.Stdout
}

func (l FmtLogger) high() io.Writer {
	if l.Out != nil {
		return l.Out
	}
	return os.Stderr
}

func (l FmtLogger) Debugf(format string, args ...any) {
	if l.Min <= LevelDebug {
		fmt.Fprintf(l.low(), "[DEBUG] "+format+"\n", args...)
	}
}

func (l FmtLogger) Infof(format string, args ...any) {
	if l.Min <= LevelInfo {
		fmt.Fprintf(l.low(), "[INFO]  "+format+"\n", args...)
	}
}

func (l FmtLogger) Warnf(format string, args ...any) {
	if l.Min <= LevelWarn {
		fmt.Fprintf(l.high(), "[WARN]  "+format+"\n", args...)
	}
}

func (l FmtLogger) Errorf(format string, args ...any) {
	fmt.Fprintf(l.high(), "[ERROR] "+format+"\n", args...)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}
