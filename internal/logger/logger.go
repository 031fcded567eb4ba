package logger

import (
	"context"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the leveled printf-style logging surface used across the
// service. The context argument is accepted on every call so sites never
// mix two logging idioms.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
	SetLevel(level string)
}

type level int32

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func parseLevel(s string) level {
	switch strings.ToLower(s) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

type implLogger struct {
	logger *log.Logger
	level  atomic.Int32
}

// New creates a Logger writing to stdout at the given minimum level.
func New(lvl string) Logger {
	l := &implLogger{
		logger: log.New(os.Stdout, "", log.LstdFlags),
	}
	l.level.Store(int32(parseLevel(lvl)))
	return l
}

// SetLevel changes the minimum logged level at runtime. Config hot-reload
// calls this, so the level is stored atomically.
func (l *implLogger) SetLevel(lvl string) {
	l.level.Store(int32(parseLevel(lvl)))
}

func (l *implLogger) enabled(lvl level) bool {
	return lvl >= level(l.level.Load())
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.enabled(levelDebug) {
		l.logger.Printf("[DEBUG] "+msg, args...)
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.enabled(levelInfo) {
		l.logger.Printf("[INFO] "+msg, args...)
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.enabled(levelWarn) {
		l.logger.Printf("[WARN] "+msg, args...)
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.enabled(levelError) {
		l.logger.Printf("[ERROR] "+msg, args...)
	}
}
