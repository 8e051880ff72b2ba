// Package log is a thin wrapper around logrus: it formats messages, tracks
// a per-logger level mask, and lets callers hook messages at a given level.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level is a bit in a logger's enabled-levels mask.
type Level int

const (
	Trace Level = 1 << iota
	Debug
	Info
	Warning
	Error
	Fatal
	Exception
)

// DefaultMask enables every level except Trace.
const DefaultMask = Debug | Info | Warning | Error | Fatal | Exception

var levelToLogrus = map[Level]logrus.Level{
	Trace:     logrus.TraceLevel,
	Debug:     logrus.DebugLevel,
	Info:      logrus.InfoLevel,
	Warning:   logrus.WarnLevel,
	Error:     logrus.ErrorLevel,
	Fatal:     logrus.FatalLevel,
	Exception: logrus.ErrorLevel,
}

// Hook is called for every message emitted at a level enabled in its mask.
type Hook func(level Level, message string)

// Logger formats messages and dispatches them to logrus, applying a level
// mask and any registered hooks.
type Logger struct {
	name string
	mask Level

	mu    sync.Mutex
	entry *logrus.Entry
	hooks map[Level][]Hook
}

var (
	registryMu sync.Mutex
	registry   = map[string]*Logger{}
	sharedBase = newBase()
)

func newBase() *logrus.Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	base.SetLevel(logrus.TraceLevel)
	return base
}

// Get returns the named logger, creating it with DefaultMask if it doesn't
// exist yet.
func Get(name string) *Logger {
	registryMu.Lock()
	defer registryMu.Unlock()

	if l, ok := registry[name]; ok {
		return l
	}
	l := &Logger{
		name:  name,
		mask:  DefaultMask,
		entry: sharedBase.WithField("logger", name),
		hooks: map[Level][]Hook{},
	}
	registry[name] = l
	return l
}

// SetFile directs every logger's output additionally to w (e.g. an open log
// file), alongside stderr.
func SetFile(w io.Writer) {
	sharedBase.SetOutput(io.MultiWriter(os.Stderr, w))
}

// SetDebug raises or lowers every currently-registered logger's mask to
// include Trace, the Go analogue of the CLI's -d flag turning on the
// original's verbose log mask.
func SetDebug(enabled bool) {
	registryMu.Lock()
	loggers := make([]*Logger, 0, len(registry))
	for _, l := range registry {
		loggers = append(loggers, l)
	}
	registryMu.Unlock()

	mask := DefaultMask
	if enabled {
		mask |= Trace
	}
	for _, l := range loggers {
		l.SetMask(mask)
	}
}

// SetMask sets which levels are enabled for this logger.
func (l *Logger) SetMask(mask Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mask = mask
}

// HookLevel registers cb to be called whenever a message is emitted at
// level, in addition to the normal logrus output.
func (l *Logger) HookLevel(level Level, cb Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks[level] = append(l.hooks[level], cb)
}

func (l *Logger) enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mask&level != 0
}

func (l *Logger) emit(level Level, message string) {
	if !l.enabled(level) {
		return
	}
	l.entry.Log(levelToLogrus[level], message)

	l.mu.Lock()
	hooks := append([]Hook(nil), l.hooks[level]...)
	l.mu.Unlock()
	for _, hook := range hooks {
		hook(level, message)
	}
}

func (l *Logger) Trace(msg string)                        { l.emit(Trace, msg) }
func (l *Logger) Tracef(format string, args ...interface{}) { l.emit(Trace, sprintf(format, args...)) }
func (l *Logger) Debug(msg string)                         { l.emit(Debug, msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.emit(Debug, sprintf(format, args...)) }
func (l *Logger) Info(msg string)                          { l.emit(Info, msg) }
func (l *Logger) Infof(format string, args ...interface{}) { l.emit(Info, sprintf(format, args...)) }
func (l *Logger) Warn(msg string)                          { l.emit(Warning, msg) }
func (l *Logger) Warnf(format string, args ...interface{}) { l.emit(Warning, sprintf(format, args...)) }
func (l *Logger) Err(msg string)                           { l.emit(Error, msg) }
func (l *Logger) Errf(format string, args ...interface{})  { l.emit(Error, sprintf(format, args...)) }
func (l *Logger) Fatal(msg string)                         { l.emit(Fatal, msg) }

// Exception logs err at the dedicated Exception level.
func (l *Logger) Exception(err error, msg string) {
	l.emit(Exception, sprintf("%s: %v", msg, err))
}

// Exceptionf is Exception with a formatted message.
func (l *Logger) Exceptionf(err error, format string, args ...interface{}) {
	l.Exception(err, sprintf(format, args...))
}

func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
