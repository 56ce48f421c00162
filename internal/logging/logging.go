// Package logging provides component-scoped structured loggers.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields carries structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

var base = logrus.New()

// Configure sets the process-wide level ("debug", "info", ...) and format
// ("json" or "text"). Unknown levels fall back to info.
func Configure(level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	if strings.EqualFold(format, "text") {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	base.SetFormatter(&logrus.JSONFormatter{})
}

// SetOutput redirects all loggers, mostly useful in tests.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// Logger writes entries tagged with the component that created it.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger for a named component.
func New(component string) *Logger {
	return &Logger{entry: base.WithField("component", component)}
}

func (l *Logger) with(fields []Fields) *logrus.Entry {
	e := l.entry
	for _, f := range fields {
		if len(f) > 0 {
			e = e.WithFields(logrus.Fields(f))
		}
	}
	return e
}

func (l *Logger) Debug(msg string, fields ...Fields) { l.with(fields).Debug(msg) }
func (l *Logger) Info(msg string, fields ...Fields)  { l.with(fields).Info(msg) }
func (l *Logger) Warn(msg string, fields ...Fields)  { l.with(fields).Warn(msg) }
func (l *Logger) Error(msg string, fields ...Fields) { l.with(fields).Error(msg) }
func (l *Logger) Fatal(msg string, fields ...Fields) { l.with(fields).Fatal(msg) }

// Infof logs a formatted message without component tagging.
func Infof(format string, args ...interface{}) {
	base.Infof(format, args...)
}
