// Package logger is the process-wide leveled logger. Messages use printf formatting.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is a logging severity.
type Level = logrus.Level

var std = newStd(os.Stderr)

func newStd(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// ParseLevel accepts trace, debug, info, warn, error, fatal and panic.
func ParseLevel(s string) (Level, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: use trace, debug, info, warn, error, fatal or panic", s)
	}
	return lvl, nil
}

// SetLevel changes the minimum level that is written.
func SetLevel(lvl Level) {
	std.SetLevel(lvl)
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	return std.GetLevel()
}

// SetOutput redirects log output. Tests use it to capture lines.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func Trace(format string, args ...any) { std.Tracef(format, args...) }
func Debug(format string, args ...any) { std.Debugf(format, args...) }
func Info(format string, args ...any)  { std.Infof(format, args...) }
func Warn(format string, args ...any)  { std.Warnf(format, args...) }
func Error(format string, args ...any) { std.Errorf(format, args...) }
