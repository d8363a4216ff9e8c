package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

// LogLevel is the gallery's severity scale. It maps one to one onto
// charmbracelet/log levels.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var charmLevels = [...]charmlog.Level{
	LevelDebug: charmlog.DebugLevel,
	LevelInfo:  charmlog.InfoLevel,
	LevelWarn:  charmlog.WarnLevel,
	LevelError: charmlog.ErrorLevel,
}

var (
	level     atomic.Int32
	levelOnce sync.Once

	logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006/01/02 15:04:05",
	})
)

// ParseLevel maps the DEBUG and LOG_LEVEL values onto a LogLevel.
// DEBUG wins when it is truthy; unknown values fall back to info.
func ParseLevel(debug, lvl string) LogLevel {
	switch strings.ToLower(debug) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}
	switch strings.ToLower(lvl) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

func ensureLevel() {
	levelOnce.Do(func() {
		apply(ParseLevel(os.Getenv("DEBUG"), os.Getenv("LOG_LEVEL")))
	})
}

func apply(l LogLevel) {
	level.Store(int32(l))
	logger.SetLevel(charmLevels[l])
}

func GetLevel() LogLevel {
	ensureLevel()
	return LogLevel(level.Load())
}

// SetLevel overrides the level read from the environment.
func SetLevel(l LogLevel) {
	ensureLevel()
	apply(l)
}

// SetOutput redirects all log output. Used by tests and by the CLI.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func Debug(format string, args ...interface{}) {
	ensureLevel()
	logger.Debugf(format, args...)
}

func Info(format string, args ...interface{}) {
	ensureLevel()
	logger.Infof(format, args...)
}

func Warn(format string, args ...interface{}) {
	ensureLevel()
	logger.Warnf(format, args...)
}

func Error(format string, args ...interface{}) {
	ensureLevel()
	logger.Errorf(format, args...)
}

// Fatal logs at error severity and exits with status 1.
func Fatal(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// Printf writes regardless of level. Access log lines use it.
func Printf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

func Println(args ...interface{}) {
	logger.Print(fmt.Sprint(args...))
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("unknown(%d)", l)
}
