package logger

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// noopFunc is a reusable no-op function to avoid allocations
var noopFunc = func() {}

// Fields carries structured context for WithFields.
type Fields = logrus.Fields

// Trace returns a function that logs operation duration when called.
// Returns a no-op function when TRACE level is disabled to avoid overhead.
// Usage: defer logger.Trace("operation")()
func Trace(name string) func() {
	ll := current()
	if !ll.shouldLog(LogLevelTrace) {
		return noopFunc
	}
	start := time.Now()
	return func() {
		ll.entry.WithField("elapsed", time.Since(start)).Trace(name)
	}
}

// defaultLogger is used before the global logger is initialized
var defaultLogger = newLimitedLogger(os.Stderr, LogLevelInfo, false)

// MaxLogLines defines the maximum number of lines to keep in the log file
const MaxLogLines = 5000

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelTrace LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelTrace:
		return "TRACE"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LogLevelTrace:
		return logrus.TraceLevel
	case LogLevelDebug:
		return logrus.DebugLevel
	case LogLevelWarn:
		return logrus.WarnLevel
	case LogLevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "TRACE":
		return LogLevelTrace
	case "DEBUG":
		return LogLevelDebug
	case "INFO":
		return LogLevelInfo
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LimitedLogger is a logrus logger writing to a file that is trimmed to the
// last MaxLogLines lines.
type LimitedLogger struct {
	file      *os.File
	lineCount int
	rotate    bool
	mutex     sync.Mutex

	log   *logrus.Logger
	entry *logrus.Entry
}

// Global logger instance
var (
	globalMu     sync.RWMutex
	globalLogger *LimitedLogger
)

func current() *LimitedLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger
	}
	return defaultLogger
}

// NewLimitedLogger creates a new LimitedLogger and installs it as the global
// logger.
func NewLimitedLogger(file *os.File, level LogLevel) *LimitedLogger {
	ll := newLimitedLogger(file, level, true)

	// Count existing lines in the file
	ll.countExistingLines()

	globalMu.Lock()
	globalLogger = ll
	globalMu.Unlock()
	return ll
}

func newLimitedLogger(file *os.File, level LogLevel, rotate bool) *LimitedLogger {
	ll := &LimitedLogger{file: file, rotate: rotate}
	ll.log = logrus.New()
	ll.log.SetOutput(ll)
	ll.log.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		TimestampFormat:  "2006/01/02 15:04:05",
		QuoteEmptyFields: true,
	})
	ll.log.SetLevel(level.logrusLevel())
	ll.entry = logrus.NewEntry(ll.log)
	return ll
}

// SetLevel sets the logging level
func (ll *LimitedLogger) SetLevel(level LogLevel) {
	ll.log.SetLevel(level.logrusLevel())
}

// SetGlobalLevel sets the logging level on the global logger
func SetGlobalLevel(level LogLevel) {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		globalLogger.SetLevel(level)
	}
}

// shouldLog returns true if the given level should be logged
func (ll *LimitedLogger) shouldLog(level LogLevel) bool {
	return ll.log.IsLevelEnabled(level.logrusLevel())
}

// WithFields returns an entry that adds fields to every message logged
// through it.
func (ll *LimitedLogger) WithFields(fields Fields) *logrus.Entry {
	return ll.entry.WithFields(fields)
}

// Debug logs a debug message
func (ll *LimitedLogger) Debug(format string, v ...any) {
	ll.entry.Debugf(format, v...)
}

// Info logs an info message
func (ll *LimitedLogger) Info(format string, v ...any) {
	ll.entry.Infof(format, v...)
}

// Warn logs a warning message
func (ll *LimitedLogger) Warn(format string, v ...any) {
	ll.entry.Warnf(format, v...)
}

// Error logs an error message
func (ll *LimitedLogger) Error(format string, v ...any) {
	ll.entry.Errorf(format, v...)
}

// Fatal logs an error message and exits with code 1
func (ll *LimitedLogger) Fatal(format string, v ...any) {
	ll.entry.Errorf(format, v...)
	os.Exit(1)
}

// Package-level logging functions that use the global logger (or default if not initialized)
func Debug(format string, v ...any) { current().Debug(format, v...) }

func Info(format string, v ...any) { current().Info(format, v...) }

func Warn(format string, v ...any) { current().Warn(format, v...) }

func Error(format string, v ...any) { current().Error(format, v...) }

func Fatal(format string, v ...any) { current().Fatal(format, v...) }

func WithFields(fields Fields) *logrus.Entry { return current().WithFields(fields) }

// countExistingLines counts the number of lines in the current log file
func (ll *LimitedLogger) countExistingLines() {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()

	// Seek to beginning of file
	ll.file.Seek(0, io.SeekStart)
	scanner := bufio.NewScanner(ll.file)

	count := 0
	for scanner.Scan() {
		count++
	}

	ll.lineCount = count

	// Seek back to end of file for appending
	ll.file.Seek(0, io.SeekEnd)
}

// Write implements io.Writer; logrus formats entries and hands them here.
func (ll *LimitedLogger) Write(p []byte) (n int, err error) {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()

	n, err = ll.file.Write(p)
	if err != nil {
		return n, err
	}

	ll.lineCount += strings.Count(string(p), "\n")
	if ll.rotate && ll.lineCount > MaxLogLines {
		ll.rotateLogFile()
	}
	return n, nil
}

// rotateLogFile trims the log file to keep only the last MaxLogLines lines
func (ll *LimitedLogger) rotateLogFile() {
	ll.file.Seek(0, io.SeekStart)
	scanner := bufio.NewScanner(ll.file)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if len(lines) > MaxLogLines {
		lines = lines[len(lines)-MaxLogLines:]
	}

	ll.file.Truncate(0)
	ll.file.Seek(0, io.SeekStart)
	for _, line := range lines {
		ll.file.WriteString(line + "\n")
	}

	ll.lineCount = len(lines)
}

// Close closes the underlying file
func (ll *LimitedLogger) Close() error {
	return ll.file.Close()
}
