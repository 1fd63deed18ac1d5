package log

import (
	"fmt"
	"io"
	"os"
	"time"
)

// ConsoleLogger is a simple, leveled logging engine writing to standard error. Diagnostics go
// to stderr so that metric lines mirrored to stdout stay machine-readable.
type ConsoleLogger struct {
	level Level
	out   io.Writer
}

// NewConsoleLogger creates a logger limited to the specified level. Only log messages that are
// less verbose than the specified level are logged.
func NewConsoleLogger(level Level) Logger {
	return &ConsoleLogger{level: level, out: os.Stderr}
}

// Debug logs a debug message, if permitted by the current level.
func (l *ConsoleLogger) Debug(format string, v ...interface{}) {
	l.log(Debug, format, v...)
}

// Info logs an informational message, if permitted by the current level.
func (l *ConsoleLogger) Info(format string, v ...interface{}) {
	l.log(Info, format, v...)
}

// Warn logs a warning message, if permitted by the current level.
func (l *ConsoleLogger) Warn(format string, v ...interface{}) {
	l.log(Warn, format, v...)
}

// Error logs an error message, if permitted by the current level.
func (l *ConsoleLogger) Error(format string, v ...interface{}) {
	l.log(Error, format, v...)
}

// Level reads the current logging level.
func (l *ConsoleLogger) Level() Level {
	return l.level
}

func (l *ConsoleLogger) log(level Level, format string, v ...interface{}) {
	if l.level.Enables(level) {
		fmt.Fprintf(
			l.out,
			"%s %s\t%s\n",
			time.Now().Format("2006-01-02 15:04:05"),
			level,
			fmt.Sprintf(format, v...),
		)
	}
}
