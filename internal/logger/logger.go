// Package logger provides leveled logging with text and JSON output.
package logger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Level represents a logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "info"
	}
}

// Logger writes leveled log lines to stderr.
type Logger struct {
	level  Level
	json   bool
	logger *log.Logger
}

var defaultLogger *Logger

// Init initializes the default logger with the specified level and format.
// Format is either "json" or "text".
func Init(level string, format string) {
	l := parseLevel(level)

	asJSON := strings.ToLower(format) == "json"
	flags := 0
	if !asJSON {
		flags = log.LstdFlags | log.Lmicroseconds
	}

	defaultLogger = &Logger{
		level:  l,
		json:   asJSON,
		logger: log.New(os.Stderr, "", flags),
	}
}

func parseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func output(level Level, format string, args ...interface{}) {
	if defaultLogger == nil || defaultLogger.level > level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if defaultLogger.json {
		line, err := json.Marshal(map[string]string{
			"time":  time.Now().UTC().Format(time.RFC3339Nano),
			"level": level.String(),
			"msg":   msg,
		})
		if err != nil {
			// Fall back to plain output rather than drop the line.
			_ = defaultLogger.logger.Output(3, msg)
			return
		}
		_ = defaultLogger.logger.Output(3, string(line))
		return
	}
	_ = defaultLogger.logger.Output(3, "["+strings.ToUpper(level.String())+"] "+msg)
}

func Debug(format string, args ...interface{}) {
	output(DebugLevel, format, args...)
}

func Info(format string, args ...interface{}) {
	output(InfoLevel, format, args...)
}

func Warn(format string, args ...interface{}) {
	output(WarnLevel, format, args...)
}

func Error(format string, args ...interface{}) {
	output(ErrorLevel, format, args...)
}

// Fatal logs the message and exits the process.
func Fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if defaultLogger != nil {
		if defaultLogger.json {
			line, err := json.Marshal(map[string]string{
				"time":  time.Now().UTC().Format(time.RFC3339Nano),
				"level": "fatal",
				"msg":   msg,
			})
			if err == nil {
				msg = string(line)
			}
		} else {
			msg = "[FATAL] " + msg
		}
		_ = defaultLogger.logger.Output(2, msg)
	}
	os.Exit(1)
}
