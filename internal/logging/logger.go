// Package logging provides the node's structured logger, in the same
// level-gated, optionally-JSON style as the teacher repo's logger, extended
// to also honour the configured log directory.
package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"p2pbank/internal/config"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "INFO"
	}
}

type Logger struct {
	level  Level
	logger *log.Logger
}

type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

var defaultLogger *Logger

// Init configures the package-level logger from cfg. When cfg.Logging.Dir is
// set, log lines are written to <dir>/node.log in addition to stdout.
func Init(cfg *config.Config) {
	level := parseLevel(cfg.Logging.Level)

	var out io.Writer = os.Stdout
	if dir := cfg.Logging.Dir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			if f, err := os.OpenFile(filepath.Join(dir, "node.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
				out = io.MultiWriter(os.Stdout, f)
			}
		}
	}

	defaultLogger = &Logger{
		level:  level,
		logger: log.New(out, "", 0),
	}
}

func parseLevel(levelStr string) Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func (l *Logger) log(level Level, message string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   message,
		Fields:    fields,
	}

	jsonData, _ := json.Marshal(entry)
	l.logger.Println(string(jsonData))
}

func ensureDefault() *Logger {
	if defaultLogger == nil {
		defaultLogger = &Logger{level: INFO, logger: log.New(os.Stdout, "", 0)}
	}
	return defaultLogger
}

func Debug(message string, fields ...map[string]interface{}) {
	ensureDefault().log(DEBUG, message, firstOrNil(fields))
}

func Info(message string, fields ...map[string]interface{}) {
	ensureDefault().log(INFO, message, firstOrNil(fields))
}

func Warn(message string, fields ...map[string]interface{}) {
	ensureDefault().log(WARN, message, firstOrNil(fields))
}

func Error(message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	ensureDefault().log(ERROR, message, fields)
}

func firstOrNil(fields []map[string]interface{}) map[string]interface{} {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}
