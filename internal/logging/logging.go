package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Log levels, lowest to highest verbosity.
const (
	None    = 0
	Error   = 1
	Warning = 2
	Info    = 3
	Debug   = 4
)

var currentLevel atomic.Int32

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stderr)
	currentLevel.Store(Info)
}

// SetLevel sets the global logging level.
func SetLevel(level int) {
	currentLevel.Store(int32(level))
}

// GetLevel returns the current logging level.
func GetLevel() int {
	return int(currentLevel.Load())
}

// ParseLevel converts a level name to its integer level.
func ParseLevel(name string) (int, error) {
	switch strings.ToLower(name) {
	case "none":
		return None, nil
	case "error":
		return Error, nil
	case "warn", "warning":
		return Warning, nil
	case "info":
		return Info, nil
	case "debug":
		return Debug, nil
	default:
		return Info, fmt.Errorf("invalid log level: '%s'", name)
	}
}

// Setup initializes the global level from a level name, falling back to
// Info on an unrecognized name. Returns the level that was applied.
func Setup(name string) int {
	level, err := ParseLevel(name)
	if err != nil {
		Logf(Warning, "Invalid log level '%s', defaulting to 'info'", name)
		level = Info
	}
	SetLevel(level)
	return level
}

// Logf logs a formatted message when level is within the current verbosity.
func Logf(level int, format string, v ...interface{}) {
	if int32(level) > currentLevel.Load() {
		return
	}
	prefix := ""
	switch level {
	case Error:
		prefix = "[ERROR] "
	case Warning:
		prefix = "[WARN]  "
	case Info:
		prefix = "[INFO]  "
	case Debug:
		prefix = "[DEBUG] "
	}
	log.Output(2, fmt.Sprintf(prefix+format, v...))
}
