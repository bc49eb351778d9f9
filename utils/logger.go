package utils

import (
	"io"
	golog "log"
	"os"
	"strings"

	"github.com/jfrog/gofrog/log"
)

type LevelType = log.LevelType

const (
	ERROR = log.ERROR
	WARN  = log.WARN
	INFO  = log.INFO
	DEBUG = log.DEBUG
)

// LogLevelEnv selects the level of the default CLI logger.
const LogLevelEnv = "WORKSPACE_PACKAGER_LOG_LEVEL"

type Log interface {
	Debug(a ...interface{})
	Info(a ...interface{})
	Warn(a ...interface{})
	Error(a ...interface{})
	Output(a ...interface{})
}

// NullLog is a logger that does nothing
type NullLog struct {
}

func (nl *NullLog) Debug(...interface{}) {
}

func (nl *NullLog) Info(...interface{}) {
}

func (nl *NullLog) Warn(...interface{}) {
}

func (nl *NullLog) Error(...interface{}) {
}

func (nl *NullLog) Output(...interface{}) {
}

// NewDefaultLogger writes leveled messages to stderr and output to stdout.
func NewDefaultLogger(logLevel LevelType) Log {
	return NewLogger(logLevel, os.Stderr, os.Stdout)
}

func NewLogger(logLevel LevelType, logWriter, outputWriter io.Writer) Log {
	logger := log.NewLogger(logLevel, logWriter)
	logger.OutputLog = golog.New(outputWriter, "", 0)
	return logger
}

// ParseLogLevel maps ERROR/WARN/INFO/DEBUG (case-insensitive) to a level. Anything else is INFO.
func ParseLogLevel(level string) LevelType {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "ERROR":
		return ERROR
	case "WARN":
		return WARN
	case "DEBUG":
		return DEBUG
	default:
		return INFO
	}
}
