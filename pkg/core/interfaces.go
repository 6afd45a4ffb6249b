package core

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// ZerologLogger implements Logger on top of a zerolog logger
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps a zerolog logger; messages are logged at info level
func NewZerologLogger(log zerolog.Logger) Logger {
	return &ZerologLogger{log: log}
}

func (zl *ZerologLogger) Printf(format string, args ...interface{}) {
	zl.log.Info().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

// NopLogger discards all messages
var NopLogger Logger = nopLogger{}
