package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/df07/go-reflax-raytracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by logging through zerolog and sending
// messages to a console channel
type WebLogger struct {
	log         zerolog.Logger
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger
func NewWebLogger(log zerolog.Logger, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		log:         log,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	level := "info"
	event := wl.log.Info()
	if strings.Contains(strings.ToLower(message), "failed") {
		level = "error"
		event = wl.log.Error()
	}
	event.Msg(strings.TrimRight(message, "\n"))

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     level,
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// consoleHub fans console messages out to every connected console stream
type consoleHub struct {
	mu          sync.Mutex
	subscribers map[chan ConsoleMessage]struct{}
}

func newConsoleHub() *consoleHub {
	return &consoleHub{subscribers: make(map[chan ConsoleMessage]struct{})}
}

func (h *consoleHub) subscribe() chan ConsoleMessage {
	ch := make(chan ConsoleMessage, 50)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *consoleHub) unsubscribe(ch chan ConsoleMessage) {
	h.mu.Lock()
	delete(h.subscribers, ch)
	h.mu.Unlock()
}

// run forwards messages from in until ctx is done. Slow subscribers miss
// messages rather than stall the others.
func (h *consoleHub) run(ctx context.Context, in <-chan ConsoleMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-in:
			h.mu.Lock()
			for ch := range h.subscribers {
				select {
				case ch <- msg:
				default:
				}
			}
			h.mu.Unlock()
		}
	}
}
