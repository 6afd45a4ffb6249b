package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-reflax-raytracer/pkg/app"
	"github.com/df07/go-reflax-raytracer/pkg/core"
)

const (
	// Largest accepted display size in either direction
	maxDisplaySize = 4096

	eventBufferSize   = 256
	consoleBufferSize = 100
	shutdownTimeout   = 5 * time.Second
)

//go:embed static
var staticFiles embed.FS

// Server is the web display and input device of the interactive renderer.
// Handlers never touch the App: input goes through the Events channel and
// output comes from the snapshot last passed to Publish.
type Server struct {
	port    int
	log     zerolog.Logger
	router  *mux.Router
	display *display
	metrics *metrics

	events      chan Event
	consoleChan chan ConsoleMessage
	console     *consoleHub
	logger      core.Logger
}

// NewServer creates a new web server
func NewServer(port int, log zerolog.Logger) *Server {
	s := &Server{
		port:        port,
		log:         log,
		display:     &display{},
		events:      make(chan Event, eventBufferSize),
		consoleChan: make(chan ConsoleMessage, consoleBufferSize),
		console:     newConsoleHub(),
	}
	s.metrics = newMetrics(s.display)
	s.logger = NewWebLogger(log, s.consoleChan)
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/frame", s.handleFrame).Methods("GET")
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/key", s.handleKey).Methods("POST")
	api.HandleFunc("/resize", s.handleResize).Methods("POST")
	api.HandleFunc("/inspect", s.handleInspect).Methods("GET")
	api.HandleFunc("/console", s.handleConsole).Methods("GET")

	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/", http.FileServer(http.FS(static)))
	return r
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Events returns the input events waiting for the control loop
func (s *Server) Events() <-chan Event {
	return s.events
}

// Logger returns a logger whose messages also reach the web console
func (s *Server) Logger() core.Logger {
	return s.logger
}

// Publish replaces the snapshot served to clients. frameDone marks a
// completed live frame, whose render time is recorded.
func (s *Server) Publish(snapshot Snapshot, frameDone bool) {
	s.display.publish(snapshot)
	if frameDone && snapshot.Status.State == app.CameraControl.String() {
		s.metrics.frameTime.Observe(snapshot.Status.FrameTimeMs / 1000)
	}
}

// Run serves HTTP until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info().Msgf("Starting web server on http://localhost%s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.console.run(ctx, s.consoleChan)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// enqueue hands an event to the control loop without blocking
func (s *Server) enqueue(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleFrame serves the latest published frame as PNG
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	frame := s.display.get().Frame
	if frame == nil {
		writeError(w, http.StatusServiceUnavailable, "no frame rendered yet")
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode frame: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// handleStatus serves the status text and counters
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.display.get().Status)
}

// KeyRequest is the body of POST /api/key
type KeyRequest struct {
	Key     string `json:"key"`
	Pressed bool   `json:"pressed"`
}

// handleKey queues a key press or release
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	key, err := app.ParseKey(req.Key)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.queue(w, "key", KeyEvent{Key: key, Pressed: req.Pressed})
}

// ResizeRequest is the body of POST /api/resize
type ResizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// handleResize queues a display size change
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if req.Width < 1 || req.Width > maxDisplaySize || req.Height < 1 || req.Height > maxDisplaySize {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("size must be between 1 and %d, got %dx%d", maxDisplaySize, req.Width, req.Height))
		return
	}

	s.queue(w, "resize", ResizeEvent{Width: req.Width, Height: req.Height})
}

func (s *Server) queue(w http.ResponseWriter, kind string, ev Event) {
	if !s.enqueue(ev) {
		writeError(w, http.StatusServiceUnavailable, "control loop busy")
		return
	}
	s.metrics.events.WithLabelValues(kind).Inc()
	w.WriteHeader(http.StatusAccepted)
}

// handleConsole streams console messages via SSE
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	sub := s.console.subscribe()
	defer s.console.unsubscribe(sub)

	if err := s.sendSSEEvent(w, "connected", "{}"); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub:
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := s.sendSSEEvent(w, "console", string(data)); err != nil {
				return
			}
		}
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming not supported")
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
