package server

import (
	"bufio"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/df07/go-reflax-raytracer/pkg/app"
	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/material"
	"github.com/df07/go-reflax-raytracer/pkg/renderer"
	"github.com/df07/go-reflax-raytracer/pkg/scene"
)

func newTestServer() *Server {
	return NewServer(0, zerolog.Nop())
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	rec := do(t, newTestServer(), "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}

func TestServer_Index(t *testing.T) {
	rec := do(t, newTestServer(), "GET", "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<title>Reflax</title>") {
		t.Errorf("Expected index page, got %d", rec.Code)
	}
}

func TestServer_FrameAndStatus(t *testing.T) {
	s := newTestServer()

	if rec := do(t, s, "GET", "/api/frame", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before the first frame, got %d", rec.Code)
	}

	s.Publish(Snapshot{
		Frame:  image.NewRGBA(image.Rect(0, 0, 4, 3)),
		Status: app.Status{State: "CameraControl", Lines: []string{"Resolution : 4x3"}, Width: 4, Height: 3},
	}, true)

	rec := do(t, s, "GET", "/api/frame", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Failed to decode frame: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("Expected 4x3 frame, got %v", b)
	}

	rec = do(t, s, "GET", "/api/status", "")
	var status app.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if status.Width != 4 || len(status.Lines) != 1 || status.Lines[0] != "Resolution : 4x3" {
		t.Errorf("Unexpected status %+v", status)
	}
}

func TestServer_Key(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		code     int
		expected Event
	}{
		{"press", `{"key":"w","pressed":true}`, http.StatusAccepted, KeyEvent{Key: app.KeyW, Pressed: true}},
		{"release", `{"key":"F2","pressed":false}`, http.StatusAccepted, KeyEvent{Key: app.KeyF2}},
		{"unknown key", `{"key":"F12","pressed":true}`, http.StatusBadRequest, nil},
		{"bad json", `{"key":`, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			rec := do(t, s, "POST", "/api/key", tt.body)
			if rec.Code != tt.code {
				t.Fatalf("Expected status %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}

			select {
			case ev := <-s.Events():
				if ev != tt.expected {
					t.Errorf("Expected event %+v, got %+v", tt.expected, ev)
				}
			default:
				if tt.expected != nil {
					t.Error("Expected a queued event")
				}
			}
		})
	}
}

func TestServer_KeyMethod(t *testing.T) {
	if rec := do(t, newTestServer(), "GET", "/api/key", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", rec.Code)
	}
}

func TestServer_Resize(t *testing.T) {
	tests := []struct {
		body string
		code int
	}{
		{`{"width":640,"height":480}`, http.StatusAccepted},
		{`{"width":0,"height":480}`, http.StatusBadRequest},
		{`{"width":640,"height":5000}`, http.StatusBadRequest},
		{`nope`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		s := newTestServer()
		if rec := do(t, s, "POST", "/api/resize", tt.body); rec.Code != tt.code {
			t.Errorf("%s: expected status %d, got %d", tt.body, tt.code, rec.Code)
		}
	}

	s := newTestServer()
	do(t, s, "POST", "/api/resize", `{"width":320,"height":200}`)
	if ev := <-s.Events(); ev != (ResizeEvent{Width: 320, Height: 200}) {
		t.Errorf("Unexpected event %+v", ev)
	}
}

func TestServer_EventQueueFull(t *testing.T) {
	s := newTestServer()
	for i := 0; i < eventBufferSize; i++ {
		if rec := do(t, s, "POST", "/api/key", `{"key":"A","pressed":true}`); rec.Code != http.StatusAccepted {
			t.Fatalf("Event %d: expected 202, got %d", i, rec.Code)
		}
	}
	if rec := do(t, s, "POST", "/api/key", `{"key":"A","pressed":true}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 with a full queue, got %d", rec.Code)
	}
}

func TestServer_Inspect(t *testing.T) {
	s := newTestServer()

	sc := scene.NewScene(nil, core.NewColor(1, 1, 1), 0)
	sc.AddSphere(core.NewVec3(0, 0, 5), 1, material.NewMetal(core.NewColor(1, 0, 0), 0.5))
	camera := renderer.NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1.0)
	a := app.New(renderer.NewRender(sc, camera, core.NewRandom(1)), app.DefaultSettings(), 8, 6)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-s.Events():
				ev.Apply(a)
			}
		}
	}()

	rec := do(t, s, "GET", "/api/inspect?x=4&y=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var resp InspectResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Hit || resp.GeometryType != "sphere" || resp.MaterialType != "metal" {
		t.Errorf("Expected metal sphere hit, got %+v", resp)
	}
	if resp.Properties["color"] != "#ff0000" {
		t.Errorf("Expected red color, got %v", resp.Properties["color"])
	}
	if resp.Distance < 3.9 || resp.Distance > 4.1 {
		t.Errorf("Expected distance near 4, got %f", resp.Distance)
	}

	rec = do(t, s, "GET", "/api/inspect?x=100&y=3", "")
	resp = InspectResponse{}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Hit {
		t.Error("Expected no hit outside the image")
	}

	if rec := do(t, s, "GET", "/api/inspect?x=a", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad coordinates, got %d", rec.Code)
	}
}

func TestServer_InspectDuringScreenshot(t *testing.T) {
	s := newTestServer()

	sc := scene.NewScene(nil, core.NewColor(1, 1, 1), 0)
	sc.AddSphere(core.NewVec3(0, 0, 5), 1, material.NewMetal(core.NewColor(1, 0, 0), 0.5))
	camera := renderer.NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1.0)
	a := app.New(renderer.NewRender(sc, camera, core.NewRandom(1)), app.DefaultSettings(), 8, 6)

	// the display keeps showing the 8x6 live frame while an 800x600 render runs
	a.HandleKey(app.KeyF2, true)
	a.HandleKey(app.Key1, true)
	a.HandleKey(app.Key1, true)
	a.Tick()
	if w, h := a.Render().Size(); w != 800 || h != 600 {
		t.Fatalf("Expected an 800x600 screenshot render, got %dx%d", w, h)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-s.Events():
				ev.Apply(a)
			}
		}
	}()

	rec := do(t, s, "GET", "/api/inspect?x=4&y=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var resp InspectResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Hit {
		t.Errorf("Expected no hit while a screenshot renders, got %+v", resp)
	}
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer()
	s.Publish(Snapshot{
		Status: app.Status{State: "CameraControl", BlendedFrames: 3, FrameTimeMs: 12},
		Stats:  renderer.RenderStats{Passes: 2, Pixels: 96, Rays: 42},
	}, true)
	do(t, s, "POST", "/api/key", `{"key":"W","pressed":true}`)

	body := do(t, s, "GET", "/metrics", "").Body.String()
	for _, want := range []string{
		"reflax_rays_total 42",
		"reflax_pixels_total 96",
		"reflax_passes_total 2",
		"reflax_blended_frames 3",
		"reflax_frame_time_seconds_count 1",
		`reflax_input_events_total{type="key"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %q in metrics output", want)
		}
	}
}

func TestServer_ConsoleStream(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.console.run(ctx, s.consoleChan)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/console", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer res.Body.Close()

	if ct := res.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %s", ct)
	}

	lines := make(chan string, 100)
	go func() {
		scanner := bufio.NewScanner(res.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	waitFor := func(prefix string) string {
		t.Helper()
		timeout := time.After(2 * time.Second)
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatalf("Stream closed before %q", prefix)
				}
				if strings.HasPrefix(line, prefix) {
					return line
				}
			case <-timeout:
				t.Fatalf("Timeout waiting for %q", prefix)
			}
		}
	}

	waitFor("event: connected")
	s.Logger().Printf("saved screenshot %s\n", "a.bmp")
	waitFor("event: console")
	data := waitFor("data: ")

	var msg ConsoleMessage
	if err := json.Unmarshal([]byte(strings.TrimPrefix(data, "data: ")), &msg); err != nil {
		t.Fatalf("Bad console payload %q: %v", data, err)
	}
	if msg.Message != "saved screenshot a.bmp\n" {
		t.Errorf("Unexpected console message %q", msg.Message)
	}

}
