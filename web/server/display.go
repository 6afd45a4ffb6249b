package server

import (
	"image"
	"sync"

	"github.com/df07/go-reflax-raytracer/pkg/app"
	"github.com/df07/go-reflax-raytracer/pkg/renderer"
)

// Event is an input collected by the server and applied to the App by the
// control loop between ticks
type Event interface {
	Apply(a *app.App)
}

// KeyEvent is a key press or release
type KeyEvent struct {
	Key     app.Key
	Pressed bool
}

// Apply forwards the key to the App
func (e KeyEvent) Apply(a *app.App) {
	a.HandleKey(e.Key, e.Pressed)
}

// ResizeEvent is a change of the display size
type ResizeEvent struct {
	Width  int
	Height int
}

// Apply resizes the App
func (e ResizeEvent) Apply(a *app.App) {
	a.Resize(e.Width, e.Height)
}

// InspectEvent asks what the camera sees through a display pixel
type InspectEvent struct {
	X, Y  int
	Reply chan<- InspectResponse // buffered, receives exactly one response
}

// Apply answers the inspection with the current camera. Outside camera
// control the render no longer matches the displayed frame, so nothing is hit.
func (e InspectEvent) Apply(a *app.App) {
	if a.State().Kind() != app.CameraControl {
		e.Reply <- InspectResponse{}
		return
	}
	e.Reply <- inspectPixel(a.Render(), e.X, e.Y)
}

// Snapshot is what the control loop publishes for the display
type Snapshot struct {
	Frame  *image.RGBA
	Status app.Status
	Stats  renderer.RenderStats
}

// display holds the latest published snapshot
type display struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

func (d *display) publish(s Snapshot) {
	d.mu.Lock()
	d.snapshot = s
	d.mu.Unlock()
}

func (d *display) get() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}
