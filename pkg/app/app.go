package app

import (
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/loaders"
	"github.com/df07/go-reflax-raytracer/pkg/renderer"
)

// ScreenshotWriter stores a finished screenshot
type ScreenshotWriter interface {
	WriteScreenshot(filename string, img image.Image) error
}

// ScreenshotWriterFunc adapts a function to ScreenshotWriter
type ScreenshotWriterFunc func(filename string, img image.Image) error

// WriteScreenshot calls f
func (f ScreenshotWriterFunc) WriteScreenshot(filename string, img image.Image) error {
	return f(filename, img)
}

// Option configures an App
type Option func(*App)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithScreenshotWriter replaces the bitmap file writer
func WithScreenshotWriter(w ScreenshotWriter) Option {
	return func(a *App) { a.writer = w }
}

// WithLogger sets the logger for state changes and screenshot results
func WithLogger(logger core.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// App drives a Render once per tick: live camera control with adaptive
// quality, and the screenshot workflow. It is not safe for concurrent use.
type App struct {
	render   *renderer.Render
	settings Settings
	state    State
	logger   core.Logger
	writer   ScreenshotWriter
	now      func() time.Time
	sleep    func(time.Duration)

	lastTick time.Time
	flags    renderer.ControlFlags
	chunk    int

	frameTimeAccum time.Duration
	frameTime      time.Duration

	motionSamples int
	prevSamples   int
	prevInMotion  bool

	windowWidth  int
	windowHeight int
}

// New creates an App rendering at the window size width x height
func New(render *renderer.Render, settings Settings, width, height int, opts ...Option) *App {
	a := &App{
		render:        render,
		settings:      settings,
		state:         CameraControlState{},
		logger:        core.NopLogger,
		writer:        ScreenshotWriterFunc(loaders.SaveBMP),
		now:           time.Now,
		sleep:         time.Sleep,
		chunk:         1,
		motionSamples: settings.MotionMinSamples,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.lastTick = a.now()
	a.windowWidth = width
	a.windowHeight = height
	a.render.Resize(width, height)
	return a
}

// State returns the current state
func (a *App) State() State {
	return a.state
}

// Render returns the renderer driven by the app
func (a *App) Render() *renderer.Render {
	return a.render
}

// ControlFlags returns the movement inputs currently held
func (a *App) ControlFlags() renderer.ControlFlags {
	return a.flags
}

// FrameTime returns the render time of the last completed live frame
func (a *App) FrameTime() time.Duration {
	return a.frameTime
}

// Size returns the size of the image being rendered
func (a *App) Size() (width, height int) {
	return a.render.Size()
}

// Pixel returns the displayed color at (x, y)
func (a *App) Pixel(x, y int) core.Vec3 {
	return a.render.Pixel(x, y)
}

// Image returns the displayed image
func (a *App) Image() *image.RGBA {
	return a.render.Image()
}

func (a *App) setState(s State) {
	if s.Kind() != a.state.Kind() {
		a.logger.Printf("state %s -> %s\n", a.state.Kind(), s.Kind())
	}
	a.state = s
}

// Resize records a new window size. Live rendering switches to it at once;
// during the screenshot workflow it applies when the workflow ends.
func (a *App) Resize(width, height int) {
	a.windowWidth = width
	a.windowHeight = height

	if a.state.Kind() == CameraControl {
		a.render.Resize(width, height)
	}
}

// resumeLive returns to camera control at the window size. The live image
// is kept unless force is set or the window was resized meanwhile.
func (a *App) resumeLive(force bool) {
	if width, height := a.render.Size(); force || width != a.windowWidth || height != a.windowHeight {
		a.render.Resize(a.windowWidth, a.windowHeight)
	}
	a.setState(CameraControlState{})
}

var controlKeys = map[Key]renderer.ControlFlags{
	KeyLeft:    renderer.TurnLeft,
	KeyRight:   renderer.TurnRight,
	KeyUp:      renderer.TurnDown,
	KeyDown:    renderer.TurnUp,
	KeyW:       renderer.ShiftForward,
	KeyS:       renderer.ShiftBack,
	KeyA:       renderer.ShiftLeft,
	KeyD:       renderer.ShiftRight,
	KeySpace:   renderer.ShiftUp,
	KeyControl: renderer.ShiftDown,
}

// HandleKey applies a key press or release. Keys that mean nothing in the
// current state are ignored.
func (a *App) HandleKey(key Key, pressed bool) {
	switch s := a.state.(type) {
	case CameraControlState:
		if mask, ok := controlKeys[key]; ok {
			if pressed {
				a.flags |= mask
			} else {
				a.flags &^= mask
			}
			return
		}
		if key == KeyF2 && pressed {
			// releases are not seen outside camera control
			a.flags = 0
			a.setState(ResolutionSelectState{})
		}

	case ResolutionSelectState:
		if !pressed {
			return
		}
		if i, ok := key.digit(); ok {
			a.setState(SamplingSelectState{Resolution: Resolutions[i]})
		} else if key == KeyEscape {
			a.resumeLive(false)
		}

	case SamplingSelectState:
		if !pressed {
			return
		}
		if i, ok := key.digit(); ok {
			a.setState(RenderBeginState{Resolution: s.Resolution, SampleRate: SampleRates[i]})
		} else if key == KeyEscape {
			a.resumeLive(false)
		}

	case RenderProceedState:
		if pressed && key == KeyEscape {
			a.setState(CancelRequestedState{Job: s.Job})
		}

	case CancelRequestedState:
		if !pressed {
			return
		}
		switch key {
		case KeyY:
			a.logger.Printf("screenshot %s cancelled at %.2f%%\n", filepath.Base(s.Job.Filename), s.Job.Progress)
			a.resumeLive(true)
		case KeyN:
			a.setState(RenderProceedState{Job: s.Job})
		}
	}
}

// Tick advances the application by one step. It reports whether a full
// frame or screenshot pass completed during the tick. The only error is a
// failure to write a screenshot, after which live rendering resumes.
func (a *App) Tick() (bool, error) {
	now := a.now()
	elapsed := now.Sub(a.lastTick)
	a.lastTick = now

	switch s := a.state.(type) {
	case CameraControlState:
		a.render.Camera().ProceedControl(a.flags, elapsed.Seconds())
		return a.renderFrame(), nil

	case RenderBeginState:
		job := a.beginScreenshot(s.Resolution, s.SampleRate)
		a.setState(RenderProceedState{Job: job})

	case RenderProceedState:
		if a.proceedScreenshot(s.Job) {
			a.setState(RenderSaveState{Job: s.Job})
			return true, nil
		}

	case RenderSaveState:
		a.setState(RenderEndState{Job: s.Job})
		if err := a.writer.WriteScreenshot(s.Job.Filename, a.render.Image()); err != nil {
			a.logger.Printf("failed to save screenshot %s: %v\n", s.Job.Filename, err)
			return false, fmt.Errorf("failed to save screenshot: %w", err)
		}
		a.logger.Printf("saved screenshot %s\n", s.Job.Filename)

	case RenderEndState:
		a.resumeLive(true)

	default:
		// selection states and a paused screenshot wait for input
		if a.settings.IdleSleep > 0 {
			a.sleep(a.settings.IdleSleep)
		}
	}

	return false, nil
}

// renderFrame advances live rendering by one chunk, restarting the frame
// with new quality settings when the motion state calls for it
func (a *App) renderFrame() bool {
	inMotion := a.flags != 0 || a.render.Camera().InMotion()

	if !a.render.InProgress() || (inMotion && a.motionSamples != a.prevSamples) {
		if inMotion {
			a.adaptMotionSamples()
		}

		moving := inMotion || a.prevInMotion
		reflections, samples := a.settings.StaticReflections, a.settings.StaticSamples
		if moving {
			reflections, samples = a.settings.MotionReflections, a.motionSamples
		}

		a.render.Begin(reflections, samples, !moving)
		a.chunk = 1
		a.prevSamples = samples
		a.prevInMotion = inMotion
	}

	spent, inProgress := a.advance()
	a.frameTimeAccum += spent

	if inProgress {
		return false
	}
	a.frameTime = a.frameTimeAccum
	a.frameTimeAccum = 0
	return true
}

// adaptMotionSamples coarsens or refines motion sampling by one step to
// bring the frame time into the target band
func (a *App) adaptMotionSamples() {
	switch {
	case a.frameTime > a.settings.MaxMotionFrameTime:
		a.motionSamples = max(a.motionSamples-1, a.settings.MotionMaxSamples)
	case a.frameTime < a.settings.MinMotionFrameTime:
		a.motionSamples = min(a.motionSamples+1, a.settings.MotionMinSamples)
	}
}

// advance renders one chunk and resizes the next chunk to keep its render
// time inside the target band
func (a *App) advance() (time.Duration, bool) {
	start := a.now()
	inProgress := a.render.Advance(a.chunk)
	spent := a.now().Sub(start)

	if inProgress {
		width, height := a.render.Size()
		switch {
		case spent < a.settings.MinChunkTime:
			a.chunk = min(a.chunk*2, width*height)
		case spent > a.settings.MaxChunkTime:
			a.chunk = max(a.chunk/2, 1)
		}
	}
	return spent, inProgress
}

func (a *App) beginScreenshot(res Resolution, rate SampleRate) *ScreenshotJob {
	now := a.now()
	job := &ScreenshotJob{
		Resolution: res,
		SampleRate: rate,
		Filename:   filepath.Join(a.settings.ScreenshotDir, fmt.Sprintf("screenshot_%08X.bmp", now.UnixNano())),
		Started:    now,
	}

	a.render.Resize(res.Width, res.Height)
	a.render.Begin(a.settings.ScreenshotReflections, rate.Rate, false)
	a.chunk = 1

	a.logger.Printf("rendering screenshot %s at %dx%d, %dx%d supersampling\n",
		job.Filename, res.Width, res.Height, rate.Rate, rate.Rate)
	return job
}

func (a *App) proceedScreenshot(job *ScreenshotJob) bool {
	_, inProgress := a.advance()
	job.Progress = a.render.Progress()
	return !inProgress
}
