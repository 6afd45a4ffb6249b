package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/df07/go-reflax-raytracer/pkg/core"
)

// Status is a snapshot of what the display shows besides the image
type Status struct {
	State         string   `json:"state"`
	Lines         []string `json:"lines"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	FrameTimeMs   float64  `json:"frameTimeMs"`
	BlendedFrames int      `json:"blendedFrames"`
	Progress      float64  `json:"progress"`
}

// Status returns the current status snapshot
func (a *App) Status() Status {
	width, height := a.render.Size()
	return Status{
		State:         a.state.Kind().String(),
		Lines:         a.StatusLines(),
		Width:         width,
		Height:        height,
		FrameTimeMs:   float64(a.frameTime) / float64(time.Millisecond),
		BlendedFrames: a.render.AdditiveCounter(),
		Progress:      a.render.Progress(),
	}
}

// StatusLines returns the overlay text for the current state
func (a *App) StatusLines() []string {
	switch s := a.state.(type) {
	case CameraControlState:
		return a.cameraControlLines()
	case ResolutionSelectState:
		lines := []string{"Select screenshot resolution (keys 1-9)", " "}
		for i, res := range Resolutions {
			lines = append(lines, fmt.Sprintf("%d : %dx%d %s", i+1, res.Width, res.Height, res.Tip))
		}
		return append(lines, " ", "ESC : cancel")
	case SamplingSelectState:
		lines := []string{"Select supersampling rate (keys 1-9)", " "}
		for i, ss := range SampleRates {
			lines = append(lines, fmt.Sprintf("%d : %dx%d %s", i+1, ss.Rate, ss.Rate, ss.Tip))
		}
		return append(lines, " ", "ESC : cancel")
	case RenderBeginState:
		return a.screenshotLines(&ScreenshotJob{Resolution: s.Resolution, SampleRate: s.SampleRate}, false)
	case RenderProceedState:
		return a.screenshotLines(s.Job, false)
	case CancelRequestedState:
		return a.screenshotLines(s.Job, true)
	case RenderSaveState:
		return a.screenshotLines(s.Job, false)
	case RenderEndState:
		return a.screenshotLines(s.Job, false)
	}
	return nil
}

func (a *App) cameraControlLines() []string {
	width, height := a.render.Size()

	frameTime := fmt.Sprintf("Frame time: %.0f ms", a.frameTime.Seconds()*1000)
	if a.frameTime >= 10*time.Second {
		frameTime = fmt.Sprintf("Frame time: %.3f s", a.frameTime.Seconds())
	}

	return []string{
		fmt.Sprintf("Resolution : %dx%d", width, height),
		frameTime,
		fmt.Sprintf("Blended frames : %d", a.render.AdditiveCounter()),
		" ",
		"WSAD : move",
		"Cursor keys: turn",
		"Space : ascent",
		"Ctrl : descent",
		" ",
		"F2 : save screenshot",
	}
}

func (a *App) screenshotLines(job *ScreenshotJob, cancelRequested bool) []string {
	name := ""
	if job.Filename != "" {
		name = filepath.Base(job.Filename)
	}

	lines := []string{
		"Saving screenshot:",
		name,
		fmt.Sprintf("Resolution: %dx%d", job.Resolution.Width, job.Resolution.Height),
		fmt.Sprintf("SSAA: %dx%d", job.SampleRate.Rate, job.SampleRate.Rate),
		"",
		fmt.Sprintf("Progress: %.2f %%", job.Progress),
	}

	if job.Progress > core.VerySmallNumber && !job.Started.IsZero() {
		lines = append(lines, "Estimated time left: "+formatTimeLeft(a.now().Sub(job.Started), job.Progress), "")
	}

	if cancelRequested {
		return append(lines, "Do you want to cancel ? ( Y / N ) ")
	}
	return append(lines, "Press ESC to cancel")
}

// formatTimeLeft extrapolates the remaining time from the time spent so far
func formatTimeLeft(spent time.Duration, progress float64) string {
	left := int64(spent.Seconds() * (100/progress - 1))
	if left < 0 {
		left = 0
	}
	return fmt.Sprintf("%d h %02d m %02d s", left/3600, left%3600/60, left%60)
}
