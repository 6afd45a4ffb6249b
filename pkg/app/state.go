package app

import "time"

// StateKind names an application state
type StateKind int

// State kinds
const (
	CameraControl StateKind = iota
	ScreenshotResolutionSelect
	ScreenshotSamplingSelect
	ScreenshotRenderBegin
	ScreenshotRenderProceed
	ScreenshotRenderCancelRequested
	ScreenshotRenderSave
	ScreenshotRenderEnd
)

func (k StateKind) String() string {
	switch k {
	case CameraControl:
		return "CameraControl"
	case ScreenshotResolutionSelect:
		return "ScreenshotResolutionSelect"
	case ScreenshotSamplingSelect:
		return "ScreenshotSamplingSelect"
	case ScreenshotRenderBegin:
		return "ScreenshotRenderBegin"
	case ScreenshotRenderProceed:
		return "ScreenshotRenderProceed"
	case ScreenshotRenderCancelRequested:
		return "ScreenshotRenderCancelRequested"
	case ScreenshotRenderSave:
		return "ScreenshotRenderSave"
	case ScreenshotRenderEnd:
		return "ScreenshotRenderEnd"
	default:
		return "Unknown"
	}
}

// State is the application state together with the data only that state
// carries. Implementations are the *State types in this package.
type State interface {
	Kind() StateKind
}

// CameraControlState is live camera control with adaptive rendering
type CameraControlState struct{}

// ResolutionSelectState waits for a screenshot resolution choice
type ResolutionSelectState struct{}

// SamplingSelectState waits for a supersampling choice
type SamplingSelectState struct {
	Resolution Resolution
}

// ScreenshotJob describes a screenshot being rendered
type ScreenshotJob struct {
	Resolution Resolution
	SampleRate SampleRate
	Filename   string
	Started    time.Time
	Progress   float64 // percent
}

// RenderBeginState starts the screenshot render on the next tick
type RenderBeginState struct {
	Resolution Resolution
	SampleRate SampleRate
}

// RenderProceedState advances the screenshot render every tick
type RenderProceedState struct {
	Job *ScreenshotJob
}

// CancelRequestedState pauses the screenshot render until the cancel is
// confirmed or declined
type CancelRequestedState struct {
	Job *ScreenshotJob
}

// RenderSaveState writes the finished screenshot on the next tick
type RenderSaveState struct {
	Job *ScreenshotJob
}

// RenderEndState restores live rendering on the next tick
type RenderEndState struct {
	Job *ScreenshotJob
}

func (CameraControlState) Kind() StateKind    { return CameraControl }
func (ResolutionSelectState) Kind() StateKind { return ScreenshotResolutionSelect }
func (SamplingSelectState) Kind() StateKind   { return ScreenshotSamplingSelect }
func (RenderBeginState) Kind() StateKind      { return ScreenshotRenderBegin }
func (RenderProceedState) Kind() StateKind    { return ScreenshotRenderProceed }
func (CancelRequestedState) Kind() StateKind  { return ScreenshotRenderCancelRequested }
func (RenderSaveState) Kind() StateKind       { return ScreenshotRenderSave }
func (RenderEndState) Kind() StateKind        { return ScreenshotRenderEnd }
