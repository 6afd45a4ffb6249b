package app

import "time"

// Settings tunes the adaptive quality loop and the screenshot workflow
type Settings struct {
	// Sample count while the camera is still
	StaticSamples int
	// Finest and coarsest sample counts while the camera moves. Both are
	// negative: -1 traces every pixel, -8 one pixel per 8x8 block.
	MotionMinSamples int
	MotionMaxSamples int

	StaticReflections     int
	MotionReflections     int
	ScreenshotReflections int

	// Target frame time band while the camera moves
	MinMotionFrameTime time.Duration
	MaxMotionFrameTime time.Duration

	// Target time band for a single render chunk
	MinChunkTime time.Duration
	MaxChunkTime time.Duration

	// Sleep between ticks in states that do not render
	IdleSleep time.Duration

	ScreenshotDir string
}

// DefaultSettings returns the standard tuning
func DefaultSettings() Settings {
	return Settings{
		StaticSamples:         1,
		MotionMinSamples:      -1,
		MotionMaxSamples:      -8,
		StaticReflections:     15,
		MotionReflections:     4,
		ScreenshotReflections: 20,
		MinMotionFrameTime:    10 * time.Millisecond,
		MaxMotionFrameTime:    20 * time.Millisecond,
		MinChunkTime:          5 * time.Millisecond,
		MaxChunkTime:          20 * time.Millisecond,
		IdleSleep:             10 * time.Millisecond,
		ScreenshotDir:         ".",
	}
}

// Resolution is a screenshot size choice
type Resolution struct {
	Width  int
	Height int
	Tip    string
}

// Resolutions lists the screenshot sizes selected by keys 1-9
var Resolutions = [9]Resolution{
	{800, 600, "(4:3)"},
	{1024, 768, "(4:3)"},
	{1280, 960, "(4:3)"},
	{1280, 800, "(16:10)"},
	{1680, 1050, "(16:10)"},
	{1920, 1200, "(16:10)"},
	{1280, 720, "(HD)"},
	{1920, 1080, "(Full HD)"},
	{7680, 4320, "(Super Hi Vision 16:9)"},
}

// SampleRate is a screenshot supersampling choice
type SampleRate struct {
	Rate int
	Tip  string
}

// SampleRates lists the screenshot supersampling rates selected by keys 1-9
var SampleRates = [9]SampleRate{
	{1, "(fast but rough)"},
	{2, ""},
	{4, ""},
	{8, ""},
	{16, ""},
	{32, ""},
	{64, ""},
	{128, ""},
	{256, "(slow but smooth)"},
}
