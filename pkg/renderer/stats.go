package renderer

// RenderStats contains cumulative statistics about the rendering process
type RenderStats struct {
	Passes int64 // Completed passes
	Pixels int64 // Pixels advanced over, traced or not
	Rays   int64 // Primary rays traced
}
