package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/scene"
)

// Render owns the framebuffer and renders the scene into it a chunk of
// pixels at a time, scanning rows left to right starting at y = 0.
type Render struct {
	scene  *scene.Scene
	camera *Camera
	rng    *core.Random

	image  []core.Vec3
	width  int
	height int

	curX, curY int
	inProgress bool

	// parameters of the pass in progress
	maxBounces int
	samples    int
	additive   bool
	eye        core.Vec3
	view       core.Mat3

	additiveCounter int
	stats           RenderStats
}

// NewRender creates a renderer for the scene seen through camera. The
// framebuffer is empty until Resize is called.
func NewRender(s *scene.Scene, camera *Camera, rng *core.Random) *Render {
	return &Render{
		scene:  s,
		camera: camera,
		rng:    rng,
	}
}

// Camera returns the live camera
func (r *Render) Camera() *Camera {
	return r.camera
}

// Scene returns the scene being rendered
func (r *Render) Scene() *scene.Scene {
	return r.scene
}

// Size returns the current image size
func (r *Render) Size() (width, height int) {
	return r.width, r.height
}

// InProgress reports whether a pass has begun and not yet completed
func (r *Render) InProgress() bool {
	return r.inProgress
}

// AdditiveCounter returns the number of passes blended into the image
func (r *Render) AdditiveCounter() int {
	return r.additiveCounter
}

// Stats returns the cumulative render statistics
func (r *Render) Stats() RenderStats {
	return r.stats
}

// Resize sets the image size, abandoning any pass in progress. The
// framebuffer only ever grows.
func (r *Render) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("renderer: invalid image size %dx%d", width, height))
	}

	if size := width * height; size > len(r.image) {
		grown := make([]core.Vec3, size)
		copy(grown, r.image)
		r.image = grown
	}

	r.width = width
	r.height = height
	r.additiveCounter = 0
	r.inProgress = false
	r.curX = 0
	r.curY = 0
}

// Begin starts a new pass. Positive samples supersample each pixel on a
// samples x samples grid; negative samples trace one pixel per |samples|
// block and fill the block with it. Additive passes are blended with the
// previous ones, otherwise the image is overwritten.
func (r *Render) Begin(maxBounces, samples int, additive bool) {
	if maxBounces <= 0 {
		panic(fmt.Sprintf("renderer: invalid bounce count %d", maxBounces))
	}
	if samples == 0 {
		panic("renderer: sample count must not be zero")
	}
	if r.width == 0 || r.height == 0 {
		panic("renderer: begin before resize")
	}

	r.maxBounces = maxBounces
	r.samples = samples
	r.additive = additive
	r.inProgress = true
	r.curX = 0
	r.curY = 0

	// later camera motion does not affect the pass in progress
	r.eye = r.camera.Eye
	r.view = r.camera.View

	if additive {
		r.additiveCounter++
	} else {
		r.additiveCounter = 0
	}
}

// Advance renders up to budget pixels and reports whether the pass is still
// in progress afterwards
func (r *Render) Advance(budget int) bool {
	if budget <= 0 {
		panic(fmt.Sprintf("renderer: invalid pixel budget %d", budget))
	}
	if !r.inProgress {
		panic("renderer: advance without a pass in progress")
	}
	if r.curX >= r.width || r.curY >= r.height {
		panic(fmt.Sprintf("renderer: cursor (%d, %d) outside %dx%d image", r.curX, r.curY, r.width, r.height))
	}

	rz := float64(r.width) / 2 / math.Tan(r.camera.FOV/2)
	halfWidth := float64(r.width) / 2
	halfHeight := float64(r.height) / 2

	for ; budget > 0; budget-- {
		rx := float64(r.curX) - halfWidth
		ry := float64(r.curY) - halfHeight

		if r.samples < 0 {
			r.downsample(rx, ry, rz)
		} else {
			r.supersample(rx, ry, rz)
		}
		r.stats.Pixels++

		r.curX++
		if r.curX == r.width {
			r.curX = 0
			r.curY++
		}
		if r.curY == r.height {
			r.inProgress = false
			r.stats.Passes++
			break
		}
	}

	return r.inProgress
}

// PixelRay returns the camera ray through pixel (x, y) as the camera is
// positioned now, which may differ from the pass in progress
func (r *Render) PixelRay(x, y int) (origin, ray core.Vec3) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		panic(fmt.Sprintf("renderer: pixel (%d, %d) outside %dx%d image", x, y, r.width, r.height))
	}
	rz := float64(r.width) / 2 / math.Tan(r.camera.FOV/2)
	local := core.NewVec3(float64(x)-float64(r.width)/2, float64(y)-float64(r.height)/2, rz)
	return r.camera.Eye, r.camera.View.MulVec(local)
}

// RenderAll renders a complete pass in one call
func (r *Render) RenderAll(maxBounces, samples int, additive bool) {
	r.Begin(maxBounces, samples, additive)
	r.Advance(r.width * r.height)
}

func (r *Render) trace(ray core.Vec3) core.Vec3 {
	r.stats.Rays++
	return r.scene.Trace(r.eye, r.view.MulVec(ray), r.maxBounces, r.rng)
}

func (r *Render) downsample(rx, ry, rz float64) {
	block := -r.samples
	if r.curX%block != 0 || r.curY%block != 0 {
		return
	}

	c := r.trace(core.NewVec3(rx, ry, rz))
	endX := min(r.width, r.curX+block)
	endY := min(r.height, r.curY+block)

	for y := r.curY; y < endY; y++ {
		for x := r.curX; x < endX; x++ {
			r.image[y*r.width+x] = c
		}
	}
}

func (r *Render) supersample(rx, ry, rz float64) {
	// one sub-pixel offset per pixel, only when blending passes
	var jitterX, jitterY float64
	if r.additive {
		jitterX = r.rng.Float64()
		jitterY = r.rng.Float64()
	}

	sum := core.Vec3{}
	step := 1 / float64(r.samples)
	for sx := 0; sx < r.samples; sx++ {
		for sy := 0; sy < r.samples; sy++ {
			ray := core.NewVec3(rx+float64(sx)*step+jitterX, ry+float64(sy)*step+jitterY, rz)
			sum = sum.Add(r.trace(ray))
		}
	}
	c := sum.Divide(float64(r.samples * r.samples))

	idx := r.curY*r.width + r.curX
	if r.additiveCounter > 1 {
		r.image[idx] = r.image[idx].Add(c)
	} else {
		r.image[idx] = c
	}
}

// Pixel returns the color at (x, y), averaged over the blended passes
func (r *Render) Pixel(x, y int) core.Vec3 {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		panic(fmt.Sprintf("renderer: pixel (%d, %d) outside %dx%d image", x, y, r.width, r.height))
	}

	c := r.image[y*r.width+x]
	if r.additiveCounter > 1 {
		c = c.Divide(float64(r.additiveCounter))
	}
	return c
}

// Progress returns the percentage of the current pass already rendered
func (r *Render) Progress() float64 {
	if r.width == 0 || r.height == 0 {
		return 0
	}
	return float64(r.curX+r.curY*r.width) * 100 / float64(r.width*r.height)
}

// Image converts the framebuffer to an image. Row 0 of the framebuffer is
// the bottom of the picture.
func (r *Render) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			rgb := r.Pixel(x, y).RGB()
			img.SetRGBA(x, r.height-1-y, color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255})
		}
	}
	return img
}
