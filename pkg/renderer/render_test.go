package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/material"
	"github.com/df07/go-reflax-raytracer/pkg/scene"
)

const testFOV = 1.0

// gradientSky returns a scene with nothing but a sky whose red channel
// equals the atlas u coordinate, so a ray's color is a linear function of
// its x/z slope while it stays on the front face.
func gradientSky() *scene.Scene {
	const width, height = 64, 48
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = core.NewColor(float64(x)/width, 0.5, 0.25)
		}
	}
	sky := scene.NewSkybox(material.NewTexture(width, height, pixels))
	return scene.NewScene(sky, core.NewColor(1, 1, 1), 0)
}

// expectedRed is the red channel seen by a ray through (rx, ry, rz) of a
// camera looking down +Z
func expectedRed(rx, rz float64) float64 {
	const halfTileWidth = 1.0/8.0 - 1e-7
	return 3.0/8.0 + rx/rz*halfTileWidth
}

func newTestRender(width, height int, seed int32) *Render {
	camera := NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), testFOV)
	r := NewRender(gradientSky(), camera, core.NewRandom(seed))
	r.Resize(width, height)
	return r
}

func TestRender_ProgressMonotonic(t *testing.T) {
	r := newTestRender(5, 4, 1)
	r.Begin(4, 1, false)

	falseCount := 0
	prev := r.Progress()
	for calls := 0; r.InProgress(); calls++ {
		if calls > 20 {
			t.Fatal("Render did not complete")
		}
		if !r.Advance(3) {
			falseCount++
		}
		if p := r.Progress(); p < prev {
			t.Errorf("Progress decreased from %f to %f", prev, p)
		} else {
			prev = p
		}
	}

	if falseCount != 1 {
		t.Errorf("Expected Advance to return false exactly once, got %d", falseCount)
	}
	if prev != 100 {
		t.Errorf("Expected 100%% progress at the end, got %f", prev)
	}
	if stats := r.Stats(); stats.Passes != 1 || stats.Pixels != 20 || stats.Rays != 20 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestRender_CompletesOnLastPixel(t *testing.T) {
	r := newTestRender(3, 2, 1)
	r.Begin(4, 1, false)

	if !r.Advance(5) {
		t.Fatal("Expected render in progress after 5 of 6 pixels")
	}
	if r.Advance(100) {
		t.Fatal("Expected render complete after the last pixel")
	}
}

func TestRender_SingleSample(t *testing.T) {
	const width, height = 8, 6
	r := newTestRender(width, height, 1)
	r.RenderAll(4, 1, false)

	rz := float64(width) / 2 / math.Tan(testFOV/2)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			expected := expectedRed(float64(x)-width/2, rz)
			if got := r.Pixel(x, y).X; math.Abs(got-expected) > 1e-6 {
				t.Errorf("Pixel(%d, %d): expected red %f, got %f", x, y, expected, got)
			}
		}
	}
}

func TestRender_Supersample(t *testing.T) {
	const width, height = 8, 6
	r := newTestRender(width, height, 1)
	r.RenderAll(4, 2, false)

	// sub-samples at x offsets 0 and 0.5 average to an offset of 0.25
	rz := float64(width) / 2 / math.Tan(testFOV/2)
	expected := expectedRed(3+0.25-width/2, rz)
	if got := r.Pixel(3, 2).X; math.Abs(got-expected) > 1e-6 {
		t.Errorf("Expected red %f, got %f", expected, got)
	}
	if r.Stats().Rays != width*height*4 {
		t.Errorf("Expected %d rays, got %d", width*height*4, r.Stats().Rays)
	}
}

func TestRender_Downsample(t *testing.T) {
	const width, height = 5, 5
	r := newTestRender(width, height, 1)
	r.RenderAll(4, -2, false)

	if r.Stats().Rays != 9 {
		t.Errorf("Expected 9 traced pixels for 2x2 blocks of a 5x5 image, got %d", r.Stats().Rays)
	}

	blocks := [][2]int{{0, 0}, {2, 0}, {4, 0}, {0, 2}, {2, 2}, {4, 4}}
	for _, b := range blocks {
		corner := r.Pixel(b[0], b[1])
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				x, y := b[0]+dx, b[1]+dy
				if x >= width || y >= height {
					continue
				}
				if got := r.Pixel(x, y); !got.Equals(corner) {
					t.Errorf("Pixel(%d, %d) = %v, expected block color %v", x, y, got, corner)
				}
			}
		}
	}

	if r.Pixel(0, 0).Equals(r.Pixel(2, 0)) {
		t.Error("Expected neighbouring blocks to differ")
	}
}

func TestRender_AdditiveConverges(t *testing.T) {
	const width, height = 4, 4
	const passes = 256
	r := newTestRender(width, height, 12345)

	for i := 0; i < passes; i++ {
		r.RenderAll(4, 1, true)
	}

	if r.AdditiveCounter() != passes {
		t.Fatalf("Expected %d blended passes, got %d", passes, r.AdditiveCounter())
	}

	// uniform sub-pixel jitter averages to the pixel center
	rz := float64(width) / 2 / math.Tan(testFOV/2)
	for x := 0; x < width; x++ {
		expected := expectedRed(float64(x)+0.5-width/2, rz)
		if got := r.Pixel(x, 1).X; math.Abs(got-expected) > 0.003 {
			t.Errorf("Pixel(%d, 1): expected red near %f, got %f", x, expected, got)
		}
		// constant channels are unaffected by blending
		if got := r.Pixel(x, 1).Y; math.Abs(got-0.5) > 1e-9 {
			t.Errorf("Pixel(%d, 1): expected green 0.5, got %f", x, got)
		}
	}

	// a non-additive pass starts over
	r.Begin(4, 1, false)
	if r.AdditiveCounter() != 0 {
		t.Errorf("Expected counter reset, got %d", r.AdditiveCounter())
	}
}

func TestRender_SnapshotsCamera(t *testing.T) {
	r := newTestRender(4, 2, 1)
	r.Begin(4, 1, false)
	r.Advance(4)

	// turning the camera mid-pass leaves the rest of the pass unaffected
	r.Camera().Yaw = 0.3
	r.Camera().View = core.Mat3FromYawPitch(0.3, 0)
	r.Advance(4)

	rz := 4 / 2 / math.Tan(testFOV/2)
	expected := expectedRed(1-2, rz)
	if got := r.Pixel(1, 1).X; math.Abs(got-expected) > 1e-6 {
		t.Errorf("Expected red %f from the snapshot view, got %f", expected, got)
	}
}

func TestRender_Resize(t *testing.T) {
	r := newTestRender(4, 4, 1)
	r.RenderAll(4, 1, true)
	r.RenderAll(4, 1, true)

	r.Resize(2, 2)
	if w, h := r.Size(); w != 2 || h != 2 {
		t.Errorf("Expected 2x2, got %dx%d", w, h)
	}
	if r.AdditiveCounter() != 0 || r.InProgress() || r.Progress() != 0 {
		t.Error("Expected resize to reset the render state")
	}
	if len(r.image) != 16 {
		t.Errorf("Expected framebuffer to keep its capacity, got %d", len(r.image))
	}

	r.Resize(8, 8)
	if len(r.image) != 64 {
		t.Errorf("Expected framebuffer to grow to 64, got %d", len(r.image))
	}
}

func TestRender_Image(t *testing.T) {
	r := newTestRender(4, 3, 1)
	r.RenderAll(4, 1, false)
	img := r.Image()

	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("Expected 4x3 image, got %v", b)
	}

	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			rgb := r.Pixel(x, y).RGB()
			got := img.RGBAAt(x, 2-y)
			if got.R != rgb[0] || got.G != rgb[1] || got.B != rgb[2] || got.A != 255 {
				t.Errorf("Image(%d, %d) = %v, expected %v", x, 2-y, got, rgb)
			}
		}
	}
}

func TestRender_InvalidUsagePanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(r *Render)
	}{
		{"zero width", func(r *Render) { r.Resize(0, 4) }},
		{"zero height", func(r *Render) { r.Resize(4, 0) }},
		{"zero samples", func(r *Render) { r.Begin(4, 0, false) }},
		{"zero bounces", func(r *Render) { r.Begin(0, 1, false) }},
		{"advance before begin", func(r *Render) { r.Advance(1) }},
		{"zero budget", func(r *Render) { r.Begin(4, 1, false); r.Advance(0) }},
		{"advance after completion", func(r *Render) { r.RenderAll(4, 1, false); r.Advance(1) }},
		{"pixel out of range", func(r *Render) { r.Pixel(4, 0) }},
		{"negative pixel", func(r *Render) { r.Pixel(0, -1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRender(4, 4, 1)
			defer func() {
				if recover() == nil {
					t.Error("Expected panic")
				}
			}()
			tt.fn(r)
		})
	}
}

func TestRender_PixelRay(t *testing.T) {
	r := newTestRender(8, 6, 1)
	r.Camera().Eye = core.NewVec3(1, 2, 3)

	origin, ray := r.PixelRay(4, 3)
	if !origin.Equals(core.NewVec3(1, 2, 3)) {
		t.Errorf("Expected ray from the camera eye, got %v", origin)
	}
	if !ray.Normalize().ApproxEquals(r.Camera().Front(), 1e-9) {
		t.Errorf("Expected center ray along %v, got %v", r.Camera().Front(), ray.Normalize())
	}

	_, left := r.PixelRay(0, 3)
	_, right := r.PixelRay(7, 3)
	if left.X >= ray.X || right.X <= ray.X {
		t.Errorf("Expected x to grow left to right: %v %v %v", left, ray, right)
	}
}
