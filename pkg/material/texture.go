package material

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-reflax-raytracer/pkg/core"
)

// ErrOutOfBounds is returned for pixel or texel lookups outside the image
var ErrOutOfBounds = errors.New("position out of bounds")

// Texture provides color from a 2D image
type Texture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x], channels in [0, 1]
}

// NewTexture creates a new texture
func NewTexture(width, height int, pixels []core.Vec3) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// PixelColor returns the stored color of a single pixel
func (t *Texture) PixelColor(x, y int) (core.Vec3, error) {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return core.Vec3{}, fmt.Errorf("pixel (%d, %d) in %dx%d texture: %w", x, y, t.Width, t.Height, ErrOutOfBounds)
	}
	return t.Pixels[y*t.Width+x], nil
}

// TexelColor samples the texture at (u, v) in [0, 1] with bilinear filtering
func (t *Texture) TexelColor(u, v float64) (core.Vec3, error) {
	if u < 0 || u > 1 || v < 0 || v > 1 || math.IsNaN(u) || math.IsNaN(v) {
		return core.Vec3{}, fmt.Errorf("texel (%g, %g): %w", u, v, ErrOutOfBounds)
	}
	return t.Sample(u, v), nil
}

// Sample is TexelColor with u and v clamped into range instead of rejected
func (t *Texture) Sample(u, v float64) core.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return core.Vec3{}
	}

	fx := clampUnit(u) * float64(t.Width)
	fy := clampUnit(v) * float64(t.Height)
	x := int(fx)
	y := int(fy)

	// the last row and column have no right/upper neighbour to blend with
	if x >= t.Width-1 || y >= t.Height-1 {
		return t.Pixels[y*t.Width+x]
	}

	xFract := fx - float64(x)
	yFract := fy - float64(y)

	c00 := t.Pixels[y*t.Width+x]
	c10 := t.Pixels[y*t.Width+x+1]
	c01 := t.Pixels[(y+1)*t.Width+x]
	c11 := t.Pixels[(y+1)*t.Width+x+1]

	bottom := c00.Multiply(1 - xFract).Add(c10.Multiply(xFract))
	top := c01.Multiply(1 - xFract).Add(c11.Multiply(xFract))
	return bottom.Multiply(1 - yFract).Add(top.Multiply(yFract)).Saturate()
}

// clampUnit clamps into [0, 1) so the scaled coordinate stays inside the image
func clampUnit(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x >= 1 {
		return math.Nextafter(1, 0)
	}
	return x
}
