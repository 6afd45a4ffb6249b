package material

import (
	"github.com/df07/go-reflax-raytracer/pkg/core"
)

// NewCheckerboardTexture creates a procedural checkerboard pattern texture
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Vec3) *Texture {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			checkX := x / checkSize
			checkY := y / checkSize

			var color core.Vec3
			if (checkX+checkY)%2 == 0 {
				color = color1
			} else {
				color = color2
			}

			pixels[y*width+x] = color
		}
	}

	return NewTexture(width, height, pixels)
}

// NewTileTexture creates a periodic floor tile pattern: square tiles of
// tileSize pixels in two alternating colors separated by grout lines.
func NewTileTexture(size, tileSize, groutWidth int, color1, color2, grout core.Vec3) *Texture {
	tex := NewCheckerboardTexture(size, size, tileSize, color1, color2)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x%tileSize < groutWidth || y%tileSize < groutWidth {
				tex.Pixels[y*size+x] = grout
			}
		}
	}

	return tex
}

// NewGradientTexture creates a vertical gradient from color1 (row 0) to color2 (last row)
func NewGradientTexture(width, height int, color1, color2 core.Vec3) *Texture {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		t := 0.0
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		color := color1.Multiply(1.0 - t).Add(color2.Multiply(t))

		for x := 0; x < width; x++ {
			pixels[y*width+x] = color
		}
	}

	return NewTexture(width, height, pixels)
}
