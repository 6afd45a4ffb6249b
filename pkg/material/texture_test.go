package material

import (
	"errors"
	"testing"

	"github.com/df07/go-reflax-raytracer/pkg/core"
)

// gradientTexture creates a 4x4 texture where each pixel has a unique value
func gradientTexture() *Texture {
	pixels := make([]core.Vec3, 16)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			val := float64(y*4+x) / 15.0
			pixels[y*4+x] = core.NewVec3(val, val, val)
		}
	}
	return NewTexture(4, 4, pixels)
}

func TestTexturePixelColor(t *testing.T) {
	texture := gradientTexture()

	color, err := texture.PixelColor(2, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := core.NewVec3(6.0/15.0, 6.0/15.0, 6.0/15.0)
	if !color.Equals(expected) {
		t.Errorf("Pixel (2,1): expected %v, got %v", expected, color)
	}

	outOfBounds := [][2]int{{4, 0}, {0, 4}, {4, 4}, {-1, 0}}
	for _, p := range outOfBounds {
		if _, err := texture.PixelColor(p[0], p[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Pixel %v: expected ErrOutOfBounds, got %v", p, err)
		}
	}
}

func TestTextureTexelExactAtPixels(t *testing.T) {
	texture := gradientTexture()

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			u := float64(x) / 4
			v := float64(y) / 4
			color, err := texture.TexelColor(u, v)
			if err != nil {
				t.Fatalf("Texel (%f,%f): unexpected error: %v", u, v, err)
			}
			expected := texture.Pixels[y*4+x]
			if !color.ApproxEquals(expected, 1e-12) {
				t.Errorf("Texel (%f,%f): expected %v, got %v", u, v, expected, color)
			}
		}
	}
}

func TestTextureTexelLinearBetweenPixels(t *testing.T) {
	texture := gradientTexture()

	// halfway between pixel (1,2) and (2,2)
	color, err := texture.TexelColor(1.5/4, 2.0/4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	left := texture.Pixels[2*4+1]
	right := texture.Pixels[2*4+2]
	expected := left.Add(right).Multiply(0.5)
	if !color.ApproxEquals(expected, 1e-12) {
		t.Errorf("Expected average %v, got %v", expected, color)
	}
}

func TestTextureTexelOutOfRange(t *testing.T) {
	texture := gradientTexture()

	cases := [][2]float64{{-0.1, 0.5}, {0.5, -0.1}, {1.1, 0.5}, {0.5, 1.1}}
	for _, uv := range cases {
		if _, err := texture.TexelColor(uv[0], uv[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Texel %v: expected ErrOutOfBounds, got %v", uv, err)
		}
	}

	// the upper edge is accepted and resolves to the last pixel
	color, err := texture.TexelColor(1, 1)
	if err != nil {
		t.Fatalf("Texel (1,1): unexpected error: %v", err)
	}
	if !color.Equals(texture.Pixels[15]) {
		t.Errorf("Texel (1,1): expected %v, got %v", texture.Pixels[15], color)
	}
}

func TestMaterialConstructors(t *testing.T) {
	white := core.NewVec3(1, 1, 1)

	m := NewMetal(white, 0.9)
	if m.Kind != Metal || m.Reflectivity != 0.9 || !m.Color.Equals(white) {
		t.Errorf("Unexpected metal material %+v", m)
	}

	d := NewDielectric(white, 0.25)
	if d.Kind != Dielectric || d.Reflectivity != 0.25 || d.Transparency != 0 {
		t.Errorf("Unexpected dielectric material %+v", d)
	}

	if Metal.String() != "metal" || Dielectric.String() != "dielectric" {
		t.Errorf("Unexpected kind names %q %q", Metal, Dielectric)
	}
}
