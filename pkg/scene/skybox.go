package scene

import (
	"math"

	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/material"
)

// Skybox atlas layout: a 4x3 grid of square cube faces.
//
//	.     top    .     .
//	left  front  right back
//	.     bottom .     .
//
// Row 0 of the texture is the bottom row of the atlas.
const (
	atlasColumns = 4
	atlasRows    = 3

	// keeps lookups from bleeding into the neighbouring tile
	tileEdgeMargin = 1e-7
)

type face struct {
	u, v float64 // tile center in texture coordinates
}

var (
	faceLeft   = face{1.0 / 8.0, 3.0 / 6.0}
	faceFront  = face{3.0 / 8.0, 3.0 / 6.0}
	faceRight  = face{5.0 / 8.0, 3.0 / 6.0}
	faceBack   = face{7.0 / 8.0, 3.0 / 6.0}
	faceTop    = face{3.0 / 8.0, 5.0 / 6.0}
	faceBottom = face{3.0 / 8.0, 1.0 / 6.0}
)

// Skybox maps ray directions onto a cube map stored as a single atlas texture
type Skybox struct {
	texture        *material.Texture
	halfTileWidth  float64
	halfTileHeight float64
}

// NewSkybox creates a skybox from an atlas texture
func NewSkybox(texture *material.Texture) *Skybox {
	return &Skybox{
		texture:        texture,
		halfTileWidth:  1.0/(2*atlasColumns) - tileEdgeMargin,
		halfTileHeight: 1.0/(2*atlasRows) - tileEdgeMargin,
	}
}

// Texture returns the underlying atlas
func (s *Skybox) Texture() *material.Texture {
	return s.texture
}

// Sample returns the background color seen along ray
func (s *Skybox) Sample(ray core.Vec3) core.Vec3 {
	u, v := s.atlasUV(ray)
	return s.texture.Sample(u, v)
}

// atlasUV picks the cube face by the dominant axis of ray and projects the
// other two components onto that face's tile.
func (s *Skybox) atlasUV(ray core.Vec3) (u, v float64) {
	r := ray.Normalize()
	ax := math.Abs(r.X) + core.VerySmallNumber
	ay := math.Abs(r.Y) + core.VerySmallNumber
	az := math.Abs(r.Z) + core.VerySmallNumber
	hw, hh := s.halfTileWidth, s.halfTileHeight

	switch {
	case az >= ax && az >= ay:
		if r.Z > 0 {
			return faceFront.u + r.X/az*hw, faceFront.v + r.Y/az*hh
		}
		return faceBack.u - r.X/az*hw, faceBack.v + r.Y/az*hh
	case ax >= ay && ax >= az:
		if r.X > 0 {
			return faceRight.u - r.Z/ax*hw, faceRight.v + r.Y/ax*hh
		}
		return faceLeft.u + r.Z/ax*hw, faceLeft.v + r.Y/ax*hh
	default:
		if r.Y > 0 {
			return faceTop.u + r.X/ay*hw, faceTop.v - r.Z/ay*hh
		}
		return faceBottom.u + r.X/ay*hw, faceBottom.v + r.Z/ay*hh
	}
}

// NewSkyboxAtlas renders a procedural sky into an atlas of the given tile
// size: a horizon-to-zenith gradient above, darker ground below.
func NewSkyboxAtlas(tileSize int) *material.Texture {
	width := tileSize * atlasColumns
	height := tileSize * atlasRows
	pixels := make([]core.Vec3, width*height)
	sky := newSkyGradient()

	type tile struct {
		col, row  int
		direction func(a, b float64) core.Vec3
	}
	// inverse of atlasUV for each face, a and b in [-1, 1] across the tile
	tiles := []tile{
		{0, 1, func(a, b float64) core.Vec3 { return core.NewVec3(-1, b, a) }},
		{1, 1, func(a, b float64) core.Vec3 { return core.NewVec3(a, b, 1) }},
		{2, 1, func(a, b float64) core.Vec3 { return core.NewVec3(1, b, -a) }},
		{3, 1, func(a, b float64) core.Vec3 { return core.NewVec3(-a, b, -1) }},
		{1, 2, func(a, b float64) core.Vec3 { return core.NewVec3(a, 1, -b) }},
		{1, 0, func(a, b float64) core.Vec3 { return core.NewVec3(a, -1, b) }},
	}

	for _, t := range tiles {
		for y := 0; y < tileSize; y++ {
			for x := 0; x < tileSize; x++ {
				a := (float64(x)+0.5)/float64(tileSize)*2 - 1
				b := (float64(y)+0.5)/float64(tileSize)*2 - 1
				px := t.col*tileSize + x
				py := t.row*tileSize + y
				pixels[py*width+px] = sky.color(t.direction(a, b))
			}
		}
	}

	return material.NewTexture(width, height, pixels)
}

// skyGradientSteps is the row count of the gradient lookup textures
const skyGradientSteps = 64

// skyGradient maps elevation to color through two vertical gradients that
// start at the horizon, one towards the zenith and one towards the ground
type skyGradient struct {
	above, below *material.Texture
}

func newSkyGradient() skyGradient {
	horizon := core.NewColor(0.85, 0.9, 1.0)
	zenith := core.NewColor(0.25, 0.45, 0.85)
	ground := core.NewColor(0.35, 0.32, 0.28)

	return skyGradient{
		above: material.NewGradientTexture(2, skyGradientSteps, horizon, zenith),
		below: material.NewGradientTexture(2, skyGradientSteps, horizon, ground),
	}
}

func (g skyGradient) color(direction core.Vec3) core.Vec3 {
	h := direction.Normalize().Y
	tex := g.above
	if h < 0 {
		tex = g.below
	}
	// row t*(steps-1), blended between neighbouring rows
	t := math.Sqrt(math.Abs(h))
	return tex.Sample(0, t*float64(skyGradientSteps-1)/float64(skyGradientSteps))
}
