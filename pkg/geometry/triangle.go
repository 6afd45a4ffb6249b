package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/material"
)

// Triangle represents a single triangle. Intersections are resolved in the
// triangle's own basis (edge2, edge1, -normal), where the hit parameter
// falls out of the local z coordinate and (x, y) are barycentric weights.
type Triangle struct {
	V0, V1, V2 core.Vec3
	Material   material.Material
	Normal     core.Vec3 // unit normal, (V1-V0) × (V2-V0) reversed

	toLocal core.Mat3

	texture *material.Texture
	uv      [3]core.Vec2
	uvBasis core.Mat3
}

// NewTriangle creates a triangle from three vertices. Vertices that do not
// span a plane are an authoring error and cause a panic.
func NewTriangle(v0, v1, v2 core.Vec3, mat material.Material) *Triangle {
	ax := v2.Subtract(v0)
	ay := v1.Subtract(v0)
	cross := ay.Cross(ax)
	if cross.Length() < core.VerySmallNumber {
		panic(fmt.Sprintf("geometry: degenerate triangle %v %v %v", v0, v1, v2))
	}
	normal := cross.Normalize()

	toLocal, err := core.Mat3FromCols(ax, ay, normal.Negate()).Inverse()
	if err != nil {
		panic(fmt.Sprintf("geometry: triangle basis: %v", err))
	}

	return &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Material: mat,
		Normal:   normal,
		toLocal:  toLocal,
	}
}

// SetTexture attaches a texture to the triangle. uv holds the texture
// coordinates of V0, V1 and V2 in that order.
func (t *Triangle) SetTexture(tex *material.Texture, uv [3]core.Vec2) {
	t.texture = tex
	t.uv = uv
	e2 := uv[2].Subtract(uv[0])
	e1 := uv[1].Subtract(uv[0])
	t.uvBasis = core.Mat3FromCols(
		core.NewVec3(e2.X, e2.Y, 0),
		core.NewVec3(e1.X, e1.Y, 0),
		core.NewVec3(0, 0, -1),
	)
}

// Barycentric returns the barycentric coordinates (u along V2-V0, v along
// V1-V0) and ray parameter of the ray's crossing with the triangle.
func (t *Triangle) Barycentric(origin, ray core.Vec3) (u, v, param float64, ok bool) {
	localOrigin := t.toLocal.MulVec(origin.Subtract(t.V0))
	localRay := t.toLocal.MulVec(ray)

	if math.Abs(localRay.Z) < core.VerySmallNumber {
		return 0, 0, 0, false // parallel to the plane
	}

	param = -localOrigin.Z / localRay.Z
	if param < core.VerySmallNumber {
		return 0, 0, 0, false
	}

	u = localOrigin.X + param*localRay.X
	v = localOrigin.Y + param*localRay.Y
	if u < 0 || v < 0 || u+v >= 1 {
		return 0, 0, 0, false
	}
	return u, v, param, true
}

// Intersect tests if a ray intersects with the triangle
func (t *Triangle) Intersect(origin, ray core.Vec3) (Hit, bool) {
	u, v, param, ok := t.Barycentric(origin, ray)
	if !ok {
		return Hit{}, false
	}

	fullRay := ray.Multiply(param)
	distanceSquared := fullRay.LengthSquared()
	if distanceSquared < core.Delta*core.Delta {
		return Hit{}, false
	}

	mat := t.Material
	if t.texture != nil {
		offset := t.uvBasis.MulVec(core.NewVec3(u, v, 0))
		mat.Color = t.texture.Sample(t.uv[0].X+offset.X, t.uv[0].Y+offset.Y)
	}

	return Hit{
		Distance:  math.Sqrt(distanceSquared),
		Point:     origin.Add(fullRay),
		Normal:    t.Normal,
		Reflected: fullRay.Reflect(t.Normal),
		Material:  mat,
	}, true
}

// Textured reports whether a texture replaces the material color
func (t *Triangle) Textured() bool {
	return t.texture != nil
}
