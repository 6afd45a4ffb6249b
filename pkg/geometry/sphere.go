package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material

	radiusSquared float64
}

// NewSphere creates a new sphere. The radius must be positive.
func NewSphere(center core.Vec3, radius float64, mat material.Material) *Sphere {
	if !(radius > 0) {
		panic(fmt.Sprintf("geometry: invalid sphere radius %g", radius))
	}
	return &Sphere{
		Center:        center,
		Radius:        radius,
		Material:      mat,
		radiusSquared: radius * radius,
	}
}

// Intersect finds the near intersection of the ray with the sphere surface.
// Origins inside the sphere do not hit it.
func (s *Sphere) Intersect(origin, ray core.Vec3) (Hit, bool) {
	// Quadratic equation coefficients: at² + bt + c = 0
	oc := origin.Subtract(s.Center)
	a := ray.LengthSquared()
	b := 2 * ray.Dot(oc)
	c := oc.LengthSquared() - s.radiusSquared

	discriminant := b*b - 4*a*c
	if discriminant < 0 || a < core.VerySmallNumber {
		return Hit{}, false
	}

	t := (-b - math.Sqrt(discriminant)) / (2 * a)
	if t < core.VerySmallNumber {
		return Hit{}, false
	}

	fullRay := ray.Multiply(t)
	distance := fullRay.Length()
	if distance < core.Delta {
		return Hit{}, false
	}

	point := origin.Add(fullRay)
	normal := point.Subtract(s.Center)

	return Hit{
		Distance:  distance,
		Point:     point,
		Normal:    normal,
		Reflected: fullRay.Reflect(normal),
		Material:  s.Material,
	}, true
}
