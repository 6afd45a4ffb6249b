package geometry

import (
	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/material"
)

// Hit contains information about a ray-object intersection
type Hit struct {
	Distance  float64           // Distance from the ray origin to Point
	Point     core.Vec3         // Point of intersection
	Normal    core.Vec3         // Surface normal, not necessarily unit length
	Reflected core.Vec3         // Incoming ray (scaled to Point) mirrored about Normal
	Material  material.Material // Surface material at Point
}
