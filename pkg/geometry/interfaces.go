package geometry

import "github.com/df07/go-reflax-raytracer/pkg/core"

// Shape is anything a ray can be intersected with. The ray direction does not
// need to be normalized; hits closer than core.Delta are rejected so rays
// leaving a surface do not hit it again.
type Shape interface {
	Intersect(origin, ray core.Vec3) (Hit, bool)
}
