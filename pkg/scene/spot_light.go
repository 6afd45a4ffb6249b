package scene

import "github.com/df07/go-reflax-raytracer/pkg/core"

// SpotLight is a spherical light source. Radius softens shadows and widens
// the specular highlight; the origin may be astronomically far away.
type SpotLight struct {
	Origin core.Vec3
	Radius float64
	Color  core.Vec3
	Power  float64
}

// NewSpotLight creates a new spot light
func NewSpotLight(origin core.Vec3, radius float64, color core.Vec3, power float64) SpotLight {
	return SpotLight{
		Origin: origin,
		Radius: radius,
		Color:  color,
		Power:  power,
	}
}
