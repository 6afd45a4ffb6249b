package material

import "github.com/df07/go-reflax-raytracer/pkg/core"

// Kind selects how a surface splits light between its own color and the
// reflection.
type Kind int

const (
	// Metal reflects a fixed share of light tinted by its color
	Metal Kind = iota
	// Dielectric reflects according to a Fresnel-like view angle curve
	Dielectric
)

func (k Kind) String() string {
	switch k {
	case Metal:
		return "metal"
	case Dielectric:
		return "dielectric"
	default:
		return "unknown"
	}
}

// Material describes the surface of a primitive. Hit results carry a copy.
type Material struct {
	Kind         Kind
	Color        core.Vec3
	Reflectivity float64 // 0 = rough, 1 = polished
	Transparency float64 // reserved
}

// New creates a material
func New(kind Kind, color core.Vec3, reflectivity, transparency float64) Material {
	return Material{
		Kind:         kind,
		Color:        color,
		Reflectivity: reflectivity,
		Transparency: transparency,
	}
}

// NewMetal creates an opaque metal material
func NewMetal(color core.Vec3, reflectivity float64) Material {
	return New(Metal, color, reflectivity, 0)
}

// NewDielectric creates an opaque dielectric material
func NewDielectric(color core.Vec3, reflectivity float64) Material {
	return New(Dielectric, color, reflectivity, 0)
}
