package scene

import (
	"math"

	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/geometry"
	"github.com/df07/go-reflax-raytracer/pkg/material"
)

const (
	// Fixed reflectivity of metal surfaces
	metalReflectivity = 0.8

	// Bounces stop once every channel of the color multiplier is below this
	minColorMultiplier = 0.01
)

// Scene contains all the elements needed for tracing rays. It is built once
// and not modified while tracing.
type Scene struct {
	Skybox       *Skybox          // Background, may be nil for a black sky
	Shapes       []geometry.Shape // Objects in the scene, in insertion order
	Lights       []SpotLight      // Lights in the scene
	AmbientColor core.Vec3        // Color of the diffuse ambient light, also tints the sky
	AmbientPower float64          // Strength of the diffuse ambient light
}

// NewScene creates an empty scene
func NewScene(skybox *Skybox, ambientColor core.Vec3, ambientPower float64) *Scene {
	return &Scene{
		Skybox:       skybox,
		Shapes:       make([]geometry.Shape, 0),
		Lights:       make([]SpotLight, 0),
		AmbientColor: ambientColor,
		AmbientPower: ambientPower,
	}
}

// AddShape appends any shape to the scene
func (s *Scene) AddShape(shape geometry.Shape) {
	s.Shapes = append(s.Shapes, shape)
}

// AddSphere adds a sphere to the scene
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, mat)
	s.AddShape(sphere)
	return sphere
}

// AddTriangle adds a triangle to the scene
func (s *Scene) AddTriangle(v0, v1, v2 core.Vec3, mat material.Material) *geometry.Triangle {
	triangle := geometry.NewTriangle(v0, v1, v2, mat)
	s.AddShape(triangle)
	return triangle
}

// AddTexturedTriangle adds a triangle whose color is looked up in tex at the
// interpolated texture coordinates uv (one per vertex)
func (s *Scene) AddTexturedTriangle(v0, v1, v2 core.Vec3, mat material.Material, tex *material.Texture, uv [3]core.Vec2) *geometry.Triangle {
	triangle := geometry.NewTriangle(v0, v1, v2, mat)
	triangle.SetTexture(tex, uv)
	s.AddShape(triangle)
	return triangle
}

// AddSpotLight adds a spot light to the scene
func (s *Scene) AddSpotLight(origin core.Vec3, radius float64, color core.Vec3, power float64) {
	s.Lights = append(s.Lights, NewSpotLight(origin, radius, color, power))
}

// closestHit returns the nearest hit along the ray and the index of the shape
// that produced it. Equal distances keep the earlier shape.
func (s *Scene) closestHit(origin, ray core.Vec3) (geometry.Hit, int) {
	closest := geometry.Hit{}
	index := -1
	minDistance := math.MaxFloat64

	for i, shape := range s.Shapes {
		if hit, ok := shape.Intersect(origin, ray); ok && hit.Distance < minDistance {
			minDistance = hit.Distance
			closest = hit
			index = i
		}
	}

	return closest, index
}

// Intersect returns the nearest hit along the ray and the shape that
// produced it
func (s *Scene) Intersect(origin, ray core.Vec3) (geometry.Hit, geometry.Shape, bool) {
	hit, index := s.closestHit(origin, ray)
	if index < 0 {
		return hit, nil, false
	}
	return hit, s.Shapes[index], true
}

// occluded reports whether any shape other than skip blocks the ray
func (s *Scene) occluded(origin, ray core.Vec3, skip int) bool {
	for i, shape := range s.Shapes {
		if i == skip {
			continue
		}
		if _, ok := shape.Intersect(origin, ray); ok {
			return true
		}
	}
	return false
}

func (s *Scene) sky(ray core.Vec3) core.Vec3 {
	if s.Skybox == nil {
		return core.Vec3{}
	}
	return s.Skybox.Sample(ray).MultiplyVec(s.AmbientColor)
}

// Trace follows a ray through up to maxBounces reflections and returns the
// accumulated color. A single jitter vector is drawn from rng per call and
// shared by every light and bounce of that call.
func (s *Scene) Trace(origin, ray core.Vec3, maxBounces int, rng *core.Random) core.Vec3 {
	jitter := rng.InsideSphere(1.0)
	colorMultiplier := core.NewColor(1, 1, 1)
	output := core.Vec3{}
	ambient := s.AmbientColor.Multiply(s.AmbientPower)

	for bounce := 0; bounce < maxBounces; bounce++ {
		hit, hitIndex := s.closestHit(origin, ray)
		if hitIndex < 0 {
			output = output.Add(colorMultiplier.MultiplyVec(s.sky(ray))).Saturate()
			break
		}

		mat := hit.Material
		rayLength := ray.Length()
		normalLength := hit.Normal.Length()
		reflectedLength := hit.Reflected.Length()

		lightSum := core.Vec3{}
		specularSum := core.Vec3{}

		for _, light := range s.Lights {
			toLight := light.Origin.Subtract(hit.Point)

			// only surfaces facing the light
			if toLight.Dot(hit.Normal) <= core.VerySmallNumber {
				continue
			}

			toLightJittered := toLight.Add(jitter.Multiply(light.Radius))
			if s.occluded(hit.Point, toLightJittered, hitIndex) {
				continue
			}

			// diffuse
			toLightLength := toLight.Length()
			cosLight := 0.0
			if a := toLightLength * normalLength; a > core.VerySmallNumber {
				cosLight = toLight.Dot(hit.Normal) / a
			}
			if light.Power > core.VerySmallNumber {
				lightSum = lightSum.Add(light.Color.Multiply(cosLight * light.Power))
			}

			// specular
			angularRadiusSqCos := 0.0
			if a := toLight.LengthSquared(); a > core.VerySmallNumber {
				angularRadiusSqCos = 1 - light.Radius*light.Radius/a
			}
			if angularRadiusSqCos <= 0 {
				continue
			}

			toLightRough := toLight.Normalize().Add(jitter.Multiply(1 - mat.Reflectivity))
			cosSpecular := 0.0
			if a := toLightRough.Length() * reflectedLength; a > core.VerySmallNumber {
				cosSpecular = toLightRough.Dot(hit.Reflected) / a
			}
			cosSpecular = clamp(cosSpecular+(1-math.Sqrt(angularRadiusSqCos)), 0, 1)

			if cosSpecular > core.VerySmallNumber && light.Radius > core.VerySmallNumber {
				exponent := 1 + 3*mat.Reflectivity*toLightLength/light.Radius
				specular := math.Pow(cosSpecular, exponent) * mat.Reflectivity
				specularSum = specularSum.Add(light.Color.Multiply(specular))
			}
		}

		lightSum = ambient.Add(lightSum)

		var bounceColor core.Vec3
		switch mat.Kind {
		case material.Dielectric:
			// rough approximation of the Fresnel curve
			cosView := 0.0
			if a := rayLength * normalLength; a > core.VerySmallNumber {
				cosView = clamp(ray.Dot(hit.Normal.Negate())/a, 0, 1)
			}
			reflectivity := 0.2 + 0.8*math.Pow(1-cosView, 3)

			bounceColor = mat.Color.MultiplyVec(lightSum).Multiply(1 - reflectivity).Add(specularSum)
			bounceColor = bounceColor.MultiplyVec(colorMultiplier)
			colorMultiplier = colorMultiplier.Multiply(reflectivity)
		default:
			bounceColor = mat.Color.MultiplyVec(lightSum).Multiply(1 - metalReflectivity).Add(specularSum)
			bounceColor = bounceColor.MultiplyVec(colorMultiplier)
			colorMultiplier = colorMultiplier.MultiplyVec(mat.Color.Multiply(metalReflectivity))
		}

		output = output.Add(bounceColor).Saturate()

		if colorMultiplier.X < minColorMultiplier &&
			colorMultiplier.Y < minColorMultiplier &&
			colorMultiplier.Z < minColorMultiplier {
			break
		}

		// rougher surfaces scatter the next bounce more
		origin = hit.Point
		ray = hit.Reflected.Normalize().Add(jitter.Multiply(1 - mat.Reflectivity))
	}

	return output
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}
