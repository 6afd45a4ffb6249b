package core

import (
	"fmt"
	"math"
)

// Vec3 represents a 3D vector. It also carries RGB colors, with X, Y, Z
// holding the red, green and blue channels.
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// NewColor creates a color with the given channels
func NewColor(r, g, b float64) Vec3 {
	return Vec3{X: r, Y: g, Z: b}
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3) Multiply(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Divide returns the vector divided by a scalar
func (v Vec3) Divide(scalar float64) Vec3 {
	return Vec3{v.X / scalar, v.Y / scalar, v.Z / scalar}
}

// MultiplyVec returns component-wise multiplication of two vectors
func (v Vec3) MultiplyVec(other Vec3) Vec3 {
	return Vec3{
		X: v.X * other.X,
		Y: v.Y * other.Y,
		Z: v.Z * other.Z,
	}
}

// Length returns the magnitude of the vector
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// LengthSquared returns the squared magnitude of the vector
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Normalize returns a unit vector in the same direction.
// Vectors shorter than VerySmallNumber normalize to zero.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length <= VerySmallNumber {
		return Vec3{0, 0, 0}
	}
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

// Reflect mirrors the vector about the given (not necessarily unit) normal,
// keeping its length. A degenerate normal yields the negated vector.
func (v Vec3) Reflect(normal Vec3) Vec3 {
	nn := normal.Dot(normal)
	if nn <= VerySmallNumber {
		return v.Negate()
	}
	// 2 * (v - projection of v onto n) - v
	tangent := v.Subtract(normal.Multiply(v.Dot(normal) / nn))
	return tangent.Multiply(2).Subtract(v)
}

// Negate returns the negative of the vector
func (v Vec3) Negate() Vec3 {
	return Vec3{
		X: -v.X,
		Y: -v.Y,
		Z: -v.Z,
	}
}

// Clamp returns a vector with components clamped to [min, max]
func (v Vec3) Clamp(minVal, maxVal float64) Vec3 {
	return Vec3{
		X: max(minVal, min(maxVal, v.X)),
		Y: max(minVal, min(maxVal, v.Y)),
		Z: max(minVal, min(maxVal, v.Z)),
	}
}

// Saturate clamps every channel into [0, 1]
func (v Vec3) Saturate() Vec3 {
	return v.Clamp(0, 1)
}

// Equals reports whether two vectors are exactly equal
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// ApproxEquals reports whether every component differs by less than delta
func (v Vec3) ApproxEquals(other Vec3, delta float64) bool {
	return math.Abs(v.X-other.X) < delta &&
		math.Abs(v.Y-other.Y) < delta &&
		math.Abs(v.Z-other.Z) < delta
}

// RGB converts a color to 8-bit channels, clamping to [0, 1] first
func (v Vec3) RGB() [3]uint8 {
	c := v.Saturate()
	return [3]uint8{
		uint8(c.X * 255.999),
		uint8(c.Y * 255.999),
		uint8(c.Z * 255.999),
	}
}

// ColorFromRGB converts 8-bit channels to a color in [0, 1]
func ColorFromRGB(r, g, b uint8) Vec3 {
	return Vec3{
		X: float64(r) / 255.0,
		Y: float64(g) / 255.0,
		Z: float64(b) / 255.0,
	}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}
