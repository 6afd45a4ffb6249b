package core

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularMatrix is returned when a matrix has no usable inverse
var ErrSingularMatrix = errors.New("matrix is singular")

// Mat3 is a row-major 3x3 matrix
type Mat3 [3][3]float64

// Mat3FromCols builds a matrix whose columns are the given vectors
func Mat3FromCols(c0, c1, c2 Vec3) Mat3 {
	return Mat3{
		{c0.X, c1.X, c2.X},
		{c0.Y, c1.Y, c2.Y},
		{c0.Z, c1.Z, c2.Z},
	}
}

// Mat3FromYawPitch builds a view basis with columns right, up and front.
// Yaw rotates around the world Y axis, pitch tilts the front vector up.
func Mat3FromYawPitch(yaw, pitch float64) Mat3 {
	yawSin, yawCos := math.Sincos(yaw)
	pitchSin, pitchCos := math.Sincos(pitch)

	front := NewVec3(yawSin*pitchCos, pitchSin, yawCos*pitchCos)
	right := NewVec3(0, 1, 0).Cross(front)
	up := front.Cross(right)

	return Mat3FromCols(right.Normalize(), up.Normalize(), front.Normalize())
}

// Col returns the i-th column
func (m Mat3) Col(i int) Vec3 {
	return NewVec3(m[0][i], m[1][i], m[2][i])
}

// MulVec multiplies the matrix by a column vector
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

func (m Mat3) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

// Det returns the determinant
func (m Mat3) Det() float64 {
	return mat.Det(m.dense())
}

// Inverse returns the inverse matrix, or ErrSingularMatrix when the
// determinant is below VerySmallNumber.
func (m Mat3) Inverse() (Mat3, error) {
	if det := m.Det(); math.Abs(det) <= VerySmallNumber {
		return Mat3{}, fmt.Errorf("%w: determinant %g", ErrSingularMatrix, det)
	}

	var inv mat.Dense
	if err := inv.Inverse(m.dense()); err != nil {
		return Mat3{}, fmt.Errorf("%w: %v", ErrSingularMatrix, err)
	}

	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = inv.At(i, j)
		}
	}
	return r, nil
}
