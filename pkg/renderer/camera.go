package renderer

import (
	"math"

	"github.com/df07/go-reflax-raytracer/pkg/core"
)

// ControlFlags is a bitmask of the movement inputs currently held down
type ControlFlags uint32

// Control flag bits
const (
	TurnLeft     ControlFlags = 1 << 0
	TurnRight    ControlFlags = 1 << 1
	TurnUp       ControlFlags = 1 << 2
	TurnDown     ControlFlags = 1 << 3
	ShiftLeft    ControlFlags = 1 << 6
	ShiftRight   ControlFlags = 1 << 7
	ShiftUp      ControlFlags = 1 << 8
	ShiftDown    ControlFlags = 1 << 9
	ShiftForward ControlFlags = 1 << 10
	ShiftBack    ControlFlags = 1 << 11
)

// Camera motion tuning. Turn speeds are in revolutions per second, shift
// speeds in scene units per second.
const (
	TurnAcceleration  = 2.0
	TurnDeceleration  = 2.0
	MaxTurnSpeed      = 0.2
	ShiftAcceleration = 50.0
	ShiftDeceleration = 50.0
	MaxShiftSpeed     = 10.0

	maxPitch = 0.95 * math.Pi / 2

	// speeds at or below this count as stopped
	motionEpsilon = 1.1920929e-07
)

// Camera holds the eye position and view orientation and integrates
// velocity-based controls into them.
type Camera struct {
	Eye  core.Vec3
	View core.Mat3 // columns: right, up, front
	FOV  float64   // horizontal field of view in radians

	Yaw   float64
	Pitch float64

	TurnRLSpeed  float64 // yaw speed, positive turns right
	TurnUDSpeed  float64 // pitch speed, positive turns up
	ShiftRLSpeed float64 // positive moves right
	ShiftUDSpeed float64 // positive moves up
	ShiftFBSpeed float64 // positive moves forward
}

// NewCamera creates a camera at eye looking towards at
func NewCamera(eye, at core.Vec3, fov float64) *Camera {
	up := core.NewVec3(0, 1, 0)
	oz := at.Subtract(eye).Normalize()
	ox := up.Cross(oz).Normalize()

	yaw := math.Acos(clamp(ox.Z, -1, 1))
	if ox.X < 0 {
		yaw = 2*math.Pi - yaw
	}
	yaw -= math.Pi / 2
	pitch := math.Asin(clamp(oz.Y, -1, 1))

	return &Camera{
		Eye:   eye,
		View:  core.Mat3FromYawPitch(yaw, pitch),
		FOV:   fov,
		Yaw:   yaw,
		Pitch: pitch,
	}
}

// Front returns the horizontal forward direction
func (c *Camera) Front() core.Vec3 {
	return c.View.Col(0).Cross(core.NewVec3(0, 1, 0)).Normalize()
}

// InMotion reports whether any turn or shift speed is non-zero
func (c *Camera) InMotion() bool {
	return math.Abs(c.TurnRLSpeed) > motionEpsilon ||
		math.Abs(c.TurnUDSpeed) > motionEpsilon ||
		math.Abs(c.ShiftRLSpeed) > motionEpsilon ||
		math.Abs(c.ShiftUDSpeed) > motionEpsilon ||
		math.Abs(c.ShiftFBSpeed) > motionEpsilon
}

// ProceedControl advances the camera by dt seconds under the held controls
func (c *Camera) ProceedControl(flags ControlFlags, dt float64) {
	prevTurnRL := c.TurnRLSpeed
	prevTurnUD := c.TurnUDSpeed
	prevShiftRL := c.ShiftRLSpeed
	prevShiftUD := c.ShiftUDSpeed
	prevShiftFB := c.ShiftFBSpeed

	c.TurnRLSpeed = turnSpeed(c.TurnRLSpeed, axis(flags, TurnRight, TurnLeft), dt)
	c.TurnUDSpeed = turnSpeed(c.TurnUDSpeed, axis(flags, TurnUp, TurnDown), dt)
	c.ShiftRLSpeed = shiftSpeed(c.ShiftRLSpeed, axis(flags, ShiftRight, ShiftLeft), dt)
	c.ShiftUDSpeed = shiftSpeed(c.ShiftUDSpeed, axis(flags, ShiftUp, ShiftDown), dt)
	c.ShiftFBSpeed = shiftSpeed(c.ShiftFBSpeed, axis(flags, ShiftForward, ShiftBack), dt)

	// trapezoidal integration of the turn speeds
	c.Yaw += dt * 2 * math.Pi * (c.TurnRLSpeed + prevTurnRL) / 2
	c.Pitch = clamp(c.Pitch+dt*2*math.Pi*(c.TurnUDSpeed+prevTurnUD)/2, -maxPitch, maxPitch)

	if c.Yaw >= 2*math.Pi {
		c.Yaw -= 2 * math.Pi
	} else if c.Yaw <= -2*math.Pi {
		c.Yaw += 2 * math.Pi
	}

	c.View = core.Mat3FromYawPitch(c.Yaw, c.Pitch)

	if math.Abs(c.ShiftRLSpeed) <= motionEpsilon &&
		math.Abs(c.ShiftUDSpeed) <= motionEpsilon &&
		math.Abs(c.ShiftFBSpeed) <= motionEpsilon {
		return
	}

	right := c.View.Col(0)
	up := core.NewVec3(0, 1, 0)
	front := c.Front()

	shift := right.Multiply(0.5 * (c.ShiftRLSpeed + prevShiftRL)).
		Add(up.Multiply(0.5 * (c.ShiftUDSpeed + prevShiftUD))).
		Add(front.Multiply(0.5 * (c.ShiftFBSpeed + prevShiftFB)))

	if lengthSquared := shift.LengthSquared(); lengthSquared > MaxShiftSpeed*MaxShiftSpeed {
		shift = shift.Multiply(MaxShiftSpeed / math.Sqrt(lengthSquared))
	}

	c.Eye = c.Eye.Add(shift.Multiply(dt))
}

// axis returns +1 when only positive is held, -1 when only negative is held
// and 0 when neither or both are
func axis(flags, positive, negative ControlFlags) int {
	switch flags & (positive | negative) {
	case positive:
		return 1
	case negative:
		return -1
	default:
		return 0
	}
}

func turnSpeed(speed float64, direction int, dt float64) float64 {
	if direction == 0 {
		return decelerate(speed, TurnDeceleration*dt)
	}
	return clamp(speed+float64(direction)*TurnAcceleration*dt, -MaxTurnSpeed, MaxTurnSpeed)
}

func shiftSpeed(speed float64, direction int, dt float64) float64 {
	if direction == 0 {
		return decelerate(speed, ShiftDeceleration*dt)
	}
	rate := ShiftAcceleration
	// braking against the current motion reverses faster
	if speed*float64(direction) < 0 {
		rate += ShiftDeceleration
	}
	return clamp(speed+float64(direction)*rate*dt, -MaxShiftSpeed, MaxShiftSpeed)
}

// decelerate moves speed towards zero by step without crossing it
func decelerate(speed, step float64) float64 {
	if speed < 0 {
		return min(0, speed+step)
	}
	if speed > 0 {
		return max(0, speed-step)
	}
	return speed
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}
