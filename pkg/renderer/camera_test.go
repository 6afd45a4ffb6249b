package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-reflax-raytracer/pkg/core"
)

func TestNewCamera_Orientation(t *testing.T) {
	tests := []struct {
		name          string
		at            core.Vec3
		expectedYaw   float64
		expectedPitch float64
	}{
		{"looking +Z", core.NewVec3(0, 0, 1), 0, 0},
		{"looking +X", core.NewVec3(1, 0, 0), math.Pi / 2, 0},
		{"looking -X", core.NewVec3(-1, 0, 0), -math.Pi / 2, 0},
		{"looking up +Z", core.NewVec3(0, 1, 1), 0, math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camera := NewCamera(core.NewVec3(0, 0, 0), tt.at, 1.0)

			if math.Abs(camera.Yaw-tt.expectedYaw) > 1e-9 {
				t.Errorf("Expected yaw %f, got %f", tt.expectedYaw, camera.Yaw)
			}
			if math.Abs(camera.Pitch-tt.expectedPitch) > 1e-9 {
				t.Errorf("Expected pitch %f, got %f", tt.expectedPitch, camera.Pitch)
			}

			front := camera.View.Col(2)
			if !front.ApproxEquals(tt.at.Normalize(), 1e-9) {
				t.Errorf("Expected view front %v, got %v", tt.at.Normalize(), front)
			}
		})
	}
}

func TestCamera_ForwardRampAndDecay(t *testing.T) {
	camera := NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1.0)
	const dt = 0.01

	// accelerating from rest takes MaxShiftSpeed / ShiftAcceleration seconds
	rampTicks := int(math.Ceil(MaxShiftSpeed/ShiftAcceleration/dt)) + 1
	reachedAt := -1
	for i := 0; i < 100; i++ {
		camera.ProceedControl(ShiftForward, dt)
		if camera.ShiftFBSpeed > MaxShiftSpeed {
			t.Fatalf("Speed %f exceeds cap %f", camera.ShiftFBSpeed, MaxShiftSpeed)
		}
		if reachedAt < 0 && camera.ShiftFBSpeed == MaxShiftSpeed {
			reachedAt = i + 1
		}
	}
	if reachedAt < 0 || reachedAt > rampTicks {
		t.Fatalf("Expected cap within %d ticks, reached at %d", rampTicks, reachedAt)
	}
	if camera.Eye.Z <= 0 || math.Abs(camera.Eye.X) > 1e-9 || math.Abs(camera.Eye.Y) > 1e-9 {
		t.Errorf("Expected forward motion along +Z, eye at %v", camera.Eye)
	}

	decayTicks := int(math.Ceil(MaxShiftSpeed/ShiftDeceleration/dt)) + 1
	stoppedAt := -1
	for i := 0; i < 100; i++ {
		camera.ProceedControl(0, dt)
		if camera.ShiftFBSpeed < 0 {
			t.Fatalf("Speed overshot zero: %f", camera.ShiftFBSpeed)
		}
		if stoppedAt < 0 && camera.ShiftFBSpeed == 0 {
			stoppedAt = i + 1
		}
	}
	if stoppedAt < 0 || stoppedAt > decayTicks {
		t.Errorf("Expected stop within %d ticks, stopped at %d", decayTicks, stoppedAt)
	}
	if camera.InMotion() {
		t.Error("Expected camera at rest")
	}
}

func TestCamera_ReverseShiftBrakes(t *testing.T) {
	camera := NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1.0)
	camera.ShiftRLSpeed = MaxShiftSpeed

	camera.ProceedControl(ShiftLeft, 0.01)

	expected := MaxShiftSpeed - (ShiftAcceleration+ShiftDeceleration)*0.01
	if math.Abs(camera.ShiftRLSpeed-expected) > 1e-9 {
		t.Errorf("Expected speed %f after reversing, got %f", expected, camera.ShiftRLSpeed)
	}
}

func TestCamera_OpposingKeysDecelerate(t *testing.T) {
	camera := NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1.0)
	camera.TurnRLSpeed = MaxTurnSpeed

	camera.ProceedControl(TurnLeft|TurnRight, 0.01)

	expected := MaxTurnSpeed - TurnDeceleration*0.01
	if math.Abs(camera.TurnRLSpeed-expected) > 1e-12 {
		t.Errorf("Expected speed %f, got %f", expected, camera.TurnRLSpeed)
	}
}

func TestCamera_PitchClampAndYawWrap(t *testing.T) {
	camera := NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1.0)

	for i := 0; i < 2000; i++ {
		camera.ProceedControl(TurnUp|TurnRight, 0.01)
		if math.Abs(camera.Yaw) >= 2*math.Pi {
			t.Fatalf("Yaw %f not wrapped", camera.Yaw)
		}
	}

	if math.Abs(camera.Pitch-maxPitch) > 1e-12 {
		t.Errorf("Expected pitch clamped to %f, got %f", maxPitch, camera.Pitch)
	}
	if !camera.InMotion() {
		t.Error("Expected camera in motion while turning")
	}

	// the view basis stays orthonormal
	right, up, front := camera.View.Col(0), camera.View.Col(1), camera.View.Col(2)
	if math.Abs(right.Dot(up)) > 1e-9 || math.Abs(up.Dot(front)) > 1e-9 || math.Abs(front.Length()-1) > 1e-9 {
		t.Errorf("View basis not orthonormal: %v %v %v", right, up, front)
	}
}

func TestCamera_ShiftClampedToMaxSpeed(t *testing.T) {
	camera := NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 1.0)
	camera.ShiftRLSpeed = MaxShiftSpeed
	camera.ShiftFBSpeed = MaxShiftSpeed
	camera.ShiftUDSpeed = MaxShiftSpeed

	camera.ProceedControl(ShiftRight|ShiftForward|ShiftUp, 0.1)

	moved := camera.Eye.Length()
	if math.Abs(moved-MaxShiftSpeed*0.1) > 1e-9 {
		t.Errorf("Expected diagonal move of %f, got %f", MaxShiftSpeed*0.1, moved)
	}
}
