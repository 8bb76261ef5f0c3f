package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Local axes: X right, Y up, -Z forward.
var (
	localForward = mgl64.Vec3{0, 0, -1}
	localRight   = mgl64.Vec3{1, 0, 0}
)

func RadToDeg(rad float64) float64 { return mgl64.RadToDeg(rad) }

// yawBasis returns the world-space forward and right vectors for a heading.
func yawBasis(yaw float64) (forward, right mgl64.Vec3) {
	rot := mgl64.Rotate3DY(yaw)
	return rot.Mul3x1(localForward), rot.Mul3x1(localRight)
}

func horizontal(v mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{v.X(), 0, v.Z()} }

func horizontalDistSq(a, b mgl64.Vec3) float64 {
	dx := a.X() - b.X()
	dz := a.Z() - b.Z()
	return dx*dx + dz*dz
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clampUnit(x float64) float64 { return mgl64.Clamp(sanitizeFinite(x), -1, 1) }

func sanitizeFinite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

func sanitizeVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{sanitizeFinite(v[0]), sanitizeFinite(v[1]), sanitizeFinite(v[2])}
}
