package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	Gravity = 9.81

	// kmhPerMS converts m/s into the km/h figure shown in telemetry.
	kmhPerMS = 3.6
)

// Airframe holds the physical and handling parameters of the quadrotor.
// Blend and damping factors are applied once per tick.
type Airframe struct {
	Mass            float64 // kg
	MaxThrust       float64 // N per motor at full throttle
	MotorEfficiency float64 // 0..1
	ArmLength       float64 // m, hub to motor

	KPitch         float64 // differential thrust per unit pitch command
	KRoll          float64
	KYaw           float64
	YawMomentScale float64 // reaction torque per newton of thrust imbalance

	MaxTiltAngle float64 // rad
	MaxPitchRate float64 // rad/s
	MaxRollRate  float64
	MaxYawRate   float64
	LevelGain    float64 // 1/s, angle error to commanded rate

	TiltBlend         float64
	YawBlend          float64
	AngularDamping    float64
	VerticalDamping   float64
	HorizontalDamping float64

	HorizontalThrustFactor float64
	MaxHorizontalSpeed     float64 // m/s
	DragCoefficient        float64 // kg/m
}

func DefaultAirframe() Airframe {
	return Airframe{
		Mass:            1.5,
		MaxThrust:       50,
		MotorEfficiency: 0.8,
		ArmLength:       0.25,

		KPitch:         0.1,
		KRoll:          0.1,
		KYaw:           0.08,
		YawMomentScale: 0.3,

		MaxTiltAngle: math.Pi / 6,
		MaxPitchRate: 3,
		MaxRollRate:  3,
		MaxYawRate:   2,
		LevelGain:    4,

		TiltBlend:         0.12,
		YawBlend:          0.15,
		AngularDamping:    0.92,
		VerticalDamping:   0.96,
		HorizontalDamping: 0.98,

		HorizontalThrustFactor: 0.5,
		MaxHorizontalSpeed:     16,
		DragCoefficient:        0.15,
	}
}

// Motor is one rotor at a fixed body position. Spin sets the sign of its reaction torque.
type Motor struct {
	Position mgl64.Vec3 // X right, Y up, -Z forward
	Spin     int
}

// Motor order used throughout: front-left, front-right, back-left, back-right.
const (
	motorFL = iota
	motorFR
	motorBL
	motorBR
)

// Dynamics integrates the vehicle state from the current controls.
type Dynamics struct {
	frame  Airframe
	motors [4]Motor

	// principal moments about the pitch (X), yaw (Y) and roll (Z) axes
	inertia mgl64.Vec3
}

func NewDynamics(frame Airframe) *Dynamics {
	d := &Dynamics{frame: frame}
	a := frame.ArmLength / math.Sqrt2
	d.motors = [4]Motor{
		motorFL: {Position: mgl64.Vec3{-a, 0, -a}, Spin: +1},
		motorFR: {Position: mgl64.Vec3{a, 0, -a}, Spin: -1},
		motorBL: {Position: mgl64.Vec3{-a, 0, a}, Spin: -1},
		motorBR: {Position: mgl64.Vec3{a, 0, a}, Spin: +1},
	}
	d.recomputeInertia()
	return d
}

func (d *Dynamics) Airframe() Airframe { return d.frame }

// Inertia returns the moments of inertia about the pitch, yaw and roll axes.
func (d *Dynamics) Inertia() mgl64.Vec3 { return d.inertia }

// recomputeInertia treats the airframe as four point masses at the motor hubs.
func (d *Dynamics) recomputeInertia() {
	m := d.frame.Mass / float64(len(d.motors))
	var ix, iy, iz float64
	for _, mo := range d.motors {
		x, y, z := mo.Position.X(), mo.Position.Y(), mo.Position.Z()
		ix += m * (y*y + z*z)
		iy += m * (x*x + z*z)
		iz += m * (x*x + y*y)
	}
	const minMOI = 1e-6
	d.inertia = mgl64.Vec3{math.Max(ix, minMOI), math.Max(iy, minMOI), math.Max(iz, minMOI)}
}

func (d *Dynamics) maxMotorThrust() float64 {
	return d.frame.MaxThrust * d.frame.MotorEfficiency
}

// HoverThrottle is the throttle whose level thrust balances gravity.
func (d *Dynamics) HoverThrottle() float64 {
	maxT := d.maxMotorThrust()
	if maxT <= 0 {
		return 1
	}
	return mgl64.Clamp(d.frame.Mass*Gravity/maxT, 0, 1)
}

// MotorThrusts allocates per-motor thrust from the controls.
func (d *Dynamics) MotorThrusts(c Controls) [4]float64 {
	f := d.frame
	base := c.Throttle * d.maxMotorThrust()
	pitchDiff := c.Pitch * base * f.KPitch
	rollDiff := c.Roll * base * f.KRoll
	yawDiff := c.Yaw * base * f.KYaw

	var t [4]float64
	t[motorFL] = base - pitchDiff + rollDiff + yawDiff
	t[motorFR] = base - pitchDiff - rollDiff - yawDiff
	t[motorBL] = base + pitchDiff + rollDiff - yawDiff
	t[motorBR] = base + pitchDiff - rollDiff + yawDiff
	maxT := d.maxMotorThrust()
	for i := range t {
		t[i] = mgl64.Clamp(t[i], 0, maxT)
	}
	return t
}

// moments returns pitch, roll and yaw torques for a thrust split.
func (d *Dynamics) moments(t [4]float64) (pitch, roll, yaw float64) {
	arm := d.frame.ArmLength
	pitch = (t[motorBL] + t[motorBR] - t[motorFL] - t[motorFR]) * arm
	roll = (t[motorFL] + t[motorBL] - t[motorFR] - t[motorBR]) * arm
	for i, mo := range d.motors {
		yaw += float64(mo.Spin) * t[i]
	}
	yaw *= arm * d.frame.YawMomentScale
	return pitch, roll, yaw
}

// Step advances the state by dt seconds.
func (d *Dynamics) Step(s *VehicleState, dt float64) {
	if s.AwaitingStart() {
		d.holdAtStart(s)
		return
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		publishTelemetry(s)
		return
	}

	thrusts := d.MotorThrusts(s.Controls)
	total := (thrusts[0] + thrusts[1] + thrusts[2] + thrusts[3]) / 4

	d.updateAngularMotion(s, thrusts, dt)
	d.updateVerticalMotion(s, total, dt)
	d.updateHorizontalMotion(s, total, dt)

	s.Position = s.Position.Add(s.Velocity.Mul(dt))

	s.Position = sanitizeVec(s.Position)
	s.Velocity = sanitizeVec(s.Velocity)
	s.Attitude.Pitch = sanitizeFinite(s.Attitude.Pitch)
	s.Attitude.Roll = sanitizeFinite(s.Attitude.Roll)
	s.Attitude.Yaw = sanitizeFinite(s.Attitude.Yaw)
	s.AngularRate.Pitch = sanitizeFinite(s.AngularRate.Pitch)
	s.AngularRate.Roll = sanitizeFinite(s.AngularRate.Roll)
	s.AngularRate.Yaw = sanitizeFinite(s.AngularRate.Yaw)

	d.handleGroundContact(s)
	publishTelemetry(s)
}

func (d *Dynamics) holdAtStart(s *VehicleState) {
	s.Position = s.StartPosition
	s.Velocity = mgl64.Vec3{}
	s.Attitude = Attitude{}
	s.AngularRate = Attitude{}
	publishTelemetry(s)
}

func (d *Dynamics) updateAngularMotion(s *VehicleState, thrusts [4]float64, dt float64) {
	f := d.frame
	mPitch, mRoll, mYaw := d.moments(thrusts)

	alphaPitch := mPitch / d.inertia.X()
	alphaRoll := mRoll / d.inertia.Z()
	alphaYaw := mYaw / d.inertia.Y()

	// self-levelling: the tilt command is an angle, yaw is a rate
	targetPitch := mgl64.Clamp((s.Controls.Pitch*f.MaxTiltAngle-s.Attitude.Pitch)*f.LevelGain, -f.MaxPitchRate, f.MaxPitchRate)
	targetRoll := mgl64.Clamp((s.Controls.Roll*f.MaxTiltAngle-s.Attitude.Roll)*f.LevelGain, -f.MaxRollRate, f.MaxRollRate)
	targetYaw := s.Controls.Yaw * f.MaxYawRate

	r := &s.AngularRate
	r.Pitch = lerp(r.Pitch+alphaPitch*dt, targetPitch, f.TiltBlend) * f.AngularDamping
	r.Roll = lerp(r.Roll+alphaRoll*dt, targetRoll, f.TiltBlend) * f.AngularDamping
	r.Yaw = lerp(r.Yaw+alphaYaw*dt, targetYaw, f.YawBlend) * f.AngularDamping

	a := &s.Attitude
	a.Pitch = mgl64.Clamp(a.Pitch+r.Pitch*dt, -f.MaxTiltAngle, f.MaxTiltAngle)
	a.Roll = mgl64.Clamp(a.Roll+r.Roll*dt, -f.MaxTiltAngle, f.MaxTiltAngle)
	a.Yaw += r.Yaw * dt
}

func (d *Dynamics) updateVerticalMotion(s *VehicleState, total, dt float64) {
	f := d.frame
	tilt := math.Cos(s.Attitude.Pitch) * math.Cos(s.Attitude.Roll)
	accel := (total*tilt - f.Mass*Gravity) / f.Mass
	s.Velocity[1] = (s.Velocity[1] + accel*dt) * f.VerticalDamping
}

func (d *Dynamics) updateHorizontalMotion(s *VehicleState, total, dt float64) {
	f := d.frame
	forward, right := yawBasis(s.Attitude.Yaw)
	scale := total * f.HorizontalThrustFactor / f.Mass
	accel := forward.Mul(math.Sin(s.Attitude.Pitch) * scale).Add(right.Mul(math.Sin(s.Attitude.Roll) * scale))

	v := horizontal(s.Velocity).Add(horizontal(accel).Mul(dt))

	if speed := v.Len(); speed > f.MaxHorizontalSpeed {
		v = v.Mul(f.MaxHorizontalSpeed / speed)
	}

	// quadratic drag, never allowed to reverse the velocity within a tick
	if speed := v.Len(); speed > 1e-9 {
		loss := math.Min(f.DragCoefficient*speed*speed/f.Mass*dt, speed)
		v = v.Sub(v.Mul(loss / speed))
	}

	v = v.Mul(f.HorizontalDamping)
	s.Velocity[0] = v.X()
	s.Velocity[2] = v.Z()
}

func (d *Dynamics) handleGroundContact(s *VehicleState) {
	if s.Position.Y() < GroundClearance {
		s.Position[1] = GroundClearance
		if s.Velocity.Y() < 0 {
			s.Velocity[1] = 0
		}
	}
}

func publishTelemetry(s *VehicleState) {
	s.Telemetry.Altitude = s.Position.Y()
	s.Telemetry.SpeedKmh = horizontal(s.Velocity).Len() * kmhPerMS
	s.Telemetry.GPS = s.Position
}
