package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// GroundClearance is the lowest altitude the vehicle centre may reach.
const GroundClearance = 0.5

var ErrIllegalTransition = errors.New("sim: illegal phase transition")

type Phase uint8

const (
	PhaseAwaitingStart Phase = iota
	PhaseFlying
	PhaseCrashed
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingStart:
		return "awaiting_start"
	case PhaseFlying:
		return "flying"
	case PhaseCrashed:
		return "crashed"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

type phaseEvent uint8

const (
	eventStart phaseEvent = iota
	eventCollision
	eventReset
)

func (e phaseEvent) String() string {
	switch e {
	case eventStart:
		return "start"
	case eventCollision:
		return "collision"
	case eventReset:
		return "reset"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

// transitions lists every legal (from, event) pair. Reset is accepted from any phase.
var transitions = map[Phase]map[phaseEvent]Phase{
	PhaseAwaitingStart: {eventStart: PhaseFlying, eventReset: PhaseAwaitingStart},
	PhaseFlying:        {eventCollision: PhaseCrashed, eventReset: PhaseAwaitingStart},
	PhaseCrashed:       {eventReset: PhaseAwaitingStart},
}

func nextPhase(from Phase, ev phaseEvent) (Phase, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return from, errors.Wrapf(ErrIllegalTransition, "%s while %s", ev, from)
	}
	return to, nil
}

// Attitude holds Euler angles (or rates) in radians.
type Attitude struct {
	Pitch float64
	Roll  float64
	Yaw   float64
}

// Controls are the pilot commands. Throttle is in [0,1], the rest in [-1,1].
type Controls struct {
	Throttle float64
	Pitch    float64
	Roll     float64
	Yaw      float64
}

type GeoFix struct {
	Lon float64
	Lat float64
	Alt float64
}

type Telemetry struct {
	Altitude float64
	SpeedKmh float64
	GPS      mgl64.Vec3
	Geo      GeoFix
}

type Stats struct {
	FlightTime  float64
	MaxAltitude float64
	Distance    float64
	Trajectory  Trajectory
}

type VehicleState struct {
	Position      mgl64.Vec3
	Attitude      Attitude
	Velocity      mgl64.Vec3
	AngularRate   Attitude
	Controls      Controls
	Phase         Phase
	StartPosition mgl64.Vec3
	Telemetry     Telemetry
	Stats         Stats
	FlightID      string
}

func (s VehicleState) AwaitingStart() bool { return s.Phase == PhaseAwaitingStart }
func (s VehicleState) IsFlying() bool      { return s.Phase == PhaseFlying }
func (s VehicleState) IsCrash() bool       { return s.Phase == PhaseCrashed }

func (s *VehicleState) transition(ev phaseEvent) error {
	to, err := nextPhase(s.Phase, ev)
	if err != nil {
		return err
	}
	s.Phase = to
	return nil
}

func (s *VehicleState) clone() VehicleState {
	c := *s
	c.Stats.Trajectory = s.Stats.Trajectory.clone()
	return c
}

func newVehicleState(start mgl64.Vec3) VehicleState {
	return VehicleState{
		Position:      start,
		Phase:         PhaseAwaitingStart,
		StartPosition: start,
		Telemetry:     Telemetry{Altitude: start.Y(), GPS: start},
	}
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Position    *mgl64.Vec3
	Velocity    *mgl64.Vec3
	Attitude    *Attitude
	AngularRate *Attitude
	Altitude    *float64
	SpeedKmh    *float64
	GPS         *mgl64.Vec3
	FlightTime  *float64
	MaxAltitude *float64
	Distance    *float64
}

// Store is the single owner of a session's vehicle state.
type Store struct {
	state          VehicleState
	showTrajectory bool
}

func NewStore(start mgl64.Vec3) *Store {
	return &Store{state: newVehicleState(spawnPoint(start))}
}

func spawnPoint(p mgl64.Vec3) mgl64.Vec3 {
	p = sanitizeVec(p)
	p[1] = math.Max(p[1], GroundClearance)
	return p
}

// State returns the live state for components ticking inside the session.
func (st *Store) State() *VehicleState { return &st.state }

// Snapshot returns a deep copy safe to hand to presentation code.
func (st *Store) Snapshot() VehicleState { return st.state.clone() }

func (st *Store) Update(p Patch) {
	s := &st.state
	if p.Position != nil {
		s.Position = *p.Position
	}
	if p.Velocity != nil {
		s.Velocity = *p.Velocity
	}
	if p.Attitude != nil {
		s.Attitude = *p.Attitude
	}
	if p.AngularRate != nil {
		s.AngularRate = *p.AngularRate
	}
	if p.Altitude != nil {
		s.Telemetry.Altitude = *p.Altitude
	}
	if p.SpeedKmh != nil {
		s.Telemetry.SpeedKmh = *p.SpeedKmh
	}
	if p.GPS != nil {
		s.Telemetry.GPS = *p.GPS
	}
	if p.FlightTime != nil {
		s.Stats.FlightTime = *p.FlightTime
	}
	if p.MaxAltitude != nil {
		s.Stats.MaxAltitude = *p.MaxAltitude
	}
	if p.Distance != nil {
		s.Stats.Distance = *p.Distance
	}
}

// Control setters clamp to range. Controls stay locked at zero after a crash.

func (st *Store) SetThrottle(v float64) {
	if st.state.IsCrash() {
		return
	}
	st.state.Controls.Throttle = mgl64.Clamp(sanitizeFinite(v), 0, 1)
}

func (st *Store) SetPitch(v float64) {
	if st.state.IsCrash() {
		return
	}
	st.state.Controls.Pitch = clampUnit(v)
}

func (st *Store) SetRoll(v float64) {
	if st.state.IsCrash() {
		return
	}
	st.state.Controls.Roll = clampUnit(v)
}

func (st *Store) SetYaw(v float64) {
	if st.state.IsCrash() {
		return
	}
	st.state.Controls.Yaw = clampUnit(v)
}

// StartFlight leaves the awaiting phase and tags the new flight with an id.
func (st *Store) StartFlight() error {
	if err := st.state.transition(eventStart); err != nil {
		return err
	}
	st.state.FlightID = uuid.NewString()
	return nil
}

// ResetFlight restores defaults. The start position and trajectory setting survive.
func (st *Store) ResetFlight() {
	st.state = newVehicleState(st.state.StartPosition)
}

// SetStartPosition moves the spawn point. Altitude is raised to the ground clearance.
func (st *Store) SetStartPosition(p mgl64.Vec3) {
	p = spawnPoint(p)
	st.state.StartPosition = p
	if st.state.AwaitingStart() {
		st.state.Position = p
		st.state.Telemetry.Altitude = p.Y()
		st.state.Telemetry.GPS = p
	}
}

func (st *Store) SetTrajectoryEnabled(on bool) { st.showTrajectory = on }
func (st *Store) TrajectoryEnabled() bool      { return st.showTrajectory }

// crash moves a flying vehicle into the crashed phase and cuts the motors.
func (st *Store) crash() error {
	if err := st.state.transition(eventCollision); err != nil {
		return err
	}
	st.state.Controls = Controls{}
	return nil
}
