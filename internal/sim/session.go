package sim

import (
	"context"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/metric"

	"github.com/Ru51kXD/Likvi/internal/log"
)

// DefaultVehicleName identifies the vehicle in the object hierarchy.
const DefaultVehicleName = "quadcopter"

type Options struct {
	Airframe       Airframe
	Policy         CollisionPolicy
	Registry       *Registry
	VehicleName    string
	StartPosition  mgl64.Vec3
	ShowTrajectory bool

	TickRate float64       // Hz
	MaxFrame time.Duration // longer frames are clamped
	MaxSteps int           // fixed steps per Advance call

	Geodetic *Geodetic
	Logger   log.Log
	Meter    metric.Meter
}

func DefaultOptions() Options {
	return Options{
		Airframe:      DefaultAirframe(),
		Policy:        DefaultCollisionPolicy(),
		VehicleName:   DefaultVehicleName,
		StartPosition: mgl64.Vec3{0, GroundClearance, 0},
		TickRate:      120,
		MaxFrame:      time.Second / 4,
		MaxSteps:      5,
	}
}

type EventKind uint8

const (
	EventStarted EventKind = iota
	EventCrashed
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventCrashed:
		return "crashed"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind     EventKind
	FlightID string
	Time     float64 // session time
	Position mgl64.Vec3
	Hit      *Hit // set for EventCrashed
}

// Session owns one vehicle and ticks its components in order:
// input, dynamics, collision, telemetry.
type Session struct {
	opts    Options
	store   *Store
	input   *InputSampler
	dyn     *Dynamics
	det     *Detector
	geo     *Geodetic
	log     log.Log
	metrics *sessionMetrics
	subs    []func(Event)

	step  time.Duration
	acc   time.Duration
	time  float64
	ticks uint64
}

func NewSession(opts Options) *Session {
	def := DefaultOptions()
	if opts.TickRate <= 0 {
		opts.TickRate = def.TickRate
	}
	if opts.MaxFrame <= 0 {
		opts.MaxFrame = def.MaxFrame
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = def.MaxSteps
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	s := &Session{
		opts:  opts,
		store: NewStore(opts.StartPosition),
		dyn:   NewDynamics(opts.Airframe),
		geo:   opts.Geodetic,
		log:   opts.Logger,
		step:  time.Duration(float64(time.Second) / opts.TickRate),
	}
	s.det = NewDetector(opts.Policy, opts.Registry, opts.VehicleName, s.log)
	s.store.SetTrajectoryEnabled(opts.ShowTrajectory)

	m, err := newSessionMetrics(opts.Meter)
	if err != nil {
		s.log.Warn("session metrics unavailable", log.Err(err))
	}
	s.metrics = m

	s.publishGeo()
	return s
}

func (s *Session) Store() *Store               { return s.store }
func (s *Session) Snapshot() VehicleState      { return s.store.Snapshot() }
func (s *Session) Dynamics() *Dynamics         { return s.dyn }
func (s *Session) Detector() *Detector         { return s.det }
func (s *Session) Time() float64               { return s.time }
func (s *Session) Ticks() uint64               { return s.ticks }
func (s *Session) StepDuration() time.Duration { return s.step }

// SetKeySource attaches keyboard input. With no source controls change only through the setters.
func (s *Session) SetKeySource(k KeySource) {
	if k == nil {
		s.input = nil
		return
	}
	s.input = NewInputSampler(k)
}

// Subscribe registers fn for session events. Callbacks run synchronously on the ticking goroutine.
func (s *Session) Subscribe(fn func(Event)) {
	s.subs = append(s.subs, fn)
}

func (s *Session) SetThrottle(v float64)        { s.store.SetThrottle(v) }
func (s *Session) SetPitch(v float64)           { s.store.SetPitch(v) }
func (s *Session) SetRoll(v float64)            { s.store.SetRoll(v) }
func (s *Session) SetYaw(v float64)             { s.store.SetYaw(v) }
func (s *Session) SetTrajectoryEnabled(on bool) { s.store.SetTrajectoryEnabled(on) }

func (s *Session) SetStartPosition(p mgl64.Vec3) {
	s.store.SetStartPosition(p)
	s.publishGeo()
}

func (s *Session) StartFlight() error {
	if err := s.store.StartFlight(); err != nil {
		return err
	}
	s.started()
	return nil
}

// ResetFlight returns the vehicle to its start position and clears the collision cache.
func (s *Session) ResetFlight() {
	prev := s.store.State().FlightID
	s.store.ResetFlight()
	s.det.Reset()
	s.publishGeo()
	s.metrics.resets.Add(context.Background(), 1)
	s.log.Info("flight reset", log.String("flight", prev), log.Float64("t", s.time))
	s.emit(Event{Kind: EventReset, FlightID: prev, Time: s.time, Position: s.store.State().Position})
}

// Step runs one tick of dt seconds.
func (s *Session) Step(dt float64) {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}
	s.time += dt
	s.ticks++
	ctx := context.Background()
	s.metrics.ticks.Add(ctx, 1)

	if s.input.Sample(s.store) {
		s.started()
	}

	state := s.store.State()
	s.dyn.Step(state, dt)

	before := s.det.Evaluations()
	hit, crashed := s.det.Detect(s.store, dt)
	if n := s.det.Evaluations() - before; n > 0 {
		s.metrics.evaluations.Add(ctx, int64(n))
	}
	if crashed {
		s.crashed(hit)
	}

	s.updateStats(state, dt)
	s.publishGeo()
}

// Advance feeds a real frame duration into the fixed-step accumulator and returns
// the number of ticks run. Frames are clamped to MaxFrame and at most MaxSteps ticks
// run per call; backlog beyond that is dropped.
func (s *Session) Advance(frame time.Duration) int {
	if frame < 0 {
		frame = 0
	}
	if frame > s.opts.MaxFrame {
		frame = s.opts.MaxFrame
	}
	s.acc += frame

	dt := s.step.Seconds()
	steps := 0
	for s.acc >= s.step && steps < s.opts.MaxSteps {
		s.Step(dt)
		s.acc -= s.step
		steps++
	}
	if s.acc >= s.step {
		s.acc %= s.step
	}
	return steps
}

// Alpha is the fraction of a tick left in the accumulator, for interpolating presentation.
func (s *Session) Alpha() float64 {
	if s.step <= 0 {
		return 0
	}
	return mgl64.Clamp(float64(s.acc)/float64(s.step), 0, 1)
}

func (s *Session) updateStats(state *VehicleState, dt float64) {
	alt := state.Telemetry.Altitude
	if !state.IsFlying() || alt <= GroundClearance {
		return
	}
	st := &state.Stats
	st.FlightTime += dt
	st.MaxAltitude = math.Max(st.MaxAltitude, alt)
	gps := state.Telemetry.GPS
	st.Distance = math.Hypot(gps.X(), gps.Z())
	if s.store.TrajectoryEnabled() {
		st.Trajectory.Push(state.Position)
	}
}

func (s *Session) publishGeo() {
	if s.geo == nil {
		return
	}
	state := s.store.State()
	state.Telemetry.Geo = s.geo.Fix(state.Telemetry.GPS)
}

func (s *Session) started() {
	state := s.store.State()
	s.log.Info("flight started",
		log.String("flight", state.FlightID),
		log.Float64("t", s.time),
	)
	s.emit(Event{Kind: EventStarted, FlightID: state.FlightID, Time: s.time, Position: state.Position})
}

func (s *Session) crashed(hit Hit) {
	state := s.store.State()
	s.metrics.crashes.Add(context.Background(), 1)
	s.log.Warn("collision",
		log.String("flight", state.FlightID),
		log.Uint64("object_id", hit.Object.ID),
		log.String("object", hit.Object.Name),
		log.String("category", hit.Object.Category),
		log.Float64("distance", hit.Distance),
		log.Float64("speed_kmh", hit.SpeedKmh),
		log.Float64("altitude", state.Telemetry.Altitude),
	)
	s.emit(Event{Kind: EventCrashed, FlightID: state.FlightID, Time: s.time, Position: state.Position, Hit: &hit})
}

func (s *Session) emit(ev Event) {
	for _, fn := range s.subs {
		fn(ev)
	}
}
