package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Ru51kXD/Likvi/internal/log"
)

type CollisionPolicy struct {
	GracePeriod       float64 // s of session time with no checks
	MinAltitude       float64 // m, below this no checks run
	SlowSpeedKmh      float64
	SlowAltitude      float64 // slower than SlowSpeedKmh and lower than this: skip
	Interval          float64 // s between scans
	BroadPhaseRadius  float64 // m, horizontal
	VehicleRadius     float64
	VehicleHalfHeight float64
}

func DefaultCollisionPolicy() CollisionPolicy {
	return CollisionPolicy{
		GracePeriod:       3,
		MinAltitude:       6,
		SlowSpeedKmh:      5,
		SlowAltitude:      2,
		Interval:          0.1,
		BroadPhaseRadius:  60,
		VehicleRadius:     0.6,
		VehicleHalfHeight: 0.6,
	}
}

// Hit describes the object that ended a flight.
type Hit struct {
	Object   Object
	Distance float64 // horizontal, centre to centre
	SpeedKmh float64
	At       float64 // session time
}

// Detector scans the registry at a fixed interval and crashes the vehicle on contact.
type Detector struct {
	policy   CollisionPolicy
	registry *Registry
	vehicle  string
	log      log.Log

	elapsed     float64
	acc         float64
	cache       []Object
	cached      bool
	evaluations uint64
}

func NewDetector(policy CollisionPolicy, registry *Registry, vehicle string, logger log.Log) *Detector {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Detector{
		policy:   policy,
		registry: registry,
		vehicle:  vehicle,
		log:      logger,
	}
}

// Evaluations is the number of scans performed so far.
func (d *Detector) Evaluations() uint64 { return d.evaluations }

// Elapsed is the session time seen by the detector.
func (d *Detector) Elapsed() float64 { return d.elapsed }

// Reset drops the candidate cache and sampling accumulator. Session time keeps running.
func (d *Detector) Reset() {
	d.acc = 0
	d.cache = nil
	d.cached = false
}

// Detect advances the detector clock by dt and, on a scan tick, tests every candidate.
// The first overlapping object crashes the vehicle and is returned.
func (d *Detector) Detect(st *Store, dt float64) (Hit, bool) {
	p := d.policy
	d.elapsed += dt
	if d.elapsed < p.GracePeriod {
		return Hit{}, false
	}

	s := st.State()
	if !s.IsFlying() {
		return Hit{}, false
	}
	alt := s.Telemetry.Altitude
	if alt < p.MinAltitude {
		return Hit{}, false
	}
	if s.Telemetry.SpeedKmh < p.SlowSpeedKmh && alt < p.SlowAltitude {
		return Hit{}, false
	}

	d.acc += dt
	if d.acc < p.Interval {
		return Hit{}, false
	}
	d.acc = 0

	hit, ok := d.scan(s)
	if !ok {
		return Hit{}, false
	}
	if err := st.crash(); err != nil {
		return Hit{}, false
	}
	return hit, true
}

func (d *Detector) candidates() []Object {
	if !d.cached {
		d.cache = d.registry.Candidates(d.vehicle)
		d.cached = true
		d.log.Debug("collision candidates cached", log.Int("count", len(d.cache)))
	}
	dyn := d.registry.Dynamic(d.vehicle, d.elapsed)
	if len(dyn) == 0 {
		return d.cache
	}
	all := make([]Object, 0, len(d.cache)+len(dyn))
	all = append(all, d.cache...)
	return append(all, dyn...)
}

func (d *Detector) scan(s *VehicleState) (Hit, bool) {
	d.evaluations++
	p := d.policy
	pos := s.Position
	broadSq := p.BroadPhaseRadius * p.BroadPhaseRadius

	for _, o := range d.candidates() {
		distSq := horizontalDistSq(pos, o.Position)
		if distSq > broadSq {
			continue
		}
		if dist, ok := overlaps(pos, o, p, distSq); ok {
			return Hit{Object: o, Distance: dist, SpeedKmh: s.Telemetry.SpeedKmh, At: d.elapsed}, true
		}
	}
	return Hit{}, false
}

// overlaps tests the vehicle cylinder against the object's extents.
func overlaps(pos mgl64.Vec3, o Object, p CollisionPolicy, distSq float64) (float64, bool) {
	extent, height := Extents(o.Shape)
	dist := math.Sqrt(distSq)
	if dist >= p.VehicleRadius+extent {
		return dist, false
	}
	bottom, top := pos.Y()-p.VehicleHalfHeight, pos.Y()+p.VehicleHalfHeight
	objBottom, objTop := o.Position.Y()-height/2, o.Position.Y()+height/2
	return dist, bottom < objTop && top > objBottom
}
