package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Object is a collidable snapshot: identity, centre position and geometry.
type Object struct {
	ID         uint64
	Name       string
	Category   string
	Parent     string
	Position   mgl64.Vec3
	Shape      Shape
	Collidable bool
}

// Mover is an object whose position changes with session time.
type Mover interface {
	At(t float64) Object
}

// Patrol circles an object around a centre point on the ground plane.
type Patrol struct {
	Object       Object
	Center       mgl64.Vec3
	Radius       float64
	AngularSpeed float64
	Phase        float64
}

func (p Patrol) At(t float64) Object {
	angle := p.Phase + t*p.AngularSpeed
	o := p.Object
	o.Position = mgl64.Vec3{
		p.Center.X() + math.Cos(angle)*p.Radius,
		p.Center.Y(),
		p.Center.Z() + math.Sin(angle)*p.Radius,
	}
	return o
}

// Registry is the set of objects in the world the vehicle can hit.
type Registry struct {
	static  []Object
	byName  map[string]Object
	dynamic []Mover
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Object)}
}

func (r *Registry) AddStatic(objs ...Object) {
	for _, o := range objs {
		r.static = append(r.static, o)
		if o.Name != "" {
			r.byName[o.Name] = o
		}
	}
}

func (r *Registry) AddDynamic(m ...Mover) {
	r.dynamic = append(r.dynamic, m...)
}

func (r *Registry) Len() int { return len(r.static) + len(r.dynamic) }

// Candidates returns the static objects eligible for collision with the named vehicle.
func (r *Registry) Candidates(vehicle string) []Object {
	if r == nil {
		return nil
	}
	out := make([]Object, 0, len(r.static))
	for _, o := range r.static {
		if r.eligible(o, vehicle) {
			out = append(out, o)
		}
	}
	return out
}

// Dynamic resolves every mover at session time t and filters like Candidates.
func (r *Registry) Dynamic(vehicle string, t float64) []Object {
	if r == nil || len(r.dynamic) == 0 {
		return nil
	}
	out := make([]Object, 0, len(r.dynamic))
	for _, m := range r.dynamic {
		if o := m.At(t); r.eligible(o, vehicle) {
			out = append(out, o)
		}
	}
	return out
}

func (r *Registry) eligible(o Object, vehicle string) bool {
	if !o.Collidable || o.Position.Y() <= 0 {
		return false
	}
	return !r.descendsFrom(o, vehicle)
}

// descendsFrom reports whether o is the vehicle or hangs below it in the parent chain.
func (r *Registry) descendsFrom(o Object, vehicle string) bool {
	if vehicle == "" {
		return false
	}
	seen := make(map[string]bool)
	name, parent := o.Name, o.Parent
	for {
		if name == vehicle {
			return true
		}
		if parent == "" || seen[parent] {
			return false
		}
		seen[parent] = true
		p, ok := r.byName[parent]
		if !ok {
			return parent == vehicle
		}
		name, parent = p.Name, p.Parent
	}
}
