package sim_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/Ru51kXD/Likvi/internal/sim"
)

func TestExtents(t *testing.T) {
	tests := []struct {
		name   string
		shape  sim.Shape
		extent float64
		height float64
	}{
		{"box", sim.Box{Width: 4, Height: 10, Depth: 6}, 3, 10},
		{"cylinder", sim.Cylinder{RadiusTop: 2, RadiusBottom: 3, Height: 4}, 3, 4},
		{"cone", sim.Cone{Radius: 1.5, Height: 6}, 1.5, 6},
		{"missing", nil, sim.FallbackExtent, sim.FallbackHeight},
		{"zero box", sim.Box{}, sim.FallbackExtent / 2, sim.FallbackHeight},
		{"box without footprint", sim.Box{Height: 5}, 0.5, 5},
		{"thin box", sim.Box{Width: 0.4, Height: 2}, 0.5, 2},
		{"wide box missing depth", sim.Box{Width: 6, Height: 2}, 3, 2},
		{"flat cone", sim.Cone{Radius: 2}, 2, sim.FallbackHeight},
		{"cone without radius", sim.Cone{Height: 4}, sim.FallbackExtent, 4},
		{"nan cylinder", sim.Cylinder{RadiusTop: math.NaN(), Height: 3}, sim.FallbackExtent, 3},
		{"cylinder missing top radius", sim.Cylinder{RadiusBottom: 0.4, Height: 6}, sim.FallbackExtent, 6},
		{"negative cylinder", sim.Cylinder{RadiusTop: -2, RadiusBottom: -3, Height: math.Inf(1)}, sim.FallbackExtent, sim.FallbackHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, h := sim.Extents(tt.shape)
			assert.Equal(t, tt.extent, e)
			assert.Equal(t, tt.height, h)
		})
	}
}

func TestRegistryCandidates(t *testing.T) {
	r := sim.NewRegistry()
	r.AddStatic(
		sim.Object{Name: "tower", Position: mgl64.Vec3{0, 5, 0}, Collidable: true},
		sim.Object{Name: "grass", Position: mgl64.Vec3{0, 0, 0}, Collidable: true},
		sim.Object{Name: "cloud", Position: mgl64.Vec3{0, 50, 0}},
		sim.Object{Name: "quadcopter", Position: mgl64.Vec3{0, 1, 0}, Collidable: true},
		sim.Object{Name: "propeller", Parent: "quadcopter", Position: mgl64.Vec3{0, 1, 0}, Collidable: true},
		sim.Object{Name: "prop-tip", Parent: "propeller", Position: mgl64.Vec3{0, 1, 0}, Collidable: true},
		sim.Object{Name: "window", Parent: "tower", Position: mgl64.Vec3{0, 8, 0}, Collidable: true},
	)

	var names []string
	for _, o := range r.Candidates("quadcopter") {
		names = append(names, o.Name)
	}
	assert.ElementsMatch(t, []string{"tower", "window"}, names)
}

func TestPatrolCircles(t *testing.T) {
	p := sim.Patrol{
		Object:       sim.Object{Name: "car", Collidable: true},
		Center:       mgl64.Vec3{10, 1, 0},
		Radius:       50,
		AngularSpeed: 0.1,
	}

	o := p.At(0)
	assert.InDelta(t, 60, o.Position.X(), 1e-9)
	assert.InDelta(t, 0, o.Position.Z(), 1e-9)
	assert.Equal(t, "car", o.Name)

	o = p.At(math.Pi / 0.2)
	assert.InDelta(t, 10, o.Position.X(), 1e-9)
	assert.InDelta(t, 50, o.Position.Z(), 1e-9)

	r := sim.NewRegistry()
	r.AddDynamic(p)
	assert.Len(t, r.Dynamic("quadcopter", 0), 1)
	assert.Empty(t, r.Candidates("quadcopter"))
}
