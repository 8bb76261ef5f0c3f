package sim_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/Ru51kXD/Likvi/internal/sim"
)

func TestGeodeticOriginRoundTrip(t *testing.T) {
	g := sim.NewGeodetic(48.8566, 2.3522)

	fix := g.Fix(mgl64.Vec3{0, 12, 0})
	assert.InDelta(t, 2.3522, fix.Lon, 1e-9)
	assert.InDelta(t, 48.8566, fix.Lat, 1e-9)
	assert.Equal(t, 12.0, fix.Alt)
}

func TestGeodeticAxes(t *testing.T) {
	g := sim.NewGeodetic(0, 0)

	east := g.Fix(mgl64.Vec3{1000, 0, 0})
	assert.Greater(t, east.Lon, 0.0)
	assert.InDelta(t, 0, east.Lat, 1e-9)

	north := g.Fix(mgl64.Vec3{0, 0, -1000})
	assert.Greater(t, north.Lat, 0.0)
	assert.InDelta(t, 0.00898, north.Lat, 1e-4)
	assert.InDelta(t, 0, north.Lon, 1e-9)
}
