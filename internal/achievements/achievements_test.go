package achievements

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ru51kXD/Likvi/internal/sim"
)

func ids(as []Achievement) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.ID)
	}
	return out
}

func TestCheckUnlocksOnce(t *testing.T) {
	tr := NewTracker()
	var s sim.VehicleState

	assert.Empty(t, tr.Check(s))

	s.Stats.MaxAltitude = 12
	assert.Equal(t, []string{"first_flight"}, ids(tr.Check(s)))
	assert.Empty(t, tr.Check(s))

	s.Stats.MaxAltitude = 55
	s.Telemetry.SpeedKmh = 51
	assert.Equal(t, []string{"high_flyer", "speed_demon"}, ids(tr.Check(s)))
	assert.True(t, tr.Unlocked("speed_demon"))
	assert.Equal(t, 3, tr.Count())
}

func TestSurvivorRequiresNoCrash(t *testing.T) {
	tr := NewTracker()
	s := sim.VehicleState{Phase: sim.PhaseCrashed}
	s.Stats.FlightTime = 301
	s.Stats.Distance = 600

	assert.Equal(t, []string{"long_flight", "explorer"}, ids(tr.Check(s)))

	s.Phase = sim.PhaseFlying
	assert.Equal(t, []string{"survivor"}, ids(tr.Check(s)))
}
