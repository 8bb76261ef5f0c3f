package sim_test

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Ru51kXD/Likvi/internal/log"
	"github.com/Ru51kXD/Likvi/internal/sim"
)

func TestSessionTakeoffAndForwardFlight(t *testing.T) {
	s := sim.NewSession(sim.DefaultOptions())
	require.NoError(t, s.StartFlight())

	s.SetThrottle(0.8)
	for i := 0; i < 240; i++ {
		s.Step(tick)
	}
	snap := s.Snapshot()
	require.True(t, snap.IsFlying())
	require.Greater(t, snap.Position.Y(), sim.GroundClearance)

	s.SetPitch(1)
	prev := -snap.Velocity.Z()
	for i := 0; i < 120; i++ {
		s.Step(tick)
		fwd := -s.Snapshot().Velocity.Z()
		require.GreaterOrEqual(t, fwd, prev-1e-9, "tick %d", i)
		prev = fwd
	}
	assert.Greater(t, prev, 0.0)
	assert.True(t, s.Snapshot().IsFlying())
	assert.Greater(t, s.Snapshot().Telemetry.SpeedKmh, 0.0)
}

func TestSessionHoldsUntilStarted(t *testing.T) {
	s := sim.NewSession(sim.DefaultOptions())
	s.SetThrottle(1)

	for i := 0; i < 120; i++ {
		s.Step(tick)
	}
	snap := s.Snapshot()
	assert.True(t, snap.AwaitingStart())
	assert.Equal(t, origin, snap.Position)
	assert.Zero(t, snap.Stats.FlightTime)
}

func TestSessionKeysStartFlight(t *testing.T) {
	s := sim.NewSession(sim.DefaultOptions())
	keys := sim.KeyState{}
	s.SetKeySource(keys)

	var events []sim.Event
	s.Subscribe(func(ev sim.Event) { events = append(events, ev) })

	s.Step(tick)
	assert.True(t, s.Snapshot().AwaitingStart())

	keys.Set(sim.KeyQ, true)
	s.Step(tick)
	require.True(t, s.Snapshot().IsFlying())
	require.Len(t, events, 1)
	assert.Equal(t, sim.EventStarted, events[0].Kind)
	assert.Equal(t, s.Snapshot().FlightID, events[0].FlightID)

	// throttle starts climbing on the following ticks
	s.Step(tick)
	assert.InDelta(t, sim.ThrottleRate, s.Snapshot().Controls.Throttle, 1e-12)
}

func TestSessionCrashAndReset(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	start := mgl64.Vec3{0, 10, 0}

	reg := sim.NewRegistry()
	reg.AddStatic(sim.Object{
		ID:         42,
		Name:       "tower",
		Category:   "building",
		Position:   mgl64.Vec3{0.5, 10, 0},
		Shape:      sim.Box{Width: 2, Height: 30, Depth: 2},
		Collidable: true,
	})

	opts := sim.DefaultOptions()
	opts.StartPosition = start
	opts.Registry = reg
	opts.Logger = log.FromZap(zap.New(core))
	s := sim.NewSession(opts)

	var kinds []sim.EventKind
	var crash sim.Event
	s.Subscribe(func(ev sim.Event) {
		kinds = append(kinds, ev.Kind)
		if ev.Kind == sim.EventCrashed {
			crash = ev
		}
	})

	require.NoError(t, s.StartFlight())
	s.SetThrottle(s.Dynamics().HoverThrottle())
	flight := s.Snapshot().FlightID

	for i := 0; i < 5*120 && !s.Snapshot().IsCrash(); i++ {
		s.Step(tick)
	}

	snap := s.Snapshot()
	require.True(t, snap.IsCrash())
	assert.GreaterOrEqual(t, s.Time(), 3.0)
	require.NotNil(t, crash.Hit)
	assert.Equal(t, uint64(42), crash.Hit.Object.ID)
	assert.Equal(t, flight, crash.FlightID)
	assert.Equal(t, 1, logs.FilterMessage("collision").Len())

	// further starts are illegal until reset
	assert.Error(t, s.StartFlight())

	s.ResetFlight()
	snap = s.Snapshot()
	assert.True(t, snap.AwaitingStart())
	assert.Equal(t, start, snap.Position)
	assert.Equal(t, []sim.EventKind{sim.EventStarted, sim.EventCrashed, sim.EventReset}, kinds)
	assert.Equal(t, 1, logs.FilterMessage("flight reset").Len())

	require.NoError(t, s.StartFlight())
	assert.NotEqual(t, flight, s.Snapshot().FlightID)
}

func TestSessionStats(t *testing.T) {
	opts := sim.DefaultOptions()
	opts.ShowTrajectory = true
	s := sim.NewSession(opts)
	require.NoError(t, s.StartFlight())
	s.SetThrottle(0.9)
	s.SetRoll(0.5)

	for i := 0; i < 360; i++ {
		s.Step(tick)
	}

	snap := s.Snapshot()
	st := snap.Stats
	assert.Greater(t, st.FlightTime, 0.0)
	assert.LessOrEqual(t, st.FlightTime, 3.0+1e-9)
	assert.GreaterOrEqual(t, st.MaxAltitude, snap.Telemetry.Altitude)
	assert.InDelta(t, mgl64.Vec2{snap.Position.X(), snap.Position.Z()}.Len(), st.Distance, 1e-9)
	assert.Equal(t, int(st.FlightTime/tick+0.5), st.Trajectory.Len())
	assert.Greater(t, st.Trajectory.PathLength(), 0.0)
}

func TestSessionTrajectoryDisabledByDefault(t *testing.T) {
	s := sim.NewSession(sim.DefaultOptions())
	require.NoError(t, s.StartFlight())
	s.SetThrottle(1)
	for i := 0; i < 120; i++ {
		s.Step(tick)
	}
	assert.Zero(t, s.Snapshot().Stats.Trajectory.Len())
	assert.Greater(t, s.Snapshot().Stats.FlightTime, 0.0)
}

func TestSessionAdvanceFixedStep(t *testing.T) {
	s := sim.NewSession(sim.DefaultOptions())

	assert.Equal(t, 0, s.Advance(time.Millisecond))
	assert.Equal(t, 2, s.Advance(time.Second/60))
	// long stalls are clamped and capped
	assert.Equal(t, 5, s.Advance(2*time.Second))
	assert.Equal(t, 0, s.Advance(0))
	assert.GreaterOrEqual(t, s.Alpha(), 0.0)
	assert.Less(t, s.Alpha(), 1.0)
	assert.Equal(t, uint64(7), s.Ticks())
	assert.InDelta(t, 7*s.StepDuration().Seconds(), s.Time(), 1e-9)
}

func TestSessionGeodeticFix(t *testing.T) {
	opts := sim.DefaultOptions()
	opts.Geodetic = sim.NewGeodetic(52.52, 13.405)
	opts.StartPosition = mgl64.Vec3{0, 0.5, -1000}
	s := sim.NewSession(opts)

	geo := s.Snapshot().Telemetry.Geo
	assert.InDelta(t, 13.405, geo.Lon, 1e-6)
	assert.InDelta(t, 52.52+1000.0/111_320, geo.Lat, 2e-4)
	assert.Equal(t, 0.5, geo.Alt)
}
