package scenario

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ru51kXD/Likvi/internal/sim"
)

const climb = `
name: climb
duration: 4
showTrajectory: true
steps:
  - {at: 0, for: 1.5, keys: [q]}
  - {at: 2, for: 1, keys: [w, ArrowLeft]}
`

func TestLoad(t *testing.T) {
	sc, err := Load(strings.NewReader(climb))
	require.NoError(t, err)

	assert.Equal(t, "climb", sc.Name)
	assert.Equal(t, 4.0, sc.Duration)
	assert.True(t, sc.ShowTrajectory)
	require.Len(t, sc.Steps, 2)
}

func TestLoad_DurationFromSteps(t *testing.T) {
	sc, err := Load(strings.NewReader(`steps: [{at: 1, for: 2, keys: [Q]}, {at: 0.5, for: 0.5, keys: [ц]}]`))
	require.NoError(t, err)
	assert.Equal(t, 3.0, sc.Duration)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyScenario))

	_, err = Load(strings.NewReader(`steps: [{at: 0, for: 1, keys: [x]}]`))
	assert.True(t, errors.Is(err, ErrUnknownKey))

	_, err = Load(strings.NewReader(`steps: [{at: -1, for: 1, keys: [q]}]`))
	assert.Error(t, err)

	_, err = Load(strings.NewReader(`duration: 1
bogus: true`))
	assert.Error(t, err)
}

func TestKeysAt(t *testing.T) {
	sc, err := Load(strings.NewReader(climb))
	require.NoError(t, err)

	assert.True(t, sc.KeysAt(0).Pressed(sim.KeyQ))
	assert.True(t, sc.KeysAt(1.49).Pressed(sim.KeyQ))
	assert.False(t, sc.KeysAt(1.5).Pressed(sim.KeyQ))
	assert.Empty(t, sc.KeysAt(1.75))

	ks := sc.KeysAt(2.5)
	assert.True(t, ks.Pressed(sim.KeyW))
	assert.True(t, ks.Pressed(sim.KeyLeft))
	assert.False(t, ks.Pressed(sim.KeyQ))
}

func TestRun_Completes(t *testing.T) {
	sc, err := Load(strings.NewReader(climb))
	require.NoError(t, err)

	res, err := Run(context.Background(), sc, sim.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.GreaterOrEqual(t, res.SimTime, 4.0)
	assert.InDelta(t, 480, float64(res.Ticks), 1)
	assert.True(t, res.Final.IsFlying())
	assert.Greater(t, res.Final.Telemetry.Altitude, sim.GroundClearance)
	assert.Greater(t, res.Final.Attitude.Yaw, 0.0)
	assert.Greater(t, res.Final.Stats.Trajectory.Len(), 0)
	assert.Greater(t, res.PathLength, 0.0)
	assert.Nil(t, res.Crash)
}

func TestRun_Crashes(t *testing.T) {
	sc, err := Load(strings.NewReader(`
name: into-the-wall
startPosition: [0, 10, 0]
duration: 8
steps:
  - {at: 0, for: 1, keys: [q]}
`))
	require.NoError(t, err)

	reg := sim.NewRegistry()
	reg.AddStatic(sim.Object{
		ID:         7,
		Name:       "wall",
		Position:   mgl64.Vec3{0, 50, 0},
		Shape:      sim.Box{Width: 2, Height: 200, Depth: 2},
		Collidable: true,
	})
	opts := sim.DefaultOptions()
	opts.Registry = reg

	res, err := Run(context.Background(), sc, opts)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCrashed, res.Outcome)
	require.NotNil(t, res.Crash)
	assert.Equal(t, "wall", res.Crash.Object.Name)
	assert.True(t, res.Final.IsCrash())
	assert.Less(t, res.SimTime, 4.0)
}

func TestRun_Cancelled(t *testing.T) {
	sc, err := Load(strings.NewReader(climb))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, sc, sim.DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeCancelled, res.Outcome)
	assert.Zero(t, res.Ticks)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "climb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`steps: [{at: 0, for: 1, keys: [q]}]`), 0644))

	sc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, sc.Name)
}
