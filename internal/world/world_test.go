package world

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Ru51kXD/Likvi/internal/log"
	"github.com/Ru51kXD/Likvi/internal/sim"
)

const sample = `
name: test
objects:
  - name: block
    category: building
    shape: {kind: box, width: 4, height: 10, depth: 6}
    position: [10, 5, 0]
  - name: blob
    shape: {kind: torus, radius: 3}
    position: [0, 2, 0]
  - name: hidden
    collidable: false
    shape: {kind: cone, radius: 1, height: 2}
    position: [0, 1, 5]
  - name: rotor
    parent: quadcopter
    shape: {kind: cylinder, radius: 0.1, height: 0.05}
    position: [0, 1, 0]
patrols:
  - name: bus
    shape: {kind: box, width: 2.5, height: 3, depth: 10}
    center: [0, 1.5, 0]
    radius: 30
    angularSpeed: 0.2
`

func TestLoad(t *testing.T) {
	w, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "test", w.Name)
	require.Len(t, w.Objects, 4)
	require.Len(t, w.Patrols, 1)
	assert.Equal(t, []float64{10, 5, 0}, w.Objects[0].Position)
	assert.Equal(t, 0.2, w.Patrols[0].AngularSpeed)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader("objects: [{name: a}, {name: a}]"))
	assert.True(t, errors.Is(err, ErrDuplicateName))

	_, err = Load(strings.NewReader("objects: [{name: a, colour: red}]"))
	assert.Error(t, err)

	w, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, w.Objects)
}

func TestShapeSpec(t *testing.T) {
	s, err := ShapeSpec{Kind: "Box", Width: 2, Height: 3, Depth: 4}.Shape()
	require.NoError(t, err)
	assert.Equal(t, sim.Box{Width: 2, Height: 3, Depth: 4}, s)

	s, err = ShapeSpec{Kind: "cylinder", Radius: 2, Height: 1}.Shape()
	require.NoError(t, err)
	assert.Equal(t, sim.Cylinder{RadiusTop: 2, RadiusBottom: 2, Height: 1}, s)

	s, err = ShapeSpec{}.Shape()
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = ShapeSpec{Kind: "torus"}.Shape()
	assert.True(t, errors.Is(err, ErrUnknownShape))
}

func TestRegistry(t *testing.T) {
	w, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	core, logs := observer.New(zap.DebugLevel)

	r := w.Registry(log.FromZap(zap.New(core)))

	cands := r.Candidates(sim.DefaultVehicleName)
	require.Len(t, cands, 2)
	assert.Equal(t, "block", cands[0].Name)
	assert.Equal(t, ObjectID("block"), cands[0].ID)
	assert.Equal(t, mgl64.Vec3{10, 5, 0}, cands[0].Position)
	assert.Equal(t, "blob", cands[1].Name)
	assert.Nil(t, cands[1].Shape)

	dyn := r.Dynamic(sim.DefaultVehicleName, 0)
	require.Len(t, dyn, 1)
	assert.Equal(t, mgl64.Vec3{30, 1.5, 0}, dyn[0].Position)

	assert.Equal(t, 1, logs.FilterMessage("using fallback extent").Len())
	built := logs.FilterMessage("world registry built").All()
	require.Len(t, built, 1)
	assert.Equal(t, int64(5), built[0].ContextMap()["objects"])
	assert.Equal(t, 5, r.Len())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	w, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, w.Objects, 4)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultWorld(t *testing.T) {
	w := Default()
	assert.NotEmpty(t, w.Objects)
	assert.NotEmpty(t, w.Patrols)

	r := w.Registry(nil)
	for _, o := range r.Candidates(sim.DefaultVehicleName) {
		assert.Greater(t, o.Position.Y(), 0.0, o.Name)
		assert.NotEqual(t, "pond", o.Name)
	}
	assert.NotEqual(t, ObjectID("tower"), ObjectID("antenna"))
}
