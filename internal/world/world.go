package world

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Ru51kXD/Likvi/internal/log"
	"github.com/Ru51kXD/Likvi/internal/sim"
)

var (
	ErrUnknownShape  = errors.New("world: unknown shape kind")
	ErrDuplicateName = errors.New("world: duplicate object name")
)

//go:embed default.yaml
var defaultWorld []byte

// ShapeSpec describes collision geometry. Kind is box, cylinder or cone.
type ShapeSpec struct {
	Kind         string  `yaml:"kind"`
	Width        float64 `yaml:"width,omitempty"`
	Height       float64 `yaml:"height,omitempty"`
	Depth        float64 `yaml:"depth,omitempty"`
	Radius       float64 `yaml:"radius,omitempty"`
	RadiusTop    float64 `yaml:"radiusTop,omitempty"`
	RadiusBottom float64 `yaml:"radiusBottom,omitempty"`
}

type ObjectSpec struct {
	Name       string    `yaml:"name"`
	Category   string    `yaml:"category,omitempty"`
	Parent     string    `yaml:"parent,omitempty"`
	Collidable *bool     `yaml:"collidable,omitempty"`
	Shape      ShapeSpec `yaml:"shape"`
	Position   []float64 `yaml:"position"`
}

// PatrolSpec is an object driving in a circle at constant angular speed.
type PatrolSpec struct {
	Name         string    `yaml:"name"`
	Category     string    `yaml:"category,omitempty"`
	Shape        ShapeSpec `yaml:"shape"`
	Center       []float64 `yaml:"center"`
	Radius       float64   `yaml:"radius"`
	AngularSpeed float64   `yaml:"angularSpeed"`
	Phase        float64   `yaml:"phase,omitempty"`
}

type World struct {
	Name    string       `yaml:"name"`
	Objects []ObjectSpec `yaml:"objects"`
	Patrols []PatrolSpec `yaml:"patrols,omitempty"`
}

// Load decodes a YAML world and checks object names are unique.
func Load(r io.Reader) (*World, error) {
	var w World
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode world")
	}
	if err := w.normalize(); err != nil {
		return nil, err
	}
	return &w, nil
}

func LoadFile(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open world %s", path)
	}
	defer f.Close()
	w, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load world %s", path)
	}
	return w, nil
}

// Default returns the built-in world.
func Default() *World {
	w, err := Load(bytes.NewReader(defaultWorld))
	if err != nil {
		panic(err)
	}
	return w
}

func (w *World) normalize() error {
	seen := make(map[string]bool, len(w.Objects)+len(w.Patrols))
	for i := range w.Objects {
		o := &w.Objects[i]
		if o.Name == "" {
			o.Name = fmt.Sprintf("object-%d", i)
		}
		if seen[o.Name] {
			return errors.Wrap(ErrDuplicateName, o.Name)
		}
		seen[o.Name] = true
	}
	for i := range w.Patrols {
		p := &w.Patrols[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("patrol-%d", i)
		}
		if seen[p.Name] {
			return errors.Wrap(ErrDuplicateName, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Shape builds the collision geometry. A blank kind means no geometry; the caller gets the fallback extent.
func (s ShapeSpec) Shape() (sim.Shape, error) {
	switch strings.ToLower(s.Kind) {
	case "box":
		return sim.Box{Width: s.Width, Height: s.Height, Depth: s.Depth}, nil
	case "cylinder":
		top, bottom := s.RadiusTop, s.RadiusBottom
		if top == 0 && bottom == 0 {
			top, bottom = s.Radius, s.Radius
		}
		return sim.Cylinder{RadiusTop: top, RadiusBottom: bottom, Height: s.Height}, nil
	case "cone":
		return sim.Cone{Radius: s.Radius, Height: s.Height}, nil
	case "":
		return nil, nil
	default:
		return nil, errors.Wrap(ErrUnknownShape, s.Kind)
	}
}

// ObjectID derives a stable id from an object name.
func ObjectID(name string) uint64 { return xxhash.Sum64String(name) }

// vec reads up to three components; missing ones are zero.
func vec(a []float64) mgl64.Vec3 {
	var v mgl64.Vec3
	copy(v[:], a)
	return v
}

// Registry builds the collision registry. Unknown shapes are logged and kept with the fallback extent.
func (w *World) Registry(logger log.Log) *sim.Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	shape := func(name string, s ShapeSpec) sim.Shape {
		sh, err := s.Shape()
		if err != nil {
			logger.Warn("using fallback extent", log.String("object", name), log.Err(err))
		}
		return sh
	}

	r := sim.NewRegistry()
	for _, o := range w.Objects {
		collidable := o.Collidable == nil || *o.Collidable
		r.AddStatic(sim.Object{
			ID:         ObjectID(o.Name),
			Name:       o.Name,
			Category:   o.Category,
			Parent:     o.Parent,
			Position:   vec(o.Position),
			Shape:      shape(o.Name, o.Shape),
			Collidable: collidable,
		})
	}
	for _, p := range w.Patrols {
		r.AddDynamic(sim.Patrol{
			Object: sim.Object{
				ID:         ObjectID(p.Name),
				Name:       p.Name,
				Category:   p.Category,
				Shape:      shape(p.Name, p.Shape),
				Collidable: true,
			},
			Center:       vec(p.Center),
			Radius:       p.Radius,
			AngularSpeed: p.AngularSpeed,
			Phase:        p.Phase,
		})
	}
	logger.Debug("world registry built",
		log.String("world", w.Name),
		log.Int("objects", r.Len()),
		log.Int("dynamic", len(w.Patrols)),
	)
	return r
}
