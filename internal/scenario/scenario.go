package scenario

import (
	"context"
	"io"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Ru51kXD/Likvi/internal/sim"
)

var (
	ErrEmptyScenario = errors.New("scenario: no steps and no duration")
	ErrUnknownKey    = errors.New("scenario: not a control key")
)

// Step holds Keys down from At for For seconds of session time.
type Step struct {
	At   float64  `yaml:"at"`
	For  float64  `yaml:"for"`
	Keys []string `yaml:"keys"`
}

func (s Step) active(t float64) bool { return t >= s.At && t < s.At+s.For }

type Scenario struct {
	Name           string    `yaml:"name"`
	Duration       float64   `yaml:"duration,omitempty"`
	ShowTrajectory bool      `yaml:"showTrajectory,omitempty"`
	StartPosition  []float64 `yaml:"startPosition,omitempty"`
	Steps          []Step    `yaml:"steps"`
}

func Load(r io.Reader) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open scenario %s", path)
	}
	defer f.Close()
	sc, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load scenario %s", path)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

func (sc *Scenario) validate() error {
	if len(sc.Steps) == 0 && sc.Duration <= 0 {
		return ErrEmptyScenario
	}
	end := 0.0
	for i, st := range sc.Steps {
		if st.At < 0 || st.For < 0 {
			return errors.Errorf("scenario: step %d has negative timing", i)
		}
		for _, k := range st.Keys {
			if !sim.IsControlKey(sim.Key(k)) {
				return errors.Wrapf(ErrUnknownKey, "step %d: %q", i, k)
			}
		}
		end = math.Max(end, st.At+st.For)
	}
	if sc.Duration <= 0 {
		sc.Duration = end
	}
	return nil
}

// KeysAt returns the keys held at session time t.
func (sc *Scenario) KeysAt(t float64) sim.KeyState {
	ks := make(sim.KeyState)
	for _, st := range sc.Steps {
		if !st.active(t) {
			continue
		}
		for _, k := range st.Keys {
			ks.Set(sim.Key(k), true)
		}
	}
	return ks
}

// timeline feeds scenario keys to the input sampler without allocating per tick.
type timeline struct {
	sc  *Scenario
	now float64
}

func (tl *timeline) Pressed(k sim.Key) bool {
	k = sim.Canonical(k)
	for _, st := range tl.sc.Steps {
		if !st.active(tl.now) {
			continue
		}
		for _, key := range st.Keys {
			if sim.Canonical(sim.Key(key)) == k {
				return true
			}
		}
	}
	return false
}

type Outcome uint8

const (
	OutcomeCompleted Outcome = iota
	OutcomeCrashed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCrashed:
		return "crashed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type Result struct {
	Name       string
	Outcome    Outcome
	Ticks      uint64
	SimTime    float64
	Final      sim.VehicleState
	Crash      *sim.Hit
	PathLength float64
}

// Run plays the scenario on a fresh session built from opts. It stops when the
// duration elapses, the vehicle crashes or ctx is done.
func Run(ctx context.Context, sc *Scenario, opts sim.Options) (Result, error) {
	if len(sc.StartPosition) > 0 {
		var p mgl64.Vec3
		copy(p[:], sc.StartPosition)
		opts.StartPosition = p
	}
	if sc.ShowTrajectory {
		opts.ShowTrajectory = true
	}
	s := sim.NewSession(opts)

	res := Result{Name: sc.Name}
	s.Subscribe(func(ev sim.Event) {
		if ev.Kind == sim.EventCrashed && ev.Hit != nil {
			hit := *ev.Hit
			res.Crash = &hit
		}
	})

	tl := &timeline{sc: sc}
	s.SetKeySource(tl)
	dt := s.StepDuration().Seconds()

	finish := func(o Outcome) Result {
		res.Outcome = o
		res.Ticks = s.Ticks()
		res.SimTime = s.Time()
		res.Final = s.Snapshot()
		res.PathLength = res.Final.Stats.Trajectory.PathLength()
		return res
	}

	for s.Time() < sc.Duration {
		if err := ctx.Err(); err != nil {
			return finish(OutcomeCancelled), err
		}
		tl.now = s.Time()
		s.Step(dt)
		if s.Store().State().IsCrash() {
			return finish(OutcomeCrashed), nil
		}
	}
	return finish(OutcomeCompleted), nil
}
