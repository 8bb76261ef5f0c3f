package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/peterstace/simplefeatures/geom"
)

const TrajectoryCapacity = 1000

// Trajectory is a bounded FIFO of sampled positions. The zero value is empty and usable.
type Trajectory struct {
	buf  []mgl64.Vec3
	head int
	n    int
}

func (t *Trajectory) Push(p mgl64.Vec3) {
	if t.buf == nil {
		t.buf = make([]mgl64.Vec3, TrajectoryCapacity)
	}
	if t.n < len(t.buf) {
		t.buf[(t.head+t.n)%len(t.buf)] = p
		t.n++
		return
	}
	// full: overwrite the oldest sample
	t.buf[t.head] = p
	t.head = (t.head + 1) % len(t.buf)
}

func (t Trajectory) Len() int { return t.n }

// Points returns the samples oldest first.
func (t Trajectory) Points() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, t.n)
	for i := 0; i < t.n; i++ {
		out[i] = t.buf[(t.head+i)%len(t.buf)]
	}
	return out
}

func (t Trajectory) clone() Trajectory {
	if t.buf == nil {
		return Trajectory{}
	}
	buf := make([]mgl64.Vec3, len(t.buf))
	copy(buf, t.buf)
	return Trajectory{buf: buf, head: t.head, n: t.n}
}

// GroundTrack projects the samples onto the ground plane as (x, z) pairs.
// Fewer than two distinct ground points, as in a straight climb, yield an empty line string.
func (t Trajectory) GroundTrack() geom.LineString {
	if t.n < 2 {
		return geom.LineString{}
	}
	flat := make([]float64, 0, 2*t.n)
	for _, p := range t.Points() {
		flat = append(flat, p.X(), p.Z())
	}
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.LineString{}
	}
	return ls
}

// PathLength is the horizontal distance travelled along the recorded samples.
func (t Trajectory) PathLength() float64 {
	return t.GroundTrack().Length()
}
