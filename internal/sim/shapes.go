package sim

import "math"

// Fallback extents for objects whose geometry is missing or degenerate.
const (
	FallbackExtent = 1.0
	FallbackHeight = 5.0
)

// Shape is the collision geometry of an object. Implemented by Box, Cylinder and Cone.
type Shape interface {
	extents() (horizontal, height float64)
}

type Box struct {
	Width  float64
	Height float64
	Depth  float64
}

type Cylinder struct {
	RadiusTop    float64
	RadiusBottom float64
	Height       float64
}

type Cone struct {
	Radius float64
	Height float64
}

func (b Box) extents() (float64, float64) {
	return math.Max(orFallback(b.Width, FallbackExtent), orFallback(b.Depth, FallbackExtent)) / 2,
		orFallback(b.Height, FallbackHeight)
}

func (c Cylinder) extents() (float64, float64) {
	return math.Max(orFallback(c.RadiusTop, FallbackExtent), orFallback(c.RadiusBottom, FallbackExtent)),
		orFallback(c.Height, FallbackHeight)
}

func (c Cone) extents() (float64, float64) {
	return orFallback(c.Radius, FallbackExtent), orFallback(c.Height, FallbackHeight)
}

// orFallback replaces a zero, negative or non-finite dimension.
func orFallback(v, fallback float64) float64 {
	if !(v > 0) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// Extents returns the horizontal radius and full height used by the narrow phase.
// Each missing dimension falls back on its own; no geometry at all gives the fallback extent.
func Extents(s Shape) (horizontal, height float64) {
	if s == nil {
		return FallbackExtent, FallbackHeight
	}
	return s.extents()
}
