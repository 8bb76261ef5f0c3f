package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wroge/wgs84"
)

// Geodetic anchors the local metric frame (x east, z south) at a WGS84 origin.
type Geodetic struct {
	originX float64 // EPSG:3857 metres
	originY float64
	scale   float64 // mercator metres per ground metre at the origin latitude
	toGeo   func(a, b, c float64) (float64, float64, float64)
}

func NewGeodetic(lat, lon float64) *Geodetic {
	epsg := wgs84.EPSG()
	x, y, _ := epsg.Transform(4326, 3857)(lon, lat, 0)
	scale := 1.0
	if c := math.Cos(mgl64.DegToRad(lat)); c > 1e-6 {
		scale = 1 / c
	}
	return &Geodetic{
		originX: x,
		originY: y,
		scale:   scale,
		toGeo:   epsg.Transform(3857, 4326),
	}
}

// Fix converts a local position into longitude, latitude and altitude.
func (g *Geodetic) Fix(p mgl64.Vec3) GeoFix {
	lon, lat, _ := g.toGeo(g.originX+p.X()*g.scale, g.originY-p.Z()*g.scale, 0)
	return GeoFix{Lon: lon, Lat: lat, Alt: p.Y()}
}
