// Package geo converts parcel geometry into map markers.
package geo

import (
	"fmt"
	"math"
	"strings"
)

const (
	semiMajorM = 6378137.0        // NAD83/GRS80 semi-major axis (metres)
	e2         = 0.00669438002290 // NAD83 eccentricity squared

	ftPerMeter = 3.2808333333333334 // US survey foot
)

// Projection maps dataset coordinates to WGS-84 latitude/longitude.
type Projection interface {
	Inverse(x, y float64) (latDeg, lonDeg float64)
}

// LonLat is the identity projection for geometry already stored as
// X=longitude, Y=latitude.
type LonLat struct{}

// Inverse returns (y, x).
func (LonLat) Inverse(x, y float64) (float64, float64) { return y, x }

// LambertConformal is a two-standard-parallel Lambert conformal conic on the
// NAD83 ellipsoid, the projection used by the Massachusetts and Texas state
// plane zones.
type LambertConformal struct {
	falseEasting  float64 // in projection units
	falseNorthing float64
	lon0          float64 // radians

	n, f, rho0 float64 // f and rho0 in projection units
}

// StatePlaneZone holds the defining parameters of a state plane zone.
type StatePlaneZone struct {
	Lat0, Lat1, Lat2, Lon0      float64 // degrees
	FalseEasting, FalseNorthing float64 // in projection units
	UnitsPerMeter               float64
}

var zones = map[string]StatePlaneZone{
	// EPSG:26986, MassGIS parcels.
	"ma-mainland": {
		Lat0: 41.0, Lat1: 42.68333333333333, Lat2: 41.71666666666667, Lon0: -71.5,
		FalseEasting: 200000.0, FalseNorthing: 750000.0, UnitsPerMeter: 1,
	},
	// EPSG:2249, Boston assessing.
	"ma-mainland-ft": {
		Lat0: 41.0, Lat1: 42.68333333333333, Lat2: 41.71666666666667, Lon0: -71.5,
		FalseEasting: 656166.667, FalseNorthing: 2460625.0, UnitsPerMeter: ftPerMeter,
	},
	// EPSG:2276, Tarrant County layers.
	"tx-north-central-ft": {
		Lat0: 31.66666666666667, Lat1: 32.13333333333333, Lat2: 33.96666666666667, Lon0: -98.5,
		FalseEasting: 1968500.0, FalseNorthing: 6561666.666666666, UnitsPerMeter: ftPerMeter,
	},
}

// ProjectionByName returns the named projection. "" and "none" select LonLat.
func ProjectionByName(name string) (Projection, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "none" || name == "lonlat" {
		return LonLat{}, nil
	}
	z, ok := zones[name]
	if !ok {
		return nil, fmt.Errorf("unknown projection %q", name)
	}
	return NewLambertConformal(z), nil
}

// NewLambertConformal precomputes the cone constants for zone z.
func NewLambertConformal(z StatePlaneZone) *LambertConformal {
	phi0 := z.Lat0 * math.Pi / 180
	phi1 := z.Lat1 * math.Pi / 180
	phi2 := z.Lat2 * math.Pi / 180

	m1 := lccM(phi1)
	m2 := lccM(phi2)
	t1 := lccT(phi1)
	t2 := lccT(phi2)
	t0 := lccT(phi0)

	n := math.Log(m1/m2) / math.Log(t1/t2)
	a := semiMajorM * z.UnitsPerMeter
	f := a * m1 / (n * math.Pow(t1, n))

	return &LambertConformal{
		falseEasting:  z.FalseEasting,
		falseNorthing: z.FalseNorthing,
		lon0:          z.Lon0 * math.Pi / 180,
		n:             n,
		f:             f,
		rho0:          f * math.Pow(t0, n),
	}
}

func lccM(phi float64) float64 {
	return math.Cos(phi) / math.Sqrt(1-e2*math.Sin(phi)*math.Sin(phi))
}

func lccT(phi float64) float64 {
	e := math.Sqrt(e2)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-e*math.Sin(phi))/(1+e*math.Sin(phi)), e/2)
}

// Forward converts WGS-84 degrees to (easting, northing) in zone units.
func (p *LambertConformal) Forward(latDeg, lonDeg float64) (x, y float64) {
	phi := latDeg * math.Pi / 180
	lambda := lonDeg * math.Pi / 180

	rho := p.f * math.Pow(lccT(phi), p.n)
	theta := p.n * (lambda - p.lon0)

	x = rho*math.Sin(theta) + p.falseEasting
	y = p.rho0 - rho*math.Cos(theta) + p.falseNorthing
	return
}

// Inverse converts (easting, northing) in zone units to WGS-84 degrees.
// Latitude is found by fixed-point iteration on the conformal latitude.
func (p *LambertConformal) Inverse(x, y float64) (latDeg, lonDeg float64) {
	dx := x - p.falseEasting
	dy := p.rho0 - (y - p.falseNorthing)

	rho := math.Copysign(math.Hypot(dx, dy), p.n)
	theta := math.Atan2(dx, dy)
	if p.n < 0 {
		theta = math.Atan2(-dx, -dy)
	}
	t := math.Pow(rho/p.f, 1/p.n)

	e := math.Sqrt(e2)
	phi := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < 15; i++ {
		es := e * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(t*math.Pow((1-es)/(1+es), e/2))
		if math.Abs(next-phi) < 1e-12 {
			phi = next
			break
		}
		phi = next
	}

	lambda := theta/p.n + p.lon0
	return phi * 180 / math.Pi, lambda * 180 / math.Pi
}
