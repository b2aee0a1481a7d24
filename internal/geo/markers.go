package geo

import (
	shp "github.com/jonas-p/go-shp"

	"landlords/internal/dataset"
)

// Boston is where the map opens when there is nothing to show.
var Boston = LatLon{Lat: 42.3601, Lon: -71.0589}

const (
	defaultZoom = 10
	markerZoom  = 13
)

// LatLon is a WGS-84 position in decimal degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Marker places one address on the map.
type Marker struct {
	Address string `json:"address"`
	LatLon
}

// Map is everything the renderer needs: where to centre, how far to zoom and
// which markers to draw.
type Map struct {
	Center  LatLon   `json:"center"`
	Zoom    int      `json:"zoom"`
	Markers []Marker `json:"markers"`
}

// BuildMap looks up each address's geometry in ds and projects it to a
// marker. Addresses with no geometry are left off the map. The map centres on
// the first marker, or on Boston when there are none.
func BuildMap(ds *dataset.Dataset, addresses []string, proj Projection) Map {
	if proj == nil {
		proj = LonLat{}
	}
	m := Map{Center: Boston, Zoom: defaultZoom, Markers: []Marker{}}
	for _, addr := range addresses {
		g, ok := ds.Geometry(addr)
		if !ok {
			continue
		}
		x, y, ok := anchor(g)
		if !ok {
			continue
		}
		lat, lon := proj.Inverse(x, y)
		m.Markers = append(m.Markers, Marker{Address: addr, LatLon: LatLon{Lat: lat, Lon: lon}})
	}
	if len(m.Markers) > 0 {
		m.Center = m.Markers[0].LatLon
		m.Zoom = markerZoom
	}
	return m
}

// anchor picks the point a marker sits on: the point itself, or the centre
// of a shape's bounding box.
func anchor(g shp.Shape) (x, y float64, ok bool) {
	switch s := g.(type) {
	case *shp.Point:
		return s.X, s.Y, true
	case *shp.PointZ:
		return s.X, s.Y, true
	case *shp.PointM:
		return s.X, s.Y, true
	case *shp.Null, nil:
		return 0, 0, false
	}
	b := g.BBox()
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2, true
}
