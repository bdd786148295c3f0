package grid

import (
	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// polygonRings converts a shapefile Polygon into go-geom linear rings, one
// per part. Holes are not distinguished from shells here; containment uses
// the even-odd rule so they fall out naturally.
func polygonRings(p *shp.Polygon) [][]float64 {
	parts := int(p.NumParts)
	rings := make([][]float64, 0, parts)

	for i := 0; i < parts; i++ {
		start := int(p.Parts[i])
		end := len(p.Points)
		if i+1 < parts {
			end = int(p.Parts[i+1])
		}
		if end-start < 3 {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		rings = append(rings, flat)
	}
	return rings
}

// contains reports whether the point lies inside the polygon under the
// even-odd rule: inside an odd number of rings means inside the shape, which
// treats interior rings as holes without needing their winding order.
func contains(rings [][]float64, lon, lat float64) bool {
	pt := geom.Coord{lon, lat}
	inside := false
	for _, ring := range rings {
		if xy.IsPointInRing(geom.XY, pt, ring) {
			inside = !inside
		}
	}
	return inside
}

// bounds returns the min/max lon/lat across all rings.
func bounds(rings [][]float64) (minLon, minLat, maxLon, maxLat float64) {
	first := true
	for _, ring := range rings {
		for i := 0; i+1 < len(ring); i += 2 {
			lon, lat := ring[i], ring[i+1]
			if first {
				minLon, maxLon = lon, lon
				minLat, maxLat = lat, lat
				first = false
				continue
			}
			if lon < minLon {
				minLon = lon
			}
			if lon > maxLon {
				maxLon = lon
			}
			if lat < minLat {
				minLat = lat
			}
			if lat > maxLat {
				maxLat = lat
			}
		}
	}
	return minLon, minLat, maxLon, maxLat
}
