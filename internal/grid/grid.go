// Package grid generates query-unit grids from boundary shapefiles. A
// city-list sweep misses rural facilities; a grid of points spaced tighter
// than the API's search radius covers a whole state or CBSA.
package grid

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

// milesPerDegreeLat is approximate; longitude degrees shrink with latitude
// and are corrected per row.
const milesPerDegreeLat = 69.0

// Options configure grid generation.
type Options struct {
	SpacingMiles float64 // distance between grid points; default 50
	NameField    string  // attribute carrying the region name; default "NAME"
}

// Generate reads polygon boundaries from a shapefile and returns one query
// unit per grid point that falls inside a boundary.
func Generate(shpPath string, opts Options) ([]model.QueryUnit, error) {
	if opts.SpacingMiles <= 0 {
		opts.SpacingMiles = 50
	}
	if opts.NameField == "" {
		opts.NameField = "NAME"
	}

	log := zap.L().With(zap.String("component", "grid"), zap.String("shapefile", shpPath))

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "grid: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := -1
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, opts.NameField) {
			nameIdx = i
			break
		}
	}

	var units []model.QueryUnit
	var regions int

	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		name := fmt.Sprintf("region-%d", regions)
		if nameIdx >= 0 {
			if attr := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00")); attr != "" {
				name = attr
			}
		}
		regions++

		pts := gridPoints(polygonRings(poly), opts.SpacingMiles)
		for i, pt := range pts {
			units = append(units, model.QueryUnit{
				Name:      fmt.Sprintf("%s grid %d", name, i+1),
				Latitude:  pt[1],
				Longitude: pt[0],
			})
		}
	}

	log.Info("generated grid",
		zap.Int("regions", regions),
		zap.Int("points", len(units)),
		zap.Float64("spacing_miles", opts.SpacingMiles))

	return units, nil
}

// gridPoints walks the polygon's bounding box in spacing-mile steps and keeps
// points inside the boundary. Returned as [lon, lat] pairs.
func gridPoints(rings [][]float64, spacingMiles float64) [][2]float64 {
	if len(rings) == 0 {
		return nil
	}

	minLon, minLat, maxLon, maxLat := bounds(rings)
	latStep := spacingMiles / milesPerDegreeLat

	var pts [][2]float64
	for lat := minLat; lat <= maxLat; lat += latStep {
		// Longitude degrees shrink toward the poles.
		lonStep := spacingMiles / (milesPerDegreeLat * math.Cos(lat*math.Pi/180))
		for lon := minLon; lon <= maxLon; lon += lonStep {
			if contains(rings, lon, lat) {
				pts = append(pts, [2]float64{lon, lat})
			}
		}
	}
	return pts
}

// WriteLocations writes units as a locations YAML file loadable by the run
// command.
func WriteLocations(path string, units []model.QueryUnit) error {
	out := struct {
		Locations []model.QueryUnit `yaml:"locations"`
	}{Locations: units}

	data, err := yaml.Marshal(out)
	if err != nil {
		return eris.Wrap(err, "grid: marshal locations")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "grid: write locations %s", path)
	}
	return nil
}
