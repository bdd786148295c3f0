package ingest

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

// locationsFile is the YAML shape accepted by LoadLocations.
type locationsFile struct {
	Locations []model.QueryUnit `yaml:"locations"`
}

// LoadLocations reads query units from a YAML file. Grid-generated location
// files (see the grid-gen command) use the same shape.
func LoadLocations(path string) ([]model.QueryUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read locations %s", path)
	}

	var f locationsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "ingest: parse locations %s", path)
	}

	for i, u := range f.Locations {
		if u.IsFile() {
			continue
		}
		if u.Name == "" {
			return nil, eris.Errorf("ingest: locations %s: entry %d has no name", path, i)
		}
		if u.Latitude == 0 && u.Longitude == 0 {
			return nil, eris.Errorf("ingest: locations %s: %s has no coordinates", path, u.Name)
		}
	}
	return f.Locations, nil
}

// DefaultLocations covers the largest metro areas in the country. A full
// national sweep should use a grid-generated file instead; this list is the
// zero-config starting point.
func DefaultLocations() []model.QueryUnit {
	return []model.QueryUnit{
		{Name: "New York, NY", Latitude: 40.7128, Longitude: -74.0060},
		{Name: "Los Angeles, CA", Latitude: 34.0522, Longitude: -118.2437},
		{Name: "Chicago, IL", Latitude: 41.8781, Longitude: -87.6298},
		{Name: "Houston, TX", Latitude: 29.7604, Longitude: -95.3698},
		{Name: "Phoenix, AZ", Latitude: 33.4484, Longitude: -112.0740},
		{Name: "Philadelphia, PA", Latitude: 39.9526, Longitude: -75.1652},
		{Name: "San Antonio, TX", Latitude: 29.4241, Longitude: -98.4936},
		{Name: "San Diego, CA", Latitude: 32.7157, Longitude: -117.1611},
		{Name: "Dallas, TX", Latitude: 32.7767, Longitude: -96.7970},
		{Name: "Austin, TX", Latitude: 30.2672, Longitude: -97.7431},
		{Name: "Jacksonville, FL", Latitude: 30.3322, Longitude: -81.6557},
		{Name: "San Jose, CA", Latitude: 37.3382, Longitude: -121.8863},
		{Name: "Columbus, OH", Latitude: 39.9612, Longitude: -82.9988},
		{Name: "Charlotte, NC", Latitude: 35.2271, Longitude: -80.8431},
		{Name: "Indianapolis, IN", Latitude: 39.7684, Longitude: -86.1581},
		{Name: "San Francisco, CA", Latitude: 37.7749, Longitude: -122.4194},
		{Name: "Seattle, WA", Latitude: 47.6062, Longitude: -122.3321},
		{Name: "Denver, CO", Latitude: 39.7392, Longitude: -104.9903},
		{Name: "Nashville, TN", Latitude: 36.1627, Longitude: -86.7816},
		{Name: "Oklahoma City, OK", Latitude: 35.4676, Longitude: -97.5164},
		{Name: "Washington, DC", Latitude: 38.9072, Longitude: -77.0369},
		{Name: "Boston, MA", Latitude: 42.3601, Longitude: -71.0589},
		{Name: "El Paso, TX", Latitude: 31.7619, Longitude: -106.4850},
		{Name: "Portland, OR", Latitude: 45.5152, Longitude: -122.6784},
		{Name: "Las Vegas, NV", Latitude: 36.1699, Longitude: -115.1398},
		{Name: "Detroit, MI", Latitude: 42.3314, Longitude: -83.0458},
		{Name: "Memphis, TN", Latitude: 35.1495, Longitude: -90.0490},
		{Name: "Louisville, KY", Latitude: 38.2527, Longitude: -85.7585},
		{Name: "Baltimore, MD", Latitude: 39.2904, Longitude: -76.6122},
		{Name: "Milwaukee, WI", Latitude: 43.0389, Longitude: -87.9065},
		{Name: "Albuquerque, NM", Latitude: 35.0844, Longitude: -106.6504},
		{Name: "Tucson, AZ", Latitude: 32.2226, Longitude: -110.9747},
		{Name: "Atlanta, GA", Latitude: 33.7490, Longitude: -84.3880},
		{Name: "Miami, FL", Latitude: 25.7617, Longitude: -80.1918},
		{Name: "Minneapolis, MN", Latitude: 44.9778, Longitude: -93.2650},
		{Name: "New Orleans, LA", Latitude: 29.9511, Longitude: -90.0715},
		{Name: "Cleveland, OH", Latitude: 41.4993, Longitude: -81.6944},
		{Name: "Kansas City, MO", Latitude: 39.0997, Longitude: -94.5786},
		{Name: "Salt Lake City, UT", Latitude: 40.7608, Longitude: -111.8910},
		{Name: "Anchorage, AK", Latitude: 61.2181, Longitude: -149.9003},
		{Name: "Honolulu, HI", Latitude: 21.3069, Longitude: -157.8583},
	}
}
