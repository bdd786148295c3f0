package model

import "strings"

// QueryUnit is one unit of extraction work: either a geographic point queried
// against the remote API, or a flat file to parse. Units are immutable and
// enumerated once at run start.
type QueryUnit struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`

	// FilePath is set for file units; geographic fields are ignored.
	FilePath string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
}

// IsFile reports whether this unit is a flat-file unit.
func (u QueryUnit) IsFile() bool {
	return u.FilePath != ""
}

// Label returns a human-readable identifier for logs and failure records.
func (u QueryUnit) Label() string {
	if u.IsFile() {
		return u.FilePath
	}
	return u.Name
}

// FallbackCity extracts the city portion of a "City, ST" display name, used
// when a source record carries no city of its own.
func (u QueryUnit) FallbackCity() string {
	city, _ := splitDisplayName(u.Name)
	return city
}

// FallbackState extracts the two-letter state portion of a "City, ST" display
// name.
func (u QueryUnit) FallbackState() string {
	_, state := splitDisplayName(u.Name)
	return state
}

func splitDisplayName(name string) (city, state string) {
	idx := strings.LastIndex(name, ",")
	if idx < 0 {
		return strings.TrimSpace(name), ""
	}
	city = strings.TrimSpace(name[:idx])
	state = strings.ToUpper(strings.TrimSpace(name[idx+1:]))
	if len(state) != 2 {
		state = ""
	}
	return city, state
}
