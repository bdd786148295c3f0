// Package model defines the core types shared across the ingestion pipeline.
package model

import "time"

// Service vocabulary. Extraction maps free-text facility type and service
// descriptions onto this closed set; ServiceTreatment is the fallback when
// nothing matches, so Services is never empty.
const (
	ServiceResidential        = "residential"
	ServiceOutpatient         = "outpatient"
	ServiceDetox              = "detox"
	ServiceTransitional       = "transitional"
	ServiceMedicationAssisted = "medication_assisted"
	ServiceCoOccurring        = "co_occurring"
	ServiceTreatment          = "treatment"
)

// Insurance vocabulary.
const (
	InsuranceMedicare = "Medicare"
	InsuranceMedicaid = "Medicaid"
	InsurancePrivate  = "Private Insurance"
	InsuranceSelfPay  = "Self-Pay"
	InsuranceMilitary = "Military Insurance"
	InsuranceState    = "State Insurance"
)

// Program vocabulary.
const (
	ProgramWomens        = "Women's Program"
	ProgramMens          = "Men's Program"
	ProgramYouth         = "Youth Program"
	ProgramVeterans      = "Veterans Program"
	ProgramLGBTQ         = "LGBTQ+ Program"
	ProgramDualDiagnosis = "Dual-Diagnosis Program"
)

// Facility is the validated, normalized representation of a treatment
// facility, produced by the transformer and consumed by the deduplicator and
// loader. Instances are never mutated after creation; repeated ingestion of
// the same facility supersedes the stored row via upsert.
type Facility struct {
	// ID is the deterministic primary key: state prefix + name slug + an
	// 8-hex-char content hash, capped at 50 characters.
	ID string `json:"id"`

	Name   string `json:"name"`
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`

	// Latitude/Longitude are nil when the source record carried no usable
	// coordinates.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`

	Services  []string `json:"services"`
	Insurance []string `json:"accepted_insurance,omitempty"`
	Programs  []string `json:"programs,omitempty"`

	// DataQuality is a 0-100 completeness score.
	DataQuality int       `json:"data_quality"`
	DataSource  string    `json:"data_source"`
	LastUpdated time.Time `json:"last_updated"`

	// Fingerprint hashes the identifying fields (name, street, city, state)
	// for in-run deduplication. Never exposed externally.
	Fingerprint string `json:"-"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (f *Facility) HasCoordinates() bool {
	return f.Latitude != nil && f.Longitude != nil
}
