package transform

import "github.com/recovery-atlas/facility-cli/internal/model"

// Quality score weights. They sum to 100; the score is a plain completeness
// metric, not a judgment of the facility itself.
const (
	weightName      = 25
	weightStreet    = 8
	weightCity      = 6
	weightZip       = 6
	weightPhone     = 10
	weightWebsite   = 10
	weightCoords    = 15
	weightServices  = 10
	weightInsurance = 10
)

// QualityScore computes the 0-100 completeness score for a facility.
func QualityScore(f *model.Facility) int {
	score := 0

	if f.Name != "" {
		score += weightName
	}
	if f.Street != "" {
		score += weightStreet
	}
	if f.City != "" {
		score += weightCity
	}
	if f.Zip != "" {
		score += weightZip
	}
	if f.Phone != "" {
		score += weightPhone
	}
	if f.Website != "" {
		score += weightWebsite
	}
	if f.HasCoordinates() {
		score += weightCoords
	}
	if len(f.Services) > 0 {
		score += weightServices
	}
	if len(f.Insurance) > 0 {
		score += weightInsurance
	}

	return score
}
