package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

var sfUnit = model.QueryUnit{Name: "San Francisco, CA", Latitude: 37.7749, Longitude: -122.4194}

func baseRecord() model.RawRecord {
	return model.RawRecord{
		"name_facility": "Serenity House",
		"street1":       "100 Main St",
		"city":          "San Francisco",
		"state":         "CA",
		"zip":           "94103",
		"phone":         "(415) 555-0100",
		"website":       "https://serenityhouse.org",
		"latitude":      37.78,
		"longitude":     -122.41,
		"type_facility": "Residential Treatment",
	}
}

func hasWarning(result model.ValidationResult, code model.ValidationCode) bool {
	for _, w := range result.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestValidate_CleanRecord(t *testing.T) {
	result := Validate(baseRecord(), sfUnit)
	assert.True(t, result.Accepted())
	assert.Empty(t, result.Warnings)
}

func TestValidate_MissingName(t *testing.T) {
	raw := model.RawRecord{"name_facility": "", "city": "Austin", "state": "TX"}
	result := Validate(raw, model.QueryUnit{Name: "Austin, TX"})

	assert.False(t, result.Accepted())
	require.Len(t, result.Errors, 1)
	assert.Equal(t, model.CodeMissingRequiredField, result.Errors[0].Code)
	assert.Equal(t, "name_facility", result.Errors[0].Field)
	// Critical failures short-circuit: no warnings are computed.
	assert.Empty(t, result.Warnings)
}

func TestValidate_WhitespaceName(t *testing.T) {
	raw := baseRecord()
	raw["name_facility"] = "   "
	result := Validate(raw, sfUnit)
	assert.False(t, result.Accepted())
}

func TestValidate_CityFallback(t *testing.T) {
	raw := baseRecord()
	delete(raw, "city")

	// The unit display name supplies a fallback city.
	result := Validate(raw, sfUnit)
	assert.True(t, result.Accepted())

	// No city anywhere: rejected.
	result = Validate(raw, model.QueryUnit{Name: ""})
	assert.False(t, result.Accepted())
}

func TestValidate_StateFallback(t *testing.T) {
	raw := baseRecord()
	delete(raw, "state")

	result := Validate(raw, sfUnit)
	assert.True(t, result.Accepted())

	result = Validate(raw, model.QueryUnit{Name: "Somewhere"})
	assert.False(t, result.Accepted())
}

func TestValidate_OutOfRangeLatitudeIsWarning(t *testing.T) {
	raw := baseRecord()
	raw["latitude"] = 137.0

	result := Validate(raw, sfUnit)
	assert.True(t, result.Accepted(), "out-of-range latitude must never reject")
	assert.True(t, hasWarning(result, model.CodeInvalidLatitude))
}

func TestValidate_OutOfRangeLongitude(t *testing.T) {
	raw := baseRecord()
	raw["longitude"] = -200.0

	result := Validate(raw, sfUnit)
	assert.True(t, result.Accepted())
	assert.True(t, hasWarning(result, model.CodeInvalidLongitude))
}

func TestValidate_BadPhone(t *testing.T) {
	raw := baseRecord()
	raw["phone"] = "call us!"

	result := Validate(raw, sfUnit)
	assert.True(t, result.Accepted())
	assert.True(t, hasWarning(result, model.CodeInvalidPhone))
}

func TestValidate_URLAutoFix(t *testing.T) {
	// Scheme-less URLs are fixable; no warning.
	raw := baseRecord()
	raw["website"] = "serenityhouse.org"
	result := Validate(raw, sfUnit)
	assert.False(t, hasWarning(result, model.CodeInvalidURL))

	// Garbage is not.
	raw["website"] = "not a url at all"
	result = Validate(raw, sfUnit)
	assert.True(t, hasWarning(result, model.CodeInvalidURL))
}

func TestValidate_BadZip(t *testing.T) {
	raw := baseRecord()
	raw["zip"] = "9410"

	result := Validate(raw, sfUnit)
	assert.True(t, hasWarning(result, model.CodeInvalidZip))

	raw["zip"] = "94103-1234"
	result = Validate(raw, sfUnit)
	assert.False(t, hasWarning(result, model.CodeInvalidZip))
}

func TestValidate_UnknownState(t *testing.T) {
	raw := baseRecord()
	raw["state"] = "ZZ"

	result := Validate(raw, sfUnit)
	assert.True(t, result.Accepted())
	assert.True(t, hasWarning(result, model.CodeInvalidState))
}

func TestValidate_TerritoryStateCodes(t *testing.T) {
	// Territory facilities come through the locator under postal codes.
	for _, code := range []string{"PR", "VI", "GU", "AS", "MP"} {
		raw := baseRecord()
		raw["state"] = code

		result := Validate(raw, sfUnit)
		assert.True(t, result.Accepted())
		assert.False(t, hasWarning(result, model.CodeInvalidState), code)
	}
}

func TestValidate_NameTooLong(t *testing.T) {
	raw := baseRecord()
	raw["name_facility"] = strings.Repeat("A", 201)

	result := Validate(raw, sfUnit)
	assert.True(t, hasWarning(result, model.CodeNameTooLong))
}

func TestValidate_TestDataHeuristic(t *testing.T) {
	raw := baseRecord()
	raw["name_facility"] = "Test Facility Do Not Use"

	result := Validate(raw, sfUnit)
	assert.True(t, result.Accepted())
	assert.True(t, hasWarning(result, model.CodeSuspectedTestData))
}

func TestValidate_LocationMismatch(t *testing.T) {
	raw := baseRecord()
	// New York coordinates against a San Francisco query unit.
	raw["latitude"] = 40.7128
	raw["longitude"] = -74.0060

	result := Validate(raw, sfUnit)
	assert.True(t, result.Accepted(), "distant coordinates flag, never discard")
	assert.True(t, hasWarning(result, model.CodeLocationMismatch))
}

func TestValidate_NoDistanceCheckForFileUnits(t *testing.T) {
	raw := baseRecord()
	raw["latitude"] = 40.7128
	raw["longitude"] = -74.0060

	result := Validate(raw, model.QueryUnit{FilePath: "/data/facilities.csv"})
	assert.False(t, hasWarning(result, model.CodeLocationMismatch))
}

func TestValidate_QualityIndicators(t *testing.T) {
	raw := model.RawRecord{
		"name_facility": "Sparse Facility",
		"city":          "Austin",
		"state":         "TX",
	}

	result := Validate(raw, model.QueryUnit{Name: "Austin, TX"})
	assert.True(t, result.Accepted())
	assert.True(t, hasWarning(result, model.CodeNoContactInfo))
	assert.True(t, hasWarning(result, model.CodeNoAddressDetail))
	assert.True(t, hasWarning(result, model.CodeNoServiceInfo))
}

func TestDistanceMiles(t *testing.T) {
	// San Francisco to Los Angeles is roughly 350 miles.
	d := DistanceMiles(37.7749, -122.4194, 34.0522, -118.2437)
	assert.InDelta(t, 347, d, 10)

	assert.InDelta(t, 0, DistanceMiles(30.0, -97.0, 30.0, -97.0), 0.001)
}

func TestIsStateCode(t *testing.T) {
	assert.True(t, IsStateCode("CA"))
	assert.True(t, IsStateCode("DC"))
	assert.True(t, IsStateCode("PR"))
	assert.False(t, IsStateCode("ZZ"))
	assert.False(t, IsStateCode("ca"))
}
