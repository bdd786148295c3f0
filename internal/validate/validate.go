// Package validate checks raw facility records against required-field,
// data-type, business-logic, and quality-indicator rules. Critical failures
// reject the record; everything else becomes a warning on the accepted
// record.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

const (
	// maxNameLength flags names beyond plausible facility naming.
	maxNameLength = 200

	// maxDistanceMiles flags facilities implausibly far from the query
	// point, which usually means bad geocoding upstream.
	maxDistanceMiles = 200.0
)

var (
	// loosePhonePattern accepts anything that plausibly contains a phone
	// number; exact formatting is the transformer's job.
	loosePhonePattern = regexp.MustCompile(`^\+?[\d\s().\-/x]{7,25}$`)

	zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// Validate checks one raw record against all rules. The query unit supplies
// fallback location context for records missing city or state.
func Validate(raw model.RawRecord, unit model.QueryUnit) model.ValidationResult {
	var result model.ValidationResult

	name := raw.Str(model.KeysName...)
	city := raw.Str(model.KeysCity...)
	state := strings.ToUpper(raw.Str(model.KeysState...))

	// Required fields. Critical failures short-circuit: there is no point
	// running quality checks on a record with no identity.
	if name == "" {
		result.Errors = append(result.Errors, model.ValidationError{
			Code:    model.CodeMissingRequiredField,
			Field:   "name_facility",
			Message: "facility name is empty",
		})
	}
	if city == "" && unit.FallbackCity() == "" {
		result.Errors = append(result.Errors, model.ValidationError{
			Code:    model.CodeMissingRequiredField,
			Field:   "city",
			Message: "no city and no fallback location name",
		})
	}
	if state == "" && unit.FallbackState() == "" {
		result.Errors = append(result.Errors, model.ValidationError{
			Code:    model.CodeMissingRequiredField,
			Field:   "state",
			Message: "no state and no fallback state",
		})
	}
	if len(result.Errors) > 0 {
		return result
	}

	result.Warnings = append(result.Warnings, dataTypeWarnings(raw)...)
	result.Warnings = append(result.Warnings, businessWarnings(raw, unit, name, state)...)
	result.Warnings = append(result.Warnings, qualityWarnings(raw)...)

	return result
}

// dataTypeWarnings covers malformed but recoverable field values.
func dataTypeWarnings(raw model.RawRecord) []model.ValidationWarning {
	var warnings []model.ValidationWarning

	if lat, ok := raw.Float(model.KeysLatitude...); ok && (lat < -90 || lat > 90) {
		warnings = append(warnings, model.ValidationWarning{
			Code:    model.CodeInvalidLatitude,
			Field:   "latitude",
			Message: fmt.Sprintf("latitude %v out of range [-90,90]", lat),
		})
	}
	if lon, ok := raw.Float(model.KeysLongitude...); ok && (lon < -180 || lon > 180) {
		warnings = append(warnings, model.ValidationWarning{
			Code:    model.CodeInvalidLongitude,
			Field:   "longitude",
			Message: fmt.Sprintf("longitude %v out of range [-180,180]", lon),
		})
	}

	if phone := raw.Str(model.KeysPhone...); phone != "" && !loosePhonePattern.MatchString(phone) {
		warnings = append(warnings, model.ValidationWarning{
			Code:    model.CodeInvalidPhone,
			Field:   "phone",
			Message: "phone does not look like a phone number",
		})
	}

	if website := raw.Str(model.KeysWebsite...); website != "" && !isValidURL(website) {
		// One auto-fix attempt: most bad values are just missing a scheme.
		if !isValidURL("https://" + website) {
			warnings = append(warnings, model.ValidationWarning{
				Code:    model.CodeInvalidURL,
				Field:   "website",
				Message: "website is not a valid URL",
			})
		}
	}

	if zip := raw.Str(model.KeysZip...); zip != "" && !zipPattern.MatchString(zip) {
		warnings = append(warnings, model.ValidationWarning{
			Code:    model.CodeInvalidZip,
			Field:   "zip",
			Message: fmt.Sprintf("zip %q does not match NNNNN or NNNNN-NNNN", zip),
		})
	}

	return warnings
}

// businessWarnings covers domain rules: state codes, name plausibility, and
// geographic sanity against the query point.
func businessWarnings(raw model.RawRecord, unit model.QueryUnit, name, state string) []model.ValidationWarning {
	var warnings []model.ValidationWarning

	if state != "" && !IsStateCode(state) {
		warnings = append(warnings, model.ValidationWarning{
			Code:    model.CodeInvalidState,
			Field:   "state",
			Message: fmt.Sprintf("%q is not a US state or territory code", state),
		})
	}

	if len(name) > maxNameLength {
		warnings = append(warnings, model.ValidationWarning{
			Code:    model.CodeNameTooLong,
			Field:   "name_facility",
			Message: fmt.Sprintf("name length %d exceeds %d", len(name), maxNameLength),
		})
	}

	if strings.Contains(strings.ToLower(name), "test") {
		warnings = append(warnings, model.ValidationWarning{
			Code:    model.CodeSuspectedTestData,
			Field:   "name_facility",
			Message: "name contains 'test'",
		})
	}

	// Distance check flags likely bad geocoding without discarding the
	// record; file units carry no reference point.
	if !unit.IsFile() {
		lat, latOK := raw.Float(model.KeysLatitude...)
		lon, lonOK := raw.Float(model.KeysLongitude...)
		if latOK && lonOK && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
			if d := DistanceMiles(lat, lon, unit.Latitude, unit.Longitude); d > maxDistanceMiles {
				warnings = append(warnings, model.ValidationWarning{
					Code:    model.CodeLocationMismatch,
					Field:   "latitude",
					Message: fmt.Sprintf("%.0f miles from query point %s", d, unit.Label()),
				})
			}
		}
	}

	return warnings
}

// qualityWarnings flags records that pass validation but are too sparse to
// be useful in the directory.
func qualityWarnings(raw model.RawRecord) []model.ValidationWarning {
	var warnings []model.ValidationWarning

	if raw.Str(model.KeysPhone...) == "" && raw.Str(model.KeysWebsite...) == "" {
		warnings = append(warnings, model.ValidationWarning{
			Code:    model.CodeNoContactInfo,
			Field:   "phone",
			Message: "no phone and no website",
		})
	}
	if raw.Str(model.KeysStreet...) == "" && raw.Str(model.KeysZip...) == "" {
		warnings = append(warnings, model.ValidationWarning{
			Code:    model.CodeNoAddressDetail,
			Field:   "street1",
			Message: "no street and no zip",
		})
	}
	if raw.Str(model.KeysServices...) == "" {
		warnings = append(warnings, model.ValidationWarning{
			Code:    model.CodeNoServiceInfo,
			Field:   "type_facility",
			Message: "no facility type or service information",
		})
	}

	return warnings
}

func isValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" && strings.Contains(u.Host, ".")
}
