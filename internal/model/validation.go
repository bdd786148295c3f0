package model

import "fmt"

// ValidationCode identifies a validation rule outcome.
type ValidationCode string

const (
	CodeMissingRequiredField ValidationCode = "MISSING_REQUIRED_FIELD"
	CodeInvalidLatitude      ValidationCode = "INVALID_LATITUDE"
	CodeInvalidLongitude     ValidationCode = "INVALID_LONGITUDE"
	CodeInvalidPhone         ValidationCode = "INVALID_PHONE"
	CodeInvalidURL           ValidationCode = "INVALID_URL"
	CodeInvalidZip           ValidationCode = "INVALID_ZIP"
	CodeInvalidState         ValidationCode = "INVALID_STATE"
	CodeNameTooLong          ValidationCode = "NAME_TOO_LONG"
	CodeSuspectedTestData    ValidationCode = "SUSPECTED_TEST_DATA"
	CodeLocationMismatch     ValidationCode = "LOCATION_MISMATCH"
	CodeNoContactInfo        ValidationCode = "NO_CONTACT_INFO"
	CodeNoAddressDetail      ValidationCode = "NO_ADDRESS_DETAIL"
	CodeNoServiceInfo        ValidationCode = "NO_SERVICE_INFO"
)

// ValidationError is a fatal, per-record rule violation. The record is
// dropped and counted.
type ValidationError struct {
	Code    ValidationCode `json:"code"`
	Field   string         `json:"field"`
	Message string         `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
}

// ValidationWarning is a non-fatal annotation. The record is kept, flagged,
// and counted for quality reporting.
type ValidationWarning struct {
	Code    ValidationCode `json:"code"`
	Field   string         `json:"field"`
	Message string         `json:"message"`
}

// ValidationResult is the tagged outcome of validating one raw record:
// rejected (one or more errors) or accepted (zero errors, any number of
// warnings).
type ValidationResult struct {
	Errors   []ValidationError   `json:"errors,omitempty"`
	Warnings []ValidationWarning `json:"warnings,omitempty"`
}

// Accepted reports whether the record passed all critical rules.
func (r ValidationResult) Accepted() bool {
	return len(r.Errors) == 0
}
