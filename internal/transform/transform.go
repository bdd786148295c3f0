package transform

import (
	"strings"
	"time"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

// Transform builds a normalized Facility from an accepted raw record. Pure:
// the same record, unit, source, and timestamp always produce the same
// facility, which is what makes repeated runs upsert instead of duplicate.
func Transform(raw model.RawRecord, unit model.QueryUnit, source string, now time.Time) *model.Facility {
	name := Sanitize(raw.Str(model.KeysName...))
	street := Sanitize(raw.Str(model.KeysStreet...))

	city := Sanitize(raw.Str(model.KeysCity...))
	if city == "" {
		city = unit.FallbackCity()
	}

	state := strings.ToUpper(Sanitize(raw.Str(model.KeysState...)))
	if state == "" {
		state = unit.FallbackState()
	}

	zip := Sanitize(raw.Str(model.KeysZip...))

	serviceText := raw.Str(model.KeysServices...)
	paymentText := raw.Str(model.KeysPayment...)
	programText := raw.Str(model.KeysPrograms...)

	f := &model.Facility{
		ID:          StableID(name, city, state),
		Name:        name,
		Street:      street,
		City:        city,
		State:       state,
		Zip:         zip,
		Phone:       FormatPhone(raw.Str(model.KeysPhone...)),
		Website:     SanitizeURL(raw.Str(model.KeysWebsite...)),
		Services:    ExtractServices(serviceText),
		Insurance:   ExtractInsurance(paymentText),
		Programs:    ExtractPrograms(programText + " " + serviceText),
		DataSource:  source,
		LastUpdated: now.UTC(),
		Fingerprint: Fingerprint(name, street, city, state),
	}

	if lat, ok := raw.Float(model.KeysLatitude...); ok && lat >= -90 && lat <= 90 && lat != 0 {
		if lon, ok := raw.Float(model.KeysLongitude...); ok && lon >= -180 && lon <= 180 && lon != 0 {
			f.Latitude = &lat
			f.Longitude = &lon
		}
	}

	f.DataQuality = QualityScore(f)

	return f
}
