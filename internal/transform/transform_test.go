package transform

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recovery-atlas/facility-cli/internal/model"
)

func TestExtractServices(t *testing.T) {
	assert.Equal(t, []string{model.ServiceResidential}, ExtractServices("Residential treatment, 24-hour care"))
	assert.Equal(t,
		[]string{model.ServiceOutpatient, model.ServiceMedicationAssisted},
		ExtractServices("Intensive Outpatient; Methadone maintenance"))
	assert.Equal(t, []string{model.ServiceTransitional}, ExtractServices("Sober living house"))
}

func TestExtractServices_FallbackLabel(t *testing.T) {
	assert.Equal(t, []string{model.ServiceTreatment}, ExtractServices("general counseling"))
	assert.Nil(t, ExtractServices("   "))
	assert.Nil(t, ExtractServices(""))
}

func TestExtractInsurance(t *testing.T) {
	got := ExtractInsurance("Medicare, Medicaid, Private insurance, Cash or self-payment")
	assert.Equal(t, []string{
		model.InsuranceMedicare,
		model.InsuranceMedicaid,
		model.InsurancePrivate,
		model.InsuranceSelfPay,
	}, got)
	assert.Empty(t, ExtractInsurance("barter"))
}

func TestExtractPrograms(t *testing.T) {
	assert.Equal(t, []string{model.ProgramWomens}, ExtractPrograms("Women's residential program"))
	assert.Equal(t, []string{model.ProgramVeterans}, ExtractPrograms("serves veterans"))

	// "women" must not trigger the men's program label.
	got := ExtractPrograms("Adult women only")
	assert.NotContains(t, got, model.ProgramMens)

	assert.Contains(t, ExtractPrograms("Adult men's program"), model.ProgramMens)
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("Serenity House", "123 Main St", "Austin", "TX")
	b := Fingerprint("SERENITY HOUSE", "123 Main St", "Austin", "TX")
	assert.Equal(t, a, b, "name comparison is case-insensitive")
	assert.Len(t, a, 64)

	c := Fingerprint("Serenity House", "456 Oak Ave", "Austin", "TX")
	assert.NotEqual(t, a, c, "street participates in the key")
}

func TestStableID(t *testing.T) {
	id := StableID("Serenity House", "Austin", "TX")
	assert.Equal(t, id, StableID("Serenity House", "Austin", "TX"))
	assert.True(t, strings.HasPrefix(id, "tx-serenity-house-"))
	assert.LessOrEqual(t, len(id), 50)

	// Same name in a different city gets a different hash suffix.
	other := StableID("Serenity House", "Dallas", "TX")
	assert.NotEqual(t, id, other)
}

func TestStableID_StreetDoesNotParticipate(t *testing.T) {
	// Two records with the same name/city/state but different streets carry
	// distinct fingerprints yet one stable ID. The in-run dedup set keys on
	// fingerprint, so both can reach the loader, which collapses them by ID.
	unit := model.QueryUnit{Name: "Austin, TX"}
	now := time.Unix(0, 0)
	a := Transform(model.RawRecord{
		"name_facility": "Serenity House", "street1": "100 Main St",
		"city": "Austin", "state": "TX",
	}, unit, "findtreatment_api", now)
	b := Transform(model.RawRecord{
		"name_facility": "Serenity House", "street1": "200 Oak Ave",
		"city": "Austin", "state": "TX",
	}, unit, "findtreatment_api", now)

	assert.NotEqual(t, a.Fingerprint, b.Fingerprint)
	assert.Equal(t, a.ID, b.ID)
}

func TestStableID_LongNameCapped(t *testing.T) {
	id := StableID(strings.Repeat("Recovery ", 20), "Austin", "TX")
	assert.LessOrEqual(t, len(id), 50)
	assert.False(t, strings.Contains(id, "--"))
	assert.True(t, strings.HasPrefix(id, "tx-recovery-"))
}

func TestStableID_SymbolOnlyName(t *testing.T) {
	id := StableID("###", "Austin", "TX")
	assert.True(t, strings.HasPrefix(id, "tx-"))
	assert.LessOrEqual(t, len(id), 50)
}

func TestQualityScore(t *testing.T) {
	lat, lon := 30.2672, -97.7431
	full := &model.Facility{
		Name:      "Serenity House",
		Street:    "123 Main St",
		City:      "Austin",
		State:     "TX",
		Zip:       "78701",
		Phone:     "(512) 555-0100",
		Website:   "https://serenityhouse.org",
		Latitude:  &lat,
		Longitude: &lon,
		Services:  []string{model.ServiceResidential},
		Insurance: []string{model.InsuranceMedicaid},
	}
	assert.Equal(t, 100, QualityScore(full))

	nameOnly := &model.Facility{Name: "Serenity House", State: "TX"}
	score := QualityScore(nameOnly)
	assert.Equal(t, 25, score)
	assert.GreaterOrEqual(t, score, 20)
	assert.Less(t, score, 45)

	assert.Equal(t, 0, QualityScore(&model.Facility{}))
}

func TestTransform(t *testing.T) {
	raw := model.RawRecord{
		"name_facility": "  Serenity House  ",
		"street1":       "123 Main St",
		"city":          "Austin",
		"state":         "tx",
		"zip":           "78701",
		"phone":         "512.555.0100",
		"website":       "serenityhouse.org",
		"latitude":      30.2672,
		"longitude":     -97.7431,
		"type_facility": "Residential sober living for women",
		"payment_types": "Medicaid and self-pay accepted",
	}
	unit := model.QueryUnit{Name: "Austin, TX", Latitude: 30.2672, Longitude: -97.7431}

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	f := Transform(raw, unit, "findtreatment_api", now)

	assert.Equal(t, "Serenity House", f.Name)
	assert.Equal(t, "TX", f.State)
	assert.Equal(t, "(512) 555-0100", f.Phone)
	assert.Equal(t, "https://serenityhouse.org", f.Website)
	assert.True(t, strings.HasPrefix(f.ID, "tx-serenity-house-"))

	require.True(t, f.HasCoordinates())
	assert.InDelta(t, 30.2672, *f.Latitude, 1e-9)
	assert.InDelta(t, -97.7431, *f.Longitude, 1e-9)

	assert.Contains(t, f.Services, model.ServiceResidential)
	assert.Contains(t, f.Services, model.ServiceTransitional)
	assert.Contains(t, f.Insurance, model.InsuranceMedicaid)
	assert.Contains(t, f.Insurance, model.InsuranceSelfPay)
	assert.Contains(t, f.Programs, model.ProgramWomens)

	assert.Equal(t, "findtreatment_api", f.DataSource)
	assert.Equal(t, now, f.LastUpdated)
	assert.Len(t, f.Fingerprint, 64)
	assert.Equal(t, 100, f.DataQuality)
}

func TestTransform_FallbacksFromUnit(t *testing.T) {
	raw := model.RawRecord{"name_facility": "Hope Center"}
	unit := model.QueryUnit{Name: "Denver, CO", Latitude: 39.7392, Longitude: -104.9903}

	f := Transform(raw, unit, "findtreatment_api", time.Now())

	assert.Equal(t, "Denver", f.City)
	assert.Equal(t, "CO", f.State)
	assert.Nil(t, f.Latitude)
	assert.Equal(t, []string{model.ServiceTreatment}, f.Services)
}

func TestTransform_RejectsPartialOrZeroCoordinates(t *testing.T) {
	unit := model.QueryUnit{Name: "Austin, TX"}

	f := Transform(model.RawRecord{"name_facility": "A", "latitude": 30.0}, unit, "s", time.Now())
	assert.False(t, f.HasCoordinates(), "latitude alone is dropped")

	f = Transform(model.RawRecord{"name_facility": "A", "latitude": 0.0, "longitude": 0.0}, unit, "s", time.Now())
	assert.False(t, f.HasCoordinates(), "null island is dropped")

	f = Transform(model.RawRecord{"name_facility": "A", "latitude": 95.0, "longitude": -97.0}, unit, "s", time.Now())
	assert.False(t, f.HasCoordinates(), "out-of-range latitude is dropped")
}

func TestTransform_Deterministic(t *testing.T) {
	raw := model.RawRecord{"name_facility": "Serenity House", "city": "Austin", "state": "TX"}
	unit := model.QueryUnit{Name: "Austin, TX"}
	now := time.Now()

	a := Transform(raw, unit, "findtreatment_api", now)
	b := Transform(raw, unit, "findtreatment_api", now)
	assert.Equal(t, a, b)
}
