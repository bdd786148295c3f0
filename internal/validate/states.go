package validate

// stateCodes covers the 50 states, DC, and the territories. The locator API
// serves Puerto Rico and the other territories under their postal codes, so
// those records must not draw state warnings.
var stateCodes = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true,
	"CO": true, "CT": true, "DE": true, "FL": true, "GA": true,
	"HI": true, "ID": true, "IL": true, "IN": true, "IA": true,
	"KS": true, "KY": true, "LA": true, "ME": true, "MD": true,
	"MA": true, "MI": true, "MN": true, "MS": true, "MO": true,
	"MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true,
	"SD": true, "TN": true, "TX": true, "UT": true, "VT": true,
	"VA": true, "WA": true, "WV": true, "WI": true, "WY": true,
	"DC": true,
	"PR": true, "VI": true, "GU": true, "AS": true, "MP": true,
}

// IsStateCode reports whether s is a known two-letter state code.
func IsStateCode(s string) bool {
	return stateCodes[s]
}
