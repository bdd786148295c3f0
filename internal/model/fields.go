package model

// Field key aliases. The locator API, SAMHSA exports, and state flat files
// have drifted on column naming over the years; validation and transformation
// read through these alias lists so one pipeline serves every vintage.
var (
	KeysName      = []string{"name_facility", "name1", "name"}
	KeysStreet    = []string{"street1", "street", "address1", "address"}
	KeysCity      = []string{"city"}
	KeysState     = []string{"state", "state_code"}
	KeysZip       = []string{"zip", "zipcode", "zip_code"}
	KeysPhone     = []string{"phone", "phone_number"}
	KeysWebsite   = []string{"website", "web_site", "url"}
	KeysLatitude  = []string{"latitude", "lat"}
	KeysLongitude = []string{"longitude", "lon", "lng"}
	KeysServices  = []string{"type_facility", "services", "service_codes"}
	KeysPayment   = []string{"payment_types", "payment_accepted", "insurance"}
	KeysPrograms  = []string{"special_programs", "specialty", "programs"}
)
