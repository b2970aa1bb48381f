package domain

// Asset is a vehicle record on the remote platform. Asset IDs are only
// unique within one company, so lookups are always keyed by
// (companyID, assetID).
type Asset struct {
	ID       string `json:"id"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	RegPlate string `json:"reg_plate"`
}

// AssetKey builds the composite cache key for an asset lookup.
func AssetKey(companyID, assetID string) string {
	return companyID + "/" + assetID
}

// DisplayName returns "Make Model" for the summary's vehicle column.
func (a Asset) DisplayName() string {
	switch {
	case a.Make == "":
		return a.Model
	case a.Model == "":
		return a.Make
	default:
		return a.Make + " " + a.Model
	}
}
