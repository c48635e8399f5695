package geodata

// SoilSource attributes soil values to the upstream dataset.
const SoilSource = "SoilGrids 2.0"

// SoilProperties is the normalized topsoil composition at a point.
// A nil field means the provider had no usable statistic for it.
type SoilProperties struct {
	PH     *float64 `json:"ph"`
	Clay   *float64 `json:"clay"`
	Sand   *float64 `json:"sand"`
	Silt   *float64 `json:"silt"`
	Source string   `json:"source"`
}

type Facility struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type FacilitiesResult struct {
	Facilities []Facility `json:"facilities"`
}

// Site combines both lookups for a land listing.
type Site struct {
	Soil       SoilProperties `json:"soil"`
	Facilities []Facility     `json:"facilities"`
}
