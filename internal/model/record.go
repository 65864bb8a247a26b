package model

import "time"

// Record represents a persisted inventory item as returned by the API.
// The server assigns ID and CreatedAt on creation; both are immutable.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Location  string    `json:"location,omitempty"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Item categories.
const (
	CategoryElectronics = "electronics"
	CategoryMechanical  = "mechanical"
	CategoryPower       = "power"
	CategoryMaterials   = "materials"
	CategoryTools       = "tools"
	CategoryOther       = "other"
)

// Categories lists all valid categories in display order.
var Categories = []string{
	CategoryElectronics,
	CategoryMechanical,
	CategoryPower,
	CategoryMaterials,
	CategoryTools,
	CategoryOther,
}

// ValidCategory reports whether c is a member of the closed category set.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// KnownLocations lists the storage locations the UI offers by default.
// The set is extensible: records carrying a location outside this list
// round-trip verbatim and display as-is.
var KnownLocations = []string{
	"main-storage",
	"electronics-lab",
	"machine-shop",
	"trailer",
}

// KnownLocation reports whether loc is one of the default storage locations.
func KnownLocation(loc string) bool {
	for _, known := range KnownLocations {
		if loc == known {
			return true
		}
	}
	return false
}
