package model

import "time"

// AllRegions is the region sentinel meaning "no region filter".
const AllRegions = "All"

// DateRange is an inclusive range of calendar days. Start and End are always
// replaced together.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FilterState is the global filter scope shared by every view of a session.
type FilterState struct {
	DateRange DateRange `json:"date_range"`
	Region    string    `json:"region"`
	// Preset names the relative range the DateRange was derived from.
	// Empty when the range was set explicitly.
	Preset string `json:"preset,omitempty"`
}

// ForecastControls are the forecast view's local controls.
type ForecastControls struct {
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
}
