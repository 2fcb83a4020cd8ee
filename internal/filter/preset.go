package filter

import (
	"fmt"
	"time"

	"RetailPulse/internal/model"
)

// Preset is a named relative date range offered by the date picker.
type Preset string

const (
	PresetAllTime  Preset = "all"
	PresetLast30   Preset = "30"
	PresetLast90   Preset = "90"
	PresetLastYear Preset = "365"
)

// Presets lists the presets in picker order.
var Presets = []Preset{PresetAllTime, PresetLast30, PresetLast90, PresetLastYear}

// ParsePreset validates a preset name.
func ParsePreset(name string) (Preset, error) {
	for _, p := range Presets {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown date preset %q", name)
}

// RangeFor returns the range p covers at now. The all-time preset starts at
// origin; the others start the given number of days before now.
func RangeFor(p Preset, now, origin time.Time) (model.DateRange, error) {
	var days int
	switch p {
	case PresetAllTime:
		return model.DateRange{Start: origin, End: now}, nil
	case PresetLast30:
		days = 30
	case PresetLast90:
		days = 90
	case PresetLastYear:
		days = 365
	default:
		return model.DateRange{}, fmt.Errorf("unknown date preset %q", p)
	}
	return model.DateRange{Start: now.AddDate(0, 0, -days), End: now}, nil
}
