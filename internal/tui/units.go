package tui

import (
	"fmt"

	"tricoach/internal/activity"
	"tricoach/internal/config"
)

const (
	metersPerMile = 1609.34
	metersPerKm   = 1000.0
)

// Units formats distances and paces in the athlete's preferred units.
// Swim paces are always per 100 m and ride speeds follow the distance unit.
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// FormatDistance formats a distance in meters to the user's preferred unit.
// Swims are shown in meters.
func (u Units) FormatDistance(sport activity.Sport, meters float64) string {
	if meters <= 0 {
		return "-"
	}
	if sport == activity.SportSwim {
		return fmt.Sprintf("%.0f m", meters)
	}
	if u.IsMiles() {
		return fmt.Sprintf("%.1f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.1f km", meters/metersPerKm)
}

// FormatPace formats the sport's natural pace measure from total seconds
// and meters: swim pace per 100 m, ride speed, run pace per km or mile.
func (u Units) FormatPace(sport activity.Sport, seconds int, meters float64) string {
	if meters <= 0 || seconds <= 0 {
		return "-"
	}

	switch sport {
	case activity.SportSwim:
		return clock(float64(seconds)/(meters/100)) + "/100m"
	case activity.SportBike:
		hours := float64(seconds) / 3600
		if u.IsMiles() {
			return fmt.Sprintf("%.1f mph", meters/metersPerMile/hours)
		}
		return fmt.Sprintf("%.1f km/h", meters/metersPerKm/hours)
	}

	if u.cfg.PaceUnit == "min/mi" {
		return clock(float64(seconds)/(meters/metersPerMile)) + "/mi"
	}
	return clock(float64(seconds)/(meters/metersPerKm)) + "/km"
}

// DistanceLabel returns the short unit label ("mi" or "km")
func (u Units) DistanceLabel() string {
	if u.IsMiles() {
		return "mi"
	}
	return "km"
}

// PaceLabel returns the run pace unit label ("min/mi" or "min/km")
func (u Units) PaceLabel() string {
	if u.cfg.PaceUnit == "min/mi" {
		return "min/mi"
	}
	return "min/km"
}

// ConvertPaceData converts a min/km pace series to the preferred unit
func (u Units) ConvertPaceData(paceMinPerKm []float64) []float64 {
	if u.cfg.PaceUnit != "min/mi" {
		return paceMinPerKm
	}
	converted := make([]float64, len(paceMinPerKm))
	for i, p := range paceMinPerKm {
		converted[i] = p * metersPerMile / metersPerKm
	}
	return converted
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}

func clock(seconds float64) string {
	s := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
