package analysis

import (
	"fmt"

	"tricoach/internal/activity"
)

// Zone is an inclusive [Low, High] band
type Zone struct {
	Name string
	Low  float64
	High float64
}

// maxZoneDelta caps the time credited per sample so recording gaps do not
// land in a single zone.
const maxZoneDelta = 10

var hrZoneFractions = []float64{0.5, 0.6, 0.7, 0.8, 0.9}

// HRZoneBounds returns the five heart rate zones at 50/60/70/80/90% of max HR
func HRZoneBounds(maxHR float64) []Zone {
	zones := make([]Zone, len(hrZoneFractions))
	for i, f := range hrZoneFractions {
		high := maxHR
		if i+1 < len(hrZoneFractions) {
			high = float64(int(maxHR * hrZoneFractions[i+1]))
		}
		zones[i] = Zone{
			Name: fmt.Sprintf("z%d", i+1),
			Low:  float64(int(maxHR * f)),
			High: high,
		}
	}
	return zones
}

// Coggan power levels as fractions of FTP
var powerZoneFractions = []float64{0, 0.55, 0.75, 0.90, 1.05, 1.20, 1.50}

const openPowerCeiling = 9999

// PowerZoneBounds returns the seven Coggan power zones
func PowerZoneBounds(ftp float64) []Zone {
	zones := make([]Zone, len(powerZoneFractions))
	for i, f := range powerZoneFractions {
		high := float64(openPowerCeiling)
		if i+1 < len(powerZoneFractions) {
			high = float64(int(ftp * powerZoneFractions[i+1]))
		}
		zones[i] = Zone{
			Name: fmt.Sprintf("z%d", i+1),
			Low:  float64(int(ftp * f)),
			High: high,
		}
	}
	return zones
}

// TimeInHRZones returns seconds spent in each HR zone, keyed z1..z5.
// Samples below zone 1 are not counted.
func TimeInHRZones(hr []activity.Sample, maxHR float64) (map[string]float64, bool) {
	if len(hr) == 0 || maxHR <= 0 {
		return nil, false
	}
	return timeInZones(hr, HRZoneBounds(maxHR)), true
}

// TimeInPowerZones returns seconds spent in each power zone, keyed z1..z7
func TimeInPowerZones(power []activity.Sample, ftp float64) (map[string]float64, bool) {
	if len(power) == 0 || ftp <= 0 {
		return nil, false
	}
	return timeInZones(power, PowerZoneBounds(ftp)), true
}

func timeInZones(samples []activity.Sample, zones []Zone) map[string]float64 {
	out := make(map[string]float64, len(zones))
	for _, z := range zones {
		out[z.Name] = 0
	}

	for i := 1; i < len(samples); i++ {
		dt := clamp(float64(samples[i].T-samples[i-1].T), 0, maxZoneDelta)
		v := samples[i].V
		// first match wins on shared boundaries
		for _, z := range zones {
			if v >= z.Low && v <= z.High {
				out[z.Name] += dt
				break
			}
		}
	}
	return out
}
