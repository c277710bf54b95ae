package analysis

import "tricoach/internal/activity"

// Sample filters for efficiency: must be actually moving with a plausible HR
const (
	efMinHR = 80
	efMaxHR = 220
)

// EfficiencyFactor relates output to heart rate. Higher is better.
//
// Runs: mean speed in m/min divided by mean HR over the seconds where both
// pace and HR were recorded. Typical values range from 1.0 to 2.0.
// Rides: normalized power divided by average HR.
func EfficiencyFactor(rec *activity.Record, np float64) (float64, bool) {
	switch rec.Sport {
	case activity.SportRun:
		return runEfficiency(rec.Streams.HeartRate, rec.Streams.Pace)
	case activity.SportBike:
		avgHR := AverageHR(rec)
		if np <= 0 || avgHR <= 0 {
			return 0, false
		}
		return round(np/avgHR, 2), true
	default:
		return 0, false
	}
}

func runEfficiency(hr, pace []activity.Sample) (float64, bool) {
	hrAt := make(map[int]float64, len(hr))
	for _, s := range hr {
		hrAt[s.T] = s.V
	}

	var totalSpeed, totalHR float64
	var count int
	for _, p := range pace {
		h, ok := hrAt[p.T]
		if !ok || h < efMinHR || h > efMaxHR {
			continue
		}
		if p.V <= minPlausiblePace || p.V >= maxPlausiblePace {
			continue
		}
		totalSpeed += 1000 / p.V // m/min
		totalHR += h
		count++
	}

	if count == 0 {
		return 0, false
	}
	return round(totalSpeed/totalHR, 2), true
}
