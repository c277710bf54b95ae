package analysis

import "tricoach/internal/activity"

// HRDrift calculates the percentage change between the average HR of the
// first and second half of the stream.
// Positive drift means HR climbed while the effort stayed the same.
func HRDrift(hr []activity.Sample) (float64, bool) {
	if len(hr) < 10 {
		return 0, false
	}

	// Split into halves
	mid := len(hr) / 2
	firstHalf := StreamValues(hr[:mid])
	secondHalf := StreamValues(hr[mid:])
	if len(firstHalf) == 0 || len(secondHalf) == 0 {
		return 0, false
	}

	first := mean(firstHalf)
	if first == 0 {
		return 0, false
	}
	second := mean(secondHalf)

	return round((second-first)/first*100, 1), true
}

// Plausible running paces in min/km; anything outside is a stop or a
// GPS glitch.
const (
	minPlausiblePace = 2.0
	maxPlausiblePace = 15.0
	minPacePoints    = 5
)

// PaceConsistency returns the coefficient of variation (%) of the pace
// stream after dropping implausible values. Lower is steadier.
func PaceConsistency(pace []activity.Sample) (float64, bool) {
	if len(pace) < minPacePoints {
		return 0, false
	}

	valid := make([]float64, 0, len(pace))
	for _, p := range pace {
		if p.V > minPlausiblePace && p.V < maxPlausiblePace {
			valid = append(valid, p.V)
		}
	}
	if len(valid) < minPacePoints {
		return 0, false
	}

	avg := mean(valid)
	return round(populationStdDev(valid, avg)/avg*100, 1), true
}
