package analysis

import (
	"math"

	"tricoach/internal/activity"
)

// NPWindow is the rolling window, in samples, used for normalized power
const NPWindow = 30

// NormalizedPower computes NP from 1 Hz power samples:
// 30 s rolling mean, 4th power, mean, 4th root. The result is never below
// the plain average; a spike in the last window would otherwise be
// under-weighted.
func NormalizedPower(watts []float64) (float64, bool) {
	if len(watts) < NPWindow {
		return 0, false
	}

	var window, sum4 float64
	for i := 0; i < NPWindow; i++ {
		window += watts[i]
	}
	count := 0
	for i := NPWindow - 1; i < len(watts); i++ {
		if i >= NPWindow {
			window += watts[i] - watts[i-NPWindow]
		}
		avg := window / NPWindow
		sum4 += math.Pow(avg, 4)
		count++
	}

	np := math.Pow(sum4/float64(count), 0.25)
	return math.Max(np, mean(watts)), true
}

// IntensityFactor = NP/FTP rounded to 3 decimals
func IntensityFactor(np, ftp float64) (float64, bool) {
	if np <= 0 || ftp <= 0 {
		return 0, false
	}
	return round(np/ftp, 3), true
}

// PaceIntensityFactor compares a threshold pace with an actual pace, both in
// seconds per unit distance. Faster than threshold means IF > 1, capped.
func PaceIntensityFactor(thresholdPace, actualPace float64) float64 {
	if thresholdPace <= 0 || actualPace <= 0 {
		return 0
	}
	return math.Min(thresholdPace/actualPace, MaxIntensityFactor)
}

// VariabilityIndex = NP/average power rounded to 3 decimals. Never below 1:
// rounding noise on a perfectly steady effort is clamped.
func VariabilityIndex(np, avgPower float64) (float64, bool) {
	if np <= 0 || avgPower <= 0 {
		return 0, false
	}
	return math.Max(1, round(np/avgPower, 3)), true
}

// StreamValues extracts the sample values of a stream
func StreamValues(samples []activity.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.V
	}
	return out
}
