package analysis

import "math"

// Gender selects the TRIMP weighting coefficient
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Thresholds holds the athlete's physiological thresholds
type Thresholds struct {
	FTPWatts                 float64 // functional threshold power
	CSSPaceSecPer100m        float64 // critical swim speed
	RunThresholdPaceSecPerKm float64
	MaxHR                    float64
	RestingHR                float64
	ThresholdHR              float64
	Gender                   Gender
}

// DefaultThresholds returns sensible defaults if not configured
func DefaultThresholds() Thresholds {
	return Thresholds{
		FTPWatts:                 200,
		CSSPaceSecPer100m:        110,
		RunThresholdPaceSecPerKm: 300,
		MaxHR:                    185,
		RestingHR:                60,
		ThresholdHR:              165,
		Gender:                   GenderMale,
	}
}

// hrReserveFraction returns (hr-rest)/(max-rest) clamped to [0, 1].
// ok is false when the reserve is not positive.
func (th Thresholds) hrReserveFraction(hr float64) (float64, bool) {
	reserve := th.MaxHR - th.RestingHR
	if reserve <= 0 {
		return 0, false
	}
	return clamp((hr-th.RestingHR)/reserve, 0, 1), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev returns the population standard deviation around mu
func populationStdDev(values []float64, mu float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sq float64
	for _, v := range values {
		sq += (v - mu) * (v - mu)
	}
	return math.Sqrt(sq / float64(len(values)))
}
