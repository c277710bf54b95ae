package analysis

import "math"

// TRIMP calculates Training Impulse (Banister model)
// TRIMP = duration (min) * ΔHR ratio * 0.64 * e^(k * ΔHR ratio)
// where k = 1.92 for men, 1.67 for women
func TRIMP(durationSeconds, avgHR float64, th Thresholds) (float64, bool) {
	if durationSeconds <= 0 || avgHR <= 0 {
		return 0, false
	}

	hrRatio, ok := th.hrReserveFraction(avgHR)
	if !ok {
		return 0, false
	}

	k := 1.92
	if th.Gender == GenderFemale {
		k = 1.67
	}

	minutes := durationSeconds / 60
	return round(minutes*hrRatio*0.64*math.Exp(k*hrRatio), 1), true
}

// Load summarizes training monotony and strain over a window of weeks
type Load struct {
	WeeklyAvg float64
	Monotony  float64
	Strain    float64
}

// MinMonotonyWeeks is the shortest window for which monotony is defined
const MinMonotonyWeeks = 3

// MonotonyStrain computes monotony (mean/stdev) and strain (sum × monotony)
// over weekly TSS totals. Undefined for fewer than three weeks, a zero mean
// or a zero standard deviation.
func MonotonyStrain(weeklyTSS []float64) (Load, bool) {
	if len(weeklyTSS) < MinMonotonyWeeks {
		return Load{}, false
	}

	avg := mean(weeklyTSS)
	if avg == 0 {
		return Load{}, false
	}
	std := populationStdDev(weeklyTSS, avg)
	if std == 0 {
		return Load{WeeklyAvg: round(avg, 1)}, false
	}

	var sum float64
	for _, w := range weeklyTSS {
		sum += w
	}
	monotony := round(avg/std, 2)

	return Load{
		WeeklyAvg: round(avg, 1),
		Monotony:  monotony,
		Strain:    round(sum*monotony, 1),
	}, true
}

// HighMonotony is the level above which a monotonous week is flagged
const HighMonotony = 1.5
