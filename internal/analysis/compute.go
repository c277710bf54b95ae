package analysis

import "tricoach/internal/activity"

// ComputeActivityMetrics calculates all metrics for a single activity.
// Metrics that cannot be computed are left nil.
func ComputeActivityMetrics(rec *activity.Record, th Thresholds) activity.Metrics {
	duration := float64(DurationSeconds(rec))
	avgHR := AverageHR(rec)
	np := normalizedPowerOf(rec)

	tss, method := CalcTSS(TSSInput{
		Sport:           rec.Sport,
		DurationSeconds: duration,
		DistanceMeters:  rec.DistanceMeters,
		AvgHR:           avgHR,
		NormalizedPower: np,
	}, th)
	metrics := activity.Metrics{
		TSS:       tss,
		TSSMethod: method,
	}

	if intensity, ok := intensityFor(method, rec, np, duration, th); ok {
		metrics.IntensityFactor = &intensity
	}

	if rec.Power != nil && rec.Power.Avg != nil {
		if vi, ok := VariabilityIndex(np, float64(*rec.Power.Avg)); ok {
			metrics.VariabilityIndex = &vi
		}
	}

	if trimp, ok := TRIMP(duration, avgHR, th); ok {
		metrics.TRIMP = &trimp
	}

	if drift, ok := HRDrift(rec.Streams.HeartRate); ok {
		metrics.HRDriftPct = &drift
	}

	if rec.Sport == activity.SportRun {
		if cv, ok := PaceConsistency(rec.Streams.Pace); ok {
			metrics.PaceConsistencyCV = &cv
		}
	}

	if ef, ok := EfficiencyFactor(rec, np); ok {
		metrics.EfficiencyFactor = &ef
	}

	if zones, ok := TimeInHRZones(rec.Streams.HeartRate, th.MaxHR); ok {
		metrics.HRZones = zones
	}
	if zones, ok := TimeInPowerZones(rec.Streams.Power, th.FTPWatts); ok {
		metrics.PowerZones = zones
	}

	return metrics
}

// DurationSeconds picks the best available duration: moving, then timer,
// then elapsed time.
func DurationSeconds(rec *activity.Record) int {
	switch {
	case rec.MovingSeconds > 0:
		return rec.MovingSeconds
	case rec.TimerSeconds > 0:
		return rec.TimerSeconds
	default:
		return rec.ElapsedSeconds
	}
}

// AverageHR returns the session average HR, falling back to the mean of the
// HR stream. 0 means no heart rate data.
func AverageHR(rec *activity.Record) float64 {
	if rec.HeartRate.Avg != nil && *rec.HeartRate.Avg > 0 {
		return float64(*rec.HeartRate.Avg)
	}
	return mean(StreamValues(rec.Streams.HeartRate))
}

func normalizedPowerOf(rec *activity.Record) float64 {
	if rec.Power != nil && rec.Power.Normalized != nil {
		return float64(*rec.Power.Normalized)
	}
	if np, ok := NormalizedPower(StreamValues(rec.Streams.Power)); ok {
		return np
	}
	return 0
}

// intensityFor follows the TSS method so IF and TSS describe the same
// effort. Without a power or pace TSS, power wins over pace.
func intensityFor(method activity.TSSMethod, rec *activity.Record, np, duration float64, th Thresholds) (float64, bool) {
	switch method {
	case activity.TSSMethodPace, activity.TSSMethodSwim:
		return paceIntensity(rec, duration, th)
	case activity.TSSMethodPower:
		return IntensityFactor(np, th.FTPWatts)
	}
	if intensity, ok := IntensityFactor(np, th.FTPWatts); ok {
		return intensity, true
	}
	return paceIntensity(rec, duration, th)
}

func paceIntensity(rec *activity.Record, duration float64, th Thresholds) (float64, bool) {
	if rec.DistanceMeters <= 0 || duration <= 0 {
		return 0, false
	}
	switch rec.Sport {
	case activity.SportRun:
		if th.RunThresholdPaceSecPerKm <= 0 {
			return 0, false
		}
		pace := duration / rec.DistanceMeters * 1000
		return round(PaceIntensityFactor(th.RunThresholdPaceSecPerKm, pace), 3), true
	case activity.SportSwim:
		if th.CSSPaceSecPer100m <= 0 {
			return 0, false
		}
		pace := duration / rec.DistanceMeters * 100
		return round(PaceIntensityFactor(th.CSSPaceSecPer100m, pace), 3), true
	default:
		return 0, false
	}
}
