package analysis

import (
	"tricoach/internal/activity"
)

// MaxIntensityFactor caps pace-based IF so one fast split cannot blow up TSS
const MaxIntensityFactor = 1.5

// HRTSSFactor scales heart-rate-derived TSS down, HR being a weaker proxy
// than power or pace.
const HRTSSFactor = 0.8

// TSSInput is the subset of an activity that TSS depends on
type TSSInput struct {
	Sport           activity.Sport
	DurationSeconds float64
	DistanceMeters  float64
	AvgHR           float64 // 0 when absent
	NormalizedPower float64 // 0 when absent
}

// CalcTSS computes training stress by the first applicable method:
// bike power, run pace, swim pace, heart rate. With none available it
// returns 0 and TSSMethodNone.
func CalcTSS(in TSSInput, th Thresholds) (float64, activity.TSSMethod) {
	if in.DurationSeconds <= 0 {
		return 0, activity.TSSMethodNone
	}

	switch {
	case in.Sport == activity.SportBike && in.NormalizedPower > 0 && th.FTPWatts > 0:
		return BikeTSS(in.DurationSeconds, in.NormalizedPower, th.FTPWatts), activity.TSSMethodPower
	case in.Sport == activity.SportRun && in.DistanceMeters > 0 && th.RunThresholdPaceSecPerKm > 0:
		return RunTSS(in.DurationSeconds, in.DistanceMeters, th.RunThresholdPaceSecPerKm), activity.TSSMethodPace
	case in.Sport == activity.SportSwim && in.DistanceMeters > 0 && th.CSSPaceSecPer100m > 0:
		return SwimTSS(in.DurationSeconds, in.DistanceMeters, th.CSSPaceSecPer100m), activity.TSSMethodSwim
	case in.AvgHR > 0 && th.MaxHR > 0:
		if tss, ok := HeartRateTSS(in.DurationSeconds, in.AvgHR, th); ok {
			return tss, activity.TSSMethodHR
		}
	}
	return 0, activity.TSSMethodNone
}

// BikeTSS = (seconds × NP × IF) / (FTP × 3600) × 100, IF = NP/FTP
func BikeTSS(durationSeconds, np, ftp float64) float64 {
	if ftp <= 0 {
		return 0
	}
	intensity := np / ftp
	return round(durationSeconds*np*intensity/(ftp*3600)*100, 1)
}

// RunTSS uses the pace-based IF against threshold pace (sec/km)
func RunTSS(durationSeconds, distanceMeters, thresholdPace float64) float64 {
	if distanceMeters <= 0 {
		return 0
	}
	pace := durationSeconds / distanceMeters * 1000
	intensity := PaceIntensityFactor(thresholdPace, pace)
	return round(durationSeconds/3600*intensity*intensity*100, 1)
}

// SwimTSS uses the pace-based IF against CSS (sec/100m)
func SwimTSS(durationSeconds, distanceMeters, css float64) float64 {
	if distanceMeters <= 0 {
		return 0
	}
	pace := durationSeconds / distanceMeters * 100
	intensity := PaceIntensityFactor(css, pace)
	return round(durationSeconds/3600*intensity*intensity*100, 1)
}

// HeartRateTSS is the fallback when neither power nor pace applies
func HeartRateTSS(durationSeconds, avgHR float64, th Thresholds) (float64, bool) {
	hrr, ok := th.hrReserveFraction(avgHR)
	if !ok {
		return 0, false
	}
	return round(durationSeconds/3600*hrr*100*HRTSSFactor, 1), true
}
