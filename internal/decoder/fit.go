package decoder

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"tricoach/internal/activity"
	"tricoach/internal/analysis"
)

const semicirclesToDegrees = 180.0 / (1 << 31)

func decodeFIT(data []byte) (*activity.Record, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: activity.FormatFIT, Err: err}
	}

	act, err := decoded.Activity()
	if err != nil {
		return nil, &ParseError{Format: activity.FormatFIT, Err: fmt.Errorf("%w: %v", ErrNoActivity, err)}
	}

	rec := &activity.Record{
		Format: activity.FormatFIT,
		Sport:  activity.SportRun,
	}

	var session *fit.SessionMsg
	if len(act.Sessions) > 0 {
		session = act.Sessions[0]
	}
	if session != nil {
		rec.Sport = sportFromFIT(session.Sport)
	}

	series := buildRecordSeries(act.Records, rec.Sport)
	rec.Streams = series.streams

	if session != nil {
		applySession(rec, session)
	}
	fillFromRecords(rec, series)
	rec.Power = powerSummary(session, series.power)
	rec.Laps = fitLaps(act.Laps)

	return rec, nil
}

// sportFromFIT maps the FIT sport code onto the engine's sports.
// Unknown codes default to run.
func sportFromFIT(s fit.Sport) activity.Sport {
	switch s {
	case fit.SportRunning, fit.SportWalking, fit.SportGeneric, fit.SportTransition:
		return activity.SportRun
	case fit.SportCycling, fit.SportEBiking:
		return activity.SportBike
	case fit.SportSwimming:
		return activity.SportSwim
	case fit.SportTraining:
		return activity.SportStrength
	case fit.SportMultisport:
		return activity.SportBrick
	default:
		return activity.SportRun
	}
}

type recordSeries struct {
	streams      activity.Streams
	power        []float64 // every power sample, not downsampled
	hr           []float64
	start        time.Time
	end          time.Time
	lastDistance float64
}

func buildRecordSeries(records []*fit.RecordMsg, sport activity.Sport) recordSeries {
	var rs recordSeries

	rows := make([]*fit.RecordMsg, 0, len(records))
	for _, r := range records {
		if r != nil {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return rs
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})

	for _, r := range rows {
		if r.Power != math.MaxUint16 {
			rs.power = append(rs.power, float64(r.Power))
		}
		if r.HeartRate != math.MaxUint8 && r.HeartRate > 0 {
			rs.hr = append(rs.hr, float64(r.HeartRate))
		}
		if d := safePositive(r.GetDistanceScaled()); d > 0 {
			rs.lastDistance = d
		}
		if ts := validTime(r.Timestamp); !ts.IsZero() {
			if rs.start.IsZero() {
				rs.start = ts
			}
			rs.end = ts
		}
	}

	first := validTime(rows[0].Timestamp)
	step := stride(len(rows))
	lastT := 0
	s := &rs.streams
	for i := 0; i < len(rows); i += step {
		r := rows[i]

		t := i
		if ts := validTime(r.Timestamp); !ts.IsZero() && !first.IsZero() {
			t = int(ts.Sub(first).Seconds())
		}
		if t < lastT {
			t = lastT
		}
		lastT = t

		if r.HeartRate != math.MaxUint8 && r.HeartRate > 0 {
			s.HeartRate = append(s.HeartRate, activity.Sample{T: t, V: float64(r.HeartRate)})
		}
		if speed, ok := recordSpeed(r); ok && speed > 0 {
			s.Pace = append(s.Pace, activity.Sample{T: t, V: paceMinKm(speed)})
		}
		if r.Power != math.MaxUint16 && r.Power > 0 {
			s.Power = append(s.Power, activity.Sample{T: t, V: float64(r.Power)})
		}
		if r.Cadence != math.MaxUint8 && r.Cadence > 0 {
			cad := float64(r.Cadence)
			if sport == activity.SportRun {
				cad *= 2
			}
			s.Cadence = append(s.Cadence, activity.Sample{T: t, V: cad})
		}
		if alt, ok := recordAltitude(r); ok {
			s.Altitude = append(s.Altitude, activity.Sample{T: t, V: round(alt, 1)})
		}
		lat, lon := r.PositionLat.Semicircles(), r.PositionLong.Semicircles()
		if lat != math.MaxInt32 && lon != math.MaxInt32 {
			s.GPS = append(s.GPS, activity.GPSPoint{
				T:   t,
				Lat: round(float64(lat)*semicirclesToDegrees, 6),
				Lon: round(float64(lon)*semicirclesToDegrees, 6),
			})
		}
	}

	return rs
}

func recordSpeed(r *fit.RecordMsg) (float64, bool) {
	speed := r.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	speed = r.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	return 0, false
}

func recordAltitude(r *fit.RecordMsg) (float64, bool) {
	alt := r.GetEnhancedAltitudeScaled()
	if isFinite(alt) {
		return alt, true
	}
	alt = r.GetAltitudeScaled()
	if isFinite(alt) {
		return alt, true
	}
	return 0, false
}

func applySession(rec *activity.Record, s *fit.SessionMsg) {
	rec.StartTime = validTime(s.StartTime)

	rec.ElapsedSeconds = int(safePositive(s.GetTotalElapsedTimeScaled()))
	rec.TimerSeconds = int(safePositive(s.GetTotalTimerTimeScaled()))
	rec.MovingSeconds = int(safePositive(s.GetTotalMovingTimeScaled()))
	rec.DistanceMeters = safePositive(s.GetTotalDistanceScaled())

	avgSpeed := safePositive(s.GetEnhancedAvgSpeedScaled())
	if avgSpeed == 0 {
		avgSpeed = safePositive(s.GetAvgSpeedScaled())
	}
	maxSpeed := safePositive(s.GetEnhancedMaxSpeedScaled())
	if maxSpeed == 0 {
		maxSpeed = safePositive(s.GetMaxSpeedScaled())
	}
	if avgSpeed > 0 {
		rec.AvgSpeedKmh = floatPtr(round(avgSpeed*3.6, 2))
	}
	if maxSpeed > 0 {
		rec.MaxSpeedKmh = floatPtr(round(maxSpeed*3.6, 2))
	}

	rec.HeartRate = activity.HeartRate{
		Avg: uint8Ptr(s.AvgHeartRate),
		Max: uint8Ptr(s.MaxHeartRate),
		Min: uint8Ptr(s.MinHeartRate),
	}

	rec.AscentMeters = uint16Float(s.TotalAscent)
	rec.DescentMeters = uint16Float(s.TotalDescent)
	rec.AvgTempC = int8Float(s.AvgTemperature)
	rec.MaxTempC = int8Float(s.MaxTemperature)
	rec.Calories = uint16Ptr(s.TotalCalories)
	if s.TotalTrainingEffect != math.MaxUint8 {
		rec.AerobicTE = floatPtr(float64(s.TotalTrainingEffect) / 10)
	}
	if s.TotalAnaerobicTrainingEffect != math.MaxUint8 {
		rec.AnaerobicTE = floatPtr(float64(s.TotalAnaerobicTrainingEffect) / 10)
	}

	avgCadence := cadenceFromAny(s.GetAvgCadence())
	maxCadence := cadenceFromAny(s.GetMaxCadence())

	switch rec.Sport {
	case activity.SportRun:
		d := &activity.RunDetail{
			GroundContactMs:       positivePtr(s.GetAvgStanceTimeScaled()),
			VerticalOscillationMm: positivePtr(s.GetAvgVerticalOscillationScaled()),
		}
		if avgSpeed > 0 {
			d.AvgPaceMinKm = floatPtr(paceMinKm(avgSpeed))
		}
		if maxSpeed > 0 {
			d.BestPaceMinKm = floatPtr(paceMinKm(maxSpeed))
		}
		// FIT stores running cadence per foot
		if avgCadence > 0 {
			d.AvgCadenceSPM = intPtr(int(avgCadence) * 2)
		}
		if maxCadence > 0 {
			d.MaxCadenceSPM = intPtr(int(maxCadence) * 2)
		}
		rec.Detail = d
	case activity.SportBike:
		d := &activity.BikeDetail{}
		if avgCadence > 0 {
			d.AvgCadenceRPM = intPtr(int(avgCadence))
		}
		if maxCadence > 0 {
			d.MaxCadenceRPM = intPtr(int(maxCadence))
		}
		rec.Detail = d
	case activity.SportSwim:
		d := &activity.SwimDetail{
			PoolLengthMeters: positivePtr(s.GetPoolLengthScaled()),
			NumLengths:       uint16Ptr(s.NumLengths),
		}
		if avgSpeed > 0 {
			d.AvgPaceSecPer100m = floatPtr(round(100/avgSpeed, 1))
		}
		if strokes := safePositive(s.GetAvgStrokeCountScaled()); strokes > 0 {
			d.AvgStrokeRate = intPtr(int(math.Round(strokes)))
		}
		rec.Detail = d
	}
}

// fillFromRecords covers session values missing from the file with values
// derived from the record messages.
func fillFromRecords(rec *activity.Record, rs recordSeries) {
	if rec.StartTime.IsZero() {
		rec.StartTime = rs.start
	}
	if rec.ElapsedSeconds == 0 && !rs.start.IsZero() {
		rec.ElapsedSeconds = int(rs.end.Sub(rs.start).Seconds())
	}
	if rec.DistanceMeters == 0 {
		rec.DistanceMeters = rs.lastDistance
	}
	if rec.HeartRate.Avg == nil && len(rs.hr) > 0 {
		rec.HeartRate.Avg = intPtr(int(math.Round(mean(rs.hr))))
	}
	if rec.HeartRate.Max == nil && len(rs.hr) > 0 {
		rec.HeartRate.Max = intPtr(int(maxOf(rs.hr)))
	}
}

// powerSummary prefers the session's power values and derives the rest
// from the power samples. NP is never reported below average power.
func powerSummary(s *fit.SessionMsg, samples []float64) *activity.PowerSummary {
	var avg, peak, np float64
	if s != nil {
		avg = float64(validUint16(s.AvgPower))
		peak = float64(validUint16(s.MaxPower))
		np = float64(validUint16(s.NormalizedPower))
	}
	if avg == 0 {
		avg = mean(samples)
	}
	if peak == 0 {
		peak = maxOf(samples)
	}
	if np == 0 {
		if v, ok := analysis.NormalizedPower(samples); ok {
			np = v
		}
	}
	if avg == 0 && peak == 0 && np == 0 {
		return nil
	}
	if np > 0 && np < avg {
		np = avg
	}

	ps := &activity.PowerSummary{}
	if avg > 0 {
		ps.Avg = intPtr(int(math.Round(avg)))
	}
	if peak > 0 {
		ps.Max = intPtr(int(math.Round(peak)))
	}
	if np > 0 {
		ps.Normalized = intPtr(int(math.Round(np)))
	}
	return ps
}

func fitLaps(laps []*fit.LapMsg) []activity.Lap {
	out := make([]activity.Lap, 0, len(laps))
	for i, l := range laps {
		if l == nil {
			continue
		}
		lap := activity.Lap{
			Index:           i + 1,
			DistanceMeters:  round(safePositive(l.GetTotalDistanceScaled()), 1),
			DurationSeconds: round(safePositive(l.GetTotalElapsedTimeScaled()), 1),
			AvgHR:           uint8Ptr(l.AvgHeartRate),
			MaxHR:           uint8Ptr(l.MaxHeartRate),
			AvgPower:        uint16Ptr(l.AvgPower),
			AscentMeters:    uint16Float(l.TotalAscent),
			Calories:        uint16Ptr(l.TotalCalories),
		}
		speed := safePositive(l.GetEnhancedAvgSpeedScaled())
		if speed == 0 {
			speed = safePositive(l.GetAvgSpeedScaled())
		}
		if speed > 0 {
			lap.AvgSpeedKmh = floatPtr(round(speed*3.6, 2))
		}
		if cad := cadenceFromAny(l.GetAvgCadence()); cad > 0 {
			lap.AvgCadence = intPtr(int(cad))
		}
		out = append(out, lap)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validTime(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t.UTC()
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func uint8Ptr(v uint8) *int {
	if v == math.MaxUint8 || v == 0 {
		return nil
	}
	return intPtr(int(v))
}

func uint16Ptr(v uint16) *int {
	if v == math.MaxUint16 || v == 0 {
		return nil
	}
	return intPtr(int(v))
}

// uint16Float keeps zero, which is a real value for ascent on flat courses
func uint16Float(v uint16) *float64 {
	if v == math.MaxUint16 {
		return nil
	}
	return floatPtr(float64(v))
}

func int8Float(v int8) *float64 {
	if v == math.MaxInt8 {
		return nil
	}
	return floatPtr(float64(v))
}

func cadenceFromAny(v any) float64 {
	switch x := v.(type) {
	case uint8:
		if x == math.MaxUint8 {
			return 0
		}
		return float64(x)
	case uint16:
		if x == math.MaxUint16 {
			return 0
		}
		return float64(x)
	case int:
		if x < 0 {
			return 0
		}
		return float64(x)
	case float64:
		return safePositive(x)
	default:
		return 0
	}
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

func maxOf(values []float64) float64 {
	var m float64
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}
