package analysis

import (
	"math"
	"testing"

	"tricoach/internal/activity"
)

func TestComputeActivityMetrics(t *testing.T) {
	th := DefaultThresholds()

	steadyPower := func() []activity.Sample {
		out := make([]activity.Sample, 60)
		for i := range out {
			out[i] = activity.Sample{T: i, V: 200}
		}
		return out
	}

	tests := []struct {
		name    string
		rec     activity.Record
		checkFn func(t *testing.T, m activity.Metrics)
	}{
		{
			name: "no data - only TSS method none",
			rec: activity.Record{
				Sport:         activity.SportStrength,
				MovingSeconds: 3600,
			},
			checkFn: func(t *testing.T, m activity.Metrics) {
				if m.TSS != 0 || m.TSSMethod != activity.TSSMethodNone {
					t.Errorf("TSS = %v (%s), want 0 (none)", m.TSS, m.TSSMethod)
				}
				if m.IntensityFactor != nil || m.TRIMP != nil || m.HRDriftPct != nil {
					t.Error("undefined metrics should be nil")
				}
				if m.HRZones != nil || m.PowerZones != nil {
					t.Error("zones should be nil without streams")
				}
			},
		},
		{
			name: "ride with power",
			rec: activity.Record{
				Sport:         activity.SportBike,
				MovingSeconds: 3600,
				Power:         &activity.PowerSummary{Avg: intPtr(200), Normalized: intPtr(200)},
				Streams:       activity.Streams{Power: steadyPower()},
			},
			checkFn: func(t *testing.T, m activity.Metrics) {
				if m.TSSMethod != activity.TSSMethodPower {
					t.Errorf("TSSMethod = %s, want power", m.TSSMethod)
				}
				if math.Abs(m.TSS-100) > 0.05 {
					t.Errorf("TSS = %v, want 100", m.TSS)
				}
				if m.IntensityFactor == nil || *m.IntensityFactor != 1.0 {
					t.Errorf("IntensityFactor = %v, want 1.0", m.IntensityFactor)
				}
				if m.VariabilityIndex == nil || *m.VariabilityIndex != 1.0 {
					t.Errorf("VariabilityIndex = %v, want 1.0", m.VariabilityIndex)
				}
				if m.PowerZones["z4"] != 59 {
					t.Errorf("PowerZones[z4] = %v, want 59", m.PowerZones["z4"])
				}
			},
		},
		{
			name: "ride without session NP derives it from the stream",
			rec: activity.Record{
				Sport:         activity.SportBike,
				MovingSeconds: 3600,
				Streams:       activity.Streams{Power: steadyPower()},
			},
			checkFn: func(t *testing.T, m activity.Metrics) {
				if m.TSSMethod != activity.TSSMethodPower {
					t.Errorf("TSSMethod = %s, want power", m.TSSMethod)
				}
				if m.VariabilityIndex != nil {
					t.Error("VariabilityIndex needs a session average power")
				}
			},
		},
		{
			name: "run with HR stream",
			rec: activity.Record{
				Sport:          activity.SportRun,
				MovingSeconds:  3000,
				DistanceMeters: 10000,
				HeartRate:      activity.HeartRate{Avg: intPtr(150)},
				Streams: activity.Streams{
					HeartRate: samples(140, 140, 140, 140, 140, 154, 154, 154, 154, 154),
					Pace:      samples(5, 5, 5, 5, 5, 5),
				},
			},
			checkFn: func(t *testing.T, m activity.Metrics) {
				if m.TSSMethod != activity.TSSMethodPace {
					t.Errorf("TSSMethod = %s, want pace", m.TSSMethod)
				}
				if m.IntensityFactor == nil || *m.IntensityFactor != 1.0 {
					t.Errorf("IntensityFactor = %v, want 1.0", m.IntensityFactor)
				}
				if m.TRIMP == nil {
					t.Error("TRIMP should be set")
				}
				if m.HRDriftPct == nil || math.Abs(*m.HRDriftPct-10) > 0.05 {
					t.Errorf("HRDriftPct = %v, want 10", m.HRDriftPct)
				}
				if m.PaceConsistencyCV == nil || *m.PaceConsistencyCV != 0 {
					t.Errorf("PaceConsistencyCV = %v, want 0", m.PaceConsistencyCV)
				}
				if m.HRZones == nil {
					t.Error("HRZones should be set")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := ComputeActivityMetrics(&tt.rec, th)
			tt.checkFn(t, metrics)
		})
	}
}

func TestComputeActivityMetricsIntensityFollowsTSSMethod(t *testing.T) {
	// 300 W against a 200 W FTP would give IF 1.5, threshold pace gives 1.0
	rec := activity.Record{
		Sport:          activity.SportRun,
		MovingSeconds:  3000,
		DistanceMeters: 10000,
		Power:          &activity.PowerSummary{Avg: intPtr(300), Normalized: intPtr(300)},
	}

	m := ComputeActivityMetrics(&rec, DefaultThresholds())
	if m.TSSMethod != activity.TSSMethodPace {
		t.Fatalf("TSSMethod = %s, want pace", m.TSSMethod)
	}
	if m.IntensityFactor == nil || *m.IntensityFactor != 1.0 {
		t.Errorf("IntensityFactor = %v, want pace-based 1.0", m.IntensityFactor)
	}
}

func TestDurationSeconds(t *testing.T) {
	tests := []struct {
		rec  activity.Record
		want int
	}{
		{activity.Record{ElapsedSeconds: 100, TimerSeconds: 90, MovingSeconds: 80}, 80},
		{activity.Record{ElapsedSeconds: 100, TimerSeconds: 90}, 90},
		{activity.Record{ElapsedSeconds: 100}, 100},
	}
	for _, tt := range tests {
		if got := DurationSeconds(&tt.rec); got != tt.want {
			t.Errorf("DurationSeconds(%+v) = %d, want %d", tt.rec, got, tt.want)
		}
	}
}

func TestAverageHRFallsBackToStream(t *testing.T) {
	rec := activity.Record{Streams: activity.Streams{HeartRate: samples(140, 160)}}
	if got := AverageHR(&rec); got != 150 {
		t.Errorf("AverageHR() = %v, want 150", got)
	}
	rec.HeartRate.Avg = intPtr(155)
	if got := AverageHR(&rec); got != 155 {
		t.Errorf("AverageHR() = %v, want 155", got)
	}
}
