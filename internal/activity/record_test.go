package activity

import (
	"encoding/json"
	"math"
	"testing"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name     string
		sport    Sport
		distance float64
		timer    int
		want     string
	}{
		{"run with distance", SportRun, 10000, 2400, "Run 10.00 km"},
		{"ride", SportBike, 42195.5, 5000, "Ride 42.20 km"},
		{"strength by minutes", SportStrength, 0, 2730, "Strength 45 min"},
		{"unknown sport", Sport("yoga"), 0, 600, "Workout 10 min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.sport, tt.distance, tt.timer); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSportValid(t *testing.T) {
	for _, s := range []Sport{SportSwim, SportBike, SportRun, SportStrength, SportBrick, SportRest, SportOther} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Sport("curling").Valid() {
		t.Error("curling should not be valid")
	}
}

func TestDetailAccessors(t *testing.T) {
	rec := &Record{Sport: SportRun, Detail: &RunDetail{}}
	if rec.Run() == nil {
		t.Error("Run() should return the run detail")
	}
	if rec.Bike() != nil || rec.Swim() != nil {
		t.Error("other accessors should return nil")
	}

	empty := &Record{}
	if empty.Run() != nil {
		t.Error("Run() on record without detail should be nil")
	}
}

func TestAvgPaceMinKm(t *testing.T) {
	rec := &Record{DistanceMeters: 10000, MovingSeconds: 3000}
	pace, ok := rec.AvgPaceMinKm()
	if !ok || math.Abs(pace-5.0) > 0.001 {
		t.Errorf("AvgPaceMinKm() = %v, %v; want 5.0, true", pace, ok)
	}

	if _, ok := (&Record{MovingSeconds: 100}).AvgPaceMinKm(); ok {
		t.Error("pace should be undefined without distance")
	}
}

func TestStreamsLen(t *testing.T) {
	s := Streams{
		HeartRate: make([]Sample, 3),
		Power:     make([]Sample, 7),
		GPS:       make([]GPSPoint, 5),
	}
	if got := s.Len(); got != 7 {
		t.Errorf("Len() = %d, want 7", got)
	}
}

func TestRecordJSONOmitsUndefinedMetrics(t *testing.T) {
	rec := Record{
		Sport:   SportRun,
		Metrics: &Metrics{TSS: 0, TSSMethod: TSSMethodNone},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m := decoded["metrics"].(map[string]any)
	if _, ok := m["intensity_factor"]; ok {
		t.Error("undefined intensity factor should be omitted")
	}
	if m["tss_method"] != "none" {
		t.Errorf("tss_method = %v, want none", m["tss_method"])
	}
}

func TestRecordJSONKeepsSportDetail(t *testing.T) {
	cadence := 180
	in := Record{Sport: SportRun, Detail: &RunDetail{AvgCadenceSPM: &cadence}}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	run := out.Run()
	if run == nil {
		t.Fatal("run detail lost in JSON round trip")
	}
	if run.AvgCadenceSPM == nil || *run.AvgCadenceSPM != 180 {
		t.Errorf("AvgCadenceSPM = %v, want 180", run.AvgCadenceSPM)
	}
	if out.Sport != SportRun {
		t.Errorf("Sport = %q, want run", out.Sport)
	}
}
