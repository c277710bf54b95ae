package activity

import "time"

// Sport is the closed set of disciplines the engine understands
type Sport string

const (
	SportSwim     Sport = "swim"
	SportBike     Sport = "bike"
	SportRun      Sport = "run"
	SportStrength Sport = "strength"
	SportBrick    Sport = "brick"
	SportRest     Sport = "rest"
	SportOther    Sport = "other"
)

// Valid reports whether s is one of the known sports
func (s Sport) Valid() bool {
	switch s {
	case SportSwim, SportBike, SportRun, SportStrength, SportBrick, SportRest, SportOther:
		return true
	default:
		return false
	}
}

// Format identifies the source file format of an activity
type Format string

const (
	FormatFIT Format = "fit"
	FormatTCX Format = "tcx"
)

// MaxStreamPoints caps the length of every time-series stream
const MaxStreamPoints = 3600

// Record is a decoded activity. It is built once per file and is not
// modified afterwards, apart from attaching Metrics before persistence.
type Record struct {
	Sport     Sport     `json:"sport"`
	Title     string    `json:"title"`
	Format    Format    `json:"source_format"`
	StartTime time.Time `json:"start_time"`

	// elapsed >= timer >= moving
	ElapsedSeconds int `json:"total_elapsed_seconds"`
	TimerSeconds   int `json:"total_timer_seconds"`
	MovingSeconds  int `json:"total_moving_seconds"`

	DistanceMeters float64  `json:"total_distance_meters"`
	AvgSpeedKmh    *float64 `json:"avg_speed_kmh,omitempty"`
	MaxSpeedKmh    *float64 `json:"max_speed_kmh,omitempty"`

	HeartRate HeartRate     `json:"heart_rate"`
	Power     *PowerSummary `json:"power,omitempty"`
	Detail    SportDetail   `json:"-"`

	AscentMeters  *float64 `json:"total_ascent_m,omitempty"`
	DescentMeters *float64 `json:"total_descent_m,omitempty"`
	AvgTempC      *float64 `json:"avg_temperature_c,omitempty"`
	MaxTempC      *float64 `json:"max_temperature_c,omitempty"`
	Calories      *int     `json:"calories,omitempty"`
	AerobicTE     *float64 `json:"training_effect_aerobic,omitempty"`
	AnaerobicTE   *float64 `json:"training_effect_anaerobic,omitempty"`

	Streams Streams `json:"streams"`
	Laps    []Lap   `json:"laps,omitempty"`

	Metrics *Metrics `json:"metrics,omitempty"`
}

// HeartRate holds session-level heart rate summary values (bpm)
type HeartRate struct {
	Avg *int `json:"avg_hr,omitempty"`
	Max *int `json:"max_hr,omitempty"`
	Min *int `json:"min_hr,omitempty"`
}

// PowerSummary holds session-level power values (watts).
// Normalized is never below Avg for a power stream decoded from records.
type PowerSummary struct {
	Avg        *int `json:"avg_power,omitempty"`
	Max        *int `json:"max_power,omitempty"`
	Normalized *int `json:"normalized_power,omitempty"`
}

// Sample is one point of a time-series stream keyed by elapsed seconds
type Sample struct {
	T int     `json:"t"`
	V float64 `json:"v"`
}

// GPSPoint is one position sample in decimal degrees
type GPSPoint struct {
	T   int     `json:"t"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Streams are sparse: each only contains points where its metric was present
type Streams struct {
	HeartRate []Sample   `json:"hr,omitempty"`
	Pace      []Sample   `json:"pace,omitempty"` // min/km
	Power     []Sample   `json:"power,omitempty"`
	Cadence   []Sample   `json:"cadence,omitempty"`
	Altitude  []Sample   `json:"altitude,omitempty"`
	GPS       []GPSPoint `json:"gps,omitempty"`
}

// Len returns the length of the longest stream
func (s Streams) Len() int {
	n := len(s.GPS)
	for _, stream := range [][]Sample{s.HeartRate, s.Pace, s.Power, s.Cadence, s.Altitude} {
		if len(stream) > n {
			n = len(stream)
		}
	}
	return n
}

// Lap is a per-lap summary
type Lap struct {
	Index           int      `json:"lap"`
	DistanceMeters  float64  `json:"distance_m"`
	DurationSeconds float64  `json:"duration_s"`
	AvgHR           *int     `json:"avg_hr,omitempty"`
	MaxHR           *int     `json:"max_hr,omitempty"`
	AvgSpeedKmh     *float64 `json:"avg_speed_kmh,omitempty"`
	AvgCadence      *int     `json:"avg_cadence,omitempty"`
	AvgPower        *int     `json:"avg_power,omitempty"`
	AscentMeters    *float64 `json:"total_ascent,omitempty"`
	Calories        *int     `json:"calories,omitempty"`
}

// AvgPaceMinKm returns the average pace in min/km derived from distance and
// moving time.
func (r *Record) AvgPaceMinKm() (float64, bool) {
	if r.DistanceMeters <= 0 || r.MovingSeconds <= 0 {
		return 0, false
	}
	return float64(r.MovingSeconds) / 60 / (r.DistanceMeters / 1000), true
}
