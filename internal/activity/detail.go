package activity

import "encoding/json"

// SportDetail carries the sport-specific fields of a Record. Only the
// variants in this package implement it.
type SportDetail interface {
	sport() Sport
}

// RunDetail holds running-specific values. Cadence is in steps per minute.
type RunDetail struct {
	AvgPaceMinKm          *float64 `json:"avg_pace_min_km,omitempty"`
	BestPaceMinKm         *float64 `json:"best_pace_min_km,omitempty"`
	AvgCadenceSPM         *int     `json:"avg_cadence,omitempty"`
	MaxCadenceSPM         *int     `json:"max_cadence,omitempty"`
	GroundContactMs       *float64 `json:"avg_ground_contact_time_ms,omitempty"`
	VerticalOscillationMm *float64 `json:"avg_vertical_oscillation_mm,omitempty"`
}

// BikeDetail holds cycling-specific values. Cadence is in rpm.
type BikeDetail struct {
	AvgCadenceRPM *int `json:"avg_cadence,omitempty"`
	MaxCadenceRPM *int `json:"max_cadence,omitempty"`
}

// SwimDetail holds swimming-specific values
type SwimDetail struct {
	AvgPaceSecPer100m *float64 `json:"avg_pace_per_100m,omitempty"`
	AvgStrokeRate     *int     `json:"avg_stroke_rate,omitempty"`
	PoolLengthMeters  *float64 `json:"pool_length_m,omitempty"`
	NumLengths        *int     `json:"num_lengths,omitempty"`
}

func (*RunDetail) sport() Sport  { return SportRun }
func (*BikeDetail) sport() Sport { return SportBike }
func (*SwimDetail) sport() Sport { return SportSwim }

// Run returns the running detail, or nil when the record is not a run
func (r *Record) Run() *RunDetail {
	d, _ := r.Detail.(*RunDetail)
	return d
}

// Bike returns the cycling detail, or nil
func (r *Record) Bike() *BikeDetail {
	d, _ := r.Detail.(*BikeDetail)
	return d
}

// Swim returns the swimming detail, or nil
func (r *Record) Swim() *SwimDetail {
	d, _ := r.Detail.(*SwimDetail)
	return d
}

type recordAlias Record

type recordJSON struct {
	recordAlias
	Run  *RunDetail  `json:"run,omitempty"`
	Bike *BikeDetail `json:"bike,omitempty"`
	Swim *SwimDetail `json:"swim,omitempty"`
}

// MarshalJSON encodes the sport detail under a key named after its variant
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		recordAlias: recordAlias(r),
		Run:         r.Run(),
		Bike:        r.Bike(),
		Swim:        r.Swim(),
	})
}

// UnmarshalJSON restores the sport detail written by MarshalJSON
func (r *Record) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Record(in.recordAlias)
	switch {
	case in.Run != nil:
		r.Detail = in.Run
	case in.Bike != nil:
		r.Detail = in.Bike
	case in.Swim != nil:
		r.Detail = in.Swim
	}
	return nil
}
