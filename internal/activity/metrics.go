package activity

// TSSMethod records which input path produced a TSS value
type TSSMethod string

const (
	TSSMethodPower TSSMethod = "power"
	TSSMethodPace  TSSMethod = "pace"
	TSSMethodSwim  TSSMethod = "swim_pace"
	TSSMethodHR    TSSMethod = "heart_rate"
	TSSMethodNone  TSSMethod = "none"
)

// Metrics holds the derived per-activity metrics. A nil pointer means the
// metric is undefined for the activity, which is distinct from zero.
type Metrics struct {
	TSS       float64   `json:"tss"`
	TSSMethod TSSMethod `json:"tss_method"`

	IntensityFactor   *float64 `json:"intensity_factor,omitempty"`
	VariabilityIndex  *float64 `json:"variability_index,omitempty"`
	TRIMP             *float64 `json:"trimp,omitempty"`
	HRDriftPct        *float64 `json:"hr_drift_pct,omitempty"`
	PaceConsistencyCV *float64 `json:"pace_consistency_cv,omitempty"`
	EfficiencyFactor  *float64 `json:"efficiency_factor,omitempty"`

	HRZones    map[string]float64 `json:"hr_zones,omitempty"`    // seconds per z1..z5
	PowerZones map[string]float64 `json:"power_zones,omitempty"` // seconds per z1..z7
}
