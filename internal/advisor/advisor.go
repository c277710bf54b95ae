// Package advisor produces coaching notes for imported activities.
//
// Analysis runs out of band: the import pipeline hands activity IDs to a
// Dispatcher and never waits for the result.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"tricoach/internal/activity"
	"tricoach/internal/analysis"
	"tricoach/internal/pmc"
)

// Input is everything an advisor sees about one activity
type Input struct {
	Record *activity.Record
	// Form is the PMC row for the activity's day, nil if not computed yet
	Form *pmc.Point
}

// Advisor turns an activity into a short coaching note
type Advisor interface {
	Analyze(ctx context.Context, in Input) (string, error)
}

// Intensity factor bands
const (
	ifRecovery  = 0.75
	ifEndurance = 0.85
	ifTempo     = 0.95
	ifThreshold = 1.05
)

// Drift above this percentage is reported as cardiac decoupling
const driftWarningPct = 5.0

// Pace CV below this is reported as even pacing
const evenPacingCV = 5.0

// RuleAdvisor builds notes from the computed metrics without any external
// service.
type RuleAdvisor struct{}

// Analyze implements Advisor
func (RuleAdvisor) Analyze(ctx context.Context, in Input) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rec := in.Record
	if rec == nil {
		return "", fmt.Errorf("advisor: no record")
	}

	var notes []string
	m := rec.Metrics
	if m == nil || m.TSSMethod == activity.TSSMethodNone {
		notes = append(notes, "No training load could be computed. Set your thresholds or record heart rate.")
	} else {
		notes = append(notes, fmt.Sprintf("%s: TSS %.0f from %s.", rec.Title, m.TSS, methodLabel(m.TSSMethod)))
	}

	if m != nil {
		if m.IntensityFactor != nil {
			notes = append(notes, fmt.Sprintf("Intensity %.2f, %s.", *m.IntensityFactor, intensityLabel(*m.IntensityFactor)))
		}
		if m.VariabilityIndex != nil && *m.VariabilityIndex > 1.05 {
			notes = append(notes, fmt.Sprintf("Variability index %.2f: the effort was surgy.", *m.VariabilityIndex))
		}
		if m.HRDriftPct != nil && *m.HRDriftPct > driftWarningPct {
			notes = append(notes, fmt.Sprintf("Heart rate drifted %.1f%% in the second half.", *m.HRDriftPct))
		}
		if m.PaceConsistencyCV != nil && *m.PaceConsistencyCV < evenPacingCV {
			notes = append(notes, "Pacing was even.")
		}
		if z := dominantZone(m.HRZones); z != "" {
			notes = append(notes, fmt.Sprintf("Most time was spent in HR %s.", strings.ToUpper(z)))
		}
	}

	if in.Form != nil {
		status := pmc.FormStatusFor(in.Form.TSB)
		notes = append(notes, fmt.Sprintf("Form after this day: TSB %.1f (%s).", in.Form.TSB, status.Description()))
	}

	return strings.Join(notes, " "), nil
}

func methodLabel(m activity.TSSMethod) string {
	switch m {
	case activity.TSSMethodPower:
		return "power"
	case activity.TSSMethodPace:
		return "run pace"
	case activity.TSSMethodSwim:
		return "swim pace"
	case activity.TSSMethodHR:
		return "heart rate"
	default:
		return "no data"
	}
}

func intensityLabel(intensity float64) string {
	switch {
	case intensity < ifRecovery:
		return "recovery"
	case intensity < ifEndurance:
		return "endurance"
	case intensity < ifTempo:
		return "tempo"
	case intensity < ifThreshold:
		return "threshold"
	default:
		return "above threshold"
	}
}

// dominantZone returns the zone with the most time; ties go to the lower zone
func dominantZone(zones map[string]float64) string {
	best, bestTime := "", 0.0
	for i := 1; i <= len(zones); i++ {
		z := fmt.Sprintf("z%d", i)
		if zones[z] > bestTime {
			best, bestTime = z, zones[z]
		}
	}
	return best
}

// WeeklyNote summarizes a run of weekly TSS totals, oldest first
func WeeklyNote(weeklyTSS []float64) string {
	load, ok := analysis.MonotonyStrain(weeklyTSS)
	if !ok {
		return fmt.Sprintf("Need at least %d weeks of varied training for monotony.", analysis.MinMonotonyWeeks)
	}
	note := fmt.Sprintf("Weekly average %.0f TSS, monotony %.2f, strain %.0f.", load.WeeklyAvg, load.Monotony, load.Strain)
	if load.Monotony > analysis.HighMonotony {
		note += " Training is monotonous: vary hard and easy weeks."
	}
	return note
}
