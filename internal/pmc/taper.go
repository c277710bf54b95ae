package pmc

import (
	"errors"
	"math"
	"time"
)

var (
	ErrInvalidIntensity = errors.New("pmc: taper intensity must be between 0.1 and 1.0")
	ErrInvalidDays      = errors.New("pmc: projection needs at least one day")
)

// Taper intensity bounds, as a fraction of current CTL
const (
	MinTaperIntensity = 0.1
	MaxTaperIntensity = 1.0

	// taperFirstWeek is the last day at full taper intensity; later days
	// train at half of it.
	taperFirstWeek = 7
)

// ProjectedDay is one day of a taper projection
type ProjectedDay struct {
	DayOffset    int       `json:"day_offset"`
	Date         time.Time `json:"projected_date"`
	ProjectedTSS float64   `json:"projected_tss"`
	CTL          float64   `json:"ctl"`
	ATL          float64   `json:"atl"`
	TSB          float64   `json:"tsb"`
}

// Projection is a forward taper simulation
type Projection struct {
	Days        []ProjectedDay `json:"projection"`
	RaceDayForm FormStatus     `json:"race_day_form"`
}

// ProjectTaper simulates days of reduced training starting the day after
// from. Daily TSS is CTL × intensity for the first week and half of that
// afterwards, where CTL is the starting value. ProjectedTSS is rounded for
// display only. current is not modified.
func ProjectTaper(current State, days int, intensity float64, from time.Time) (Projection, error) {
	if days < 1 {
		return Projection{}, ErrInvalidDays
	}
	if math.IsNaN(intensity) || intensity < MinTaperIntensity || intensity > MaxTaperIntensity {
		return Projection{}, ErrInvalidIntensity
	}

	engine := New(current)
	start := Day(from)
	out := make([]ProjectedDay, 0, days)
	for day := 1; day <= days; day++ {
		tss := current.CTL * intensity
		if day > taperFirstWeek {
			tss = current.CTL * intensity / 2
		}
		snap := engine.Update(tss)
		out = append(out, ProjectedDay{
			DayOffset:    day,
			Date:         start.AddDate(0, 0, day),
			ProjectedTSS: math.Round(tss),
			CTL:          snap.CTL,
			ATL:          snap.ATL,
			TSB:          snap.TSB,
		})
	}

	return Projection{
		Days:        out,
		RaceDayForm: FormStatusFor(out[len(out)-1].TSB),
	}, nil
}

// ProjectRest advances state through days with no training
func ProjectRest(state State, days int) State {
	engine := New(state)
	for i := 0; i < days; i++ {
		engine.Update(0)
	}
	return engine.State()
}
