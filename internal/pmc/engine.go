// Package pmc implements the Performance Management Chart: chronic and
// acute training load folded day by day from daily TSS.
package pmc

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Time constants in days
const (
	CTLDays = 42
	ATLDays = 7
)

// State is the engine's running load, kept at full precision
type State struct {
	CTL float64 `json:"ctl"`
	ATL float64 `json:"atl"`
}

// TSB returns training stress balance (form)
func (s State) TSB() float64 {
	return s.CTL - s.ATL
}

// Snapshot is the rounded state after one day
type Snapshot struct {
	CTL float64
	ATL float64
	TSB float64
}

// DailyTSS is one calendar day of aggregated training stress
type DailyTSS struct {
	Date time.Time
	TSS  float64
}

// Point is one PMC row
type Point struct {
	Date time.Time `json:"date"`
	TSS  float64   `json:"tss"`
	CTL  float64   `json:"ctl"`
	ATL  float64   `json:"atl"`
	TSB  float64   `json:"tsb"`
}

// Engine folds daily TSS into CTL/ATL. An Engine is not safe for
// concurrent use.
type Engine struct {
	state State
}

// New returns an engine starting from the given state (zero for a fresh
// history, or a saved checkpoint).
func New(initial State) *Engine {
	return &Engine{state: initial}
}

// State returns the current unrounded state
func (e *Engine) State() State {
	return e.state
}

// Update advances the engine by one day
func (e *Engine) Update(tss float64) Snapshot {
	e.state.CTL += (tss - e.state.CTL) / CTLDays
	e.state.ATL += (tss - e.state.ATL) / ATLDays
	return e.state.Snapshot()
}

// Snapshot returns the state rounded for display
func (s State) Snapshot() Snapshot {
	return Snapshot{
		CTL: round1(s.CTL),
		ATL: round1(s.ATL),
		TSB: round1(s.TSB()),
	}
}

// SequenceError reports a daily series that is not one entry per
// consecutive calendar day.
type SequenceError struct {
	Prev time.Time
	Next time.Time
}

func (e *SequenceError) Error() string {
	if Day(e.Prev).Equal(Day(e.Next)) {
		return fmt.Sprintf("pmc: duplicate day %s", e.Next.Format(DateLayout))
	}
	return fmt.Sprintf("pmc: gap between %s and %s", e.Prev.Format(DateLayout), e.Next.Format(DateLayout))
}

// CalculateHistory applies Update for each day of series in date order.
// The series must be contiguous; use FillMissingDays first.
func (e *Engine) CalculateHistory(series []DailyTSS) ([]Point, error) {
	sorted := make([]DailyTSS, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for i := 1; i < len(sorted); i++ {
		prev, next := Day(sorted[i-1].Date), Day(sorted[i].Date)
		if !next.Equal(prev.AddDate(0, 0, 1)) {
			return nil, &SequenceError{Prev: prev, Next: next}
		}
	}

	points := make([]Point, 0, len(sorted))
	for _, d := range sorted {
		snap := e.Update(d.TSS)
		points = append(points, Point{
			Date: Day(d.Date),
			TSS:  d.TSS,
			CTL:  snap.CTL,
			ATL:  snap.ATL,
			TSB:  snap.TSB,
		})
	}
	return points, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
