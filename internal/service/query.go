package service

import (
	"errors"
	"fmt"
	"time"

	"tricoach/internal/analysis"
	"tricoach/internal/pmc"
	"tricoach/internal/store"
)

var (
	ErrTargetNotFuture = errors.New("target date must be in the future")
	ErrInvalidWeeks    = fmt.Errorf("weeks must be between 1 and %d", MaxWeeks)
)

// QueryService provides read-only queries for the CLI and TUI
type QueryService struct {
	store *store.DB
	now   func() time.Time
}

// NewQueryService creates a new query service
func NewQueryService(store *store.DB) *QueryService {
	return &QueryService{store: store, now: time.Now}
}

// Today returns the current calendar day
func (q *QueryService) Today() time.Time {
	return pmc.Day(q.now().UTC())
}

// Form is the athlete's load on one day
type Form struct {
	Date   time.Time
	CTL    float64
	ATL    float64
	TSB    float64
	Status pmc.FormStatus
	// Projected is set when no row exists for Date and the value was
	// carried forward from the last computed day with zero training.
	Projected bool

	state pmc.State
}

// CurrentForm returns the PMC values for today. If today has not been
// computed the last stored day is projected forward with rest days.
func (q *QueryService) CurrentForm(today time.Time) (*Form, error) {
	today = pmc.Day(today)

	p, err := q.store.DailyMetricOn(today)
	if err == nil {
		f := formFromPoint(*p)
		if cp, err := q.store.GetCheckpoint(); err == nil && cp.Date.Equal(today) {
			f.state = cp.State
		}
		return f, nil
	}
	if !errors.Is(err, store.ErrNoDailyMetrics) {
		return nil, err
	}

	latest, err := q.store.LatestDailyMetric()
	if errors.Is(err, store.ErrNoDailyMetrics) {
		return &Form{Date: today, Status: pmc.FormNoData}, nil
	}
	if err != nil {
		return nil, err
	}
	if latest.Date.After(today) {
		// only future-dated rows exist; nothing to carry forward
		return &Form{Date: today, Status: pmc.FormNoData}, nil
	}

	state := pmc.State{CTL: latest.CTL, ATL: latest.ATL}
	if cp, err := q.store.GetCheckpoint(); err == nil && cp.Date.Equal(latest.Date) {
		state = cp.State
	}
	days := int(today.Sub(latest.Date).Hours() / 24)
	state = pmc.ProjectRest(state, days)
	snap := state.Snapshot()

	return &Form{
		Date:      today,
		CTL:       snap.CTL,
		ATL:       snap.ATL,
		TSB:       snap.TSB,
		Status:    pmc.FormStatusFor(snap.TSB),
		Projected: true,
		state:     state,
	}, nil
}

func formFromPoint(p pmc.Point) *Form {
	return &Form{
		Date:   p.Date,
		CTL:    p.CTL,
		ATL:    p.ATL,
		TSB:    p.TSB,
		Status: pmc.FormStatusFor(p.TSB),
		state:  pmc.State{CTL: p.CTL, ATL: p.ATL},
	}
}

// ProjectTaper simulates a taper from today until target
func (q *QueryService) ProjectTaper(today, target time.Time, intensity float64) (*pmc.Projection, error) {
	today, target = pmc.Day(today), pmc.Day(target)
	if !target.After(today) {
		return nil, ErrTargetNotFuture
	}

	form, err := q.CurrentForm(today)
	if err != nil {
		return nil, err
	}

	days := int(target.Sub(today).Hours() / 24)
	projection, err := pmc.ProjectTaper(form.state, days, intensity, today)
	if err != nil {
		return nil, err
	}
	return &projection, nil
}

// DailyHistory returns PMC rows for the last days days up to today
func (q *QueryService) DailyHistory(today time.Time, days int) ([]pmc.Point, error) {
	today = pmc.Day(today)
	return q.store.GetDailyMetrics(today.AddDate(0, 0, -(days - 1)), today)
}

// WeekTSS is the training stress of one Monday-based week
type WeekTSS struct {
	Start time.Time
	TSS   float64
	Count int
}

// WeeklySummary holds weekly TSS totals, oldest first, plus monotony and
// strain over the window.
type WeeklySummary struct {
	Weeks []WeekTSS
	Load  analysis.Load
	// LoadDefined is false when monotony is undefined for the window
	LoadDefined bool
}

// WeeklySummary returns TSS totals for the last weeks weeks, including
// the current one.
func (q *QueryService) WeeklySummary(today time.Time, weeks int) (*WeeklySummary, error) {
	if weeks < 1 || weeks > MaxWeeks {
		return nil, ErrInvalidWeeks
	}

	first := getMonday(pmc.Day(today)).AddDate(0, 0, -7*(weeks-1))
	loads, err := q.store.ActivityLoads(first)
	if err != nil {
		return nil, err
	}

	summary := &WeeklySummary{Weeks: make([]WeekTSS, weeks)}
	for i := range summary.Weeks {
		summary.Weeks[i].Start = first.AddDate(0, 0, 7*i)
	}
	for _, l := range loads {
		idx := int(pmc.Day(l.Time).Sub(first).Hours()/24) / 7
		if idx < 0 || idx >= weeks {
			continue
		}
		summary.Weeks[idx].TSS += l.TSS
		summary.Weeks[idx].Count++
	}

	totals := make([]float64, weeks)
	for i, w := range summary.Weeks {
		totals[i] = w.TSS
	}
	summary.Load, summary.LoadDefined = analysis.MonotonyStrain(totals)
	return summary, nil
}

// GetActivitiesList returns a page of activities, newest first
func (q *QueryService) GetActivitiesList(limit, offset int) ([]store.Activity, error) {
	return q.store.ListActivities(limit, offset)
}

// GetActivityDetail returns one activity with its full record
func (q *QueryService) GetActivityDetail(id string) (*store.Activity, error) {
	return q.store.GetActivity(id)
}

// GetTotalActivityCount returns the total number of stored activities
func (q *QueryService) GetTotalActivityCount() (int, error) {
	return q.store.CountActivities()
}
