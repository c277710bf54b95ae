package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"tricoach/internal/activity"
	"tricoach/internal/pmc"
	"tricoach/internal/store"
)

func newQueryService(db *store.DB, today time.Time) *QueryService {
	q := NewQueryService(db)
	q.now = func() time.Time { return today.Add(12 * time.Hour) }
	return q
}

func seedPMC(t *testing.T, db *store.DB, from time.Time, tss []float64) pmc.State {
	t.Helper()
	engine := pmc.New(pmc.State{})
	var series []pmc.DailyTSS
	for i, v := range tss {
		series = append(series, pmc.DailyTSS{Date: from.AddDate(0, 0, i), TSS: v})
	}
	points, err := engine.CalculateHistory(series)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceDailyMetrics(from, points); err != nil {
		t.Fatal(err)
	}
	last := from.AddDate(0, 0, len(tss)-1)
	if err := db.SaveCheckpoint(pmc.Checkpoint{Date: last, State: engine.State()}); err != nil {
		t.Fatal(err)
	}
	return engine.State()
}

func TestCurrentForm_NoData(t *testing.T) {
	db := setupTestDB(t)
	q := newQueryService(db, date(2024, 4, 10))

	form, err := q.CurrentForm(date(2024, 4, 10))
	if err != nil {
		t.Fatalf("CurrentForm failed: %v", err)
	}
	if form.Status != pmc.FormNoData {
		t.Errorf("Status = %s, want no_data", form.Status)
	}
}

func TestCurrentForm_Actual(t *testing.T) {
	db := setupTestDB(t)
	seedPMC(t, db, date(2024, 4, 1), []float64{100, 80, 0, 120, 60})
	q := newQueryService(db, date(2024, 4, 5))

	form, err := q.CurrentForm(date(2024, 4, 5))
	if err != nil {
		t.Fatal(err)
	}
	if form.Projected {
		t.Error("today has a row, should not be projected")
	}
	row, _ := db.DailyMetricOn(date(2024, 4, 5))
	if form.TSB != row.TSB || form.Status != pmc.FormStatusFor(row.TSB) {
		t.Errorf("form = %+v, row = %+v", form, row)
	}
}

func TestCurrentForm_ProjectsRestDays(t *testing.T) {
	db := setupTestDB(t)
	state := seedPMC(t, db, date(2024, 4, 1), []float64{100, 80, 0, 120, 60})
	q := newQueryService(db, date(2024, 4, 9))

	form, err := q.CurrentForm(date(2024, 4, 9))
	if err != nil {
		t.Fatal(err)
	}
	if !form.Projected {
		t.Error("expected projected form")
	}
	want := pmc.ProjectRest(state, 4).Snapshot()
	if form.CTL != want.CTL || form.ATL != want.ATL || form.TSB != want.TSB {
		t.Errorf("form = %+v, want %+v", form, want)
	}
	// Rest raises form
	last, _ := db.LatestDailyMetric()
	if form.TSB <= last.TSB {
		t.Errorf("TSB after rest %v should exceed %v", form.TSB, last.TSB)
	}
}

func TestProjectTaper(t *testing.T) {
	db := setupTestDB(t)
	seedPMC(t, db, date(2024, 4, 1), []float64{100, 80, 0, 120, 60})
	q := newQueryService(db, date(2024, 4, 5))

	if _, err := q.ProjectTaper(date(2024, 4, 5), date(2024, 4, 5), 0.5); !errors.Is(err, ErrTargetNotFuture) {
		t.Errorf("expected ErrTargetNotFuture, got %v", err)
	}
	if _, err := q.ProjectTaper(date(2024, 4, 5), date(2024, 4, 20), 1.5); !errors.Is(err, pmc.ErrInvalidIntensity) {
		t.Errorf("expected ErrInvalidIntensity, got %v", err)
	}

	proj, err := q.ProjectTaper(date(2024, 4, 5), date(2024, 4, 19), 0.5)
	if err != nil {
		t.Fatalf("ProjectTaper failed: %v", err)
	}
	if len(proj.Days) != 14 {
		t.Fatalf("got %d days, want 14", len(proj.Days))
	}
	if !proj.Days[13].Date.Equal(date(2024, 4, 19)) {
		t.Errorf("last day = %v, want Apr 19", proj.Days[13].Date)
	}
	if proj.Days[13].TSB <= proj.Days[0].TSB {
		t.Errorf("taper should freshen: TSB %v -> %v", proj.Days[0].TSB, proj.Days[13].TSB)
	}
}

func TestDailyHistory(t *testing.T) {
	db := setupTestDB(t)
	seedPMC(t, db, date(2024, 4, 1), []float64{100, 80, 0, 120, 60})
	q := newQueryService(db, date(2024, 4, 5))

	points, err := q.DailyHistory(date(2024, 4, 5), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 || !points[0].Date.Equal(date(2024, 4, 3)) {
		t.Errorf("history = %+v", points)
	}
}

func insertActivity(t *testing.T, db *store.DB, id string, sport activity.Sport, start time.Time, tss, meters float64) {
	t.Helper()
	rec := &activity.Record{
		Sport:          sport,
		Title:          id,
		Format:         activity.FormatFIT,
		StartTime:      start,
		MovingSeconds:  3600,
		TimerSeconds:   3600,
		ElapsedSeconds: 3600,
		DistanceMeters: meters,
		Metrics:        &activity.Metrics{TSS: tss, TSSMethod: activity.TSSMethodHR},
	}
	if err := db.InsertActivity(store.NewActivity(id, id, rec)); err != nil {
		t.Fatal(err)
	}
}

func TestWeeklySummary(t *testing.T) {
	db := setupTestDB(t)
	// 2024-04-10 is a Wednesday; weeks start Mar 25, Apr 1, Apr 8
	insertActivity(t, db, "a", activity.SportRun, date(2024, 3, 26).Add(7*time.Hour), 100, 10000)
	insertActivity(t, db, "b", activity.SportBike, date(2024, 4, 2).Add(7*time.Hour), 200, 40000)
	insertActivity(t, db, "c", activity.SportSwim, date(2024, 4, 7).Add(7*time.Hour), 50, 2000)
	insertActivity(t, db, "d", activity.SportRun, date(2024, 4, 9).Add(7*time.Hour), 300, 15000)
	insertActivity(t, db, "old", activity.SportRun, date(2024, 3, 1).Add(7*time.Hour), 999, 1000)
	q := newQueryService(db, date(2024, 4, 10))

	if _, err := q.WeeklySummary(date(2024, 4, 10), 0); !errors.Is(err, ErrInvalidWeeks) {
		t.Errorf("expected ErrInvalidWeeks, got %v", err)
	}
	if _, err := q.WeeklySummary(date(2024, 4, 10), 13); !errors.Is(err, ErrInvalidWeeks) {
		t.Errorf("expected ErrInvalidWeeks, got %v", err)
	}

	summary, err := q.WeeklySummary(date(2024, 4, 10), 3)
	if err != nil {
		t.Fatalf("WeeklySummary failed: %v", err)
	}
	want := []float64{100, 250, 300}
	for i, w := range summary.Weeks {
		if w.TSS != want[i] {
			t.Errorf("week %d TSS = %v, want %v", i, w.TSS, want[i])
		}
	}
	if !summary.Weeks[0].Start.Equal(date(2024, 3, 25)) {
		t.Errorf("first week = %v, want Mar 25", summary.Weeks[0].Start)
	}
	if !summary.LoadDefined {
		t.Fatal("monotony should be defined over 3 varied weeks")
	}
	// mean 216.67, population stdev 84.98
	if math.Abs(summary.Load.Monotony-2.55) > 0.01 {
		t.Errorf("Monotony = %v, want 2.55", summary.Load.Monotony)
	}

	short, err := q.WeeklySummary(date(2024, 4, 10), 2)
	if err != nil {
		t.Fatal(err)
	}
	if short.LoadDefined {
		t.Error("monotony is undefined for fewer than 3 weeks")
	}
}

func TestGetPeriodStats(t *testing.T) {
	db := setupTestDB(t)
	insertActivity(t, db, "a", activity.SportRun, date(2024, 4, 2).Add(7*time.Hour), 100, 10000)
	insertActivity(t, db, "b", activity.SportBike, date(2024, 4, 3).Add(7*time.Hour), 200, 40000)
	insertActivity(t, db, "c", activity.SportRun, date(2024, 4, 9).Add(7*time.Hour), 50, 5000)
	q := newQueryService(db, date(2024, 4, 10))

	weekly, err := q.GetPeriodStats(PeriodWeekly, 2)
	if err != nil {
		t.Fatalf("GetPeriodStats failed: %v", err)
	}
	if weekly[0].Count != 2 || weekly[0].TSS != 300 {
		t.Errorf("week 0 = %+v", weekly[0])
	}
	if weekly[0].BySport[activity.SportBike].DistanceMeters != 40000 {
		t.Errorf("bike totals = %+v", weekly[0].BySport[activity.SportBike])
	}
	if weekly[1].Count != 1 || weekly[1].PeriodLabel != "Apr 08" {
		t.Errorf("week 1 = %+v", weekly[1])
	}

	monthly, err := q.GetPeriodStats(PeriodMonthly, 1)
	if err != nil {
		t.Fatal(err)
	}
	if monthly[0].Count != 3 || monthly[0].Seconds != 3*3600 {
		t.Errorf("month = %+v", monthly[0])
	}

	if _, err := q.GetPeriodStats("yearly", 1); err == nil {
		t.Error("expected error for unknown period type")
	}
}

func TestGetDashboardData(t *testing.T) {
	db := setupTestDB(t)
	s := newImportService(db, date(2024, 4, 10))
	if _, err := s.ImportFile(context.Background(), writeFile(t, "a.tcx", runTCX(date(2024, 4, 9).Add(7*time.Hour), 3000, 10000))); err != nil {
		t.Fatal(err)
	}
	q := newQueryService(db, date(2024, 4, 10))

	data, err := q.GetDashboardData()
	if err != nil {
		t.Fatalf("GetDashboardData failed: %v", err)
	}
	if data.Form == nil || data.Form.Projected || data.Form.Status == pmc.FormNoData {
		t.Errorf("form = %+v", data.Form)
	}
	if data.WeekCount != 1 || data.WeekDistance != 10000 {
		t.Errorf("week = %d activities, %v m", data.WeekCount, data.WeekDistance)
	}
	if len(data.RecentActivities) != 1 || len(data.History) != 2 {
		t.Errorf("recent = %d, history = %d", len(data.RecentActivities), len(data.History))
	}
	if data.Weekly == nil || len(data.Weekly.Weeks) != MaxWeeks {
		t.Errorf("weekly = %+v", data.Weekly)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{300, "5:00"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.expected {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.expected)
			}
		})
	}
}

func TestFormatPace(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{90, "1:30"},
		{300, "5:00"},
		{359, "5:59"},
		{600, "10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatPace(tt.seconds); got != tt.expected {
				t.Errorf("FormatPace(%d) = %q, want %q", tt.seconds, got, tt.expected)
			}
		})
	}
}
