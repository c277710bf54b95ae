package store

import (
	"errors"
	"testing"
	"time"

	"tricoach/internal/activity"
	"tricoach/internal/pmc"
)

// setupTestDB creates an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func testRecord(start time.Time, tss float64) *activity.Record {
	return &activity.Record{
		Sport:          activity.SportRun,
		Title:          "Run 10.00 km",
		Format:         activity.FormatFIT,
		StartTime:      start,
		ElapsedSeconds: 3100,
		TimerSeconds:   3000,
		MovingSeconds:  3000,
		DistanceMeters: 10000,
		HeartRate:      activity.HeartRate{Avg: intPtr(150), Max: intPtr(172)},
		Detail:         &activity.RunDetail{AvgPaceMinKm: floatPtr(5)},
		Metrics: &activity.Metrics{
			TSS:       tss,
			TSSMethod: activity.TSSMethodPace,
			TRIMP:     floatPtr(95.2),
		},
	}
}

func TestInsertAndGetActivity(t *testing.T) {
	db := setupTestDB(t)

	start := time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC)
	a := NewActivity("a1", "hash1", testRecord(start, 80))
	if err := db.InsertActivity(a); err != nil {
		t.Fatalf("InsertActivity failed: %v", err)
	}

	got, err := db.GetActivity("a1")
	if err != nil {
		t.Fatalf("GetActivity failed: %v", err)
	}
	if got.Sport != activity.SportRun {
		t.Errorf("Sport = %q, want run", got.Sport)
	}
	if !got.StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, start)
	}
	if got.TSS != 80 || got.TSSMethod != activity.TSSMethodPace {
		t.Errorf("TSS = %v (%s), want 80 (pace)", got.TSS, got.TSSMethod)
	}
	if got.AvgHR == nil || *got.AvgHR != 150 {
		t.Errorf("AvgHR = %v, want 150", got.AvgHR)
	}
	if got.AvgPower != nil {
		t.Errorf("AvgPower = %v, want nil", *got.AvgPower)
	}
	if got.Record == nil {
		t.Fatal("Record not decoded")
	}
	run := got.Record.Run()
	if run == nil || run.AvgPaceMinKm == nil || *run.AvgPaceMinKm != 5 {
		t.Errorf("run detail not preserved: %+v", got.Record.Detail)
	}
	if got.Record.Metrics == nil || got.Record.Metrics.TRIMP == nil {
		t.Error("metrics not preserved")
	}
}

func TestInsertActivity_Duplicate(t *testing.T) {
	db := setupTestDB(t)

	start := time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC)
	if err := db.InsertActivity(NewActivity("a1", "same", testRecord(start, 50))); err != nil {
		t.Fatalf("InsertActivity failed: %v", err)
	}
	err := db.InsertActivity(NewActivity("a2", "same", testRecord(start, 50)))
	if !errors.Is(err, ErrDuplicateActivity) {
		t.Errorf("expected ErrDuplicateActivity, got %v", err)
	}

	count, err := db.CountActivities()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("CountActivities = %d, want 1", count)
	}
}

func TestGetActivity_NotFound(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetActivity("missing"); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("expected ErrActivityNotFound, got %v", err)
	}
	if err := db.DeleteActivity("missing"); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("expected ErrActivityNotFound on delete, got %v", err)
	}
	if err := db.SetAIAnalysis("missing", "x"); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("expected ErrActivityNotFound on analysis, got %v", err)
	}
}

func TestListActivities_Order(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		a := NewActivity(id, "hash-"+id, testRecord(base.AddDate(0, 0, i), 40))
		if err := db.InsertActivity(a); err != nil {
			t.Fatalf("InsertActivity(%s) failed: %v", id, err)
		}
	}

	list, err := db.ListActivities(2, 0)
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d activities, want 2", len(list))
	}
	if list[0].ID != "c" || list[1].ID != "b" {
		t.Errorf("order = %s,%s, want c,b", list[0].ID, list[1].ID)
	}
	if list[0].Record != nil {
		t.Error("ListActivities should not decode records")
	}

	list, err = db.ListActivities(10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "a" {
		t.Errorf("offset page = %+v, want [a]", list)
	}
}

func TestActivityLoads(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, tss := range []float64{30, 60, 90} {
		id := string(rune('a' + i))
		if err := db.InsertActivity(NewActivity(id, id, testRecord(base.AddDate(0, 0, i), tss))); err != nil {
			t.Fatal(err)
		}
	}

	first, err := db.FirstActivityTime()
	if err != nil {
		t.Fatalf("FirstActivityTime failed: %v", err)
	}
	if !first.Equal(base) {
		t.Errorf("FirstActivityTime = %v, want %v", first, base)
	}

	loads, err := db.ActivityLoads(base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ActivityLoads failed: %v", err)
	}
	if len(loads) != 2 {
		t.Fatalf("got %d loads, want 2", len(loads))
	}
	if loads[0].TSS != 60 || loads[1].TSS != 90 {
		t.Errorf("loads = %+v", loads)
	}
}

func TestFirstActivityTime_Empty(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.FirstActivityTime(); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("expected ErrActivityNotFound, got %v", err)
	}
}

func TestSetAIAnalysis(t *testing.T) {
	db := setupTestDB(t)

	start := time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC)
	if err := db.InsertActivity(NewActivity("a1", "h", testRecord(start, 50))); err != nil {
		t.Fatal(err)
	}
	if err := db.SetAIAnalysis("a1", "Solid aerobic session."); err != nil {
		t.Fatalf("SetAIAnalysis failed: %v", err)
	}
	got, err := db.GetActivity("a1")
	if err != nil {
		t.Fatal(err)
	}
	if got.AIAnalysis == nil || *got.AIAnalysis != "Solid aerobic session." {
		t.Errorf("AIAnalysis = %v", got.AIAnalysis)
	}
}

func TestReplaceDailyMetrics(t *testing.T) {
	db := setupTestDB(t)

	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	initial := []pmc.Point{
		{Date: day(1), TSS: 100, CTL: 2.4, ATL: 14.3, TSB: -11.9},
		{Date: day(2), TSS: 0, CTL: 2.3, ATL: 12.2, TSB: -9.9},
		{Date: day(3), TSS: 0, CTL: 2.3, ATL: 10.5, TSB: -8.2},
	}
	if err := db.ReplaceDailyMetrics(day(1), initial); err != nil {
		t.Fatalf("ReplaceDailyMetrics failed: %v", err)
	}

	// Rewrite from day 2 onwards
	if err := db.ReplaceDailyMetrics(day(2), []pmc.Point{
		{Date: day(2), TSS: 50, CTL: 3.5, ATL: 19.4, TSB: -15.9},
	}); err != nil {
		t.Fatalf("ReplaceDailyMetrics failed: %v", err)
	}

	points, err := db.GetDailyMetrics(day(1), day(31))
	if err != nil {
		t.Fatalf("GetDailyMetrics failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].TSS != 100 || points[1].TSS != 50 {
		t.Errorf("points = %+v", points)
	}
	if !points[1].Date.Equal(day(2)) {
		t.Errorf("date = %v, want %v", points[1].Date, day(2))
	}

	latest, err := db.LatestDailyMetric()
	if err != nil {
		t.Fatal(err)
	}
	if !latest.Date.Equal(day(2)) {
		t.Errorf("LatestDailyMetric date = %v", latest.Date)
	}

	p, err := db.DailyMetricOn(day(1).Add(15 * time.Hour))
	if err != nil {
		t.Fatalf("DailyMetricOn failed: %v", err)
	}
	if p.CTL != 2.4 {
		t.Errorf("CTL = %v, want 2.4", p.CTL)
	}
	if _, err := db.DailyMetricOn(day(3)); !errors.Is(err, ErrNoDailyMetrics) {
		t.Errorf("expected ErrNoDailyMetrics, got %v", err)
	}
}

func TestLatestDailyMetric_Empty(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.LatestDailyMetric(); !errors.Is(err, ErrNoDailyMetrics) {
		t.Errorf("expected ErrNoDailyMetrics, got %v", err)
	}
}

func TestCheckpoint(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.GetCheckpoint(); !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("expected ErrNoCheckpoint, got %v", err)
	}

	cp := pmc.Checkpoint{
		Date:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		State: pmc.State{CTL: 45.123456, ATL: 60.987654},
	}
	if err := db.SaveCheckpoint(cp); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}
	cp.State.CTL = 46.5
	cp.Date = cp.Date.AddDate(0, 0, 1)
	if err := db.SaveCheckpoint(cp); err != nil {
		t.Fatalf("SaveCheckpoint (update) failed: %v", err)
	}

	got, err := db.GetCheckpoint()
	if err != nil {
		t.Fatal(err)
	}
	if got.State.CTL != 46.5 || got.State.ATL != 60.987654 {
		t.Errorf("state = %+v", got.State)
	}
	if !got.Date.Equal(cp.Date) {
		t.Errorf("date = %v, want %v", got.Date, cp.Date)
	}

	if err := db.ClearDailyMetrics(); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetCheckpoint(); !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("expected ErrNoCheckpoint after clear, got %v", err)
	}
}

func TestActivitiesBetween(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		if err := db.InsertActivity(NewActivity(id, id, testRecord(base.AddDate(0, 0, i), 10))); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ActivitiesBetween(base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("ActivitiesBetween failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Errorf("got %+v, want [b c]", got)
	}
}
