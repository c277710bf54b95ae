package advisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"tricoach/internal/activity"
	"tricoach/internal/pmc"
	"tricoach/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedAdvisor struct {
	note string
	err  error
}

func (f fixedAdvisor) Analyze(ctx context.Context, in Input) (string, error) {
	return f.note, f.err
}

func setupStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rec := &activity.Record{
		Sport:     activity.SportRun,
		Title:     "Run 5.00 km",
		Format:    activity.FormatTCX,
		StartTime: time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC),
		Metrics:   &activity.Metrics{TSS: 40, TSSMethod: activity.TSSMethodPace},
	}
	if err := db.InsertActivity(store.NewActivity("act-1", "hash-1", rec)); err != nil {
		t.Fatalf("InsertActivity failed: %v", err)
	}
	return db
}

func TestDispatcher_ProcessesQueue(t *testing.T) {
	db := setupStore(t)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := db.ReplaceDailyMetrics(day, []pmc.Point{{Date: day, TSS: 40, CTL: 1, ATL: 5.7, TSB: -4.7}}); err != nil {
		t.Fatal(err)
	}

	d := NewDispatcher(RuleAdvisor{}, db, 4, testLogger())
	if !d.Enqueue("act-1") {
		t.Fatal("Enqueue rejected")
	}
	if !d.Enqueue("missing") {
		t.Fatal("Enqueue rejected")
	}
	d.Close()
	d.Run(context.Background())

	a, err := db.GetActivity("act-1")
	if err != nil {
		t.Fatal(err)
	}
	if a.AIAnalysis == nil || *a.AIAnalysis == "" {
		t.Fatal("analysis not stored")
	}
	if d.Enqueue("act-1") {
		t.Error("Enqueue after Close should be rejected")
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	db := setupStore(t)

	d := NewDispatcher(fixedAdvisor{note: "x"}, db, 1, testLogger())
	if !d.Enqueue("act-1") {
		t.Fatal("first Enqueue rejected")
	}
	if d.Enqueue("act-1") {
		t.Error("second Enqueue should be dropped")
	}
	if d.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", d.Dropped())
	}
}

func TestDispatcher_AdvisorError(t *testing.T) {
	db := setupStore(t)

	d := NewDispatcher(fixedAdvisor{err: errors.New("offline")}, db, 1, testLogger())
	d.Enqueue("act-1")
	d.Close()
	d.Run(context.Background())

	a, err := db.GetActivity("act-1")
	if err != nil {
		t.Fatal(err)
	}
	if a.AIAnalysis != nil {
		t.Errorf("analysis = %q, want none", *a.AIAnalysis)
	}
}

func TestDispatcher_StopsOnCancel(t *testing.T) {
	db := setupStore(t)
	d := NewDispatcher(RuleAdvisor{}, db, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
