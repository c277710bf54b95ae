package pmc

import (
	"testing"
	"time"
)

func TestFillMissingDays(t *testing.T) {
	data := []DailyTSS{
		{Date: date(2024, 1, 1), TSS: 50},
		{Date: date(2024, 1, 5), TSS: 30},
	}

	got := FillMissingDays(data, date(2024, 1, 1), date(2024, 1, 5))
	want := []float64{50, 0, 0, 0, 30}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, tss := range want {
		if !got[i].Date.Equal(date(2024, 1, 1+i)) {
			t.Errorf("entry %d date = %v", i, got[i].Date)
		}
		if got[i].TSS != tss {
			t.Errorf("entry %d TSS = %v, want %v", i, got[i].TSS, tss)
		}
	}

	if _, err := New(State{}).CalculateHistory(got); err != nil {
		t.Errorf("filled series should be accepted: %v", err)
	}
}

func TestFillMissingDaysExtendsRange(t *testing.T) {
	data := []DailyTSS{{Date: date(2024, 1, 3), TSS: 40}}
	got := FillMissingDays(data, date(2024, 1, 1), date(2024, 1, 4))
	if len(got) != 4 || got[2].TSS != 40 || got[3].TSS != 0 {
		t.Errorf("FillMissingDays() = %+v", got)
	}

	if got := FillMissingDays(data, date(2024, 1, 5), date(2024, 1, 1)); got != nil {
		t.Errorf("reversed range = %+v, want nil", got)
	}
}

func TestSumByDay(t *testing.T) {
	loads := []Load{
		{Time: time.Date(2024, 2, 2, 18, 0, 0, 0, time.UTC), TSS: 40},
		{Time: time.Date(2024, 2, 1, 7, 0, 0, 0, time.UTC), TSS: 60},
		{Time: time.Date(2024, 2, 2, 6, 30, 0, 0, time.UTC), TSS: 25},
	}

	got := SumByDay(loads)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].Date.Equal(date(2024, 2, 1)) || got[0].TSS != 60 {
		t.Errorf("day 1 = %+v", got[0])
	}
	if !got[1].Date.Equal(date(2024, 2, 2)) || got[1].TSS != 65 {
		t.Errorf("day 2 = %+v, want brick day summed to 65", got[1])
	}
}

func TestDay(t *testing.T) {
	in := time.Date(2024, 7, 14, 23, 59, 0, 0, time.UTC)
	if got := Day(in); !got.Equal(date(2024, 7, 14)) {
		t.Errorf("Day() = %v", got)
	}
}
