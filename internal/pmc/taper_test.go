package pmc

import (
	"errors"
	"testing"
)

func TestProjectTaper(t *testing.T) {
	current := State{CTL: 80, ATL: 70}
	from := date(2024, 5, 1)

	proj, err := ProjectTaper(current, 14, 0.5, from)
	if err != nil {
		t.Fatalf("ProjectTaper: %v", err)
	}
	if len(proj.Days) != 14 {
		t.Fatalf("len = %d, want 14", len(proj.Days))
	}

	day1 := proj.Days[0]
	if day1.ProjectedTSS != 40 {
		t.Errorf("day 1 TSS = %v, want 40", day1.ProjectedTSS)
	}
	if !day1.Date.Equal(date(2024, 5, 2)) {
		t.Errorf("day 1 date = %v, want 2024-05-02", day1.Date)
	}
	if proj.Days[6].ProjectedTSS != 40 {
		t.Errorf("day 7 TSS = %v, want 40", proj.Days[6].ProjectedTSS)
	}
	if proj.Days[7].ProjectedTSS != 20 {
		t.Errorf("day 8 TSS = %v, want 20", proj.Days[7].ProjectedTSS)
	}

	last := proj.Days[13]
	if last.TSB <= day1.TSB {
		t.Errorf("day 14 TSB %v should be fresher than day 1 TSB %v", last.TSB, day1.TSB)
	}
	if day1.TSB != 13.3 || last.TSB != 35.2 {
		t.Errorf("TSB day1/day14 = %v/%v, want 13.3/35.2", day1.TSB, last.TSB)
	}
	if proj.RaceDayForm != FormVeryFresh {
		t.Errorf("RaceDayForm = %q, want very_fresh", proj.RaceDayForm)
	}

	if current != (State{CTL: 80, ATL: 70}) {
		t.Error("ProjectTaper must not modify the current state")
	}
}

func TestProjectTaperUsesUnroundedLoad(t *testing.T) {
	proj, err := ProjectTaper(State{CTL: 81.3, ATL: 70}, 1, 0.5, date(2024, 5, 1))
	if err != nil {
		t.Fatalf("ProjectTaper: %v", err)
	}

	day := proj.Days[0]
	if day.ProjectedTSS != 41 {
		t.Errorf("ProjectedTSS = %v, want 41", day.ProjectedTSS)
	}
	// 40.65 feeds the update, not 41
	if day.ATL != 65.8 {
		t.Errorf("ATL = %v, want 65.8", day.ATL)
	}
	if day.CTL != 80.3 {
		t.Errorf("CTL = %v, want 80.3", day.CTL)
	}
}

func TestProjectTaperValidation(t *testing.T) {
	tests := []struct {
		name      string
		days      int
		intensity float64
		wantErr   error
	}{
		{"zero days", 0, 0.5, ErrInvalidDays},
		{"intensity too low", 7, 0.05, ErrInvalidIntensity},
		{"intensity too high", 7, 1.2, ErrInvalidIntensity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProjectTaper(State{CTL: 50, ATL: 50}, tt.days, tt.intensity, date(2024, 1, 1))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProjectRest(t *testing.T) {
	got := ProjectRest(State{CTL: 50, ATL: 80}, 5)
	if got.CTL >= 50 || got.ATL >= 80 {
		t.Errorf("ProjectRest() = %+v, loads should decay", got)
	}
	if got.TSB() <= -30 {
		t.Errorf("TSB = %v, should rise from -30 during rest", got.TSB())
	}
}

func TestFormStatusFor(t *testing.T) {
	tests := []struct {
		tsb  float64
		want FormStatus
	}{
		{30, FormVeryFresh},
		{25, FormFresh},
		{10.1, FormFresh},
		{10, FormNeutral},
		{0, FormNeutral},
		{-10, FormTired},
		{-19.9, FormTired},
		{-20, FormOverreaching},
		{-45, FormOverreaching},
	}
	for _, tt := range tests {
		if got := FormStatusFor(tt.tsb); got != tt.want {
			t.Errorf("FormStatusFor(%v) = %q, want %q", tt.tsb, got, tt.want)
		}
	}
}
