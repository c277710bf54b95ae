package advisor

import (
	"context"
	"strings"
	"testing"

	"tricoach/internal/activity"
	"tricoach/internal/pmc"
)

func floatPtr(v float64) *float64 { return &v }

func TestRuleAdvisor_Analyze(t *testing.T) {
	tests := []struct {
		name     string
		in       Input
		contains []string
		excludes []string
	}{
		{
			name: "no load",
			in: Input{Record: &activity.Record{
				Title:   "Strength 45 min",
				Metrics: &activity.Metrics{TSSMethod: activity.TSSMethodNone},
			}},
			contains: []string{"No training load"},
			excludes: []string{"Form after"},
		},
		{
			name: "threshold ride with drift and form",
			in: Input{
				Record: &activity.Record{
					Title: "Ride 40.00 km",
					Metrics: &activity.Metrics{
						TSS:              95,
						TSSMethod:        activity.TSSMethodPower,
						IntensityFactor:  floatPtr(0.97),
						VariabilityIndex: floatPtr(1.12),
						HRDriftPct:       floatPtr(7.5),
						HRZones:          map[string]float64{"z1": 60, "z2": 300, "z3": 900, "z4": 1200, "z5": 20},
					},
				},
				Form: &pmc.Point{TSB: -15},
			},
			contains: []string{
				"Ride 40.00 km: TSS 95 from power.",
				"Intensity 0.97, threshold.",
				"surgy",
				"drifted 7.5%",
				"HR Z4",
				"Tired but building fitness",
			},
		},
		{
			name: "even easy run",
			in: Input{Record: &activity.Record{
				Title: "Run 8.00 km",
				Metrics: &activity.Metrics{
					TSS:               45,
					TSSMethod:         activity.TSSMethodPace,
					IntensityFactor:   floatPtr(0.7),
					HRDriftPct:        floatPtr(2),
					PaceConsistencyCV: floatPtr(3.1),
				},
			}},
			contains: []string{"from run pace", "recovery", "Pacing was even."},
			excludes: []string{"drifted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, err := RuleAdvisor{}.Analyze(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(note, s) {
					t.Errorf("note %q missing %q", note, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(note, s) {
					t.Errorf("note %q should not contain %q", note, s)
				}
			}
		})
	}
}

func TestRuleAdvisor_Errors(t *testing.T) {
	if _, err := (RuleAdvisor{}).Analyze(context.Background(), Input{}); err == nil {
		t.Error("expected error for missing record")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (RuleAdvisor{}).Analyze(ctx, Input{Record: &activity.Record{}}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestWeeklyNote(t *testing.T) {
	if note := WeeklyNote([]float64{300, 320}); !strings.Contains(note, "at least 3 weeks") {
		t.Errorf("short window note = %q", note)
	}
	// mean 300, stdev ~8.16, monotony ~36.7
	if note := WeeklyNote([]float64{290, 300, 310}); !strings.Contains(note, "monotonous") {
		t.Errorf("monotonous note = %q", note)
	}
	// mean 300, stdev ~245, monotony 1.22
	if note := WeeklyNote([]float64{100, 150, 650}); strings.Contains(note, "monotonous") {
		t.Errorf("varied note = %q", note)
	}
}
