package analysis

import (
	"math"
	"testing"

	"tricoach/internal/activity"
)

func TestHRDrift(t *testing.T) {
	tests := []struct {
		name     string
		hr       []activity.Sample
		expected float64
		wantOK   bool
	}{
		{
			name:     "rising second half",
			hr:       samples(140, 140, 140, 140, 140, 154, 154, 154, 154, 154),
			expected: 10.0,
			wantOK:   true,
		},
		{
			name:     "steady",
			hr:       samples(150, 150, 150, 150, 150, 150, 150, 150, 150, 150, 150),
			expected: 0,
			wantOK:   true,
		},
		{
			name:     "falling",
			hr:       samples(160, 160, 160, 160, 160, 144, 144, 144, 144, 144),
			expected: -10.0,
			wantOK:   true,
		},
		{
			name:   "too short",
			hr:     samples(140, 140, 140, 140, 140, 150, 150, 150, 150),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HRDrift(tt.hr)
			if ok != tt.wantOK {
				t.Fatalf("HRDrift() ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(got-tt.expected) > 0.05 {
				t.Errorf("HRDrift() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPaceConsistency(t *testing.T) {
	tests := []struct {
		name     string
		pace     []activity.Sample
		expected float64
		wantOK   bool
	}{
		{"perfectly even", samples(5, 5, 5, 5, 5), 0, true},
		{"alternating", samples(4, 6, 4, 6, 4, 6), 20.0, true},
		{"stops filtered", samples(5, 5, 5, 5, 5, 30, 0.5), 0, true},
		{"too few plausible", samples(5, 5, 5, 5, 30, 40), 0, false},
		{"too short", samples(5, 5, 5, 5), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PaceConsistency(tt.pace)
			if ok != tt.wantOK {
				t.Fatalf("PaceConsistency() ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(got-tt.expected) > 0.05 {
				t.Errorf("PaceConsistency() = %v, want %v", got, tt.expected)
			}
		})
	}
}
