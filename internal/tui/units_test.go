package tui

import (
	"testing"

	"tricoach/internal/activity"
	"tricoach/internal/config"
)

func TestUnitsFormatPace(t *testing.T) {
	km := NewUnits(config.DisplayConfig{DistanceUnit: "km", PaceUnit: "min/km"})
	mi := NewUnits(config.DisplayConfig{DistanceUnit: "mi", PaceUnit: "min/mi"})

	tests := []struct {
		name    string
		units   Units
		sport   activity.Sport
		seconds int
		meters  float64
		want    string
	}{
		{"run km", km, activity.SportRun, 3000, 10000, "5:00/km"},
		{"run mi", mi, activity.SportRun, 480, 1609.34, "8:00/mi"},
		{"swim", km, activity.SportSwim, 1800, 2000, "1:30/100m"},
		{"bike km", km, activity.SportBike, 3600, 30000, "30.0 km/h"},
		{"bike mi", mi, activity.SportBike, 3600, 32186.8, "20.0 mph"},
		{"no distance", km, activity.SportRun, 3000, 0, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.units.FormatPace(tt.sport, tt.seconds, tt.meters)
			if got != tt.want {
				t.Errorf("FormatPace() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnitsFormatDistance(t *testing.T) {
	km := NewUnits(config.DisplayConfig{DistanceUnit: "km"})

	if got := km.FormatDistance(activity.SportSwim, 1500); got != "1500 m" {
		t.Errorf("swim distance = %q", got)
	}
	if got := km.FormatDistance(activity.SportRun, 10500); got != "10.5 km" {
		t.Errorf("run distance = %q", got)
	}
	if got := km.FormatDistance(activity.SportStrength, 0); got != "-" {
		t.Errorf("empty distance = %q", got)
	}
}

func TestTruncateName(t *testing.T) {
	if got := truncateName("Morning Run", 20); got != "Morning Run" {
		t.Errorf("short name changed: %q", got)
	}
	if got := truncateName("Very Long Open Water Swim", 10); got != "Very Lo..." {
		t.Errorf("truncateName = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/athlete")

	tests := []struct {
		in, want string
	}{
		{"~/rides", "/home/athlete/rides"},
		{"~", "/home/athlete"},
		{"/data/run.fit", "/data/run.fit"},
		{"~other/x", "~other/x"},
	}
	for _, tt := range tests {
		if got := expandHome(tt.in); got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
