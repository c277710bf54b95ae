package pmc

import (
	"sort"
	"time"
)

// DateLayout is the calendar-day format used for keys and display
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FillMissingDays returns one entry per day from start to end inclusive.
// Days absent from data get TSS 0; multiple entries for the same day are
// summed.
func FillMissingDays(data []DailyTSS, start, end time.Time) []DailyTSS {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil
	}

	byDay := make(map[time.Time]float64, len(data))
	for _, d := range data {
		byDay[Day(d.Date)] += d.TSS
	}

	var out []DailyTSS
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, DailyTSS{Date: d, TSS: byDay[d]})
	}
	return out
}

// Load is the TSS of a single activity at a point in time
type Load struct {
	Time time.Time
	TSS  float64
}

// SumByDay aggregates activity loads into daily totals, sorted by date.
// Only days with at least one activity are returned.
func SumByDay(loads []Load) []DailyTSS {
	byDay := make(map[time.Time]float64)
	var days []time.Time
	for _, l := range loads {
		d := Day(l.Time)
		if _, seen := byDay[d]; !seen {
			days = append(days, d)
		}
		byDay[d] += l.TSS
	}

	out := make([]DailyTSS, 0, len(days))
	for _, d := range days {
		out = append(out, DailyTSS{Date: d, TSS: byDay[d]})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Checkpoint is a resumable engine state: the state after folding Date
type Checkpoint struct {
	Date  time.Time `json:"date"`
	State State     `json:"state"`
}

// Resume returns an engine positioned at the checkpoint
func (c Checkpoint) Resume() *Engine {
	return New(c.State)
}
