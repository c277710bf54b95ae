package service

import (
	"fmt"
	"time"

	"tricoach/internal/activity"
)

// SportTotals aggregates one discipline within a period
type SportTotals struct {
	Count          int
	DistanceMeters float64
	Seconds        int
	TSS            float64
}

// PeriodStats holds aggregated stats for a time period
type PeriodStats struct {
	PeriodStart time.Time
	PeriodLabel string
	Count       int
	TSS         float64
	Seconds     int
	BySport     map[activity.Sport]SportTotals
}

// GetPeriodStats returns aggregated stats by week or month, oldest first,
// ending with the period containing today.
func (q *QueryService) GetPeriodStats(periodType PeriodType, numPeriods int) ([]PeriodStats, error) {
	if numPeriods < 1 {
		return nil, fmt.Errorf("invalid number of periods: %d", numPeriods)
	}

	today := q.Today()
	stats := make([]PeriodStats, numPeriods)

	// Initialize periods
	currentMonday := getMonday(today)
	currentFirst := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < numPeriods; i++ {
		var periodStart time.Time
		var label string

		switch periodType {
		case PeriodWeekly:
			periodStart = currentMonday.AddDate(0, 0, -7*(numPeriods-1-i))
			label = periodStart.Format("Jan 02")
		case PeriodMonthly:
			periodStart = currentFirst.AddDate(0, -(numPeriods-1-i), 0)
			label = periodStart.Format("Jan 2006")
		default:
			return nil, fmt.Errorf("unknown period type %q", periodType)
		}

		stats[i] = PeriodStats{
			PeriodStart: periodStart,
			PeriodLabel: label,
			BySport:     make(map[activity.Sport]SportTotals),
		}
	}

	end := periodEnd(stats[numPeriods-1].PeriodStart, periodType)
	activities, err := q.store.ActivitiesBetween(stats[0].PeriodStart, end)
	if err != nil {
		return nil, err
	}

	// Aggregate activities into periods
	for _, a := range activities {
		idx := findPeriodIndex(a.StartTime, stats, periodType)
		if idx < 0 {
			continue
		}

		p := &stats[idx]
		p.Count++
		p.TSS += a.TSS
		p.Seconds += a.MovingSeconds

		totals := p.BySport[a.Sport]
		totals.Count++
		totals.DistanceMeters += a.DistanceMeters
		totals.Seconds += a.MovingSeconds
		totals.TSS += a.TSS
		p.BySport[a.Sport] = totals
	}

	return stats, nil
}

func periodEnd(start time.Time, periodType PeriodType) time.Time {
	if periodType == PeriodWeekly {
		return start.AddDate(0, 0, 7)
	}
	return start.AddDate(0, 1, 0)
}

// findPeriodIndex returns the index of the period that contains the given date
func findPeriodIndex(date time.Time, stats []PeriodStats, periodType PeriodType) int {
	for i := range stats {
		if !date.Before(stats[i].PeriodStart) && date.Before(periodEnd(stats[i].PeriodStart, periodType)) {
			return i
		}
	}
	return -1
}

// FormatDuration formats seconds as "H:MM:SS" or "M:SS"
func FormatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatPace formats a pace given in seconds as "M:SS"
func FormatPace(seconds int) string {
	mins := seconds / SecondsPerMinute
	secs := seconds % SecondsPerMinute
	return fmt.Sprintf("%d:%02d", mins, secs)
}
