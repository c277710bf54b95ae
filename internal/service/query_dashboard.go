package service

import (
	"time"

	"tricoach/internal/pmc"
	"tricoach/internal/store"
)

// DashboardData contains all data needed for the dashboard
type DashboardData struct {
	Form *Form

	// This week
	WeekCount    int
	WeekTSS      float64
	WeekDistance float64 // meters
	WeekTime     int     // seconds

	RecentActivities []store.Activity

	// For charts
	History []pmc.Point
	Weekly  *WeeklySummary
}

// GetDashboardData fetches all data needed for the dashboard
func (q *QueryService) GetDashboardData() (*DashboardData, error) {
	today := q.Today()
	data := &DashboardData{}

	form, err := q.CurrentForm(today)
	if err != nil {
		return nil, err
	}
	data.Form = form

	data.RecentActivities, err = q.store.ListActivities(RecentActivitiesLimit, 0)
	if err != nil {
		return nil, err
	}

	week, err := q.store.ActivitiesBetween(getMonday(today), today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	for _, a := range week {
		data.WeekCount++
		data.WeekTSS += a.TSS
		data.WeekDistance += a.DistanceMeters
		data.WeekTime += a.MovingSeconds
	}

	data.History, err = q.DailyHistory(today, HistoryDays)
	if err != nil {
		return nil, err
	}

	data.Weekly, err = q.WeeklySummary(today, MaxWeeks)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// getMonday returns the Monday of the week containing t, at midnight
func getMonday(t time.Time) time.Time {
	daysFromMonday := (int(t.Weekday()) + 6) % 7 // Monday = 0
	monday := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}
