package service

const (
	// Time windows
	HistoryDays        = 90
	DefaultWeeks       = 4
	MaxWeeks           = 12
	DefaultStatPeriods = 12

	// Pagination limits
	RecentActivitiesLimit = 10

	// Seconds per minute for pace calculations
	SecondsPerMinute = 60
)

// PeriodType selects the bucket size for period statistics
type PeriodType string

const (
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)
