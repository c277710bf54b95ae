package tui

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tricoach/internal/activity"
	"tricoach/internal/service"
)

var statsSports = []activity.Sport{activity.SportSwim, activity.SportBike, activity.SportRun}

// StatsModel is the period stats screen model
type StatsModel struct {
	queryService *service.QueryService
	units        Units
	stats        []service.PeriodStats
	periodType   service.PeriodType
	loading      bool
	err          error
	cursor       int
	offset       int
	pageSize     int
	total        int
}

// NewStatsModel creates a new stats model
func NewStatsModel(qs *service.QueryService, units Units) StatsModel {
	return StatsModel{
		queryService: qs,
		units:        units,
		periodType:   service.PeriodWeekly,
		loading:      true,
		pageSize:     15,
	}
}

// Init initializes the stats screen
func (m StatsModel) Init() tea.Cmd {
	return m.loadStats
}

type statsLoadedMsg struct {
	stats []service.PeriodStats
	err   error
}

func (m StatsModel) loadStats() tea.Msg {
	numPeriods := 104 // 2 years of weeks
	if m.periodType == service.PeriodMonthly {
		numPeriods = 36
	}

	stats, err := m.queryService.GetPeriodStats(m.periodType, numPeriods)
	return statsLoadedMsg{stats: stats, err: err}
}

// Update handles messages
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		m.loading = false
		m.err = msg.err
		// most recent first, empty periods hidden
		var withData []service.PeriodStats
		for _, s := range msg.stats {
			if s.Count > 0 {
				withData = append(withData, s)
			}
		}
		slices.Reverse(withData)
		m.stats = withData
		m.total = len(withData)
		m.cursor = 0
		m.offset = 0

	case tea.KeyMsg:
		switch msg.String() {
		case "w":
			if m.periodType != service.PeriodWeekly {
				m.periodType = service.PeriodWeekly
				m.loading = true
				return m, m.loadStats
			}
		case "m":
			if m.periodType != service.PeriodMonthly {
				m.periodType = service.PeriodMonthly
				m.loading = true
				return m, m.loadStats
			}
		case "r":
			m.loading = true
			return m, m.loadStats
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
			}
		case "down", "j":
			visible := m.visibleCount()
			if m.cursor < visible-1 {
				m.cursor++
			} else if m.offset+visible < m.total {
				m.offset += m.pageSize
				m.cursor = 0
			}
		case "pgup":
			if m.offset > 0 {
				m.offset = max(0, m.offset-m.pageSize)
				m.cursor = 0
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
			}
		}
	}
	return m, nil
}

func (m StatsModel) visibleCount() int {
	return min(m.pageSize, m.total-m.offset)
}

// View renders the stats screen
func (m StatsModel) View() string {
	if m.loading {
		return "\n  Loading stats..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	periodLabel := "Weekly"
	if m.periodType == service.PeriodMonthly {
		periodLabel = "Monthly"
	}

	if m.total == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			cardTitleStyle.Render(fmt.Sprintf("Period Stats (%s)", periodLabel)),
			"\n  No data available. Import some activities first.",
		)
	}

	var sections []string

	end := m.offset + m.visibleCount()
	title := cardTitleStyle.Render(fmt.Sprintf("Period Stats (%s) - %d-%d of %d", periodLabel, m.offset+1, end, m.total))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-12s  %5s  %6s  %8s  %10s  %10s  %10s",
		"Period", "Count", "TSS", "Time", "Swim", "Bike", "Run"))
	sections = append(sections, header)

	for i := m.offset; i < end; i++ {
		s := m.stats[i]

		cols := make([]any, 0, len(statsSports))
		for _, sport := range statsSports {
			cols = append(cols, m.sportCell(sport, s.BySport[sport]))
		}

		cursor := "  "
		if i-m.offset == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-12s  %5d  %6.0f  %8s  %10s  %10s  %10s",
			append([]any{cursor, s.PeriodLabel, s.Count, s.TSS, service.FormatDuration(s.Seconds)}, cols...)...)

		if i-m.offset == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("\n  w/m: weekly/monthly  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m StatsModel) sportCell(sport activity.Sport, t service.SportTotals) string {
	if t.Count == 0 {
		return "-"
	}
	return m.units.FormatDistance(sport, t.DistanceMeters)
}
