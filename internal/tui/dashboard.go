package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"tricoach/internal/advisor"
	"tricoach/internal/service"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	units        Units
	data         *service.DashboardData
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService, units Units) DashboardModel {
	return DashboardModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.GetDashboardData()
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{data: data}
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil || len(m.data.RecentActivities) == 0 {
		return "\n  No activities yet. Press '5' to import FIT or TCX files."
	}

	var sections []string

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderFormCard(), "  ", m.renderWeekCard())
	sections = append(sections, topRow)

	if len(m.data.History) > 2 {
		sections = append(sections, m.renderChart())
	}

	sections = append(sections, m.renderWeeklyLoad())
	sections = append(sections, m.renderRecentActivities())

	help := statusStyle.Render("Press 'r' to refresh, '5' to import, '2' for activities list")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderFormCard() string {
	f := m.data.Form
	title := "Current Form"
	if f.Projected {
		title += " (projected)"
	}

	lines := []string{
		cardTitleStyle.Render(title),
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.1f", f.CTL), nil),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.1f", f.ATL), nil),
		RenderMetric("Form (TSB)", fmt.Sprintf("%+.1f", f.TSB), formColor(f.Status)),
		"",
		lipgloss.NewStyle().Foreground(formColor(f.Status)).Render(f.Status.Description()),
	}
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m DashboardModel) renderWeekCard() string {
	lines := []string{
		cardTitleStyle.Render("This Week"),
		RenderMetric("Sessions", fmt.Sprintf("%d", m.data.WeekCount), nil),
		RenderMetric("TSS", fmt.Sprintf("%.0f", m.data.WeekTSS), nil),
		RenderMetric("Distance", fmt.Sprintf("%.1f %s", m.weekDistance(), m.units.DistanceLabel()), nil),
		RenderMetric("Time", service.FormatDuration(m.data.WeekTime), nil),
	}
	return cardStyle.Width(34).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m DashboardModel) weekDistance() float64 {
	if m.units.IsMiles() {
		return m.data.WeekDistance / metersPerMile
	}
	return m.data.WeekDistance / metersPerKm
}

func (m DashboardModel) renderChart() string {
	title := cardTitleStyle.Render(fmt.Sprintf("Performance Management - last %d days", len(m.data.History)))

	ctl := make([]float64, len(m.data.History))
	atl := make([]float64, len(m.data.History))
	tsb := make([]float64, len(m.data.History))
	for i, p := range m.data.History {
		ctl[i], atl[i], tsb[i] = p.CTL, p.ATL, p.TSB
	}

	graph := asciigraph.PlotMany([][]float64{ctl, atl, tsb},
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
		asciigraph.SeriesLegends("CTL", "ATL", "TSB"),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderWeeklyLoad() string {
	w := m.data.Weekly
	if w == nil || len(w.Weeks) == 0 {
		return ""
	}

	weekly := make([]float64, len(w.Weeks))
	for i, wk := range w.Weeks {
		weekly[i] = wk.TSS
	}

	lines := []string{cardTitleStyle.Render(fmt.Sprintf("Weekly TSS - last %d weeks", len(w.Weeks)))}

	peak := 0.0
	for _, v := range weekly {
		peak = max(peak, v)
	}
	for _, wk := range w.Weeks {
		pct := 0.0
		if peak > 0 {
			pct = wk.TSS / peak
		}
		lines = append(lines, fmt.Sprintf("%s  %s %4.0f", wk.Start.Format("Jan 02"), RenderProgressBar(pct, 30), wk.TSS))
	}
	lines = append(lines, "", mutedStyle.Render(advisor.WeeklyNote(weekly)))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m DashboardModel) renderRecentActivities() string {
	title := cardTitleStyle.Render("Recent Activities")

	header := tableHeaderStyle.Render(fmt.Sprintf("%-8s  %-6s  %-24s  %9s  %8s  %5s",
		"Date", "Sport", "Title", "Distance", "Time", "TSS"))

	rows := []string{header}
	for i, a := range m.data.RecentActivities {
		if i >= 5 {
			break
		}
		sport := lipgloss.NewStyle().Foreground(sportColor(a.Sport)).Render(fmt.Sprintf("%-6s", a.Sport))
		row := tableRowStyle.Render(fmt.Sprintf("%-8s  %s  %-24s  %9s  %8s  %5.0f",
			a.StartTime.Local().Format("Jan 02"),
			sport,
			truncateName(a.Title, 24),
			m.units.FormatDistance(a.Sport, a.DistanceMeters),
			service.FormatDuration(a.MovingSeconds),
			a.TSS,
		))
		rows = append(rows, row)
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}
