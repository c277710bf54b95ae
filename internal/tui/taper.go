package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"tricoach/internal/pmc"
	"tricoach/internal/service"
)

const (
	defaultTaperDays      = 14
	maxTaperDays          = 60
	defaultTaperIntensity = 0.5
	taperIntensityStep    = 0.05
)

// TaperModel projects form forward to a race day under a reduced load
type TaperModel struct {
	queryService *service.QueryService
	days         int
	intensity    float64
	projection   *pmc.Projection
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewTaperModel creates a new taper projection model
func NewTaperModel(qs *service.QueryService, width, height int) TaperModel {
	m := TaperModel{
		queryService: qs,
		days:         defaultTaperDays,
		intensity:    defaultTaperIntensity,
		loading:      true,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init initializes the taper screen
func (m TaperModel) Init() tea.Cmd {
	return m.loadProjection
}

type taperLoadedMsg struct {
	projection *pmc.Projection
	err        error
}

func (m TaperModel) loadProjection() tea.Msg {
	today := m.queryService.Today()
	p, err := m.queryService.ProjectTaper(today, today.AddDate(0, 0, m.days), m.intensity)
	return taperLoadedMsg{projection: p, err: err}
}

// Update handles messages
func (m TaperModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taperLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.projection = msg.projection
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.projection != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		days, intensity := m.days, m.intensity
		switch msg.String() {
		case "left", "h":
			days = max(1, days-1)
		case "right", "l":
			days = min(maxTaperDays, days+1)
		case "-":
			intensity = math.Max(pmc.MinTaperIntensity, intensity-taperIntensityStep)
		case "+", "=":
			intensity = math.Min(pmc.MaxTaperIntensity, intensity+taperIntensityStep)
		case "r":
			m.loading = true
			return m, m.loadProjection
		}
		if days != m.days || intensity != m.intensity {
			m.days = days
			m.intensity = math.Round(intensity*100) / 100
			m.loading = true
			return m, m.loadProjection
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the taper screen
func (m TaperModel) View() string {
	if m.loading {
		return "\n  Projecting taper..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  h/l: race day -/+1  -/+: intensity  j/k: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m TaperModel) renderContent() string {
	p := m.projection
	if p == nil || len(p.Days) == 0 {
		return "No projection available"
	}

	race := p.Days[len(p.Days)-1]
	sections := []string{
		"",
		cardTitleStyle.Render("Taper Projection"),
		RenderMetric("Race day", fmt.Sprintf("%s (in %d days)", race.Date.Format("Mon Jan 02"), m.days), nil),
		RenderMetric("Taper intensity", fmt.Sprintf("%.0f%% of CTL", m.intensity*100), nil),
		RenderMetric("Race day form", fmt.Sprintf("TSB %+.1f", race.TSB), formColor(p.RaceDayForm)),
		"  " + lipgloss.NewStyle().Foreground(formColor(p.RaceDayForm)).Render(p.RaceDayForm.Description()),
		"",
	}

	ctl := make([]float64, len(p.Days))
	atl := make([]float64, len(p.Days))
	tsb := make([]float64, len(p.Days))
	for i, d := range p.Days {
		ctl[i], atl[i], tsb[i] = d.CTL, d.ATL, d.TSB
	}
	if len(p.Days) > 2 {
		sections = append(sections, asciigraph.PlotMany([][]float64{ctl, atl, tsb},
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Precision(0),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
			asciigraph.SeriesLegends("CTL", "ATL", "TSB"),
		), "")
	}

	sections = append(sections, m.renderTable())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m TaperModel) renderTable() string {
	lines := []string{
		sectionTitleStyle.Render("Day by Day"),
		lipgloss.NewStyle().Foreground(primaryColor).Render(
			fmt.Sprintf("  %-4s  %-10s  %5s  %6s  %6s  %6s", "Day", "Date", "TSS", "CTL", "ATL", "TSB")),
	}
	for _, d := range m.projection.Days {
		row := fmt.Sprintf("  %-4d  %-10s  %5.0f  %6.1f  %6.1f  %+6.1f",
			d.DayOffset, d.Date.Format("Mon Jan 02"), d.ProjectedTSS, d.CTL, d.ATL, d.TSB)
		lines = append(lines, lipgloss.NewStyle().Foreground(formColor(pmc.FormStatusFor(d.TSB))).Render(row))
	}
	return strings.Join(lines, "\n")
}
