package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		m.renderSection("Navigation", []keyHelp{
			{"1", "Dashboard"},
			{"2", "Activities list"},
			{"3", "Period stats"},
			{"4", "Taper projection"},
			{"5", "Import files"},
			{"?", "Help (this screen)"},
			{"q", "Quit"},
			{"esc", "Back / close help"},
		}),
		m.renderSection("Activities", []keyHelp{
			{"j / k", "Move cursor"},
			{"pgdn / pgup", "Next / previous page"},
			{"enter", "Open activity"},
			{"d", "Delete activity"},
			{"x", "Export streams to Parquet (detail view)"},
		}),
		m.renderSection("Taper", []keyHelp{
			{"h / l", "Move race day"},
			{"- / +", "Lower / raise taper intensity"},
		}),
		m.renderSection("Import", []keyHelp{
			{"enter", "Import the file or folder"},
			{"esc / i", "Leave / edit the path input"},
		}),
		m.renderMetricsHelp(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	lines := []string{"", sectionTitleStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	lines := []string{"", sectionTitleStyle.Render("Metrics Explained"), ""}

	metrics := []struct {
		name string
		desc string
	}{
		{"TSS", "Training stress score. One hour at threshold = 100."},
		{"IF (Intensity Factor)", "Effort relative to threshold power or pace."},
		{"VI (Variability Index)", "Normalized over average power. Above 1.05 = surgy."},
		{"EF (Efficiency Factor)", "Output per heartbeat. Higher = better aerobic fitness."},
		{"CTL (Fitness)", "42 day exponentially weighted TSS."},
		{"ATL (Fatigue)", "7 day exponentially weighted TSS."},
		{"TSB (Form)", "CTL - ATL. Positive = fresh, very negative = overreaching."},
		{"Monotony", "Weekly mean over standard deviation. Above 2 = too uniform."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+mutedStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
