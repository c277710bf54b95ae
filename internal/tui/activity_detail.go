package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"tricoach/internal/activity"
	"tricoach/internal/analysis"
	"tricoach/internal/export"
	"tricoach/internal/service"
	"tricoach/internal/store"
)

// ActivityDetailModel is the activity detail screen model
type ActivityDetailModel struct {
	queryService *service.QueryService
	units        Units
	exportDir    string
	activityID   string
	detail       *store.Activity
	viewport     viewport.Model
	loading      bool
	err          error
	status       string
	width        int
	height       int
	ready        bool
}

// NewActivityDetailModel creates a new activity detail model. Stream
// exports are written to exportDir.
func NewActivityDetailModel(qs *service.QueryService, units Units, exportDir, activityID string, width, height int) ActivityDetailModel {
	m := ActivityDetailModel{
		queryService: qs,
		units:        units,
		exportDir:    exportDir,
		activityID:   activityID,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // header and footer
		m.ready = true
	}

	return m
}

// Init initializes the activity detail screen
func (m ActivityDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type activityDetailLoadedMsg struct {
	detail *store.Activity
	err    error
}

type streamsExportedMsg struct {
	path string
	err  error
}

func (m ActivityDetailModel) loadDetail() tea.Msg {
	detail, err := m.queryService.GetActivityDetail(m.activityID)
	return activityDetailLoadedMsg{detail: detail, err: err}
}

func (m ActivityDetailModel) exportStreams() tea.Msg {
	if err := os.MkdirAll(m.exportDir, 0755); err != nil {
		return streamsExportedMsg{err: err}
	}
	path := filepath.Join(m.exportDir, m.activityID+".parquet")
	err := export.WriteFile(path, m.activityID, m.detail.Record)
	return streamsExportedMsg{path: path, err: err}
}

// Update handles messages
func (m ActivityDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activityDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.detail = msg.detail
		if m.ready && m.detail != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case streamsExportedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Export failed: %v", msg.err))
		} else {
			m.status = successStyle.Render("Streams written to " + msg.path)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.detail != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadDetail
		case "x":
			if m.detail != nil && m.detail.Record != nil {
				return m, m.exportStreams
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the activity detail screen
func (m ActivityDetailModel) View() string {
	if m.loading {
		return "\n  Loading activity details..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll  x: export streams  r: refresh")
	if m.status != "" {
		footer = lipgloss.JoinVertical(lipgloss.Left, "  "+m.status, footer)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m ActivityDetailModel) renderContent() string {
	rec := m.detail.Record
	if rec == nil {
		return "No data"
	}

	sections := []string{m.renderHeader(), m.renderSummary()}

	if m.detail.AIAnalysis != nil && *m.detail.AIAnalysis != "" {
		sections = append(sections, m.renderAnalysis())
	}
	if len(rec.Laps) > 0 {
		sections = append(sections, m.renderLaps())
	}
	if rec.Metrics != nil {
		if len(rec.Metrics.HRZones) > 0 {
			sections = append(sections, renderZones("Heart Rate Zones", rec.Metrics.HRZones, 5))
		}
		if len(rec.Metrics.PowerZones) > 0 {
			sections = append(sections, renderZones("Power Zones", rec.Metrics.PowerZones, 7))
		}
	}
	if rec.Sport == activity.SportRun && len(rec.Streams.Pace) > 5 {
		pace := m.units.ConvertPaceData(analysis.StreamValues(rec.Streams.Pace))
		sections = append(sections, renderChart(fmt.Sprintf("Pace Over Time (%s)", m.units.PaceLabel()), pace))
	}
	if len(rec.Streams.HeartRate) > 5 {
		sections = append(sections, renderChart("Heart Rate Over Time (bpm)", analysis.StreamValues(rec.Streams.HeartRate)))
	}
	if len(rec.Streams.Power) > 5 {
		sections = append(sections, renderChart("Power Over Time (W)", analysis.StreamValues(rec.Streams.Power)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ActivityDetailModel) renderHeader() string {
	a := m.detail
	title := cardTitleStyle.Render(a.Title)

	date := a.StartTime.Local().Format("Monday, January 2, 2006 at 3:04 PM")
	subtitle := mutedStyle.Render(fmt.Sprintf("%s  •  %s file", date, strings.ToUpper(string(a.Format))))

	stats := fmt.Sprintf("%s  •  %s  •  %s",
		m.units.FormatDistance(a.Sport, a.DistanceMeters),
		service.FormatDuration(a.MovingSeconds),
		m.units.FormatPace(a.Sport, a.MovingSeconds, a.DistanceMeters),
	)
	statsLine := lipgloss.NewStyle().Foreground(sportColor(a.Sport)).Bold(true).Render(stats)

	return lipgloss.JoinVertical(lipgloss.Left, "", title, subtitle, statsLine, "")
}

func (m ActivityDetailModel) renderSummary() string {
	rec := m.detail.Record
	lines := []string{sectionTitleStyle.Render("Training Load")}

	add := func(label, value string) {
		lines = append(lines, fmt.Sprintf("  %-22s%s", label+":", value))
	}

	if met := rec.Metrics; met != nil {
		add("TSS", fmt.Sprintf("%.1f (%s)", met.TSS, met.TSSMethod))
		add("Intensity Factor", optFloat(met.IntensityFactor, "%.2f"))
		add("Variability Index", optFloat(met.VariabilityIndex, "%.2f"))
		add("TRIMP", optFloat(met.TRIMP, "%.0f"))
		add("Efficiency Factor", optFloat(met.EfficiencyFactor, "%.2f"))
		add("HR Drift", optFloat(met.HRDriftPct, "%.1f%%"))
		if rec.Sport == activity.SportRun {
			add("Pace Variation (CV)", optFloat(met.PaceConsistencyCV, "%.1f%%"))
		}
	}

	lines = append(lines, "", sectionTitleStyle.Render("Summary"))
	add("Average HR", optInt(rec.HeartRate.Avg, "%d bpm"))
	add("Max HR", optInt(rec.HeartRate.Max, "%d bpm"))
	if p := rec.Power; p != nil {
		add("Average Power", optInt(p.Avg, "%d W"))
		add("Normalized Power", optInt(p.Normalized, "%d W"))
	}
	if rec.AscentMeters != nil {
		add("Ascent", optFloat(rec.AscentMeters, "%.0f m"))
	}
	if rec.Calories != nil {
		add("Calories", optInt(rec.Calories, "%d kcal"))
	}
	if rec.AerobicTE != nil {
		add("Training Effect", fmt.Sprintf("%s aerobic, %s anaerobic",
			optFloat(rec.AerobicTE, "%.1f"), optFloat(rec.AnaerobicTE, "%.1f")))
	}

	switch d := rec.Detail.(type) {
	case *activity.RunDetail:
		add("Average Cadence", optInt(d.AvgCadenceSPM, "%d spm"))
		if d.GroundContactMs != nil {
			add("Ground Contact", optFloat(d.GroundContactMs, "%.0f ms"))
		}
	case *activity.BikeDetail:
		add("Average Cadence", optInt(d.AvgCadenceRPM, "%d rpm"))
	case *activity.SwimDetail:
		add("Pool Length", optFloat(d.PoolLengthMeters, "%.0f m"))
		add("Lengths", optInt(d.NumLengths, "%d"))
		add("Stroke Rate", optInt(d.AvgStrokeRate, "%d spm"))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m ActivityDetailModel) renderAnalysis() string {
	lines := []string{sectionTitleStyle.Render("Coach Notes")}
	for _, line := range strings.Split(*m.detail.AIAnalysis, "\n") {
		lines = append(lines, "  "+line)
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m ActivityDetailModel) renderLaps() string {
	rec := m.detail.Record
	lines := []string{sectionTitleStyle.Render("Laps")}

	header := fmt.Sprintf("  %-4s  %9s  %8s  %11s  %5s  %6s", "Lap", "Distance", "Time", "Pace", "HR", "Power")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	for _, lap := range rec.Laps {
		secs := int(lap.DurationSeconds)
		lines = append(lines, fmt.Sprintf("  %-4d  %9s  %8s  %11s  %5s  %6s",
			lap.Index,
			m.units.FormatDistance(rec.Sport, lap.DistanceMeters),
			service.FormatDuration(secs),
			m.units.FormatPace(rec.Sport, secs, lap.DistanceMeters),
			optInt(lap.AvgHR, "%d"),
			optInt(lap.AvgPower, "%d"),
		))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

var zoneColors = []lipgloss.Color{
	lipgloss.Color("#10B981"), // recovery
	lipgloss.Color("#3B82F6"), // endurance
	lipgloss.Color("#F59E0B"), // tempo
	lipgloss.Color("#EF4444"), // threshold
	lipgloss.Color("#9333EA"), // VO2max
	lipgloss.Color("#DB2777"),
	lipgloss.Color("#7F1D1D"),
}

func renderZones(title string, zones map[string]float64, n int) string {
	lines := []string{sectionTitleStyle.Render(title)}

	var total float64
	for _, s := range zones {
		total += s
	}
	if total <= 0 {
		return ""
	}

	const maxBarWidth = 30
	for i := 1; i <= n; i++ {
		secs := zones[fmt.Sprintf("z%d", i)]
		pct := secs / total * 100
		barWidth := int(pct / 100 * maxBarWidth)
		if barWidth < 1 && secs > 0 {
			barWidth = 1
		}
		bar := lipgloss.NewStyle().Foreground(zoneColors[(i-1)%len(zoneColors)]).Render(strings.Repeat("█", barWidth))
		pad := strings.Repeat(" ", maxBarWidth-barWidth)
		lines = append(lines, fmt.Sprintf("  Z%d %s%s %5.1f%% (%s)", i, bar, pad, pct, service.FormatDuration(int(secs))))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func renderChart(title string, data []float64) string {
	lines := []string{sectionTitleStyle.Render(title)}

	data = downsample(data, 60)
	if len(data) > 2 {
		lines = append(lines, asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(60),
		))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// downsample averages data into targetLen buckets
func downsample(data []float64, targetLen int) []float64 {
	if len(data) <= targetLen {
		return data
	}

	result := make([]float64, targetLen)
	ratio := float64(len(data)) / float64(targetLen)

	for i := 0; i < targetLen; i++ {
		start := int(float64(i) * ratio)
		end := min(int(float64(i+1)*ratio), len(data))

		sum := 0.0
		for j := start; j < end; j++ {
			sum += data[j]
		}
		if end > start {
			result[i] = sum / float64(end-start)
		}
	}

	return result
}

func optFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func optInt(v *int, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
