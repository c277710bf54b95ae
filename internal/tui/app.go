package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tricoach/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenActivities
	ScreenActivityDetail
	ScreenStats
	ScreenTaper
	ScreenImport
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	dashboard      DashboardModel
	activities     ActivitiesModel
	activityDetail ActivityDetailModel
	stats          StatsModel
	taper          TaperModel
	importScreen   ImportModel
	help           HelpModel

	queryService  *service.QueryService
	importService *service.ImportService
	units         Units
	exportDir     string

	width  int
	height int

	status string
}

// NewApp creates a new App with all dependencies. Parquet stream exports
// are written under exportDir.
func NewApp(ctx context.Context, qs *service.QueryService, is *service.ImportService, units Units, exportDir string) *App {
	return &App{
		screen:        ScreenDashboard,
		queryService:  qs,
		importService: is,
		units:         units,
		exportDir:     exportDir,
		dashboard:     NewDashboardModel(qs, units),
		activities:    NewActivitiesModel(qs, units),
		stats:         NewStatsModel(qs, units),
		taper:         NewTaperModel(qs, 0, 0),
		importScreen:  NewImportModel(ctx, is),
		help:          NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

type activityDeletedMsg struct {
	id  string
	err error
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		// the import path input gets every other key while focused
		if a.screen == ScreenImport && (a.importScreen.Capturing() || a.importScreen.importing) {
			break
		}

		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "1":
			a.screen = ScreenDashboard
			a.dashboard = NewDashboardModel(a.queryService, a.units)
			return a, a.dashboard.Init()
		case "2":
			a.screen = ScreenActivities
			return a, a.activities.Init()
		case "3":
			a.screen = ScreenStats
			return a, a.stats.Init()
		case "4":
			a.screen = ScreenTaper
			a.taper = NewTaperModel(a.queryService, a.width, a.height)
			return a, a.taper.Init()
		case "5":
			if a.screen != ScreenImport {
				a.screen = ScreenImport
				return a, a.importScreen.Init()
			}
		case "?":
			if a.screen != ScreenHelp {
				a.prevScreen = a.screen
				a.screen = ScreenHelp
			}
			return a, nil
		case "esc":
			switch a.screen {
			case ScreenHelp:
				a.screen = a.prevScreen
				return a, nil
			case ScreenActivityDetail:
				a.screen = ScreenActivities
				return a, a.activities.Init()
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case OpenActivityDetailMsg:
		a.status = ""
		a.screen = ScreenActivityDetail
		a.activityDetail = NewActivityDetailModel(a.queryService, a.units, a.exportDir, msg.ActivityID, a.width, a.height)
		return a, a.activityDetail.Init()

	case DeleteActivityMsg:
		return a, func() tea.Msg {
			return activityDeletedMsg{id: msg.ActivityID, err: a.importService.DeleteActivity(msg.ActivityID)}
		}

	case activityDeletedMsg:
		if msg.err != nil {
			a.status = errorStyle.Render(fmt.Sprintf("Delete failed: %v", msg.err))
		} else {
			a.status = successStyle.Render(fmt.Sprintf("Deleted %s, PMC recomputed", msg.id))
		}
		return a, a.activities.Init()

	case ImportCompleteMsg:
		a.status = successStyle.Render("Import finished. Press '1' for the updated dashboard")
		return a, nil
	}

	var cmd tea.Cmd
	var m tea.Model
	switch a.screen {
	case ScreenDashboard:
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenActivities:
		m, cmd = a.activities.Update(msg)
		a.activities = m.(ActivitiesModel)
	case ScreenActivityDetail:
		m, cmd = a.activityDetail.Update(msg)
		a.activityDetail = m.(ActivityDetailModel)
	case ScreenStats:
		m, cmd = a.stats.Update(msg)
		a.stats = m.(StatsModel)
	case ScreenTaper:
		m, cmd = a.taper.Update(msg)
		a.taper = m.(TaperModel)
	case ScreenImport:
		m, cmd = a.importScreen.Update(msg)
		a.importScreen = m.(ImportModel)
	case ScreenHelp:
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenActivities:
		content = a.activities.View()
	case ScreenActivityDetail:
		content = a.activityDetail.View()
	case ScreenStats:
		content = a.stats.View()
	case ScreenTaper:
		content = a.taper.View()
	case ScreenImport:
		content = a.importScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content, a.renderFooter())
}

func (a *App) renderHeader() string {
	return headerStyle.Render("tricoach - Triathlon Training Load")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Activities", ScreenActivities},
		{"3", "Stats", ScreenStats},
		{"4", "Taper", ScreenTaper},
		{"5", "Import", ScreenImport},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		active := a.screen == item.screen ||
			(item.screen == ScreenActivities && a.screen == ScreenActivityDetail)
		if active {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}
