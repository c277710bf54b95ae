package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tricoach/internal/service"
)

// ImportModel is the file import screen model
type ImportModel struct {
	ctx           context.Context
	importService *service.ImportService
	input         textinput.Model
	importing     bool
	progress      service.ImportProgress
	progressCh    <-chan service.ImportProgress
	doneCh        <-chan ImportDoneMsg
	result        *service.ImportSummary
	err           error
	done          bool
}

// NewImportModel creates a new import model
func NewImportModel(ctx context.Context, is *service.ImportService) ImportModel {
	ti := textinput.New()
	ti.Placeholder = "~/Downloads/activities or a .fit/.tcx file"
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	return ImportModel{
		ctx:           ctx,
		importService: is,
		input:         ti,
	}
}

// Init initializes the import screen
func (m ImportModel) Init() tea.Cmd {
	return textinput.Blink
}

// Capturing reports whether typed keys belong to the path input
func (m ImportModel) Capturing() bool {
	return m.input.Focused() && !m.importing
}

type importStartedMsg struct {
	progress <-chan service.ImportProgress
	done     <-chan ImportDoneMsg
}

type importProgressMsg service.ImportProgress

// ImportDoneMsg is sent when an import batch finishes
type ImportDoneMsg struct {
	Summary *service.ImportSummary
	Err     error
}

// ImportCompleteMsg tells the app that stored data changed
type ImportCompleteMsg struct{}

// Update handles messages
func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case importStartedMsg:
		m.progressCh = msg.progress
		m.doneCh = msg.done
		return m, waitForImport(m.progressCh, m.doneCh)

	case importProgressMsg:
		m.progress = service.ImportProgress(msg)
		return m, waitForImport(m.progressCh, m.doneCh)

	case ImportDoneMsg:
		m.importing = false
		m.done = true
		m.result = msg.Summary
		m.err = msg.Err
		m.input.Focus()
		return m, func() tea.Msg { return ImportCompleteMsg{} }

	case tea.KeyMsg:
		if m.importing {
			return m, nil
		}
		if !m.input.Focused() {
			if k := msg.String(); k == "i" || k == "enter" {
				m.input.Focus()
				return m, textinput.Blink
			}
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m.input.Blur()
			return m, nil
		case "enter":
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				return m, nil
			}
			m.importing = true
			m.done = false
			m.err = nil
			m.result = nil
			m.progress = service.ImportProgress{}
			m.input.Blur()
			return m, m.startImport(expandHome(path))
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ImportModel) startImport(path string) tea.Cmd {
	return func() tea.Msg {
		files, err := service.CollectFiles([]string{path})
		if err != nil {
			return ImportDoneMsg{Err: err}
		}
		if len(files) == 0 {
			return ImportDoneMsg{Err: fmt.Errorf("no .fit or .tcx files under %s", path)}
		}

		progress := make(chan service.ImportProgress, 16)
		done := make(chan ImportDoneMsg, 1)
		go func() {
			summary, err := m.importService.ImportFiles(m.ctx, files, progress)
			done <- ImportDoneMsg{Summary: summary, Err: err}
		}()
		return importStartedMsg{progress: progress, done: done}
	}
}

// waitForImport relays the next progress update, or the final result once
// the progress channel is closed
func waitForImport(progress <-chan service.ImportProgress, done <-chan ImportDoneMsg) tea.Cmd {
	return func() tea.Msg {
		if p, ok := <-progress; ok {
			return importProgressMsg(p)
		}
		return <-done
	}
}

// View renders the import screen
func (m ImportModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Import Activities"),
		"  Path to a FIT/TCX file or a folder of them:",
		"  " + m.input.View(),
	}

	switch {
	case m.importing:
		sections = append(sections, m.renderProgress())
	case m.err != nil:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		if m.result != nil {
			sections = append(sections, m.renderSummary())
		}
	case m.done:
		sections = append(sections, successStyle.Render("\n  Import complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, statusStyle.Render("  Press '1' to go to dashboard"))
	default:
		if m.input.Focused() {
			sections = append(sections, statusStyle.Render("  Press Enter to import, esc to leave the input"))
		} else {
			sections = append(sections, statusStyle.Render("  Press 'i' to edit the path"))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ImportModel) renderProgress() string {
	p := m.progress
	lines := []string{""}

	switch p.Phase {
	case "pmc":
		lines = append(lines, "  Updating fitness and fatigue...")
	case "":
		lines = append(lines, "  Scanning files...")
	default:
		pct := 0.0
		if p.Total > 0 {
			pct = float64(p.Completed) / float64(p.Total)
		}
		lines = append(lines,
			fmt.Sprintf("  Importing %d of %d: %s", p.Completed+1, p.Total, p.Current),
			"  "+RenderProgressBar(pct, 40),
		)
	}

	return strings.Join(lines, "\n")
}

func (m ImportModel) renderSummary() string {
	r := m.result
	if r == nil {
		return ""
	}

	lines := []string{""}
	if n := len(r.Imported); n > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d activities imported", n)))
		for _, a := range r.Imported {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("    %s  %-30s  TSS %.0f",
				a.StartTime.Local().Format("Jan 02"), truncateName(a.Title, 30), a.TSS)))
		}
	} else {
		lines = append(lines, statusStyle.Render("  No new activities"))
	}

	if r.Duplicates > 0 {
		lines = append(lines, statusStyle.Render(fmt.Sprintf("  %d duplicates skipped", r.Duplicates)))
	}

	if r.PMC != nil && r.PMC.Days > 0 {
		mode := "full"
		if r.PMC.Incremental {
			mode = "incremental"
		}
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  PMC updated (%s, %d days)", mode, r.PMC.Days)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "", warningStyle.Render(fmt.Sprintf("  %d files failed", len(r.Errors))))
		for _, err := range r.Errors {
			lines = append(lines, errorStyle.Render("    "+err.Error()))
		}
	}

	return strings.Join(lines, "\n")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
