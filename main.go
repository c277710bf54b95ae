package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tricoach/internal/advisor"
	"tricoach/internal/config"
	"tricoach/internal/export"
	"tricoach/internal/pmc"
	"tricoach/internal/service"
	"tricoach/internal/store"
	"tricoach/internal/tui"
)

const usage = `Usage: tricoach <command> [flags]

Commands:
  import <file|dir>...                  import FIT/TCX files and update the PMC
  delete <activity-id>                  delete an activity and update the PMC
  recalc                                recompute the whole PMC
  form                                  show today's fitness, fatigue and form
  history [-days N]                     show daily PMC rows
  project -target YYYY-MM-DD [-intensity F]
                                        project a taper to race day
  weekly [-weeks N]                     weekly TSS with monotony and strain
  export -id ID [-out FILE]             write an activity's streams to Parquet
  tui                                   start the terminal dashboard (default)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds everything a command needs
type app struct {
	cfg        *config.Config
	db         *store.DB
	log        *slog.Logger
	dispatcher *advisor.Dispatcher
	importSvc  *service.ImportService
	querySvc   *service.QueryService
}

func run(args []string) error {
	cmd := "tui"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Print(usage)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// the dashboard owns the terminal, so its logs go to a file
	logOut := io.Writer(os.Stderr)
	if cmd == "tui" {
		f, err := openLogFile()
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	dbPath := cfg.Storage.DBPath
	if dbPath == "" {
		if dbPath, err = store.DefaultPath(); err != nil {
			return err
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	a := &app{
		cfg:      cfg,
		db:       db,
		log:      log,
		querySvc: service.NewQueryService(db),
	}

	var wg sync.WaitGroup
	if cfg.Advisor.Enabled {
		a.dispatcher = advisor.NewDispatcher(advisor.RuleAdvisor{}, db, cfg.Advisor.QueueSize, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.dispatcher.Run(ctx)
		}()
		// drain queued notes before the database closes
		defer wg.Wait()
		defer a.dispatcher.Close()
	}
	a.importSvc = service.NewImportService(db, cfg.Athlete.Thresholds(), a.dispatcher, log)

	switch cmd {
	case "import":
		return a.runImport(ctx, args)
	case "delete":
		return a.runDelete(args)
	case "recalc":
		return a.runRecalc()
	case "form":
		return a.runForm()
	case "history":
		return a.runHistory(args)
	case "project":
		return a.runProject(args)
	case "weekly":
		return a.runWeekly(args)
	case "export":
		return a.runExport(args)
	case "tui":
		return a.runTUI(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// loadConfig reads the config file, falling back to defaults plus
// environment overrides when none exists yet
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		def := config.DefaultConfig()
		cfg = &def
		config.ApplyEnvOverrides(cfg)
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Fprintf(os.Stderr, "No config file found; using defaults. Edit %s/config.json to set your thresholds.\n", configDir)
	} else if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		return nil, fmt.Errorf("invalid config (%s): %w", configDir, err)
	}
	return cfg, nil
}

func openLogFile() (*os.File, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	return os.OpenFile(filepath.Join(dir, "tricoach.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func (a *app) runImport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("import needs at least one file or directory")
	}
	files, err := service.CollectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no .fit or .tcx files found")
	}

	progress := make(chan service.ImportProgress)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for p := range progress {
			switch {
			case p.Error != nil:
				fmt.Printf("  failed: %v\n", p.Error)
			case p.Phase == "pmc":
				fmt.Println("Updating PMC...")
			default:
				fmt.Printf("[%d/%d] %s\n", p.Completed+1, p.Total, p.Current)
			}
		}
	}()

	summary, err := a.importSvc.ImportFiles(ctx, files, progress)
	<-printed
	if summary != nil {
		printImportSummary(summary)
	}
	return err
}

func printImportSummary(s *service.ImportSummary) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Imported:    %d\n", len(s.Imported))
	fmt.Printf("  Duplicates:  %d\n", s.Duplicates)
	fmt.Printf("  Errors:      %d\n", len(s.Errors))
	for _, r := range s.Imported {
		fmt.Printf("    %s  %-32s  TSS %5.1f  %s\n", r.StartTime.Local().Format("2006-01-02"), r.Title, r.TSS, r.ActivityID)
	}
	if s.PMC != nil {
		mode := "full"
		if s.PMC.Incremental {
			mode = "incremental"
		}
		fmt.Printf("  PMC:         %s recompute, %d days (%s to %s)\n",
			mode, s.PMC.Days, s.PMC.From.Format(pmc.DateLayout), s.PMC.To.Format(pmc.DateLayout))
	}
	fmt.Println()
}

func (a *app) runDelete(args []string) error {
	if len(args) != 1 {
		return errors.New("delete needs exactly one activity ID")
	}
	if err := a.importSvc.DeleteActivity(args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted", args[0])
	return nil
}

func (a *app) runRecalc() error {
	res, err := a.importSvc.RecalculatePMC(time.Time{})
	if err != nil {
		return err
	}
	if res.Days == 0 {
		fmt.Println("No activities; PMC cleared.")
		return nil
	}
	fmt.Printf("Recomputed %d days (%s to %s)\n", res.Days, res.From.Format(pmc.DateLayout), res.To.Format(pmc.DateLayout))
	return nil
}

func (a *app) runForm() error {
	form, err := a.querySvc.CurrentForm(a.querySvc.Today())
	if err != nil {
		return err
	}
	if form.Status == pmc.FormNoData {
		fmt.Println("No training data yet. Import some activities first.")
		return nil
	}
	suffix := ""
	if form.Projected {
		suffix = " (projected with rest days)"
	}
	fmt.Printf("%s%s\n", form.Date.Format(pmc.DateLayout), suffix)
	fmt.Printf("  Fitness (CTL):  %6.1f\n", form.CTL)
	fmt.Printf("  Fatigue (ATL):  %6.1f\n", form.ATL)
	fmt.Printf("  Form (TSB):     %+6.1f  %s\n", form.TSB, form.Status.Description())
	return nil
}

func (a *app) runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	days := fs.Int("days", 28, "number of days to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *days < 1 {
		return errors.New("-days must be positive")
	}

	points, err := a.querySvc.DailyHistory(a.querySvc.Today(), *days)
	if err != nil {
		return err
	}
	fmt.Printf("%-10s  %6s  %6s  %6s  %6s\n", "Date", "TSS", "CTL", "ATL", "TSB")
	for _, p := range points {
		fmt.Printf("%-10s  %6.1f  %6.1f  %6.1f  %+6.1f\n", p.Date.Format(pmc.DateLayout), p.TSS, p.CTL, p.ATL, p.TSB)
	}
	return nil
}

func (a *app) runProject(args []string) error {
	fs := flag.NewFlagSet("project", flag.ContinueOnError)
	targetStr := fs.String("target", "", "race day (YYYY-MM-DD)")
	intensity := fs.Float64("intensity", 0.5, "taper load as a fraction of CTL (0.1 to 1.0)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *targetStr == "" {
		return errors.New("-target is required")
	}
	target, err := time.Parse(pmc.DateLayout, *targetStr)
	if err != nil {
		return fmt.Errorf("parsing -target: %w", err)
	}

	proj, err := a.querySvc.ProjectTaper(a.querySvc.Today(), target, *intensity)
	if err != nil {
		return err
	}
	fmt.Printf("%-4s  %-10s  %5s  %6s  %6s  %6s\n", "Day", "Date", "TSS", "CTL", "ATL", "TSB")
	for _, d := range proj.Days {
		fmt.Printf("%-4d  %-10s  %5.0f  %6.1f  %6.1f  %+6.1f\n",
			d.DayOffset, d.Date.Format(pmc.DateLayout), d.ProjectedTSS, d.CTL, d.ATL, d.TSB)
	}
	fmt.Printf("\nRace day form: %s\n", proj.RaceDayForm.Description())
	return nil
}

func (a *app) runWeekly(args []string) error {
	fs := flag.NewFlagSet("weekly", flag.ContinueOnError)
	weeks := fs.Int("weeks", service.DefaultWeeks, fmt.Sprintf("number of weeks (1 to %d)", service.MaxWeeks))
	if err := fs.Parse(args); err != nil {
		return err
	}

	summary, err := a.querySvc.WeeklySummary(a.querySvc.Today(), *weeks)
	if err != nil {
		return err
	}
	weekly := make([]float64, len(summary.Weeks))
	fmt.Printf("%-10s  %8s  %6s\n", "Week of", "Sessions", "TSS")
	for i, w := range summary.Weeks {
		weekly[i] = w.TSS
		fmt.Printf("%-10s  %8d  %6.0f\n", w.Start.Format(pmc.DateLayout), w.Count, w.TSS)
	}
	fmt.Println()
	fmt.Println(advisor.WeeklyNote(weekly))
	return nil
}

func (a *app) runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	id := fs.String("id", "", "activity ID")
	out := fs.String("out", "", "output file (default <id>.parquet)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}
	if *out == "" {
		*out = *id + ".parquet"
	}

	act, err := a.querySvc.GetActivityDetail(*id)
	if err != nil {
		return err
	}
	if err := export.WriteFile(*out, act.ID, act.Record); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	fmt.Printf("Wrote %d rows to %s\n", len(export.Rows(act.ID, act.Record)), *out)
	return nil
}

func (a *app) runTUI(ctx context.Context) error {
	exportDir := "exports"
	if dir, err := config.GetConfigDir(); err == nil {
		exportDir = filepath.Join(dir, "exports")
	}

	m := tui.NewApp(ctx, a.querySvc, a.importSvc, tui.NewUnits(a.cfg.Display), exportDir)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
