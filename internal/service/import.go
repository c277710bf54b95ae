package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tricoach/internal/advisor"
	"tricoach/internal/analysis"
	"tricoach/internal/decoder"
	"tricoach/internal/pmc"
	"tricoach/internal/store"
)

// ImportService orchestrates decoding, metric computation, persistence and
// PMC recomputation for activity files.
type ImportService struct {
	store      *store.DB
	thresholds analysis.Thresholds
	dispatcher *advisor.Dispatcher
	logger     *slog.Logger
	now        func() time.Time

	// serializes PMC recomputation
	mu sync.Mutex
}

// NewImportService creates an import service. dispatcher may be nil, in
// which case no coaching notes are generated.
func NewImportService(db *store.DB, th analysis.Thresholds, dispatcher *advisor.Dispatcher, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:      db,
		thresholds: th,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// ImportProgress reports progress during a batch import
type ImportProgress struct {
	Phase     string // "import", "pmc"
	Total     int
	Completed int
	Current   string
	Error     error
}

// ImportResult describes one imported file
type ImportResult struct {
	ActivityID string
	Title      string
	StartTime  time.Time
	TSS        float64
	Duplicate  bool
}

// ImportSummary contains the results of a batch import
type ImportSummary struct {
	Imported   []ImportResult
	Duplicates int
	Errors     []error
	PMC        *RecalcResult
}

// RecalcResult describes a PMC recomputation
type RecalcResult struct {
	Incremental bool
	From        time.Time
	To          time.Time
	Days        int
}

// ImportFile imports a single FIT or TCX file and updates the PMC
func (s *ImportService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	res, err := s.importFile(ctx, path)
	if err != nil || res.Duplicate {
		return res, err
	}
	if _, err := s.RecalculatePMC(res.StartTime); err != nil {
		return res, fmt.Errorf("recalculating PMC: %w", err)
	}
	s.enqueue(res.ActivityID)
	return res, nil
}

// ImportFiles imports files in order, then recomputes the PMC once from the
// earliest imported day. A failing file is recorded and skipped.
func (s *ImportService) ImportFiles(ctx context.Context, paths []string, progress chan<- ImportProgress) (*ImportSummary, error) {
	if progress != nil {
		defer close(progress)
	}

	summary := &ImportSummary{}
	var earliest time.Time

	for i, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if progress != nil {
			progress <- ImportProgress{
				Phase:     "import",
				Total:     len(paths),
				Completed: i,
				Current:   filepath.Base(path),
			}
		}

		res, err := s.importFile(ctx, path)
		if err != nil {
			err = fmt.Errorf("%s: %w", filepath.Base(path), err)
			summary.Errors = append(summary.Errors, err)
			s.logger.Warn("import failed", "file", path, "error", err)
			if progress != nil {
				progress <- ImportProgress{Phase: "import", Total: len(paths), Completed: i, Error: err}
			}
			continue
		}
		if res.Duplicate {
			summary.Duplicates++
			continue
		}
		summary.Imported = append(summary.Imported, *res)
		if earliest.IsZero() || res.StartTime.Before(earliest) {
			earliest = res.StartTime
		}
	}

	if len(summary.Imported) == 0 {
		return summary, nil
	}

	if progress != nil {
		progress <- ImportProgress{Phase: "pmc", Total: len(paths), Completed: len(paths)}
	}
	recalc, err := s.RecalculatePMC(earliest)
	if err != nil {
		return summary, fmt.Errorf("recalculating PMC: %w", err)
	}
	summary.PMC = recalc

	for _, r := range summary.Imported {
		s.enqueue(r.ActivityID)
	}
	return summary, nil
}

func (s *ImportService) importFile(ctx context.Context, path string) (*ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	format, err := decoder.FormatFromFilename(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > decoder.MaxFileSize {
		return nil, &decoder.ParseError{Format: format, Err: decoder.ErrFileTooLarge}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.ImportData(ctx, filepath.Base(path), data)
}

// ImportData decodes and stores one activity file held in memory. The PMC
// is not recomputed; call RecalculatePMC afterwards.
func (s *ImportService) ImportData(ctx context.Context, name string, data []byte) (*ImportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := fileHash(data)
	exists, err := s.store.HasFileHash(hash)
	if err != nil {
		return nil, fmt.Errorf("checking for duplicate: %w", err)
	}
	if exists {
		s.logger.Info("skipping duplicate file", "file", name)
		return &ImportResult{Duplicate: true}, nil
	}

	format, err := decoder.FormatFromFilename(name)
	if err != nil {
		return nil, err
	}
	rec, err := decoder.Decode(data, format)
	if err != nil {
		return nil, err
	}
	if rec.StartTime.IsZero() {
		rec.StartTime = s.now().UTC()
		s.logger.Warn("file has no start time, using import time", "file", name)
	}

	metrics := analysis.ComputeActivityMetrics(rec, s.thresholds)
	rec.Metrics = &metrics

	a := store.NewActivity(uuid.NewString(), hash, rec)
	if err := s.store.InsertActivity(a); err != nil {
		if errors.Is(err, store.ErrDuplicateActivity) {
			return &ImportResult{Duplicate: true}, nil
		}
		return nil, err
	}

	s.logger.Info("activity imported",
		"file", name,
		"activity_id", a.ID,
		"sport", rec.Sport,
		"tss", metrics.TSS,
		"tss_method", metrics.TSSMethod,
	)
	return &ImportResult{
		ActivityID: a.ID,
		Title:      rec.Title,
		StartTime:  rec.StartTime,
		TSS:        metrics.TSS,
	}, nil
}

// DeleteActivity removes an activity and recomputes the PMC
func (s *ImportService) DeleteActivity(id string) error {
	a, err := s.store.GetActivity(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteActivity(id); err != nil {
		return err
	}
	_, err = s.RecalculatePMC(a.StartTime)
	return err
}

// RecalculatePMC brings the daily metrics up to date. When changedFrom is
// after the stored checkpoint the engine resumes from it; otherwise (or
// when changedFrom is zero) the whole history is recomputed from the first
// activity. The series always extends to today.
func (s *ImportService) RecalculatePMC(changedFrom time.Time) (*RecalcResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	first, err := s.store.FirstActivityTime()
	if errors.Is(err, store.ErrActivityNotFound) {
		return &RecalcResult{}, s.store.ClearDailyMetrics()
	}
	if err != nil {
		return nil, fmt.Errorf("finding first activity: %w", err)
	}

	cp, err := s.store.GetCheckpoint()
	if err != nil && !errors.Is(err, store.ErrNoCheckpoint) {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}
	incremental := err == nil && !changedFrom.IsZero() && pmc.Day(changedFrom).After(cp.Date)

	var engine *pmc.Engine
	var start, deleteFrom time.Time
	if incremental {
		engine = cp.Resume()
		start = cp.Date.AddDate(0, 0, 1)
		deleteFrom = start
	} else {
		engine = pmc.New(pmc.State{})
		start = pmc.Day(first)
	}

	loads, err := s.store.ActivityLoads(start)
	if err != nil {
		return nil, fmt.Errorf("loading activity TSS: %w", err)
	}
	daily := pmc.SumByDay(loads)

	end := pmc.Day(s.now().UTC())
	if n := len(daily); n > 0 && daily[n-1].Date.After(end) {
		end = daily[n-1].Date
	}
	series := pmc.FillMissingDays(daily, start, end)

	result := &RecalcResult{Incremental: incremental, From: start, To: end, Days: len(series)}
	if len(series) == 0 {
		return result, nil
	}

	points, err := engine.CalculateHistory(series)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceDailyMetrics(deleteFrom, points); err != nil {
		return nil, fmt.Errorf("saving daily metrics: %w", err)
	}
	if err := s.store.SaveCheckpoint(pmc.Checkpoint{Date: end, State: engine.State()}); err != nil {
		return nil, fmt.Errorf("saving checkpoint: %w", err)
	}

	s.logger.Debug("PMC recalculated",
		"incremental", incremental,
		"from", start.Format(pmc.DateLayout),
		"to", end.Format(pmc.DateLayout),
		"days", len(series),
	)
	return result, nil
}

func (s *ImportService) enqueue(id string) {
	if s.dispatcher != nil {
		s.dispatcher.Enqueue(id)
	}
}

func fileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CollectFiles expands paths into the list of importable files. Directories
// are walked recursively; files with other extensions are skipped there but
// reported when named explicitly.
func CollectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if _, err := decoder.FormatFromFilename(p); err != nil {
				return nil, err
			}
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if _, err := decoder.FormatFromFilename(path); err == nil {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
