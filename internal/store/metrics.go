package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tricoach/internal/pmc"
)

// ReplaceDailyMetrics deletes every PMC row on or after from and inserts
// points in one transaction.
func (db *DB) ReplaceDailyMetrics(from time.Time, points []pmc.Point) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM daily_metrics WHERE date >= ?", pmc.Day(from).Format(pmc.DateLayout)); err != nil {
		return fmt.Errorf("deleting daily metrics: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO daily_metrics (date, tss, ctl, atl, tsb, computed_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
			tss = excluded.tss,
			ctl = excluded.ctl,
			atl = excluded.atl,
			tsb = excluded.tsb,
			computed_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(p.Date.Format(pmc.DateLayout), p.TSS, p.CTL, p.ATL, p.TSB); err != nil {
			return fmt.Errorf("inserting %s: %w", p.Date.Format(pmc.DateLayout), err)
		}
	}

	return tx.Commit()
}

// ClearDailyMetrics removes all PMC rows and the checkpoint
func (db *DB) ClearDailyMetrics() error {
	if _, err := db.Exec("DELETE FROM daily_metrics"); err != nil {
		return err
	}
	_, err := db.Exec("DELETE FROM pmc_checkpoint")
	return err
}

// GetDailyMetrics returns PMC rows between from and to inclusive, oldest first
func (db *DB) GetDailyMetrics(from, to time.Time) ([]pmc.Point, error) {
	rows, err := db.Query(`
		SELECT date, tss, ctl, atl, tsb
		FROM daily_metrics
		WHERE date >= ? AND date <= ?
		ORDER BY date
	`, pmc.Day(from).Format(pmc.DateLayout), pmc.Day(to).Format(pmc.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []pmc.Point
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, *p)
	}
	return points, rows.Err()
}

// DailyMetricOn returns the PMC row for a single day
func (db *DB) DailyMetricOn(day time.Time) (*pmc.Point, error) {
	row := db.QueryRow(`
		SELECT date, tss, ctl, atl, tsb FROM daily_metrics WHERE date = ?
	`, pmc.Day(day).Format(pmc.DateLayout))
	p, err := scanPoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDailyMetrics
	}
	return p, err
}

// LatestDailyMetric returns the most recent PMC row
func (db *DB) LatestDailyMetric() (*pmc.Point, error) {
	row := db.QueryRow(`
		SELECT date, tss, ctl, atl, tsb FROM daily_metrics ORDER BY date DESC LIMIT 1
	`)
	p, err := scanPoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDailyMetrics
	}
	return p, err
}

func scanPoint(row scanner) (*pmc.Point, error) {
	var p pmc.Point
	var date string
	if err := row.Scan(&date, &p.TSS, &p.CTL, &p.ATL, &p.TSB); err != nil {
		return nil, err
	}
	d, err := time.Parse(pmc.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", date, err)
	}
	p.Date = d
	return &p, nil
}

// GetCheckpoint returns the saved PMC engine state
func (db *DB) GetCheckpoint() (pmc.Checkpoint, error) {
	var cp pmc.Checkpoint
	var date string
	err := db.QueryRow("SELECT date, ctl, atl FROM pmc_checkpoint WHERE id = 1").
		Scan(&date, &cp.State.CTL, &cp.State.ATL)
	if errors.Is(err, sql.ErrNoRows) {
		return pmc.Checkpoint{}, ErrNoCheckpoint
	}
	if err != nil {
		return pmc.Checkpoint{}, err
	}
	if cp.Date, err = time.Parse(pmc.DateLayout, date); err != nil {
		return pmc.Checkpoint{}, fmt.Errorf("parsing checkpoint date %q: %w", date, err)
	}
	return cp, nil
}

// SaveCheckpoint stores or replaces the PMC engine state
func (db *DB) SaveCheckpoint(cp pmc.Checkpoint) error {
	_, err := db.Exec(`
		INSERT INTO pmc_checkpoint (id, date, ctl, atl, updated_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			ctl = excluded.ctl,
			atl = excluded.atl,
			updated_at = CURRENT_TIMESTAMP
	`, pmc.Day(cp.Date).Format(pmc.DateLayout), cp.State.CTL, cp.State.ATL)
	return err
}
