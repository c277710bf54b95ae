package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tricoach/internal/activity"
	"tricoach/internal/pmc"
)

const activityColumns = `id, sport, title, source_format, start_time,
	elapsed_seconds, timer_seconds, moving_seconds, distance_meters,
	avg_hr, max_hr, avg_power, normalized_power,
	tss, tss_method, intensity_factor, trimp, file_hash, ai_analysis, created_at`

// InsertActivity stores a new activity together with its full record.
// Returns ErrDuplicateActivity if a file with the same hash was imported.
func (db *DB) InsertActivity(a *Activity) error {
	if a.Record == nil {
		return fmt.Errorf("activity %s has no record", a.ID)
	}
	exists, err := db.HasFileHash(a.FileHash)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateActivity
	}

	recordJSON, err := json.Marshal(a.Record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO activities (
			id, sport, title, source_format, start_time,
			elapsed_seconds, timer_seconds, moving_seconds, distance_meters,
			avg_hr, max_hr, avg_power, normalized_power,
			tss, tss_method, intensity_factor, trimp, file_hash, record_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, string(a.Sport), a.Title, string(a.Format), a.StartTime.UTC().Format(time.RFC3339),
		a.ElapsedSeconds, a.TimerSeconds, a.MovingSeconds, a.DistanceMeters,
		a.AvgHR, a.MaxHR, a.AvgPower, a.NormalizedPower,
		a.TSS, string(a.TSSMethod), a.IntensityFactor, a.TRIMP, a.FileHash, string(recordJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// HasFileHash reports whether a file with this content hash was imported
func (db *DB) HasFileHash(hash string) (bool, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM activities WHERE file_hash = ?", hash).Scan(&n)
	return n > 0, err
}

// GetActivity retrieves an activity by ID, including its decoded record
func (db *DB) GetActivity(id string) (*Activity, error) {
	row := db.QueryRow(`SELECT `+activityColumns+`, record_json FROM activities WHERE id = ?`, id)

	var recordJSON string
	a, err := scanActivity(row, &recordJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec activity.Record
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, fmt.Errorf("decoding record for %s: %w", id, err)
	}
	a.Record = &rec
	return a, nil
}

// ListActivities returns activities ordered by start time descending
func (db *DB) ListActivities(limit, offset int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT `+activityColumns+`
		FROM activities
		ORDER BY start_time DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// ActivitiesBetween returns activities starting in [from, to), oldest first
func (db *DB) ActivitiesBetween(from, to time.Time) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT `+activityColumns+`
		FROM activities
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time
	`, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// CountActivities returns the total number of activities
func (db *DB) CountActivities() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM activities").Scan(&count)
	return count, err
}

// DeleteActivity removes an activity
func (db *DB) DeleteActivity(id string) error {
	result, err := db.Exec("DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// SetAIAnalysis stores the coaching note for an activity
func (db *DB) SetAIAnalysis(id, analysis string) error {
	result, err := db.Exec("UPDATE activities SET ai_analysis = ? WHERE id = ?", analysis, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// ActivityLoads returns the TSS of every activity starting on or after
// since, in start time order.
func (db *DB) ActivityLoads(since time.Time) ([]pmc.Load, error) {
	rows, err := db.Query(`
		SELECT start_time, tss FROM activities
		WHERE start_time >= ?
		ORDER BY start_time
	`, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []pmc.Load
	for rows.Next() {
		var start string
		var l pmc.Load
		if err := rows.Scan(&start, &l.TSS); err != nil {
			return nil, err
		}
		if l.Time, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("parsing start_time %q: %w", start, err)
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}

// FirstActivityTime returns the start time of the earliest activity
func (db *DB) FirstActivityTime() (time.Time, error) {
	var start sql.NullString
	if err := db.QueryRow("SELECT MIN(start_time) FROM activities").Scan(&start); err != nil {
		return time.Time{}, err
	}
	if !start.Valid {
		return time.Time{}, ErrActivityNotFound
	}
	return time.Parse(time.RFC3339, start.String)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner, extra ...any) (*Activity, error) {
	var a Activity
	var sport, format, start, method string
	var created sql.NullString

	dest := []any{
		&a.ID, &sport, &a.Title, &format, &start,
		&a.ElapsedSeconds, &a.TimerSeconds, &a.MovingSeconds, &a.DistanceMeters,
		&a.AvgHR, &a.MaxHR, &a.AvgPower, &a.NormalizedPower,
		&a.TSS, &method, &a.IntensityFactor, &a.TRIMP, &a.FileHash, &a.AIAnalysis, &created,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	if a.StartTime, err = time.Parse(time.RFC3339, start); err != nil {
		return nil, fmt.Errorf("parsing start_time %q: %w", start, err)
	}
	if created.Valid {
		// CURRENT_TIMESTAMP format
		a.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", created.String)
	}
	a.Sport = activity.Sport(sport)
	a.Format = activity.Format(format)
	a.TSSMethod = activity.TSSMethod(method)
	return &a, nil
}
