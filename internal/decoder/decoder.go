// Package decoder turns FIT and TCX activity files into activity records.
package decoder

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"tricoach/internal/activity"
)

// MaxFileSize is the largest input accepted
const MaxFileSize = 64 << 20

// Decode parses data in the given format
func Decode(data []byte, format activity.Format) (*activity.Record, error) {
	if len(data) > MaxFileSize {
		return nil, &ParseError{Format: format, Err: ErrFileTooLarge}
	}

	var (
		rec *activity.Record
		err error
	)
	switch format {
	case activity.FormatFIT:
		rec, err = decodeFIT(data)
	case activity.FormatTCX:
		rec, err = decodeTCX(data)
	default:
		return nil, &ParseError{Format: format, Err: ErrUnsupportedFormat}
	}
	if err != nil {
		return nil, err
	}

	normalizeTiming(rec)
	rec.Title = activity.Title(rec.Sport, rec.DistanceMeters, rec.TimerSeconds)
	return rec, nil
}

// DecodeFile reads and decodes the file at path, inferring the format from
// its extension.
func DecodeFile(path string) (*activity.Record, error) {
	format, err := FormatFromFilename(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, &ParseError{Format: format, Err: ErrFileTooLarge}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data, format)
}

// FormatFromFilename maps a file extension to a format
func FormatFromFilename(name string) (activity.Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".fit":
		return activity.FormatFIT, nil
	case ".tcx":
		return activity.FormatTCX, nil
	default:
		return "", &ParseError{Format: activity.Format(strings.TrimPrefix(filepath.Ext(name), ".")), Err: ErrUnsupportedFormat}
	}
}

// normalizeTiming enforces elapsed >= timer >= moving, filling gaps from
// whichever values are present.
func normalizeTiming(rec *activity.Record) {
	if rec.TimerSeconds == 0 {
		rec.TimerSeconds = rec.ElapsedSeconds
	}
	if rec.MovingSeconds == 0 {
		rec.MovingSeconds = rec.TimerSeconds
	}
	if rec.ElapsedSeconds < rec.TimerSeconds {
		rec.ElapsedSeconds = rec.TimerSeconds
	}
	if rec.MovingSeconds > rec.TimerSeconds {
		rec.MovingSeconds = rec.TimerSeconds
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func floatPtr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

// positivePtr returns nil for values that are zero or invalid
func positivePtr(v float64) *float64 {
	if v = safePositive(v); v == 0 {
		return nil
	}
	return &v
}

// paceMinKm converts m/s to min/km rounded to two places
func paceMinKm(speed float64) float64 {
	return round(1000/speed/60, 2)
}
