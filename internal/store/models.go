package store

import (
	"time"

	"tricoach/internal/activity"
)

// Activity is a stored activity. Record is only populated by GetActivity.
type Activity struct {
	ID              string
	Sport           activity.Sport
	Title           string
	Format          activity.Format
	StartTime       time.Time
	ElapsedSeconds  int
	TimerSeconds    int
	MovingSeconds   int
	DistanceMeters  float64
	AvgHR           *int
	MaxHR           *int
	AvgPower        *int
	NormalizedPower *int
	TSS             float64
	TSSMethod       activity.TSSMethod
	IntensityFactor *float64
	TRIMP           *float64
	FileHash        string
	AIAnalysis      *string
	CreatedAt       time.Time

	Record *activity.Record
}

// NewActivity builds the stored form of a decoded record. The record's
// metrics should already be attached.
func NewActivity(id, fileHash string, rec *activity.Record) *Activity {
	a := &Activity{
		ID:             id,
		Sport:          rec.Sport,
		Title:          rec.Title,
		Format:         rec.Format,
		StartTime:      rec.StartTime,
		ElapsedSeconds: rec.ElapsedSeconds,
		TimerSeconds:   rec.TimerSeconds,
		MovingSeconds:  rec.MovingSeconds,
		DistanceMeters: rec.DistanceMeters,
		AvgHR:          rec.HeartRate.Avg,
		MaxHR:          rec.HeartRate.Max,
		TSSMethod:      activity.TSSMethodNone,
		FileHash:       fileHash,
		Record:         rec,
	}
	if rec.Power != nil {
		a.AvgPower = rec.Power.Avg
		a.NormalizedPower = rec.Power.Normalized
	}
	if m := rec.Metrics; m != nil {
		a.TSS = m.TSS
		a.TSSMethod = m.TSSMethod
		a.IntensityFactor = m.IntensityFactor
		a.TRIMP = m.TRIMP
	}
	return a
}
