// Package export writes decoded activity streams as Parquet files.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"tricoach/internal/activity"
)

// writeParallelism is the number of goroutines parquet-go uses to marshal rows
const writeParallelism = 4

// StreamRow is one elapsed second that has at least one stream value.
// Missing values are NaN and flagged by the Valid* columns.
type StreamRow struct {
	ActivityID   string  `parquet:"name=activity_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Sport        string  `parquet:"name=sport, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS     int64   `parquet:"name=elapsed_s, type=INT64"`
	HRBPM        float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	PaceMinKm    float64 `parquet:"name=pace_min_km, type=DOUBLE"`
	PowerW       float64 `parquet:"name=power_w, type=DOUBLE"`
	Cadence      float64 `parquet:"name=cadence, type=DOUBLE"`
	AltitudeM    float64 `parquet:"name=altitude_m, type=DOUBLE"`
	Lat          float64 `parquet:"name=lat, type=DOUBLE"`
	Lon          float64 `parquet:"name=lon, type=DOUBLE"`
	ValidHR      bool    `parquet:"name=valid_hr, type=BOOLEAN"`
	ValidPower   bool    `parquet:"name=valid_power, type=BOOLEAN"`
	ValidCadence bool    `parquet:"name=valid_cadence, type=BOOLEAN"`
	ValidGPS     bool    `parquet:"name=valid_gps, type=BOOLEAN"`
}

// MarshalStreams encodes the streams of rec as a Snappy-compressed
// Parquet file held in memory.
func MarshalStreams(id string, rec *activity.Record) ([]byte, error) {
	fw := buffer.NewBufferFile()
	if err := writeRows(fw, id, rec); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// WriteFile writes the streams of rec to a Parquet file at path
func WriteFile(path, id string, rec *activity.Record) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writeRows(fw, id, rec); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

func writeRows(fw source.ParquetFile, id string, rec *activity.Record) error {
	pw, err := writer.NewParquetWriter(fw, new(StreamRow), writeParallelism)
	if err != nil {
		return fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range Rows(id, rec) {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("writing row at %ds: %w", row.ElapsedS, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finishing parquet file: %w", err)
	}
	return nil
}

// Rows joins the sparse streams of rec on elapsed time, one row per
// distinct timestamp in ascending order.
func Rows(id string, rec *activity.Record) []StreamRow {
	byT := make(map[int]*StreamRow)
	row := func(t int) *StreamRow {
		r, ok := byT[t]
		if !ok {
			nan := math.NaN()
			r = &StreamRow{
				ActivityID: id,
				Sport:      string(rec.Sport),
				ElapsedS:   int64(t),
				HRBPM:      nan,
				PaceMinKm:  nan,
				PowerW:     nan,
				Cadence:    nan,
				AltitudeM:  nan,
				Lat:        nan,
				Lon:        nan,
			}
			byT[t] = r
		}
		return r
	}

	s := rec.Streams
	for _, p := range s.HeartRate {
		r := row(p.T)
		r.HRBPM, r.ValidHR = p.V, true
	}
	for _, p := range s.Pace {
		row(p.T).PaceMinKm = p.V
	}
	for _, p := range s.Power {
		r := row(p.T)
		r.PowerW, r.ValidPower = p.V, true
	}
	for _, p := range s.Cadence {
		r := row(p.T)
		r.Cadence, r.ValidCadence = p.V, true
	}
	for _, p := range s.Altitude {
		row(p.T).AltitudeM = p.V
	}
	for _, p := range s.GPS {
		r := row(p.T)
		r.Lat, r.Lon, r.ValidGPS = p.Lat, p.Lon, true
	}

	rows := make([]StreamRow, 0, len(byT))
	for _, r := range byT {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ElapsedS < rows[j].ElapsedS
	})
	return rows
}
