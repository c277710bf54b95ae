package decoder

import (
	"bytes"
	"encoding/xml"
	"math"
	"strconv"
	"strings"
	"time"

	"tricoach/internal/activity"
)

// maxPlausiblePace drops derived paces (min/km) from pauses and GPS noise
const maxPlausiblePace = 20.0

// Elements are matched by local name so files with or without the
// TrainingCenterDatabase v2 namespace decode the same way. Numeric leaves
// are kept as text so one bad trackpoint does not fail the document.
type tcxDatabase struct {
	XMLName    xml.Name      `xml:"TrainingCenterDatabase"`
	Activities []tcxActivity `xml:"Activities>Activity"`
}

type tcxActivity struct {
	Sport string   `xml:"Sport,attr"`
	ID    string   `xml:"Id"`
	Laps  []tcxLap `xml:"Lap"`
}

type tcxLap struct {
	TotalTimeSeconds string     `xml:"TotalTimeSeconds"`
	DistanceMeters   string     `xml:"DistanceMeters"`
	Calories         string     `xml:"Calories"`
	Tracks           []tcxTrack `xml:"Track"`
}

type tcxTrack struct {
	Points []tcxTrackpoint `xml:"Trackpoint"`
}

type tcxTrackpoint struct {
	Time     string       `xml:"Time"`
	Position *tcxPosition `xml:"Position"`
	Altitude *string      `xml:"AltitudeMeters"`
	Distance *string      `xml:"DistanceMeters"`
	HR       *string      `xml:"HeartRateBpm>Value"`
	Cadence  *string      `xml:"Cadence"`
}

type tcxPosition struct {
	Lat string `xml:"LatitudeDegrees"`
	Lon string `xml:"LongitudeDegrees"`
}

// trackpoint is a parsed tcxTrackpoint; nil fields were absent
type trackpoint struct {
	time     time.Time
	lat, lon *float64
	altitude *float64
	distance *float64
	hr       *int
	cadence  *int
}

func decodeTCX(data []byte) (*activity.Record, error) {
	var db tcxDatabase
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&db); err != nil {
		return nil, &ParseError{Format: activity.FormatTCX, Err: err}
	}
	if len(db.Activities) == 0 {
		return nil, &ParseError{Format: activity.FormatTCX, Err: ErrNoActivity}
	}
	act := db.Activities[0]

	rec := &activity.Record{
		Format:    activity.FormatTCX,
		Sport:     sportFromTCX(act.Sport),
		StartTime: parseTCXTime(act.ID),
	}

	var (
		totalTime, totalDistance float64
		totalCalories            int
		points                   []trackpoint
		hrValues                 []float64
	)
	for i, lap := range act.Laps {
		lapTime := parseFloat(lap.TotalTimeSeconds)
		lapDist := parseFloat(lap.DistanceMeters)
		lapCal := int(parseFloat(lap.Calories))
		totalTime += lapTime
		totalDistance += lapDist
		totalCalories += lapCal

		var lapHR []float64
		for _, track := range lap.Tracks {
			for _, raw := range track.Points {
				tp, ok := parseTrackpoint(raw)
				if !ok {
					continue
				}
				points = append(points, tp)
				if tp.hr != nil && *tp.hr > 0 {
					lapHR = append(lapHR, float64(*tp.hr))
				}
			}
		}
		hrValues = append(hrValues, lapHR...)

		l := activity.Lap{
			Index:           i + 1,
			DistanceMeters:  round(lapDist, 1),
			DurationSeconds: round(lapTime, 1),
		}
		if len(lapHR) > 0 {
			l.AvgHR = intPtr(int(mean(lapHR)))
			l.MaxHR = intPtr(int(maxOf(lapHR)))
		}
		if lapCal > 0 {
			l.Calories = intPtr(lapCal)
		}
		rec.Laps = append(rec.Laps, l)
	}

	rec.ElapsedSeconds = int(totalTime)
	rec.TimerSeconds = int(totalTime)
	rec.MovingSeconds = int(totalTime)
	rec.DistanceMeters = totalDistance
	if totalCalories > 0 {
		rec.Calories = intPtr(totalCalories)
	}
	if rec.StartTime.IsZero() && len(points) > 0 {
		rec.StartTime = points[0].time
	}

	if len(hrValues) > 0 {
		rec.HeartRate = activity.HeartRate{
			Avg: intPtr(int(mean(hrValues))),
			Max: intPtr(int(maxOf(hrValues))),
			Min: intPtr(int(minOf(hrValues))),
		}
	}

	var avgSpeed float64
	if totalTime > 0 && totalDistance > 0 {
		avgSpeed = totalDistance / totalTime
		rec.AvgSpeedKmh = floatPtr(round(avgSpeed*3.6, 2))
	}
	switch rec.Sport {
	case activity.SportRun:
		d := &activity.RunDetail{}
		if avgSpeed > 0 {
			d.AvgPaceMinKm = floatPtr(paceMinKm(avgSpeed))
		}
		rec.Detail = d
	case activity.SportSwim:
		d := &activity.SwimDetail{}
		if avgSpeed > 0 {
			d.AvgPaceSecPer100m = floatPtr(round(100/avgSpeed, 1))
		}
		rec.Detail = d
	case activity.SportBike:
		rec.Detail = &activity.BikeDetail{}
	}

	rec.Streams = tcxStreams(points)
	rec.AscentMeters, rec.DescentMeters = elevation(rec.Streams.Altitude)

	return rec, nil
}

func sportFromTCX(s string) activity.Sport {
	switch strings.ToLower(s) {
	case "running":
		return activity.SportRun
	case "biking":
		return activity.SportBike
	case "swimming":
		return activity.SportSwim
	default:
		return activity.SportRun
	}
}

func parseTrackpoint(raw tcxTrackpoint) (trackpoint, bool) {
	tp := trackpoint{time: parseTCXTime(raw.Time)}

	if raw.Position != nil {
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(raw.Position.Lat), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(raw.Position.Lon), 64)
		if err1 != nil || err2 != nil {
			return trackpoint{}, false
		}
		tp.lat, tp.lon = &lat, &lon
	}

	var ok bool
	if tp.altitude, ok = optionalFloat(raw.Altitude); !ok {
		return trackpoint{}, false
	}
	if tp.distance, ok = optionalFloat(raw.Distance); !ok {
		return trackpoint{}, false
	}
	if tp.hr, ok = optionalInt(raw.HR); !ok {
		return trackpoint{}, false
	}
	if tp.cadence, ok = optionalInt(raw.Cadence); !ok {
		return trackpoint{}, false
	}
	return tp, true
}

func tcxStreams(points []trackpoint) activity.Streams {
	var s activity.Streams
	if len(points) == 0 {
		return s
	}

	first := points[0].time
	step := stride(len(points))
	var prevDist float64
	prevT, lastT := 0, 0
	for i := 0; i < len(points); i += step {
		tp := points[i]

		t := i
		if !tp.time.IsZero() && !first.IsZero() {
			t = int(tp.time.Sub(first).Seconds())
		}
		if t < lastT {
			t = lastT
		}
		lastT = t

		if tp.hr != nil && *tp.hr > 0 {
			s.HeartRate = append(s.HeartRate, activity.Sample{T: t, V: float64(*tp.hr)})
		}
		if tp.cadence != nil && *tp.cadence > 0 {
			s.Cadence = append(s.Cadence, activity.Sample{T: t, V: float64(*tp.cadence)})
		}
		if tp.altitude != nil {
			s.Altitude = append(s.Altitude, activity.Sample{T: t, V: round(*tp.altitude, 1)})
		}
		if tp.lat != nil && tp.lon != nil {
			s.GPS = append(s.GPS, activity.GPSPoint{T: t, Lat: round(*tp.lat, 6), Lon: round(*tp.lon, 6)})
		}

		if tp.distance == nil {
			continue
		}
		dist := *tp.distance
		if dist > prevDist && t > prevT {
			speed := (dist - prevDist) / float64(t-prevT)
			if pace := paceMinKm(speed); pace < maxPlausiblePace {
				s.Pace = append(s.Pace, activity.Sample{T: t, V: pace})
			}
			prevDist, prevT = dist, t
		}
	}
	return s
}

// elevation sums positive and negative altitude deltas. Zero totals are
// reported as absent.
func elevation(alt []activity.Sample) (ascent, descent *float64) {
	var up, down float64
	for i := 1; i < len(alt); i++ {
		diff := alt[i].V - alt[i-1].V
		if diff > 0 {
			up += diff
		} else {
			down -= diff
		}
	}
	if up > 0 {
		ascent = floatPtr(round(up, 1))
	}
	if down > 0 {
		descent = floatPtr(round(down, 1))
	}
	return ascent, descent
}

var tcxTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseTCXTime returns the zero time for empty or unparseable values
func parseTCXTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range tcxTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !isFinite(v) {
		return 0
	}
	return v
}

// optionalFloat parses an optional element; ok is false only when the
// element is present but malformed.
func optionalFloat(s *string) (*float64, bool) {
	if s == nil {
		return nil, true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil || !isFinite(v) {
		return nil, false
	}
	return &v, true
}

func optionalInt(s *string) (*int, bool) {
	f, ok := optionalFloat(s)
	if !ok || f == nil {
		return nil, ok
	}
	v := int(math.Round(*f))
	return &v, true
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
