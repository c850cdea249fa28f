package activity

import (
	"encoding/xml"
	"strings"
	"time"
)

type tcxDocument struct {
	XMLName    xml.Name      `xml:"TrainingCenterDatabase"`
	Activities []tcxActivity `xml:"Activities>Activity"`
}

type tcxActivity struct {
	ID   string   `xml:"Id"`
	Laps []tcxLap `xml:"Lap"`
}

type tcxLap struct {
	TotalTimeSeconds float64  `xml:"TotalTimeSeconds"`
	DistanceMeters   float64  `xml:"DistanceMeters"`
	AvgHR            *tcxBpm  `xml:"AverageHeartRateBpm"`
	MaxHR            *tcxBpm  `xml:"MaximumHeartRateBpm"`
	Cadence          *float64 `xml:"Cadence"`
	Extensions       *tcxExt  `xml:"Extensions"`
}

type tcxBpm struct {
	Value float64 `xml:"Value"`
}

// Garmin exporters often put run cadence in the ActivityExtension (ns3)
// LX element rather than the plain Cadence field.
type tcxExt struct {
	LX struct {
		AvgRunCadence *float64 `xml:"AvgRunCadence"`
	} `xml:"LX"`
}

// parseTCX decodes a TrainingCenterDatabase document into activities
// with derived per-lap and aggregate metrics. The Activity Id element
// carries the session start time. Paces stay zero when the distance is
// zero so they marshal as "unset", never infinity.
func parseTCX(content []byte) ([]Activity, error) {
	var doc tcxDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, ErrMalformedFile
	}

	var out []Activity
	for _, ta := range doc.Activities {
		startRaw := strings.TrimSpace(ta.ID)
		if startRaw == "" {
			continue
		}
		start, err := parseStartTime(startRaw)
		if err != nil {
			return nil, ErrMalformedFile
		}

		act := Activity{StartTime: start}
		var hrSum, cadSum float64
		var hrCount, cadCount int

		for i, tl := range ta.Laps {
			lap := Lap{
				LapNumber: i + 1,
				Distance:  tl.DistanceMeters,
				Time:      tl.TotalTimeSeconds,
			}
			if tl.DistanceMeters > 0 {
				lap.Pace = tl.TotalTimeSeconds / (tl.DistanceMeters / 1000)
			}
			if tl.AvgHR != nil {
				v := tl.AvgHR.Value
				lap.AvgHR = &v
				hrSum += v
				hrCount++
			}
			if tl.MaxHR != nil {
				v := tl.MaxHR.Value
				lap.MaxHR = &v
			}
			if tl.Cadence != nil {
				v := *tl.Cadence
				lap.AvgCadence = &v
			} else if tl.Extensions != nil && tl.Extensions.LX.AvgRunCadence != nil {
				v := *tl.Extensions.LX.AvgRunCadence
				lap.AvgCadence = &v
			}
			if lap.AvgCadence != nil {
				cadSum += *lap.AvgCadence
				cadCount++
			}

			act.TotalTime += tl.TotalTimeSeconds
			act.TotalDistance += tl.DistanceMeters
			act.Laps = append(act.Laps, lap)
		}

		if act.TotalDistance > 0 {
			act.AvgPace = act.TotalTime / (act.TotalDistance / 1000)
		}
		if hrCount > 0 {
			v := hrSum / float64(hrCount)
			act.AvgHR = &v
		}
		if cadCount > 0 {
			v := cadSum / float64(cadCount)
			act.AvgCadence = &v
		}

		out = append(out, act)
	}
	return out, nil
}

func parseStartTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	// Some exporters drop the zone designator.
	t, err := time.Parse("2006-01-02T15:04:05", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
