package activity

import (
	"time"

	"backend-runlog/internal/shared/units"
)

type Activity struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	StartTime     time.Time `json:"start_time"`
	TotalDistance float64   `json:"total_distance"`
	TotalTime     float64   `json:"total_time"`
	AvgPace       float64   `json:"avg_pace"`
	AvgHR         *float64  `json:"avg_hr"`
	AvgCadence    *float64  `json:"avg_cadence"`
	Laps          []Lap     `json:"laps"`
}

// Laps are a fixed snapshot taken at ingestion; they are never edited
// after the fact.
type Lap struct {
	ID         string   `json:"id"`
	ActivityID string   `json:"activity_id"`
	LapNumber  int      `json:"lap_number"`
	Distance   float64  `json:"distance"`
	Time       float64  `json:"time"`
	Pace       float64  `json:"pace"`
	AvgHR      *float64 `json:"avg_hr"`
	MaxHR      *float64 `json:"max_hr"`
	AvgCadence *float64 `json:"avg_cadence"`
}

// Brief is the connected-activity summary embedded in race payloads.
type Brief struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"start_time"`
	TotalDistance   float64   `json:"total_distance"`
	TotalTime       float64   `json:"total_time"`
	AvgPace         float64   `json:"avg_pace"`
	AvgPaceDisplay  string    `json:"avg_pace_display"`
	TotalTimeDisplay string   `json:"total_time_display"`
}

func briefOf(a Activity) Brief {
	return Brief{
		ID:               a.ID,
		StartTime:        a.StartTime,
		TotalDistance:    a.TotalDistance,
		TotalTime:        a.TotalTime,
		AvgPace:          a.AvgPace,
		AvgPaceDisplay:   units.FormatPace(a.AvgPace),
		TotalTimeDisplay: units.FormatDuration(a.TotalTime),
	}
}
