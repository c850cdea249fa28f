package race

import (
	"time"

	"backend-runlog/internal/activity"
	"backend-runlog/internal/storage"
)

type Status string

// Status records what the runner reports; it is never derived from
// activity data, and any value is reachable from any other.
const (
	StatusScheduled Status = "예정"
	StatusFinished  Status = "완주"
	StatusDNS       Status = "DNS"
	StatusDNF       Status = "DNF"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusFinished, StatusDNS, StatusDNF:
		return true
	}
	return false
}

type DistanceType string

const (
	DistanceFull   DistanceType = "full"
	DistanceHalf   DistanceType = "half"
	Distance10K    DistanceType = "10km"
	Distance5K     DistanceType = "5km"
	DistanceCustom DistanceType = "custom"
)

func (d DistanceType) Valid() bool {
	switch d {
	case DistanceFull, DistanceHalf, Distance10K, Distance5K, DistanceCustom:
		return true
	}
	return false
}

type Race struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	RaceName       string       `json:"race_name"`
	RaceDate       time.Time    `json:"race_date"`
	Location       string       `json:"location"`
	DistanceType   DistanceType `json:"distance_type"`
	DistanceCustom *float64     `json:"distance_custom"`
	TargetTime     *float64     `json:"target_time"`
	ActualTime     *float64     `json:"actual_time"`
	Status         Status       `json:"status"`
	ActivityID     *string      `json:"activity_id"`
	Review         *string      `json:"review"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Detail is the full race projection: the race row plus its images
// and, when linked, the connected-activity brief. The brief duplicates
// no activity data in storage; it is assembled per read.
type Detail struct {
	Race
	Activity *activity.Brief `json:"activity"`
	Images   []storage.Image `json:"images"`
}

type CreateInput struct {
	RaceName       string       `json:"race_name"`
	RaceDate       string       `json:"race_date"`
	Location       string       `json:"location"`
	DistanceType   DistanceType `json:"distance_type"`
	DistanceCustom *float64     `json:"distance_custom"`
	TargetTime     *float64     `json:"target_time"`
}

type UpdateInput struct {
	RaceName       string       `json:"race_name"`
	RaceDate       string       `json:"race_date"`
	Location       string       `json:"location"`
	DistanceType   DistanceType `json:"distance_type"`
	DistanceCustom *float64     `json:"distance_custom"`
	TargetTime     *float64     `json:"target_time"`
}

// ResultInput is the combined result mutation: status plus the full
// result projection. A nil activity_id unlinks; an actual_time of zero
// or less is stored as null, never as zero.
type ResultInput struct {
	Status     Status   `json:"status"`
	ActualTime *float64 `json:"actual_time"`
	ActivityID *string  `json:"activity_id"`
	Review     *string  `json:"review"`
}
