package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"backend-runlog/internal/db"
	"backend-runlog/internal/shared/localtime"
)

type UpcomingRace struct {
	ID           string    `json:"id"`
	RaceName     string    `json:"race_name"`
	RaceDate     time.Time `json:"race_date"`
	Location     string    `json:"location"`
	DistanceType string    `json:"distance_type"`
	TargetTime   *float64  `json:"target_time"`
	Status       string    `json:"status"`
}

type DayEntry struct {
	Date       string   `json:"date"`
	DistanceKm float64  `json:"distance_km"`
	AvgPace    *float64 `json:"avg_pace"`
}

type RecentActivity struct {
	ID            string    `json:"id"`
	StartTime     time.Time `json:"start_time"`
	TotalDistance float64   `json:"total_distance"`
	TotalTime     float64   `json:"total_time"`
	AvgPace       float64   `json:"avg_pace"`
}

type Data struct {
	UpcomingRaces    []UpcomingRace   `json:"upcoming_races"`
	MonthlyRunning   []DayEntry       `json:"monthly_running"`
	RecentActivities []RecentActivity `json:"recent_activities"`
}

const recentActivityCount = 5

type Service struct {
	db   db.Querier
	norm localtime.Normalizer
}

func NewService(db db.Querier, norm localtime.Normalizer) *Service {
	return &Service{db: db, norm: norm}
}

// Build computes the dashboard from the stored snapshot. Given the same
// snapshot and now it always produces the same output; the only inputs
// are the two read queries below.
func (s *Service) Build(ctx context.Context, userID string, now time.Time) (Data, error) {
	upcoming, err := s.upcomingRaces(ctx, userID, now)
	if err != nil {
		return Data{}, err
	}
	monthly, recent, err := s.monthAndRecent(ctx, userID, now)
	if err != nil {
		return Data{}, err
	}
	return Data{
		UpcomingRaces:    upcoming,
		MonthlyRunning:   monthly,
		RecentActivities: recent,
	}, nil
}

func (s *Service) upcomingRaces(ctx context.Context, userID string, now time.Time) ([]UpcomingRace, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, race_name, race_date, location, distance_type, target_time, status
		FROM races
		WHERE user_id=$1 AND race_date >= $2
		ORDER BY race_date ASC
	`, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	races := []UpcomingRace{}
	for rows.Next() {
		var r UpcomingRace
		if err := rows.Scan(&r.ID, &r.RaceName, &r.RaceDate, &r.Location, &r.DistanceType, &r.TargetTime, &r.Status); err != nil {
			return nil, err
		}
		races = append(races, r)
	}
	return races, nil
}

func (s *Service) monthAndRecent(ctx context.Context, userID string, now time.Time) ([]DayEntry, []RecentActivity, error) {
	local := now.In(s.norm.Location())
	firstOfMonth := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.norm.Location())
	nextMonth := firstOfMonth.AddDate(0, 1, 0)
	daysInMonth := nextMonth.AddDate(0, 0, -1).Day()

	rows, err := s.db.Query(ctx, `
		SELECT start_time, total_distance, avg_pace
		FROM activities
		WHERE user_id=$1 AND start_time >= $2 AND start_time < $3
	`, userID, firstOfMonth.UTC(), nextMonth.UTC())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	type dayAccum struct {
		distance  float64
		paceSum   float64
		paceCount int
	}
	daily := map[string]*dayAccum{}
	for rows.Next() {
		var startTime time.Time
		var distance, pace float64
		if err := rows.Scan(&startTime, &distance, &pace); err != nil {
			return nil, nil, err
		}
		key := s.norm.DayKey(startTime)
		acc := daily[key]
		if acc == nil {
			acc = &dayAccum{}
			daily[key] = acc
		}
		acc.distance += distance
		if pace > 0 {
			acc.paceSum += pace
			acc.paceCount++
		}
	}

	// Every day of the month is present, activity or not, so charts
	// render a complete axis.
	monthly := make([]DayEntry, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		key := fmt.Sprintf("%04d-%02d-%02d", local.Year(), int(local.Month()), day)
		entry := DayEntry{Date: key}
		if acc, ok := daily[key]; ok {
			entry.DistanceKm = math.Round(acc.distance/1000*100) / 100
			if acc.paceCount > 0 {
				avg := math.Round(acc.paceSum/float64(acc.paceCount)*10) / 10
				entry.AvgPace = &avg
			}
		}
		monthly = append(monthly, entry)
	}

	recentRows, err := s.db.Query(ctx, `
		SELECT id, start_time, total_distance, total_time, avg_pace
		FROM activities
		WHERE user_id=$1
		ORDER BY start_time DESC
		LIMIT $2
	`, userID, recentActivityCount)
	if err != nil {
		return nil, nil, err
	}
	defer recentRows.Close()

	recent := []RecentActivity{}
	for recentRows.Next() {
		var a RecentActivity
		if err := recentRows.Scan(&a.ID, &a.StartTime, &a.TotalDistance, &a.TotalTime, &a.AvgPace); err != nil {
			return nil, nil, err
		}
		recent = append(recent, a)
	}
	return monthly, recent, nil
}
