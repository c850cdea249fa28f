package activity

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"backend-runlog/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Ingest turns an uploaded TCX file into persisted activities. The
// duplicate check runs against repository state as of the start of the
// call; the inserts happen in one transaction so a failed or aborted
// ingest leaves nothing behind.
func (s *Service) Ingest(ctx context.Context, userID, fileName string, content []byte) ([]Activity, error) {
	if !strings.EqualFold(filepath.Ext(fileName), ".tcx") {
		return nil, ErrInvalidFileType
	}

	parsed, err := parseTCX(content)
	if err != nil {
		return nil, err
	}
	if len(parsed) == 0 {
		return nil, ErrMalformedFile
	}

	for i := range parsed {
		dup, err := s.findDuplicate(ctx, userID, parsed[i])
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, dup
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	for i := range parsed {
		if err := insertActivity(ctx, tx, userID, &parsed[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return parsed, nil
}

// IngestOrFind backs race TCX uploads: when the file's fingerprint
// matches an existing activity it returns that activity instead of
// erroring, so re-uploading a race's own file just refreshes the link.
func (s *Service) IngestOrFind(ctx context.Context, userID, fileName string, content []byte) (Activity, error) {
	if !strings.EqualFold(filepath.Ext(fileName), ".tcx") {
		return Activity{}, ErrInvalidFileType
	}

	parsed, err := parseTCX(content)
	if err != nil {
		return Activity{}, err
	}
	if len(parsed) == 0 {
		return Activity{}, ErrMalformedFile
	}

	first := parsed[0]
	dup, err := s.findDuplicate(ctx, userID, first)
	if err != nil {
		return Activity{}, err
	}
	if dup != nil {
		return s.Get(ctx, userID, dup.ExistingID)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Activity{}, err
	}
	defer tx.Rollback(ctx)

	if err := insertActivity(ctx, tx, userID, &first); err != nil {
		return Activity{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Activity{}, err
	}
	return first, nil
}

func (s *Service) findDuplicate(ctx context.Context, userID string, act Activity) (*DuplicateError, error) {
	var id string
	err := s.db.QueryRow(ctx, `
		SELECT id FROM activities
		WHERE user_id=$1 AND start_time=$2 AND total_distance=$3 AND total_time=$4
	`, userID, act.StartTime, act.TotalDistance, act.TotalTime).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &DuplicateError{ExistingID: id, StartTime: act.StartTime}, nil
}

func insertActivity(ctx context.Context, tx pgx.Tx, userID string, act *Activity) error {
	act.ID = uuid.NewString()
	act.UserID = userID
	_, err := tx.Exec(ctx, `
		INSERT INTO activities (id, user_id, start_time, total_distance, total_time, avg_pace, avg_hr, avg_cadence)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, act.ID, userID, act.StartTime, act.TotalDistance, act.TotalTime, act.AvgPace, act.AvgHR, act.AvgCadence)
	if err != nil {
		return err
	}

	for i := range act.Laps {
		lap := &act.Laps[i]
		lap.ID = uuid.NewString()
		lap.ActivityID = act.ID
		_, err := tx.Exec(ctx, `
			INSERT INTO laps (id, activity_id, lap_number, distance, time, pace, avg_hr, max_hr, avg_cadence)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, lap.ID, lap.ActivityID, lap.LapNumber, lap.Distance, lap.Time, lap.Pace, lap.AvgHR, lap.MaxHR, lap.AvgCadence)
		if err != nil {
			return err
		}
	}
	return nil
}

// List returns the user's activities without laps; Get loads the full
// lap snapshot.
func (s *Service) List(ctx context.Context, userID string) ([]Activity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, start_time, total_distance, total_time, avg_pace, avg_hr, avg_cadence
		FROM activities WHERE user_id=$1
		ORDER BY start_time DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.StartTime, &a.TotalDistance, &a.TotalTime, &a.AvgPace, &a.AvgHR, &a.AvgCadence); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Activity, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, start_time, total_distance, total_time, avg_pace, avg_hr, avg_cadence
		FROM activities WHERE id=$1 AND user_id=$2
	`, id, userID)

	var a Activity
	if err := row.Scan(&a.ID, &a.UserID, &a.StartTime, &a.TotalDistance, &a.TotalTime, &a.AvgPace, &a.AvgHR, &a.AvgCadence); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Activity{}, ErrNotFound
		}
		return Activity{}, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, activity_id, lap_number, distance, time, pace, avg_hr, max_hr, avg_cadence
		FROM laps WHERE activity_id=$1
		ORDER BY lap_number
	`, a.ID)
	if err != nil {
		return Activity{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var lap Lap
		if err := rows.Scan(&lap.ID, &lap.ActivityID, &lap.LapNumber, &lap.Distance, &lap.Time, &lap.Pace, &lap.AvgHR, &lap.MaxHR, &lap.AvgCadence); err != nil {
			return Activity{}, err
		}
		a.Laps = append(a.Laps, lap)
	}
	return a, nil
}

// Brief returns the connected-activity summary races embed, or
// ErrNotFound when the activity does not belong to the user.
func (s *Service) Brief(ctx context.Context, userID, id string) (Brief, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return Brief{}, err
	}
	return briefOf(a), nil
}

// Delete removes the activity, its laps, and clears any race links in
// a single transaction so no race is left pointing at a missing
// activity. Races themselves survive with activity_id set to null.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE races SET activity_id=NULL WHERE activity_id=$1 AND user_id=$2
	`, id, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM laps WHERE activity_id=$1`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM activities WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}
