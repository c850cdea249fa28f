package race

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend-runlog/internal/activity"
	"backend-runlog/internal/db"
	"backend-runlog/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db         db.Querier
	activities *activity.Service
	images     *storage.Service
}

func NewService(db db.Querier, activities *activity.Service, images *storage.Service) *Service {
	return &Service{db: db, activities: activities, images: images}
}

func parseRaceDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: race_date must be a date", ErrValidation)
	}
	return t.UTC(), nil
}

func validateDistance(dt DistanceType, custom *float64) error {
	if !dt.Valid() {
		return fmt.Errorf("%w: unknown distance_type", ErrValidation)
	}
	if dt == DistanceCustom {
		if custom == nil || *custom <= 0 {
			return fmt.Errorf("%w: distance_custom required for custom races", ErrValidation)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (Race, error) {
	if input.RaceName == "" {
		return Race{}, fmt.Errorf("%w: race_name required", ErrValidation)
	}
	date, err := parseRaceDate(input.RaceDate)
	if err != nil {
		return Race{}, err
	}
	if err := validateDistance(input.DistanceType, input.DistanceCustom); err != nil {
		return Race{}, err
	}

	r := Race{
		ID:             uuid.NewString(),
		UserID:         userID,
		RaceName:       input.RaceName,
		RaceDate:       date,
		Location:       input.Location,
		DistanceType:   input.DistanceType,
		DistanceCustom: input.DistanceCustom,
		TargetTime:     input.TargetTime,
		Status:         StatusScheduled,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO races (id, user_id, race_name, race_date, location, distance_type, distance_custom, target_time, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at
	`, r.ID, r.UserID, r.RaceName, r.RaceDate, r.Location, r.DistanceType, r.DistanceCustom, r.TargetTime, r.Status)
	if err := row.Scan(&r.CreatedAt); err != nil {
		return Race{}, err
	}
	return r, nil
}

const raceColumns = `id, user_id, race_name, race_date, location, distance_type, distance_custom, target_time, actual_time, status, activity_id, review, created_at`

func scanRace(row pgx.Row) (Race, error) {
	var r Race
	err := row.Scan(&r.ID, &r.UserID, &r.RaceName, &r.RaceDate, &r.Location, &r.DistanceType, &r.DistanceCustom, &r.TargetTime, &r.ActualTime, &r.Status, &r.ActivityID, &r.Review, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Race{}, ErrNotFound
	}
	if err != nil {
		return Race{}, err
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, userID string, status Status) ([]Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE user_id=$1 ORDER BY race_date DESC`
	args := []any{userID}
	if status != "" {
		query = `SELECT ` + raceColumns + ` FROM races WHERE user_id=$1 AND status=$2 ORDER BY race_date DESC`
		args = append(args, status)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var races []Race
	for rows.Next() {
		var r Race
		if err := rows.Scan(&r.ID, &r.UserID, &r.RaceName, &r.RaceDate, &r.Location, &r.DistanceType, &r.DistanceCustom, &r.TargetTime, &r.ActualTime, &r.Status, &r.ActivityID, &r.Review, &r.CreatedAt); err != nil {
			return nil, err
		}
		races = append(races, r)
	}
	return races, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Race, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+raceColumns+` FROM races WHERE id=$1 AND user_id=$2
	`, id, userID)
	return scanRace(row)
}

// Detail assembles the full projection. A linked activity that cannot
// be resolved is reported as unlinked rather than failing the read.
func (s *Service) Detail(ctx context.Context, userID, id string) (Detail, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{Race: r}
	if r.ActivityID != nil {
		brief, err := s.activities.Brief(ctx, userID, *r.ActivityID)
		switch {
		case err == nil:
			d.Activity = &brief
		case errors.Is(err, activity.ErrNotFound):
			d.ActivityID = nil
		default:
			return Detail{}, err
		}
	}

	images, err := s.images.ListRaceImages(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if images == nil {
		images = []storage.Image{}
	}
	d.Images = images
	return d, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, patch UpdateInput) (Race, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return Race{}, err
	}

	if patch.RaceName != "" {
		r.RaceName = patch.RaceName
	}
	if patch.RaceDate != "" {
		date, err := parseRaceDate(patch.RaceDate)
		if err != nil {
			return Race{}, err
		}
		r.RaceDate = date
	}
	if patch.Location != "" {
		r.Location = patch.Location
	}
	if patch.DistanceType != "" {
		r.DistanceType = patch.DistanceType
		r.DistanceCustom = patch.DistanceCustom
	}
	if patch.TargetTime != nil {
		r.TargetTime = patch.TargetTime
	}
	if err := validateDistance(r.DistanceType, r.DistanceCustom); err != nil {
		return Race{}, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE races
		SET race_name=$2, race_date=$3, location=$4, distance_type=$5, distance_custom=$6, target_time=$7
		WHERE id=$1
	`, r.ID, r.RaceName, r.RaceDate, r.Location, r.DistanceType, r.DistanceCustom, r.TargetTime)
	if err != nil {
		return Race{}, err
	}
	return r, nil
}

// UpdateResult applies the combined result mutation. The referenced
// activity must belong to the same user; nothing prevents one activity
// from backing several races, matching the product's behavior.
func (s *Service) UpdateResult(ctx context.Context, userID, id string, input ResultInput) (Race, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return Race{}, err
	}
	if !input.Status.Valid() {
		return Race{}, fmt.Errorf("%w: unknown status", ErrValidation)
	}

	r.Status = input.Status
	r.ActualTime = input.ActualTime
	if r.ActualTime != nil && *r.ActualTime <= 0 {
		r.ActualTime = nil
	}
	r.Review = input.Review

	if input.ActivityID != nil {
		var exists bool
		if err := s.db.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM activities WHERE id=$1 AND user_id=$2)
		`, *input.ActivityID, userID).Scan(&exists); err != nil {
			return Race{}, err
		}
		if !exists {
			return Race{}, fmt.Errorf("%w: 연결할 활동을 찾을 수 없습니다", ErrValidation)
		}
	}
	r.ActivityID = input.ActivityID

	_, err = s.db.Exec(ctx, `
		UPDATE races SET status=$2, actual_time=$3, activity_id=$4, review=$5 WHERE id=$1
	`, r.ID, r.Status, r.ActualTime, r.ActivityID, r.Review)
	if err != nil {
		return Race{}, err
	}
	return r, nil
}

// LinkByUpload ingests a race's TCX and points the race at the
// resulting activity. A file whose fingerprint matches an existing
// activity links that activity instead of erroring, so re-uploading
// the race's own file is a safe no-op. Replacing a link leaves the
// previously linked activity untouched in the activity list.
func (s *Service) LinkByUpload(ctx context.Context, userID, id, fileName string, content []byte) (Race, error) {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return Race{}, err
	}

	act, err := s.activities.IngestOrFind(ctx, userID, fileName, content)
	if err != nil {
		return Race{}, err
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE races SET activity_id=$2 WHERE id=$1
	`, r.ID, act.ID); err != nil {
		return Race{}, err
	}
	r.ActivityID = &act.ID
	return r, nil
}

// Delete removes the race and its images. The linked activity, if any,
// survives as an ordinary unlinked activity.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.images.DeleteAllRaceImages(ctx, id); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `DELETE FROM races WHERE id=$1 AND user_id=$2`, id, userID)
	return err
}
