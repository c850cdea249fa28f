package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"backend-runlog/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	MaxImagesPerRace = 5
	MaxImageSize     = 5 * 1024 * 1024
)

var (
	ErrImageType     = errors.New("PNG, JPG, JPEG 파일만 업로드할 수 있습니다")
	ErrImageTooLarge = errors.New("파일 크기는 5MB 이하여야 합니다")
	ErrTooManyImages = errors.New("이미지는 최대 5장까지 업로드할 수 있습니다")
	ErrNotFound      = errors.New("image not found")
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Service stores race images: bytes on disk under dir/races/<race_id>,
// metadata rows in postgres.
type Service struct {
	db  db.Querier
	dir string
}

func NewService(db db.Querier, dir string) *Service {
	return &Service{db: db, dir: dir}
}

func (s *Service) SaveRaceImage(ctx context.Context, raceID, originalName string, content []byte) (Image, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return Image{}, ErrImageType
	}
	if len(content) > MaxImageSize {
		return Image{}, ErrImageTooLarge
	}

	var count int
	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM race_images WHERE race_id=$1
	`, raceID).Scan(&count); err != nil {
		return Image{}, err
	}
	if count >= MaxImagesPerRace {
		return Image{}, ErrTooManyImages
	}

	img := Image{
		ID:           uuid.NewString(),
		RaceID:       raceID,
		Filename:     uuid.NewString() + ext,
		OriginalName: originalName,
	}

	raceDir := filepath.Join(s.dir, "races", raceID)
	if err := os.MkdirAll(raceDir, 0o755); err != nil {
		return Image{}, err
	}
	path := filepath.Join(raceDir, img.Filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return Image{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO race_images (id, race_id, filename, original_name)
		VALUES ($1,$2,$3,$4)
		RETURNING uploaded_at
	`, img.ID, img.RaceID, img.Filename, img.OriginalName)
	if err := row.Scan(&img.UploadedAt); err != nil {
		_ = os.Remove(path)
		return Image{}, err
	}
	return img, nil
}

func (s *Service) ListRaceImages(ctx context.Context, raceID string) ([]Image, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, race_id, filename, original_name, uploaded_at
		FROM race_images WHERE race_id=$1
		ORDER BY uploaded_at
	`, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.RaceID, &img.Filename, &img.OriginalName, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func (s *Service) DeleteRaceImage(ctx context.Context, raceID, imageID string) error {
	var filename string
	err := s.db.QueryRow(ctx, `
		SELECT filename FROM race_images WHERE id=$1 AND race_id=$2
	`, imageID, raceID).Scan(&filename)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, `
		DELETE FROM race_images WHERE id=$1 AND race_id=$2
	`, imageID, raceID); err != nil {
		return err
	}

	// Best effort: the row is authoritative, a leftover file is junk
	// rather than a dangling reference.
	_ = os.Remove(filepath.Join(s.dir, "races", raceID, filename))
	return nil
}

// DeleteAllRaceImages removes every image row and file for a race.
// Called when the race itself is deleted.
func (s *Service) DeleteAllRaceImages(ctx context.Context, raceID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM race_images WHERE race_id=$1`, raceID); err != nil {
		return err
	}
	_ = os.RemoveAll(filepath.Join(s.dir, "races", raceID))
	return nil
}

// FilePath resolves an image to its on-disk location for serving.
func (s *Service) FilePath(ctx context.Context, raceID, imageID string) (string, error) {
	var filename string
	err := s.db.QueryRow(ctx, `
		SELECT filename FROM race_images WHERE id=$1 AND race_id=$2
	`, imageID, raceID).Scan(&filename)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, "races", raceID, filename)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}
