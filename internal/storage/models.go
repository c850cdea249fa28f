package storage

import "time"

// Image is one photo attached to a race. The file lives on disk under
// the upload dir; the row carries the generated filename and the name
// the runner uploaded it with.
type Image struct {
	ID           string    `json:"id"`
	RaceID       string    `json:"race_id"`
	Filename     string    `json:"-"`
	OriginalName string    `json:"original_name"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
