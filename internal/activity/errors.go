package activity

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidFileType = errors.New("TCX 파일만 업로드할 수 있습니다")
	ErrMalformedFile   = errors.New("TCX 파일을 읽을 수 없습니다")
	ErrNotFound        = errors.New("activity not found")
)

// DuplicateError marks an upload whose fingerprint (start time, total
// distance, total time) matches an activity the user already has. It is
// an expected condition surfaced as 409 so the client can warn instead
// of failing.
type DuplicateError struct {
	ExistingID string
	StartTime  time.Time
}

func (e *DuplicateError) Error() string {
	return e.Detail()
}

func (e *DuplicateError) Detail() string {
	return fmt.Sprintf("이미 업로드된 활동입니다 (%s)", e.StartTime.Format("2006-01-02 15:04"))
}
