package race

import "errors"

var (
	ErrNotFound   = errors.New("대회를 찾을 수 없습니다")
	ErrValidation = errors.New("invalid race input")
)
