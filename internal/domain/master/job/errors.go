package job

import "errors"

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrJobTitleExists = errors.New("job with this title already exists in the department")
)
