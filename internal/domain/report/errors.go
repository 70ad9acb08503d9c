package report

import "errors"

var (
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
	ErrRangeTooLong      = errors.New("report range must not exceed 366 days")
	ErrUnsupportedFormat = errors.New("export format must be xlsx or pdf")
)
