package leave

import (
	"fmt"
	"math"
	"time"
)

// PointsRequired maps a duration to balance points: a full day is one point,
// a half day half a point.
func PointsRequired(d Duration) float64 {
	switch d {
	case DurationFull:
		return 1
	case DurationMorning, DurationAfternoon:
		return 0.5
	}
	return 0
}

// ApprovalPoints is the amount debited when a request is approved:
// the whole days between start and end, rounded up, plus the duration fraction.
// A zero end is treated as start.
func ApprovalPoints(start, end time.Time, d Duration) float64 {
	if end.IsZero() || end.Before(start) {
		end = start
	}
	days := math.Ceil(end.Sub(start).Hours() / 24)
	return days + PointsRequired(d)
}

// Balance holds the points left per leave type.
type Balance map[LeaveType]float64

type Defaults struct {
	Sick   float64 `yaml:"sick"`
	Annual float64 `yaml:"annual"`
	Unpaid float64 `yaml:"unpaid"`
}

func DefaultBalances() Defaults {
	return Defaults{Sick: 7, Annual: 15, Unpaid: 0}
}

func (d Defaults) Balance() Balance {
	return Balance{
		LeaveTypeSick:   d.Sick,
		LeaveTypeAnnual: d.Annual,
		LeaveTypeUnpaid: d.Unpaid,
	}
}

// Covers reports whether points can be taken from the leave type.
func (b Balance) Covers(t LeaveType, points float64) bool {
	return b[t] >= points
}

// Debit subtracts points, refusing rather than going below zero.
func (b Balance) Debit(t LeaveType, points float64) error {
	if points < 0 {
		return fmt.Errorf("debit %s: negative amount %v", t, points)
	}
	if !b.Covers(t, points) {
		return fmt.Errorf("%s balance %v, need %v: %w", t, b[t], points, ErrInsufficientBalance)
	}
	b[t] -= points
	return nil
}

// ToMap flattens the balance for responses.
func (b Balance) ToMap() map[string]float64 {
	out := make(map[string]float64, len(b))
	for _, t := range AllLeaveTypes() {
		out[string(t)] = b[t]
	}
	return out
}
