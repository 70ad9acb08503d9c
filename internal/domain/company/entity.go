package company

import (
	"fmt"
	"time"
	_ "time/tzdata" // company timezones must resolve on minimal images

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/geofence"
)

// WorkingHours holds the daily schedule as "HH:MM" strings.
type WorkingHours struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

type Company struct {
	ID              string
	Name            string
	Description     *string
	Industry        *string
	ContactNumber   string
	Website         *string
	EstablishedYear int
	OwnerID         *string
	Geofence        geofence.Fence
	WorkingHours    WorkingHours
	Timezone        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Location resolves the company timezone, falling back to UTC.
func (c *Company) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsLate compares t, in company local time, against the working-hours start.
// Arrival strictly after the start minute is late.
func (c *Company) IsLate(t time.Time) bool {
	local := t.In(c.Location())
	return fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute()) > c.WorkingHours.Start
}

// Defaults seed the settings of a newly registered company.
type Defaults struct {
	Geofence     geofence.Fence `yaml:"geofence"`
	WorkingHours WorkingHours   `yaml:"working_hours"`
	Timezone     string         `yaml:"timezone"`
}

func DefaultSettings() Defaults {
	return Defaults{
		Geofence: geofence.Fence{
			CenterLatitude:  11.553861,
			CenterLongitude: 104.920528,
			RadiusMeters:    100,
		},
		WorkingHours: WorkingHours{Start: "09:00", End: "17:00"},
		Timezone:     "UTC",
	}
}
