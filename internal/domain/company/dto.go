package company

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type CompanyResponse struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     *string        `json:"description,omitempty"`
	Industry        *string        `json:"industry,omitempty"`
	ContactNumber   string         `json:"contact_number"`
	Website         *string        `json:"website,omitempty"`
	EstablishedYear int            `json:"established_year"`
	OwnerID         *string        `json:"owner_id,omitempty"`
	Geofence        geofence.Fence `json:"geofence"`
	WorkingHours    WorkingHours   `json:"working_hours"`
	Timezone        string         `json:"timezone"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// UpdateCompanyRequest is the allow-listed company patch. Geofence, working
// hours and ownership have their own operations and are not part of it.
type UpdateCompanyRequest struct {
	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	Industry        *string `json:"industry,omitempty"`
	ContactNumber   *string `json:"contact_number,omitempty"`
	Website         *string `json:"website,omitempty"`
	EstablishedYear *int    `json:"established_year,omitempty"`
	Timezone        *string `json:"timezone,omitempty"`
}

func (r *UpdateCompanyRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Industry == nil && r.ContactNumber == nil &&
		r.Website == nil && r.EstablishedYear == nil && r.Timezone == nil
}

func (r *UpdateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		} else if len(*r.Name) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 255 characters",
			})
		}
	}

	if r.ContactNumber != nil && validator.IsEmpty(*r.ContactNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "contact_number",
			Message: "contact_number must not be empty",
		})
	}

	if r.EstablishedYear != nil && (*r.EstablishedYear < 1800 || *r.EstablishedYear > time.Now().Year()) {
		errs = append(errs, validator.ValidationError{
			Field:   "established_year",
			Message: "established_year is out of range",
		})
	}

	if r.Timezone != nil {
		if _, err := time.LoadLocation(*r.Timezone); err != nil || validator.IsEmpty(*r.Timezone) {
			errs = append(errs, validator.ValidationError{
				Field:   "timezone",
				Message: "timezone must be a valid IANA timezone",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SetWorkingHoursRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r *SetWorkingHoursRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidClockTime(r.Start) {
		errs = append(errs, validator.ValidationError{
			Field:   "start",
			Message: "start must be in HH:MM format",
		})
	}
	if !validator.IsValidClockTime(r.End) {
		errs = append(errs, validator.ValidationError{
			Field:   "end",
			Message: "end must be in HH:MM format",
		})
	}
	if len(errs) == 0 && r.End <= r.Start {
		errs = append(errs, validator.ValidationError{
			Field:   "end",
			Message: "end must be after start",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SetGeofenceRequest struct {
	CenterLatitude  float64 `json:"center_latitude"`
	CenterLongitude float64 `json:"center_longitude"`
	RadiusMeters    float64 `json:"radius_meters"`
}

func (r *SetGeofenceRequest) Fence() geofence.Fence {
	return geofence.Fence{
		CenterLatitude:  r.CenterLatitude,
		CenterLongitude: r.CenterLongitude,
		RadiusMeters:    r.RadiusMeters,
	}
}

func (r *SetGeofenceRequest) Validate() error {
	return r.Fence().Validate()
}
