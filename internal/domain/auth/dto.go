package auth

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// RegisterRequest creates a company together with its owner, who becomes the first admin.
type RegisterRequest struct {
	CompanyName     string  `json:"company_name"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
	ContactNumber   string  `json:"contact_number"`
	Timezone        *string `json:"timezone,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	// Company
	if validator.IsEmpty(r.CompanyName) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_name",
			Message: "company_name is required",
		})
	}
	if len(r.CompanyName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "company_name",
			Message: "company_name must not exceed 255 characters",
		})
	}
	if r.ContactNumber != "" && !validator.IsValidPhoneNumber(r.ContactNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "contact_number",
			Message: "contact_number must contain 8 to 15 digits",
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

	// Owner
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	errs = append(errs, validateEmail(r.Email)...)
	errs = append(errs, validatePassword(r.Password)...)
	if validator.IsEmpty(r.ConfirmPassword) {
		errs = append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "confirm_password is required",
		})
	} else if r.ConfirmPassword != r.Password {
		errs = append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "password and confirm_password do not match",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.Name = strings.TrimSpace(r.Name)
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateEmail(r.Email)...)
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	if validator.IsEmpty(r.RefreshToken) {
		return validator.Single("refresh_token", "refresh_token is required")
	}
	if len(r.RefreshToken) > 2048 {
		return validator.Single("refresh_token", "refresh_token must not exceed 2048 characters")
	}
	return nil
}

func validateEmail(email string) validator.ValidationErrors {
	switch {
	case validator.IsEmpty(email):
		return validator.Single("email", "email is required")
	case len(email) > 254:
		return validator.Single("email", "email must not exceed 254 characters")
	case !validator.IsValidEmail(strings.TrimSpace(email)):
		return validator.Single("email", "email must be a valid email address, e.g. user@example.com")
	}
	return nil
}

func validatePassword(password string) validator.ValidationErrors {
	switch {
	case validator.IsEmpty(password):
		return validator.Single("password", "password is required")
	case len(password) < 8:
		return validator.Single("password", "password must be at least 8 characters long")
	case len(password) > 72:
		return validator.Single("password", "password must not exceed 72 characters")
	}
	return nil
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
