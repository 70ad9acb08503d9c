package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type CompanyHandler interface {
	GetMine(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	GetWorkingHours(w http.ResponseWriter, r *http.Request)
	SetWorkingHours(w http.ResponseWriter, r *http.Request)
	SetGeofence(w http.ResponseWriter, r *http.Request)
}

type CompanyHandlerImpl struct {
	companyService company.CompanyService
}

func NewCompanyHandler(companyService company.CompanyService) CompanyHandler {
	return &CompanyHandlerImpl{
		companyService: companyService,
	}
}

// GetMine implements CompanyHandler.
func (c *CompanyHandlerImpl) GetMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	result, err := c.companyService.GetMine(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements CompanyHandler.
func (c *CompanyHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	var req company.UpdateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateCompany decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := c.companyService.Update(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Company updated successfully", result)
}

// GetWorkingHours implements CompanyHandler.
func (c *CompanyHandlerImpl) GetWorkingHours(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	result, err := c.companyService.GetWorkingHours(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SetWorkingHours implements CompanyHandler.
func (c *CompanyHandlerImpl) SetWorkingHours(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	var req company.SetWorkingHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := c.companyService.SetWorkingHours(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Working hours updated successfully", result)
}

// SetGeofence implements CompanyHandler.
func (c *CompanyHandlerImpl) SetGeofence(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	var req company.SetGeofenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := c.companyService.SetGeofence(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Geofence updated successfully", result)
}
