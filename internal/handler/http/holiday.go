package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type HolidayHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type holidayHandlerImpl struct {
	holidayService holiday.HolidayService
}

func NewHolidayHandler(holidayService holiday.HolidayService) HolidayHandler {
	return &holidayHandlerImpl{holidayService: holidayService}
}

func (h *holidayHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	var req holiday.CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.holidayService.Create(r.Context(), identity, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created successfully", result)
}

// List returns the holidays of ?year=, zero meaning the current year.
func (h *holidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	year := 0
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			response.BadRequest(w, "year must be a number", map[string]string{"year": "year must be a number"})
			return
		}
		year = parsed
	}

	results, err := h.holidayService.List(r.Context(), identity, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

func (h *holidayHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	if err := h.holidayService.Delete(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday deleted successfully", nil)
}
