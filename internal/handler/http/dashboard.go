package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetCompanyDashboard returns the admin overview for one day
	GetCompanyDashboard(w http.ResponseWriter, r *http.Request)
	// GetMyDashboard returns the caller's own overview
	GetMyDashboard(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetCompanyDashboard handles GET /dashboard?date=YYYY-MM-DD
func (h *dashboardHandlerImpl) GetCompanyDashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.dashboardService.GetCompanyDashboard(r.Context(), identity, r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyDashboard handles GET /dashboard/me
func (h *dashboardHandlerImpl) GetMyDashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.dashboardService.GetMyDashboard(r.Context(), identity)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
