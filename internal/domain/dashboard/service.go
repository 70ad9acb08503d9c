package dashboard

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type DashboardService interface {
	// GetCompanyDashboard returns the admin overview for date (YYYY-MM-DD, default today)
	GetCompanyDashboard(ctx context.Context, identity user.Identity, date string) (CompanyDashboardResponse, error)
	// GetMyDashboard returns the caller's own overview for the current month
	GetMyDashboard(ctx context.Context, identity user.Identity) (MyDashboardResponse, error)
}
