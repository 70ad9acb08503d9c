package holiday

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type HolidayService interface {
	Create(ctx context.Context, identity user.Identity, req CreateHolidayRequest) (HolidayResponse, error)
	List(ctx context.Context, identity user.Identity, year int) ([]HolidayResponse, error)
	Delete(ctx context.Context, identity user.Identity, id string) error
}
