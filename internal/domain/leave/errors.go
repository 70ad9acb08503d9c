package leave

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
)

var (
	ErrLeaveRequestNotFound = fmt.Errorf("leave request: %w", workflow.ErrNotFound)
	ErrInsufficientBalance  = errors.New("insufficient leave balance")
	ErrBalanceNotFound      = errors.New("leave balance not found")
)
