package overtime

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/workflow"
)

var (
	ErrOvertimeRequestNotFound = fmt.Errorf("overtime request: %w", workflow.ErrNotFound)
)
