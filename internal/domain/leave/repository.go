package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	// GetApprovedNonAnnual returns HR-approved, non-annual requests overlapping [from, to]
	GetApprovedNonAnnual(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveRequest, error)
}
