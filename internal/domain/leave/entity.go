package leave

import (
	"time"
)

type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "annual"
	LeaveTypeSick      LeaveType = "sick"
	LeaveTypeMaternity LeaveType = "maternity"
	LeaveTypeOther     LeaveType = "other"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending              LeaveRequestStatus = "pending"
	LeaveRequestStatusApprovedBySupervisor LeaveRequestStatus = "approved_by_supervisor"
	LeaveRequestStatusApprovedByHR         LeaveRequestStatus = "approved_by_hr"
	LeaveRequestStatusRejected             LeaveRequestStatus = "rejected"
)

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string
	CompanyID  string

	StartDate time.Time
	EndDate   time.Time
	LeaveType LeaveType
	Status    LeaveRequestStatus
	Reason    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsUnpaid reports whether the request reduces pay: fully approved by HR and not annual leave.
func (l LeaveRequest) IsUnpaid() bool {
	return l.Status == LeaveRequestStatusApprovedByHR && l.LeaveType != LeaveTypeAnnual
}
