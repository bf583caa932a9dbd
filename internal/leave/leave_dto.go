package leave

import "time"

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	LeaveType  string `json:"leave_type" binding:"required,oneof=PAID UNPAID SICK PARENTAL OTHER"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Comment    string `json:"comment" binding:"max=500"`
	Reason     string `json:"reason" binding:"max=500"`
}

type LeaveResponse struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employee_id"`
	LeaveType   string     `json:"leave_type"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Comment     string     `json:"comment,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	ApprovedBy  *string    `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}

func toResponse(l *Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:          l.ID.String(),
		EmployeeID:  l.EmployeeID.String(),
		LeaveType:   l.LeaveType,
		StartDate:   l.StartDate.Format(dateLayout),
		EndDate:     l.EndDate.Format(dateLayout),
		Comment:     l.Comment,
		Reason:      l.Reason,
		Status:      l.Status,
		RequestedAt: l.RequestedAt,
		ApprovedAt:  l.ApprovedAt,
	}
	if l.ApprovedBy != nil {
		id := l.ApprovedBy.String()
		resp.ApprovedBy = &id
	}
	return resp
}
