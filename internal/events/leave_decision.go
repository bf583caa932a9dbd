package events

import "time"

const LeaveDecisionTopic = "flexitime.leave.decision.v1"

const (
	EventTypeLeaveApproved = "leave_approved"
	EventTypeLeaveRejected = "leave_rejected"
)

// LeaveDecisionEvent is published whenever a leave request reaches a decision
// so downstream consumers (notifications, reporting) can react without the
// adjudicator knowing about them.
type LeaveDecisionEvent struct {
	EventType  string    `json:"event_type"`
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	LeaveType  string    `json:"leave_type"`
	Status     string    `json:"status"`
	DecidedBy  string    `json:"decided_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
