package balance

type UpdateBalanceRequest struct {
	PaidLeaveBalance   float64 `json:"paid_leave_balance" binding:"gte=0"`
	UnpaidLeaveBalance float64 `json:"unpaid_leave_balance" binding:"gte=0"`
	SickLeaveBalance   float64 `json:"sick_leave_balance" binding:"gte=0"`
}

type BalanceResponse struct {
	ID                 string  `json:"id"`
	EmployeeID         string  `json:"employee_id"`
	PaidLeaveBalance   float64 `json:"paid_leave_balance"`
	UnpaidLeaveBalance float64 `json:"unpaid_leave_balance"`
	SickLeaveBalance   float64 `json:"sick_leave_balance"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}
