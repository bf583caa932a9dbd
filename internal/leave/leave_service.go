package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/balance"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/events"
	leaveerrors "github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/leave/errors"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/messaging/kafka"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// HolidayCalendar is the slice of the holiday module the adjudicator needs.
type HolidayCalendar interface {
	HolidaysBetween(ctx context.Context, start, end time.Time) ([]time.Time, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	// Submit files a request after checking that the period contains at
	// least one business day and that the employee's balance covers the
	// business-day count. The request starts out PENDING; no balance is
	// debited yet.
	Submit(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error)

	// Approve flips a PENDING request to APPROVED and debits the employee's
	// balance by the calendar-day span of the request, holidays and
	// weekends included. Debit and status change commit atomically.
	Approve(ctx context.Context, leaveID, approverID string) (LeaveResponse, error)

	// Reject stamps REJECTED regardless of the current status.
	Reject(ctx context.Context, leaveID, approverID string) (LeaveResponse, error)

	// Cancel stamps CANCELLED regardless of the current status. No balance
	// is refunded.
	Cancel(ctx context.Context, leaveID string) (LeaveResponse, error)

	GetByID(ctx context.Context, leaveID string) (LeaveResponse, error)
	GetAllByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	GetAll(ctx context.Context, limit, offset int) ([]LeaveResponse, int64, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	balances balance.Repository
	holidays HolidayCalendar
	outbox   kafka.OutboxRepository
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balances balance.Repository,
	holidays HolidayCalendar,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		balances: balances,
		holidays: holidays,
		outbox:   outbox,
		logger:   l,
	}
}

func (s *service) Submit(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	if start.After(end) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	holidays, err := s.holidays.HolidaysBetween(ctx, start, end)
	if err != nil {
		s.logger.Error("holiday lookup failed", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return LeaveResponse{}, err
	}

	businessDays := countBusinessDays(start, end, holidays)
	if businessDays <= 0 {
		return LeaveResponse{}, leaveerrors.ErrNoBusinessDays
	}

	b, err := s.balances.GetOrCreate(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrBalanceNotFound
		}
		s.logger.Error("balance lookup failed", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return LeaveResponse{}, err
	}

	available := availableFor(b, req.LeaveType)
	if available < businessDays {
		s.logger.Debug("leave refused, balance too low",
			zap.String("employee_id", req.EmployeeID),
			zap.Float64("available", available),
			zap.Float64("requested", businessDays),
		)
		return LeaveResponse{}, leaveerrors.InsufficientBalance(available, businessDays)
	}

	l := &Leave{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		LeaveType:   req.LeaveType,
		StartDate:   start,
		EndDate:     end,
		Comment:     req.Comment,
		Reason:      req.Reason,
		Status:      StatusPending,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("create leave failed", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("leave submitted",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.Float64("business_days", businessDays),
	)
	return toResponse(l), nil
}

func (s *service) Approve(ctx context.Context, leaveID, approverID string) (LeaveResponse, error) {
	if _, err := uuid.Parse(leaveID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	approver, err := uuid.Parse(approverID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidApproverID
	}

	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	// Approval debits calendar days, not the business days checked at
	// submission. Weekends and holidays inside the span count.
	duration := calendarDays(l.StartDate, l.EndDate)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	txLeaves := s.repo.WithTx(tx)
	txBalances := s.balances.WithTx(tx)
	txOutbox := s.outbox.WithTx(tx)

	if _, err := s.balances.FindByEmployee(ctx, l.EmployeeID.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrBalanceNotFound
		}
		return LeaveResponse{}, err
	}

	debited, err := txBalances.DebitIfSufficient(ctx, l.EmployeeID.String(), l.LeaveType, duration)
	if err != nil {
		s.logger.Error("debit failed", zap.String("leave_id", leaveID), zap.Error(err))
		return LeaveResponse{}, err
	}
	if !debited {
		b, berr := s.balances.FindByEmployee(ctx, l.EmployeeID.String())
		if berr != nil {
			return LeaveResponse{}, berr
		}
		return LeaveResponse{}, leaveerrors.InsufficientBalance(availableFor(b, l.LeaveType), duration)
	}

	now := time.Now().UTC()
	rows, err := txLeaves.ApprovePending(ctx, leaveID, approverID, now)
	if err != nil {
		return LeaveResponse{}, err
	}
	if rows == 0 {
		// Not pending anymore; the rollback undoes the debit.
		return LeaveResponse{}, leaveerrors.ErrNotPending
	}

	if err := s.enqueueDecision(ctx, txOutbox, l, events.EventTypeLeaveApproved, StatusApproved, approverID, now); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	l.Status = StatusApproved
	l.ApprovedBy = &approver
	l.ApprovedAt = &now

	s.logger.Info("leave approved",
		zap.String("leave_id", leaveID),
		zap.String("approver_id", approverID),
		zap.Float64("days_debited", duration),
	)
	return toResponse(l), nil
}

func (s *service) Reject(ctx context.Context, leaveID, approverID string) (LeaveResponse, error) {
	if _, err := uuid.Parse(leaveID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	approver, err := uuid.Parse(approverID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidApproverID
	}

	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	rows, err := s.repo.WithTx(tx).SetDecision(ctx, leaveID, StatusRejected, approverID, now)
	if err != nil {
		s.logger.Error("reject leave failed", zap.String("leave_id", leaveID), zap.Error(err))
		return LeaveResponse{}, err
	}
	if rows == 0 {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	if err := s.enqueueDecision(ctx, s.outbox.WithTx(tx), l, events.EventTypeLeaveRejected, StatusRejected, approverID, now); err != nil {
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	l.Status = StatusRejected
	l.ApprovedBy = &approver
	l.ApprovedAt = &now

	s.logger.Info("leave rejected", zap.String("leave_id", leaveID), zap.String("approver_id", approverID))
	return toResponse(l), nil
}

func (s *service) Cancel(ctx context.Context, leaveID string) (LeaveResponse, error) {
	if _, err := uuid.Parse(leaveID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	rows, err := s.repo.SetStatus(ctx, leaveID, StatusCancelled)
	if err != nil {
		s.logger.Error("cancel leave failed", zap.String("leave_id", leaveID), zap.Error(err))
		return LeaveResponse{}, err
	}
	if rows == 0 {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	l.Status = StatusCancelled

	s.logger.Info("leave cancelled", zap.String("leave_id", leaveID))
	return toResponse(l), nil
}

func (s *service) GetByID(ctx context.Context, leaveID string) (LeaveResponse, error) {
	if _, err := uuid.Parse(leaveID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return toResponse(l), nil
}

func (s *service) GetAllByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}

	leaves, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("list leaves failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	responses := make([]LeaveResponse, 0, len(leaves))
	for i := range leaves {
		responses = append(responses, toResponse(&leaves[i]))
	}
	return responses, nil
}

func (s *service) GetAll(ctx context.Context, limit, offset int) ([]LeaveResponse, int64, error) {
	leaves, total, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error("list leaves failed", zap.Error(err))
		return nil, 0, err
	}

	responses := make([]LeaveResponse, 0, len(leaves))
	for i := range leaves {
		responses = append(responses, toResponse(&leaves[i]))
	}
	return responses, total, nil
}

func (s *service) enqueueDecision(
	ctx context.Context,
	outbox kafka.OutboxRepository,
	l *Leave,
	eventType, status, approverID string,
	at time.Time,
) error {
	payload, err := json.Marshal(events.LeaveDecisionEvent{
		EventType:  eventType,
		LeaveID:    l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		Status:     status,
		DecidedBy:  approverID,
		OccurredAt: at,
	})
	if err != nil {
		return err
	}

	return outbox.Create(ctx, kafka.OutboxEvent{
		ID:        uuid.New().String(),
		RequestID: contextutil.GetRequestID(ctx),
		LeaveID:   l.ID.String(),
		EventType: eventType,
		Payload:   payload,
		Status:    kafka.OutboxStatusPending,
	})
}

// countBusinessDays walks the inclusive range and counts days that are
// neither weekend days nor public holidays.
func countBusinessDays(start, end time.Time, holidays []time.Time) float64 {
	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Format(dateLayout)] = struct{}{}
	}

	days := 0.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if _, ok := holidaySet[d.Format(dateLayout)]; ok {
			continue
		}
		days++
	}
	return days
}

// calendarDays is the inclusive span in whole days, weekends included.
func calendarDays(start, end time.Time) float64 {
	return end.Sub(start).Hours()/24 + 1
}

// availableFor picks the balance bucket matching the leave type. Categories
// without a tracked bucket have nothing to draw from and report zero, so they
// never pass the submission check.
func availableFor(b *balance.LeaveBalance, leaveType string) float64 {
	switch leaveType {
	case TypePaid:
		return b.PaidBalance
	case TypeUnpaid:
		return b.UnpaidBalance
	case TypeSick:
		return b.SickBalance
	default:
		return 0
	}
}
