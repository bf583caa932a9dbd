package balance

import (
	"context"
	"errors"
	"math"
	"time"

	balanceerrors "github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/balance/errors"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/employee"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	// GetOrCreate lazily creates a zero balance on first read.
	GetOrCreate(ctx context.Context, employeeID string) (BalanceResponse, error)

	// Update overwrites the three balances unconditionally.
	Update(ctx context.Context, employeeID string, req UpdateBalanceRequest) (BalanceResponse, error)

	Delete(ctx context.Context, employeeID string) error

	// CreateInitial seeds a new balance from the employee's tenure:
	// monthsSinceHire * 2.5 full-time, * 1.25 part-time. Day of month is
	// ignored in the month count.
	CreateInitial(ctx context.Context, employeeID string) (BalanceResponse, error)

	// AutoAccrue recomputes the paid balance from the record's own age,
	// ceil(months * 2.5) capped at 90, and overwrites it. Repeated calls
	// within the same day converge to the same value.
	AutoAccrue(ctx context.Context, employeeID string) (BalanceResponse, error)
}

type service struct {
	repo      Repository
	directory employee.Directory
	logger    *zap.Logger
}

func NewService(repo Repository, directory employee.Directory, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{repo: repo, directory: directory, logger: l}
}

func (s *service) GetOrCreate(ctx context.Context, employeeID string) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}

	b, err := s.repo.GetOrCreate(ctx, employeeID)
	if err != nil {
		s.logger.Error("get or create balance failed", zap.String("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, err
	}

	return mapToResponse(*b), nil
}

func (s *service) Update(ctx context.Context, employeeID string, req UpdateBalanceRequest) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}

	rows, err := s.repo.Overwrite(ctx, employeeID, req.PaidLeaveBalance, req.UnpaidLeaveBalance, req.SickLeaveBalance)
	if err != nil {
		s.logger.Error("update balance failed", zap.String("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, err
	}
	if rows == 0 {
		s.logger.Warn("update balance matched no row", zap.String("employee_id", employeeID))
		return BalanceResponse{}, balanceerrors.ErrUpdateFailed
	}

	b, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return BalanceResponse{}, err
	}

	s.logger.Info("update balance success",
		zap.String("employee_id", employeeID),
		zap.Float64("paid", b.PaidBalance),
		zap.Float64("unpaid", b.UnpaidBalance),
		zap.Float64("sick", b.SickBalance),
	)
	return mapToResponse(*b), nil
}

func (s *service) Delete(ctx context.Context, employeeID string) error {
	if _, err := uuid.Parse(employeeID); err != nil {
		return balanceerrors.ErrInvalidEmployeeID
	}

	rows, err := s.repo.Delete(ctx, employeeID)
	if err != nil {
		s.logger.Error("delete balance failed", zap.String("employee_id", employeeID), zap.Error(err))
		return err
	}
	if rows == 0 {
		return balanceerrors.ErrDeleteFailed
	}

	s.logger.Info("delete balance success", zap.String("employee_id", employeeID))
	return nil
}

func (s *service) CreateInitial(ctx context.Context, employeeID string) (BalanceResponse, error) {
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}

	emp, err := s.directory.FindEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, balanceerrors.ErrEmployeeNotFound
		}
		s.logger.Error("create initial balance lookup failed", zap.String("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, err
	}

	b := &LeaveBalance{
		ID:          uuid.New(),
		EmployeeID:  employeeUUID,
		PaidBalance: initialPaidLeave(emp.HireDate, emp.IsPartTime, time.Now().UTC()),
	}

	if err := s.repo.Create(ctx, b); err != nil {
		if isUniqueBalanceViolation(err) {
			return BalanceResponse{}, balanceerrors.ErrBalanceExists
		}
		s.logger.Error("create initial balance persist failed", zap.String("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, err
	}

	s.logger.Info("create initial balance success",
		zap.String("employee_id", employeeID),
		zap.Float64("paid", b.PaidBalance),
		zap.Bool("part_time", emp.IsPartTime),
	)
	return mapToResponse(*b), nil
}

func (s *service) AutoAccrue(ctx context.Context, employeeID string) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}

	b, err := s.repo.GetOrCreate(ctx, employeeID)
	if err != nil {
		s.logger.Error("auto accrue load balance failed", zap.String("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, err
	}
	if b == nil {
		return BalanceResponse{}, balanceerrors.ErrBalanceNotFound
	}

	paid := accruedPaidLeave(b.CreatedAt, time.Now().UTC())

	rows, err := s.repo.Overwrite(ctx, employeeID, paid, b.UnpaidBalance, b.SickBalance)
	if err != nil {
		s.logger.Error("auto accrue persist failed", zap.String("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, err
	}
	if rows == 0 {
		return BalanceResponse{}, balanceerrors.ErrUpdateFailed
	}

	s.logger.Info("auto accrue success",
		zap.String("employee_id", employeeID),
		zap.Float64("paid", paid),
	)

	b.PaidBalance = paid
	return mapToResponse(*b), nil
}

// initialPaidLeave seeds the paid balance from whole elapsed months since
// hire; the day of month plays no part here.
func initialPaidLeave(hireDate time.Time, isPartTime bool, now time.Time) float64 {
	monthsSinceHire := (now.Year()-hireDate.Year())*12 + int(now.Month()) - int(hireDate.Month())
	rate := MonthlyCreditFullTime
	if isPartTime {
		rate = MonthlyCreditPartTime
	}
	return float64(monthsSinceHire) * rate
}

// accruedPaidLeave recomputes the paid balance from the record's age, using
// its CreatedAt as a hire-date proxy and a thirtieth per elapsed day, then
// rounds up and caps. Not an incremental credit: re-running it before the
// clock moves yields the same value.
func accruedPaidLeave(createdAt, now time.Time) float64 {
	months := float64((now.Year()-createdAt.Year())*12+int(now.Month())-int(createdAt.Month())) +
		float64(now.Day()-createdAt.Day())/30.0

	total := math.Ceil(months * MonthlyCreditFullTime)
	return math.Min(total, MaxPaidBalance)
}

func isUniqueBalanceViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:                 b.ID.String(),
		EmployeeID:         b.EmployeeID.String(),
		PaidLeaveBalance:   b.PaidBalance,
		UnpaidLeaveBalance: b.UnpaidBalance,
		SickLeaveBalance:   b.SickBalance,
		CreatedAt:          b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          b.UpdatedAt.Format(time.RFC3339),
	}
}
