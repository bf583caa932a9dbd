package leave_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/balance"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/leave"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeLeaveRepository struct {
	withTxFn            func(tx *sql.Tx) leave.Repository
	createFn            func(ctx context.Context, l *leave.Leave) error
	findByIDFn          func(ctx context.Context, id string) (*leave.Leave, error)
	findAllFn           func(ctx context.Context, limit, offset int) ([]leave.Leave, int64, error)
	findAllByEmployeeFn func(ctx context.Context, employeeID string) ([]leave.Leave, error)
	approvePendingFn    func(ctx context.Context, id, approverID string, at time.Time) (int64, error)
	setDecisionFn       func(ctx context.Context, id, status, approverID string, at time.Time) (int64, error)
	setStatusFn         func(ctx context.Context, id, status string) (int64, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) FindByID(ctx context.Context, id string) (*leave.Leave, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) FindAll(ctx context.Context, limit, offset int) ([]leave.Leave, int64, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (f *fakeLeaveRepository) FindAllByEmployee(ctx context.Context, employeeID string) ([]leave.Leave, error) {
	if f.findAllByEmployeeFn != nil {
		return f.findAllByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) ApprovePending(ctx context.Context, id, approverID string, at time.Time) (int64, error) {
	if f.approvePendingFn != nil {
		return f.approvePendingFn(ctx, id, approverID, at)
	}
	return 1, nil
}

func (f *fakeLeaveRepository) SetDecision(ctx context.Context, id, status, approverID string, at time.Time) (int64, error) {
	if f.setDecisionFn != nil {
		return f.setDecisionFn(ctx, id, status, approverID, at)
	}
	return 1, nil
}

func (f *fakeLeaveRepository) SetStatus(ctx context.Context, id, status string) (int64, error) {
	if f.setStatusFn != nil {
		return f.setStatusFn(ctx, id, status)
	}
	return 1, nil
}

type fakeBalanceRepository struct {
	withTxFn            func(tx *sql.Tx) balance.Repository
	getOrCreateFn       func(ctx context.Context, employeeID string) (*balance.LeaveBalance, error)
	findByEmployeeFn    func(ctx context.Context, employeeID string) (*balance.LeaveBalance, error)
	debitIfSufficientFn func(ctx context.Context, employeeID, category string, days float64) (bool, error)
	creditPaidFn        func(ctx context.Context, employeeID string, days float64) error
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeBalanceRepository) GetOrCreate(ctx context.Context, employeeID string) (*balance.LeaveBalance, error) {
	if f.getOrCreateFn != nil {
		return f.getOrCreateFn(ctx, employeeID)
	}
	return &balance.LeaveBalance{}, nil
}

func (f *fakeBalanceRepository) FindByEmployee(ctx context.Context, employeeID string) (*balance.LeaveBalance, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return &balance.LeaveBalance{}, nil
}

func (f *fakeBalanceRepository) Create(ctx context.Context, b *balance.LeaveBalance) error {
	return nil
}

func (f *fakeBalanceRepository) Overwrite(ctx context.Context, employeeID string, paid, unpaid, sick float64) (int64, error) {
	return 1, nil
}

func (f *fakeBalanceRepository) Delete(ctx context.Context, employeeID string) (int64, error) {
	return 1, nil
}

func (f *fakeBalanceRepository) DebitIfSufficient(ctx context.Context, employeeID, category string, days float64) (bool, error) {
	if f.debitIfSufficientFn != nil {
		return f.debitIfSufficientFn(ctx, employeeID, category, days)
	}
	return true, nil
}

func (f *fakeBalanceRepository) CreditPaid(ctx context.Context, employeeID string, days float64) error {
	if f.creditPaidFn != nil {
		return f.creditPaidFn(ctx, employeeID, days)
	}
	return nil
}

type fakeHolidayCalendar struct {
	holidaysBetweenFn func(ctx context.Context, start, end time.Time) ([]time.Time, error)
}

func (f *fakeHolidayCalendar) HolidaysBetween(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	if f.holidaysBetweenFn != nil {
		return f.holidaysBetweenFn(ctx, start, end)
	}
	return nil, nil
}

type fakeOutboxRepository struct {
	withTxFn func(tx *sql.Tx) kafka.OutboxRepository
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
	created  []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListDue(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type leaveServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  leave.Service
	repo     *fakeLeaveRepository
	balances *fakeBalanceRepository
	holidays *fakeHolidayCalendar
	outbox   *fakeOutboxRepository
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeLeaveRepository{}
	balances := &fakeBalanceRepository{}
	holidays := &fakeHolidayCalendar{}
	outbox := &fakeOutboxRepository{}
	svc := leave.NewService(db, repo, balances, holidays, outbox)

	return &leaveServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		service:  svc,
		repo:     repo,
		balances: balances,
		holidays: holidays,
		outbox:   outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	t.Run("success counts business days excluding weekend and holiday", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		// Mon Jan 1 2024 through Fri Jan 5: five weekdays, Jan 1 is a
		// holiday, so four business days are checked against the balance.
		deps.holidays.holidaysBetweenFn = func(ctx context.Context, start, end time.Time) ([]time.Time, error) {
			return []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
		}
		deps.balances.getOrCreateFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			assert.Equal(t, employeeID, eid)
			return &balance.LeaveBalance{PaidBalance: 10}, nil
		}
		var created *leave.Leave
		deps.repo.createFn = func(ctx context.Context, l *leave.Leave) error {
			created = l
			return nil
		}

		resp, err := deps.service.Submit(ctx, leave.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leave.TypePaid,
			StartDate:  "2024-01-01",
			EndDate:    "2024-01-05",
			Reason:     "Family trip",
		})

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, employeeID, resp.EmployeeID)
		assert.NotNil(t, created)
		assert.Equal(t, leave.StatusPending, created.Status)
		assert.False(t, created.RequestedAt.IsZero())
	})

	t.Run("negative weekend only range", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		createCalled := false
		deps.repo.createFn = func(ctx context.Context, l *leave.Leave) error {
			createCalled = true
			return nil
		}

		// Sat Jan 6 and Sun Jan 7 2024.
		_, err := deps.service.Submit(ctx, leave.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leave.TypePaid,
			StartDate:  "2024-01-06",
			EndDate:    "2024-01-07",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no business days in range")
		assert.False(t, createCalled)
	})

	t.Run("negative insufficient balance names both figures", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.balances.getOrCreateFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			return &balance.LeaveBalance{PaidBalance: 3}, nil
		}

		// Mon Jan 8 through Fri Jan 12 2024: five business days against 3.
		_, err := deps.service.Submit(ctx, leave.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leave.TypePaid,
			StartDate:  "2024-01-08",
			EndDate:    "2024-01-12",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient leave balance")
		assert.Contains(t, err.Error(), "3")
		assert.Contains(t, err.Error(), "5")
	})

	t.Run("negative start after end", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, leave.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leave.TypePaid,
			StartDate:  "2024-01-12",
			EndDate:    "2024-01-08",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "start date must not be after end date")
	})

	t.Run("negative bad date format", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, leave.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leave.TypePaid,
			StartDate:  "08/01/2024",
			EndDate:    "2024-01-12",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid date format")
	})

	t.Run("sick leave checked against sick balance", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.balances.getOrCreateFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			return &balance.LeaveBalance{PaidBalance: 0, SickBalance: 2}, nil
		}

		// Mon Jan 8 and Tue Jan 9 2024.
		resp, err := deps.service.Submit(ctx, leave.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leave.TypeSick,
			StartDate:  "2024-01-08",
			EndDate:    "2024-01-09",
		})

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusPending, resp.Status)
	})

	t.Run("negative untracked type has zero available balance", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		// A generous paid balance must not cover a category without its own
		// bucket; untracked categories always fail the sufficiency check.
		deps.balances.getOrCreateFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			return &balance.LeaveBalance{PaidBalance: 30}, nil
		}
		createCalled := false
		deps.repo.createFn = func(ctx context.Context, l *leave.Leave) error {
			createCalled = true
			return nil
		}

		_, err := deps.service.Submit(ctx, leave.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  leave.TypeParental,
			StartDate:  "2024-01-08",
			EndDate:    "2024-01-12",
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient leave balance")
		assert.Contains(t, err.Error(), "current balance 0")
		assert.False(t, createCalled)
	})
}

func TestLeaveService_Approve(t *testing.T) {
	ctx := context.Background()
	approverID := uuid.New().String()

	pendingLeave := func() *leave.Leave {
		return &leave.Leave{
			ID:         uuid.New(),
			EmployeeID: uuid.New(),
			LeaveType:  leave.TypePaid,
			StartDate:  time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
			Status:     leave.StatusPending,
		}
	}

	t.Run("success debits calendar days atomically", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			assert.Equal(t, l.ID.String(), id)
			return l, nil
		}

		var debitedDays float64
		deps.balances.debitIfSufficientFn = func(ctx context.Context, eid, category string, days float64) (bool, error) {
			assert.Equal(t, l.EmployeeID.String(), eid)
			assert.Equal(t, leave.TypePaid, category)
			debitedDays = days
			return true, nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Approve(ctx, l.ID.String(), approverID)

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.Equal(t, approverID, *resp.ApprovedBy)
		// Jan 8 through Jan 12 inclusive is five calendar days.
		assert.Equal(t, 5.0, debitedDays)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave_approved", deps.outbox.created[0].EventType)
		assert.Equal(t, l.ID.String(), deps.outbox.created[0].LeaveID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative insufficient balance rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave()
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return l, nil
		}
		deps.balances.findByEmployeeFn = func(ctx context.Context, eid string) (*balance.LeaveBalance, error) {
			return &balance.LeaveBalance{PaidBalance: 2}, nil
		}
		deps.balances.debitIfSufficientFn = func(ctx context.Context, eid, category string, days float64) (bool, error) {
			return false, nil
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, l.ID.String(), approverID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient leave balance")
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not pending rolls back the debit", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := pendingLeave()
		l.Status = leave.StatusApproved
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return l, nil
		}
		deps.repo.approvePendingFn = func(ctx context.Context, id, aid string, at time.Time) (int64, error) {
			return 0, nil
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, l.ID.String(), approverID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not pending")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative leave not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Approve(ctx, uuid.New().String(), approverID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "leave request not found")
	})

	t.Run("negative invalid approver id", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Approve(ctx, uuid.New().String(), "not-a-uuid")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid approver id")
	})
}

func TestLeaveService_Reject(t *testing.T) {
	ctx := context.Background()
	approverID := uuid.New().String()

	t.Run("success stamps rejection and enqueues event", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := &leave.Leave{
			ID:         uuid.New(),
			EmployeeID: uuid.New(),
			LeaveType:  leave.TypePaid,
			Status:     leave.StatusPending,
		}
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return l, nil
		}
		deps.repo.setDecisionFn = func(ctx context.Context, id, status, aid string, at time.Time) (int64, error) {
			assert.Equal(t, leave.StatusRejected, status)
			assert.Equal(t, approverID, aid)
			return 1, nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Reject(ctx, l.ID.String(), approverID)

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave_rejected", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejects an already approved request without refund", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := &leave.Leave{
			ID:         uuid.New(),
			EmployeeID: uuid.New(),
			LeaveType:  leave.TypePaid,
			Status:     leave.StatusApproved,
		}
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return l, nil
		}

		creditCalled := false
		deps.balances.creditPaidFn = func(ctx context.Context, eid string, days float64) error {
			creditCalled = true
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Reject(ctx, l.ID.String(), approverID)

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.False(t, creditCalled)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		l := &leave.Leave{
			ID:         uuid.New(),
			EmployeeID: uuid.New(),
			LeaveType:  leave.TypePaid,
			Status:     leave.StatusPending,
		}
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return l, nil
		}
		deps.repo.setStatusFn = func(ctx context.Context, id, status string) (int64, error) {
			assert.Equal(t, leave.StatusCancelled, status)
			return 1, nil
		}

		resp, err := deps.service.Cancel(ctx, l.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, resp.Status)
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Cancel(ctx, uuid.New().String())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "leave request not found")
	})
}

func TestLeaveService_Queries(t *testing.T) {
	ctx := context.Background()

	t.Run("get all by employee maps responses", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		employeeID := uuid.New()
		deps.repo.findAllByEmployeeFn = func(ctx context.Context, eid string) ([]leave.Leave, error) {
			assert.Equal(t, employeeID.String(), eid)
			return []leave.Leave{
				{
					ID:         uuid.New(),
					EmployeeID: employeeID,
					LeaveType:  leave.TypeSick,
					StartDate:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
					EndDate:    time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
					Status:     leave.StatusPending,
				},
			}, nil
		}

		resp, err := deps.service.GetAllByEmployee(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "2024-04-01", resp[0].StartDate)
		assert.Equal(t, leave.TypeSick, resp[0].LeaveType)
	})

	t.Run("get all reports total for pagination", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllFn = func(ctx context.Context, limit, offset int) ([]leave.Leave, int64, error) {
			assert.Equal(t, 20, limit)
			assert.Equal(t, 40, offset)
			return []leave.Leave{}, 73, nil
		}

		resp, total, err := deps.service.GetAll(ctx, 20, 40)

		assert.NoError(t, err)
		assert.Empty(t, resp)
		assert.Equal(t, int64(73), total)
	})

	t.Run("negative invalid employee id", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetAllByEmployee(ctx, "nope")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid employee id")
	})
}
