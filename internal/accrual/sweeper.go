package accrual

import (
	"context"
	"time"

	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/balance"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/employee"

	"go.uber.org/zap"
)

const DefaultInterval = 24 * time.Hour

// Sweeper credits monthly leave on each employee's hire-date anniversary day.
// It runs one sweep per interval; employees whose hire day of month matches
// today's receive a single monthly credit, part-timers at half rate.
type Sweeper struct {
	directory employee.Directory
	balances  balance.Repository
	interval  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewSweeper(
	directory employee.Directory,
	balances balance.Repository,
	interval time.Duration,
	logger ...*zap.Logger,
) *Sweeper {
	l := zap.L().Named("accrual.sweeper")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.sweeper")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		directory: directory,
		balances:  balances,
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    l,
	}
}

// WithClock replaces the sweeper's time source and returns the sweeper.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	if now != nil {
		s.now = now
	}
	return s
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
// The caller owns the goroutine; Run never panics the process over a failed
// sweep, it logs and waits for the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("accrual sweeper started", zap.Duration("interval", s.interval))

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("accrual sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("accrual sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("accrual sweep failed", zap.Error(err))
			}
		}
	}
}

// RunOnce performs a single sweep and reports how many employees were
// credited. A failed credit for one employee does not stop the sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	today := s.now()

	employees, err := s.directory.ListEmployees(ctx)
	if err != nil {
		return 0, err
	}

	credited := 0
	for i := range employees {
		e := &employees[i]
		if e.HireDate.Day() != today.Day() {
			continue
		}

		amount := balance.MonthlyCreditFullTime
		if e.IsPartTime {
			amount = balance.MonthlyCreditPartTime
		}

		if err := s.balances.CreditPaid(ctx, e.ID.String(), amount); err != nil {
			s.logger.Error("monthly credit failed",
				zap.String("employee_id", e.ID.String()),
				zap.Error(err),
			)
			continue
		}

		credited++
		s.logger.Debug("monthly credit applied",
			zap.String("employee_id", e.ID.String()),
			zap.Float64("amount", amount),
		)
	}

	s.logger.Info("accrual sweep finished",
		zap.Int("employees", len(employees)),
		zap.Int("credited", credited),
	)
	return credited, nil
}
