package app

import (
	"context"
	"os"
	"time"

	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/accrual"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/balance"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/employee"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/holiday"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/leave"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const outboxSchema = `
CREATE TABLE IF NOT EXISTS leave_outbox (
	id UUID PRIMARY KEY,
	request_id TEXT NOT NULL DEFAULT '',
	leave_id UUID NOT NULL,
	event_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	retry_count INT NOT NULL DEFAULT 0,
	next_retry_at TIMESTAMPTZ,
	error_message TEXT,
	processed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// BuildApp wires infrastructure, migrations, modules and the background
// accrual sweeper onto the router. The returned stop function cancels the
// sweeper; callers invoke it after the HTTP server has drained.
func BuildApp(router *gin.Engine) (func(), error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return nil, err
	}
	zap.L().Info("database connection established")

	if err := migrate(gormDB); err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	rdb, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return nil, err
	}
	zap.L().Info("redis connection established")

	sweeper, err := registerModules(router, sqlDB, gormDB, rdb)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Run(ctx)

	return cancel, nil
}

func migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&employee.Employee{},
		&holiday.PublicHoliday{},
		&balance.LeaveBalance{},
		&leave.Leave{},
	); err != nil {
		return err
	}
	return gormDB.Exec(outboxSchema).Error
}

func sweepInterval() time.Duration {
	raw := os.Getenv("ACCRUAL_SWEEP_INTERVAL")
	if raw == "" {
		return accrual.DefaultInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		zap.L().Warn("invalid ACCRUAL_SWEEP_INTERVAL, using default", zap.String("value", raw))
		return accrual.DefaultInterval
	}
	return d
}
