package app

import (
	"database/sql"
	"time"

	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/accrual"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/balance"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/employee"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/holiday"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/leave"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/messaging/kafka"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/middleware"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) (*accrual.Sweeper, error) {
	// --- Repositories ---
	directory := employee.NewDirectory(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService()
	if err != nil {
		return nil, err
	}

	// --- Services ---
	holidayService := holiday.NewService(holidayRepo)
	balanceService := balance.NewService(balanceRepo, directory)
	leaveService := leave.NewService(db, leaveRepo, balanceRepo, holidayService, outboxRepo)
	sweeper := accrual.NewSweeper(directory, balanceRepo, sweepInterval())

	// --- Handlers ---
	holidayHandler := holiday.NewHandler(holidayService)
	balanceHandler := balance.NewHandler(balanceService)
	leaveHandler := leave.NewHandlerWithRedis(leaveService, rdb)
	accrualHandler := accrual.NewHandler(sweeper)

	// --- Middlewares ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(middleware.RateLimitByIP(rate.Every(time.Second/20), 40))

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		holiday.RegisterRoutes(api, holidayHandler, rbacService)
		balance.RegisterRoutes(api, balanceHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		accrual.RegisterRoutes(api, accrualHandler, rbacService)
	}

	return sweeper, nil
}
