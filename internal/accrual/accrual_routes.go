package accrual

import (
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/middleware"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.POST("/sweep", middleware.RBACAuthorize(rbacService, "balance", "sweep"), handler.TriggerSweep)
	}
}
