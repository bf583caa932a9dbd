package balance

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
		balances.GET("/:employeeId", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetByEmployee)
		balances.PUT("/:employeeId", middleware.RBACAuthorize(rbacService, "balance", "write"), handler.Update)
		balances.DELETE("/:employeeId", middleware.RBACAuthorize(rbacService, "balance", "write"), handler.Delete)
		balances.POST("/:employeeId/initial", middleware.RBACAuthorize(rbacService, "balance", "write"), handler.CreateInitial)
		balances.POST("/:employeeId/accrue", middleware.RBACAuthorize(rbacService, "balance", "write"), handler.AutoAccrue)
	}
}
