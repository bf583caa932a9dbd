package accrual

import (
	"net/http"

	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/shared/apperror"
	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	sweeper *Sweeper
	logger  *zap.Logger
}

func NewHandler(sweeper *Sweeper, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("accrual.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.handler")
	}
	return &Handler{sweeper: sweeper, logger: l}
}

// TriggerSweep runs one sweep on demand, outside the daily schedule.
func (h *Handler) TriggerSweep(c *gin.Context) {
	credited, err := h.sweeper.RunOnce(c.Request.Context())
	if err != nil {
		h.logger.Error("manual accrual sweep failed", zap.Error(err))
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"credited": credited}, nil)
}
