package notification

import (
	"context"

	"github.com/CHABEHOU0708863246/FlexiTime-Backend/internal/events"

	"go.uber.org/zap"
)

// Notifier is the email-sender collaborator contract. Delivery itself lives
// outside this service; the log implementation is the default sink.
//
//go:generate mockgen -source=notifier.go -destination=mock/notifier_mock.go -package=mock
type Notifier interface {
	NotifyLeaveDecision(ctx context.Context, event events.LeaveDecisionEvent) error
}

type logNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger ...*zap.Logger) Notifier {
	l := zap.L().Named("notification")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification")
	}
	return &logNotifier{logger: l}
}

func (n *logNotifier) NotifyLeaveDecision(ctx context.Context, event events.LeaveDecisionEvent) error {
	n.logger.Info("leave decision notification",
		zap.String("leave_id", event.LeaveID),
		zap.String("employee_id", event.EmployeeID),
		zap.String("leave_type", event.LeaveType),
		zap.String("status", event.Status),
		zap.String("decided_by", event.DecidedBy),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
