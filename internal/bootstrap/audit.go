package bootstrap

import "context"

// AuditLog is a structured record of a notable operational event, kept
// separate from request logging so it can be shipped elsewhere later.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
