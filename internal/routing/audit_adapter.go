package routing

import (
	"context"

	"support-platform/internal/audit"
)

// AuditAdapter bridges the engine's and executor's audit hooks to the shared
// audit.Service.
//
// This keeps routing internals from depending on persistence or on any
// user-facing surface.
type AuditAdapter struct {
	Audit *audit.Service
}

func (a AuditAdapter) LogMessageRouted(ctx context.Context, organizationID, messageID string, appliedRules []string) error {
	if a.Audit == nil {
		return nil
	}
	return a.Audit.LogMessageRouted(ctx, organizationID, messageID, appliedRules)
}

func (a AuditAdapter) LogActionFailure(ctx context.Context, organizationID, messageID string, actionType string, dispatchErr error) error {
	if a.Audit == nil {
		return nil
	}
	return a.Audit.LogActionFailure(ctx, organizationID, messageID, actionType, dispatchErr)
}
