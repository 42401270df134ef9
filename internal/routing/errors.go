package routing

import (
	"errors"
	"fmt"
)

var ErrInvalidMessage = errors.New("routing: message id and organization_id required")

var errBrokerNotConfigured = errors.New("routing: broker not configured")

// RuleLoadError reports that a tenant's rule set could not be loaded.
//
// It is the only error that crosses the engine boundary: callers should treat
// it as "routing deferred", not "message lost". Condition failures normalize
// to false and action failures are absorbed into the RoutingResult.
type RuleLoadError struct {
	OrganizationID string
	Err            error
}

func (e *RuleLoadError) Error() string {
	return fmt.Sprintf("routing: rule set unavailable for organization %s: %v", e.OrganizationID, e.Err)
}

func (e *RuleLoadError) Unwrap() error { return e.Err }
