package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"support-platform/internal/audit"
	"support-platform/internal/auth"
	"support-platform/internal/routing"
	"support-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RuleAdmin is the rule-management surface consumed by the handlers.
// Both the Postgres and in-memory rule stores satisfy it.
type RuleAdmin interface {
	LoadRules(ctx context.Context, organizationID string) ([]routing.RoutingRule, error)
	CreateRule(ctx context.Context, rule routing.RoutingRule) (routing.RoutingRule, error)
	SetRuleActive(ctx context.Context, organizationID, ruleID string, active bool) error
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth   *auth.Manager
	Rules  RuleAdmin
	Cache  *routing.RuleCache
	Router *routing.Engine
	Audit  *audit.Service
}

// --- Auth ---

type loginRequest struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.OrganizationID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, organization_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.OrganizationID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Rules ---

type createRuleRequest struct {
	Name       string                     `json:"name"`
	Priority   int                        `json:"priority"`
	Conditions []routing.RoutingCondition `json:"conditions"`
	Actions    []routing.RoutingAction    `json:"actions"`
	IsActive   bool                       `json:"is_active"`
}

func (h Handlers) CreateRule(c *gin.Context) {
	if h.Rules == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rule store not configured"})
		return
	}
	organizationID, err := auth.OrganizationID(c.Request.Context())
	if err != nil || organizationID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}

	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	for _, a := range req.Actions {
		if _, err := a.Decode(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	rule, err := h.Rules.CreateRule(c.Request.Context(), routing.RoutingRule{
		Name:           req.Name,
		OrganizationID: organizationID,
		Priority:       req.Priority,
		Conditions:     req.Conditions,
		Actions:        req.Actions,
		IsActive:       req.IsActive,
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rule create failed"})
		return
	}

	h.invalidateRules(c, organizationID)
	h.logRuleChange(c, organizationID, rule.ID, "rule created")
	c.JSON(http.StatusCreated, rule)
}

func (h Handlers) ListRules(c *gin.Context) {
	if h.Rules == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rule store not configured"})
		return
	}
	organizationID, err := auth.OrganizationID(c.Request.Context())
	if err != nil || organizationID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}

	rules, err := h.Rules.LoadRules(c.Request.Context(), organizationID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rule list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (h Handlers) SetRuleActive(c *gin.Context) {
	if h.Rules == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rule store not configured"})
		return
	}
	organizationID, err := auth.OrganizationID(c.Request.Context())
	if err != nil || organizationID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}
	ruleID := c.Param("rule_id")
	if ruleID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "rule_id required"})
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.Rules.SetRuleActive(c.Request.Context(), organizationID, ruleID, req.IsActive); err != nil {
		if errors.Is(err, routing.ErrRuleNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "rule not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rule update failed"})
		return
	}

	h.invalidateRules(c, organizationID)
	change := "rule deactivated"
	if req.IsActive {
		change = "rule activated"
	}
	h.logRuleChange(c, organizationID, ruleID, change)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Routing ---

// RouteMessage runs the routing pipeline for an already-classified message.
//
// A RuleLoadError maps to 503 "routing deferred": the message is not lost,
// the caller should retry once the rule store is reachable.
func (h Handlers) RouteMessage(c *gin.Context) {
	if h.Router == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "router not configured"})
		return
	}
	organizationID, err := auth.OrganizationID(c.Request.Context())
	if err != nil || organizationID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "organization_id required"})
		return
	}

	var msg routing.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	// The caller's token decides the tenant, never the payload.
	msg.OrganizationID = organizationID
	if msg.ID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "message id required"})
		return
	}

	result, err := h.Router.Route(c.Request.Context(), &msg)
	if err != nil {
		var rle *routing.RuleLoadError
		if errors.As(err, &rle) {
			logger.FromGin(c).Warn("routing deferred", "organization_id", organizationID, "err", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "routing deferred"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h Handlers) logRuleChange(c *gin.Context, organizationID, ruleID, change string) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.LogRuleChanged(c.Request.Context(), organizationID, ruleID, change); err != nil {
		logger.FromGin(c).Warn("rule audit write failed", "organization_id", organizationID, "err", err)
	}
}

func (h Handlers) invalidateRules(c *gin.Context, organizationID string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(c.Request.Context(), organizationID); err != nil {
		logger.FromGin(c).Warn("rule cache invalidation failed", "organization_id", organizationID, "err", err)
	}
}
