package main

import (
	"database/sql"
	"log/slog"

	"support-platform/internal/audit"
	"support-platform/internal/auth"
	"support-platform/internal/broker"
	"support-platform/internal/config"
	"support-platform/internal/conversation"
	"support-platform/internal/httpapi"
	"support-platform/internal/rbac"
	"support-platform/internal/routing"
	"support-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, cfg config.Config, log *slog.Logger, db *sql.DB, rdb *redis.Client, authManager *auth.Manager) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Routing pipeline wiring. One Redis client backs both the rule cache and
	// the broker queues.
	ruleStore := routing.NewPostgresRuleStore(db)
	ruleCache := routing.NewRuleCache(
		ruleStore,
		routing.NewRedisCache(rdb),
		cfg.Routing.CacheTTL,
		logger.Component(log, "rule_cache"),
	)

	convSvc := conversation.NewService(conversation.NewPostgresRepo(db))
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	auditHook := routing.AuditAdapter{Audit: auditSvc}

	executor := routing.NewExecutor(
		broker.NewRedisBroker(rdb),
		convSvc,
		logger.Component(log, "action_executor"),
	).
		WithAudit(auditHook).
		WithSubmitTimeout(cfg.Routing.ActionTimeout).
		WithMaxAttempts(cfg.Routing.BrokerMaxAttempts)

	engine := routing.NewEngine(ruleCache, executor, logger.Component(log, "rule_engine")).
		WithAudit(auditHook)

	h := httpapi.Handlers{
		Auth:   authManager,
		Rules:  ruleStore,
		Cache:  ruleCache,
		Router: engine,
		Audit:  auditSvc,
	}

	v1 := r.Group("/v1")

	// AUTH routes (token issuance).
	v1.POST("/auth/login", h.Login)

	protected := v1.Group("")
	protected.Use(auth.RequireAccessToken(authManager))
	protected.Use(rbac.RequireOrganization())
	{
		// MESSAGE routing: the upstream pipeline posts classified messages here.
		messages := protected.Group("/messages")
		messages.Use(rbac.RequireAnyRole(rbac.RoleAgent, rbac.RoleAdmin, rbac.RoleOwner))
		{
			messages.POST("/route", h.RouteMessage)
		}

		// RULE management: tenant administrators author routing rules.
		rules := protected.Group("/rules")
		rules.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAdmin))
		{
			rules.GET("", h.ListRules)
			rules.POST("", h.CreateRule)
			rules.PATCH("/:rule_id/active", h.SetRuleActive)
		}
	}
}
