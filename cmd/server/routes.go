package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mission-dispatch/internal/jwt"
	"mission-dispatch/internal/middleware"
)

func (a *AppContext) setupRoutes() {
	r := a.Router

	// ── Global Middleware (outermost → innermost) ──
	r.Use(middleware.Logger())                 // 1. Request logging
	r.Use(middleware.Recovery())               // 2. Panic recovery
	r.Use(middleware.RateLimit(a.RateLimiter)) // 3. Per-caller rate limiting
	r.Use(middleware.Auth(a.JWTService))       // 4. JWT auth (skips /auth/token, /health, /metrics)

	// ── Unauthenticated ──
	r.GET("/health", a.healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/token", a.AuthHandler.GenerateToken)
	}

	// ── Client Routes (role: client) ──
	clientGroup := r.Group("")
	clientGroup.Use(middleware.RoleGuard(jwt.RoleClient))
	{
		// Notification stream; long-lived, stays out of the bulkhead pools.
		clientGroup.GET("/ws/client", a.NotifyHandler.ClientSocket)

		clientGroup.GET("/missions/:id", a.MissionHandler.GetMission)
		clientGroup.GET("/missions/:id/history", a.MissionHandler.GetHistory)

		mutations := clientGroup.Group("")
		mutations.Use(middleware.Bulkhead("mutation", a.Config.Bulkhead.MutationPool))
		mutations.Use(middleware.Idempotency(a.IdempotencyStore))
		{
			mutations.POST("/missions", a.MissionHandler.CreateMission)
			mutations.POST("/missions/:id/confirm-payment", a.MissionHandler.ConfirmPayment)
			mutations.DELETE("/missions/:id", a.MissionHandler.CancelMission)
		}
	}

	// ── Driver Routes (role: driver) ──
	driverGroup := r.Group("/driver")
	driverGroup.Use(middleware.RoleGuard(jwt.RoleDriver))
	{
		// Socket lifetime defines presence; also long-lived, no bulkhead.
		driverGroup.GET("/ws", a.NotifyHandler.DriverSocket)

		mutations := driverGroup.Group("")
		mutations.Use(middleware.Bulkhead("mutation", a.Config.Bulkhead.MutationPool))
		mutations.Use(middleware.Idempotency(a.IdempotencyStore))
		{
			mutations.POST("/missions/:id/accept", a.DispatchHandler.AcceptOffer)
			mutations.POST("/missions/:id/decline", a.DispatchHandler.DeclineOffer)
			mutations.PATCH("/missions/:id/status", a.DispatchHandler.AdvanceStatus)
		}
	}

	// ── Admin Routes (role: admin) ──
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RoleGuard(jwt.RoleAdmin))
	adminGroup.Use(middleware.Bulkhead("admin", a.Config.Bulkhead.AdminPool))
	{
		adminGroup.GET("/missions", a.AdminHandler.ListMissions)
		adminGroup.POST("/missions/:id/dispatch", a.AdminHandler.ForceDispatch)
		adminGroup.GET("/drivers", a.AdminHandler.ListDrivers)
	}
}
