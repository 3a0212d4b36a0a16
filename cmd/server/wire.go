package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"mission-dispatch/config"
	"mission-dispatch/internal/admin"
	"mission-dispatch/internal/auth"
	"mission-dispatch/internal/dispatch"
	"mission-dispatch/internal/events"
	"mission-dispatch/internal/jwt"
	"mission-dispatch/internal/logging"
	"mission-dispatch/internal/mission"
	"mission-dispatch/internal/notify"
	"mission-dispatch/internal/redis"
	"mission-dispatch/internal/registry"
	pgmigrate "mission-dispatch/internal/repo/postgres"
	"mission-dispatch/internal/routing"
)

type AppContext struct {
	DB     *sqlx.DB
	Config *config.Config
	Redis  *goredis.Client
	Router *gin.Engine
	Logger *slog.Logger

	// Infrastructure
	JWTService       *jwt.Service
	DriverCache      *redis.DriverLocationCache
	IdempotencyStore *redis.IdempotencyStore
	RateLimiter      *redis.RateLimiter
	Publisher        *events.Publisher

	// Dispatch core
	Registry    *registry.Registry
	Hub         *notify.Hub
	Coordinator *dispatch.Coordinator
	RetryQueue  *dispatch.RetryQueue

	MissionStore   mission.Store
	MissionService mission.Service
	AdminService   admin.Service

	AuthHandler     *auth.Handler
	MissionHandler  *mission.Handler
	DispatchHandler *dispatch.Handler
	NotifyHandler   *notify.Handler
	AdminHandler    *admin.Handler
}

func wireApp(cfg *config.Config) (*AppContext, error) {
	logger := logging.Setup(cfg.Log.Level)

	// ── Postgres ──
	db, err := pgmigrate.Connect(cfg.Postgres.DSN(), pgmigrate.DefaultPoolConfig())
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if err := pgmigrate.RunMigrationsUp(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	// ── Redis ──
	var rdb *goredis.Client
	if cfg.Redis.URL != "" {
		opts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("redis parse url: %w", err)
		}
		rdb = goredis.NewClient(opts)
	} else {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	// ── Infrastructure ──
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	driverCache := redis.NewDriverLocationCache(rdb, cfg.Dispatch.LocationCacheTTL)
	idempotencyStore := redis.NewIdempotencyStore(rdb, cfg.Dispatch.IdempotencyTTL)
	rateLimiter := redis.NewRateLimiter(rdb, cfg.RateLimiter.MaxRequests, cfg.RateLimiter.WindowSeconds)
	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)

	// ── Routing (distance matrix behind a breaker) ──
	mapbox := routing.NewMapboxClient(cfg.Mapbox.BaseURL, cfg.Mapbox.AccessToken, cfg.Mapbox.Timeout)
	router := routing.NewBreaker(mapbox, cfg.Breaker.FailureThreshold, cfg.Breaker.Cooldown)

	// ── Dispatch core ──
	reg := registry.New(driverCache)
	store := mission.NewStore(db)
	hub := notify.NewHub()
	gateway := notify.NewWSGateway(hub)

	coordinator := dispatch.NewCoordinator(store, reg, router, gateway, publisher, dispatch.Config{
		OfferTimeout:  cfg.Dispatch.OfferTimeout,
		RetryCooldown: cfg.Dispatch.RetryCooldown,
		LockWait:      cfg.Dispatch.LockWait,
		MaxRadiusKM:   cfg.Dispatch.MaxRadiusKM,
		RetryBatch:    cfg.Dispatch.RetryBatch,
	}, logger)

	retryQueue := dispatch.NewRetryQueue(cfg.Dispatch.RetryQueueCapacity, coordinator, logger)
	coordinator.SetDriverFreedHook(retryQueue.Enqueue)

	// Offline sweeps run off the connection goroutine; reachable events only
	// enqueue, which never blocks.
	reg.SetHooks(
		func(driverID string) { go coordinator.HandleDriverOffline(driverID) },
		retryQueue.Enqueue,
	)

	// ── Services ──
	missionService := mission.NewService(store)
	adminService := admin.NewService(store, reg, coordinator)
	authService := auth.NewAuthService(jwtService)

	// ── Handlers ──
	authHandler := auth.NewHandler(authService)
	missionHandler := mission.NewHandler(missionService, coordinator, logger)
	dispatchHandler := dispatch.NewHandler(coordinator)
	notifyHandler := notify.NewHandler(hub, reg, coordinator, logger)
	adminHandler := admin.NewHandler(adminService)

	return &AppContext{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Router: gin.New(),
		Logger: logger,

		JWTService:       jwtService,
		DriverCache:      driverCache,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      rateLimiter,
		Publisher:        publisher,

		Registry:    reg,
		Hub:         hub,
		Coordinator: coordinator,
		RetryQueue:  retryQueue,

		MissionStore:   store,
		MissionService: missionService,
		AdminService:   adminService,

		AuthHandler:     authHandler,
		MissionHandler:  missionHandler,
		DispatchHandler: dispatchHandler,
		NotifyHandler:   notifyHandler,
		AdminHandler:    adminHandler,
	}, nil
}

func (a *AppContext) Close() {
	_ = a.Publisher.Close()
	_ = a.DB.Close()
	_ = a.Redis.Close()
}

func (a *AppContext) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	checks := map[string]string{}
	healthy := true

	if err := a.DB.PingContext(ctx); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	} else {
		checks["postgres"] = "ok"
	}

	if err := a.Redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":         checks,
		"drivers_online": a.Registry.Count(),
	})
}
