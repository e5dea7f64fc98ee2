package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/rsharma-dev/attendhub/internal/auth"
	"github.com/rsharma-dev/attendhub/internal/cache"
	"github.com/rsharma-dev/attendhub/internal/config"
	"github.com/rsharma-dev/attendhub/internal/http/handlers"
	"github.com/rsharma-dev/attendhub/internal/http/middlewares"
	"github.com/rsharma-dev/attendhub/internal/observability"
	"github.com/rsharma-dev/attendhub/internal/repo/postgres"
)

func NewRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(otelgin.Middleware("attendhub"))

	// metrics

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(reg)
	r.Use(prom.Middleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	healthHandler := handlers.NewHealthHandler(ping)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	// wire up repositories and handlers

	usersRepo := postgres.NewUsersRepo(pool)
	attendanceRepo := postgres.NewAttendanceRepo(pool)

	jwtManager := auth.NewManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authGate := middlewares.NewAuthMiddleware(jwtManager)

	rosterCache := cache.New(30 * time.Second)

	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager, rosterCache, cfg)
	facultyHandler := handlers.NewFacultyHandler(attendanceRepo, usersRepo, rosterCache)

	loginLimiter := middlewares.NewRateLimiter(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow)

	api := r.Group("/api/v1")
	api.Use(middlewares.RequireJSON())

	users := api.Group("/users")
	users.POST("/register", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Register)
	users.POST("/login", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	users.POST("/refresh-token", authHandler.Refresh)
	users.POST("/logout", authGate.RequireAuth(), authHandler.Logout)
	users.POST("/change-password", authGate.RequireAuth(), authHandler.ChangePassword)
	users.PATCH("/update-account", authGate.RequireAuth(), authHandler.UpdateAccount)

	// faculty routes carry no auth gate; existing clients call them bare
	faculty := api.Group("/faculty")
	faculty.POST("/load-students", facultyHandler.LoadStudents)
	faculty.POST("/mark-attendance", facultyHandler.MarkAttendance)
	faculty.GET("/get-absentee-summary", facultyHandler.AbsenteeSummary)
	faculty.GET("/get-attendance-history", facultyHandler.AttendanceHistory)

	return r
}
