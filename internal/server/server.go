package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"adbazaar/internal/config"
	custommiddleware "adbazaar/internal/middleware"
	"adbazaar/internal/repository"
	"adbazaar/internal/service"
	"adbazaar/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	isDevelopment := cfg.Server.Env != "production"

	// Redis client for rate limiting
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Add basic middleware. chi requires every Use before the first route.
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, isDevelopment))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 60,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	adRepo := repository.NewAdRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Initialize services
	audit := service.NewAuditRecorder(auditRepo, logger)
	userService := service.NewUserService(userRepo, refreshTokenRepo, audit, cfg.JWT.Secret)
	adService := service.NewAdService(adRepo, categoryRepo, userRepo, audit)
	paymentService := service.NewPaymentService(paymentRepo, adRepo, userRepo, audit, cfg.Payment)
	categoryService := service.NewCategoryService(categoryRepo, audit)
	statsService := service.NewStatsService(statsRepo)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	adHandler := transport.NewAdHandler(adService, logger)
	paymentHandler := transport.NewPaymentHandler(paymentService, logger)
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)
	adminHandler := transport.NewAdminHandler(userService, statsService, audit, logger)

	// Auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware)
	adHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	paymentHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	categoryHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	adminHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
