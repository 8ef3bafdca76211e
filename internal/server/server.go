package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/Rustam650/prokolesa/internal/cache"
	"github.com/Rustam650/prokolesa/internal/config"
	custommiddleware "github.com/Rustam650/prokolesa/internal/middleware"
	"github.com/Rustam650/prokolesa/internal/repository"
	"github.com/Rustam650/prokolesa/internal/service"
	"github.com/Rustam650/prokolesa/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	cache  *cache.Cache
}

// NewServer wires repositories, services and handlers onto one router.
// The cache may be nil; catalog feeds and rate limiting then degrade to
// Postgres-only operation.
func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, catalogCache *cache.Cache) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	// Django-era clients send trailing slashes; accept both forms.
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	if catalogCache != nil {
		router.Use(custommiddleware.RateLimitMiddleware(catalogCache.Client(), custommiddleware.RateLimitConfig{
			RequestsPerWindow: 100,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit",
		}, logger))
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Repositories
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	imageRepo := repository.NewImageRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Services
	catalogService := service.NewCatalogService(productRepo, categoryRepo, brandRepo, imageRepo, catalogCache, logger)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, productRepo)
	reviewService := service.NewReviewService(reviewRepo, productRepo)
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret)

	// Handlers
	productHandler := transport.NewProductHandler(catalogService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	reviewHandler := transport.NewReviewHandler(reviewService, logger)
	userHandler := transport.NewUserHandler(userService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	optionalAuth := custommiddleware.OptionalAuth(cfg.JWT.Secret, logger)
	adminMiddleware := []func(http.Handler) http.Handler{
		authMiddleware,
		custommiddleware.RequireAdmin(logger),
	}

	productHandler.RegisterRoutes(router, adminMiddleware)
	catalogHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router, authMiddleware)
	orderHandler.RegisterRoutes(router, optionalAuth, adminMiddleware)
	reviewHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	userHandler.RegisterRoutes(router, authMiddleware)

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
		cache:  catalogCache,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
