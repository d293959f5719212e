package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"factorylink/internal/config"
	custommiddleware "factorylink/internal/middleware"
	"factorylink/internal/repository"
	"factorylink/internal/service"
	"factorylink/internal/storage"
	"factorylink/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	db      *sql.DB
	redis   *redis.Client
	objects *storage.JetStreamStore
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, objects *storage.JetStreamStore) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, !cfg.Server.IsProduction()))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Redis backs the brute-force guard on the credential endpoints
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	factoryRepo := repository.NewFactoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	pictureRepo := repository.NewPictureRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, cfg.JWT)
	categoryService := service.NewCategoryService(categoryRepo)
	factoryService := service.NewFactoryService(factoryRepo, productRepo, categoryRepo, objects)
	pictureService := service.NewPictureService(pictureRepo, factoryRepo, objects)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, cfg, logger)
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)
	factoryHandler := transport.NewFactoryHandler(factoryService, pictureService, logger)
	pictureHandler := transport.NewPictureHandler(pictureService, logger)

	// Create auth and rate limit middleware
	authMiddleware := custommiddleware.AuthMiddleware(userService, logger)
	rateLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:auth",
	}, logger)

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware, rateLimiter)
	categoryHandler.RegisterRoutes(router, authMiddleware)
	factoryHandler.RegisterRoutes(router, authMiddleware)
	pictureHandler.RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		db:      db,
		redis:   redisClient,
		objects: objects,
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

	if s.objects != nil {
		s.objects.Close()
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
