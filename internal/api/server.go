package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"eventease/internal/cache"
	"eventease/internal/config"
	"eventease/internal/database"
	"eventease/internal/handlers"
	"eventease/internal/messaging"
	"eventease/internal/metrics"
	"eventease/internal/middleware"
	"eventease/internal/repository"
	"eventease/internal/search"
	"eventease/internal/service"
	"eventease/internal/validation"

	"github.com/gin-gonic/gin"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	locks    *cache.InflightLocks
	search   *search.ElasticsearchClient
	services *service.Services
}

// NewServer создает новый экземпляр сервера. Недоступные Valkey, NATS и Elasticsearch
// отключаются с предупреждением; без базы данных сервер не стартует.
func NewServer(cfg *config.Config) (*Server, error) {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	if err := validation.Register(); err != nil {
		return nil, err
	}

	// Подключаемся к базе данных
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Запускаем миграции
	if cfg.Database.RunMigrations {
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	s := &Server{
		config: cfg,
		db:     db,
	}
	s.connectBackends()

	// Создаем репозитории и сервисы
	repos := repository.NewRepositories(db)
	s.services = service.NewServices(repos, service.Backends{
		NATS:   s.nats,
		Valkey: s.valkey,
		Locks:  s.locks,
		Search: s.search,
	})

	// Создаем роутер
	router := gin.New()

	// Применяем middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.Metrics())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	s.router = router
	s.setupRoutes()

	return s, nil
}

// connectBackends подключает необязательную инфраструктуру
func (s *Server) connectBackends() {
	cfg := s.config

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		slog.Warn("NATS Streaming unavailable, registration events will not be published", "error", err)
		natsClient = &messaging.NATSClient{}
	}
	s.nats = natsClient

	if cfg.Valkey.Enabled {
		valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			slog.Warn("Valkey unavailable, event cache disabled", "error", err)
		} else {
			s.valkey = valkeyClient
		}

		locks, err := cache.NewInflightLocks(cfg.Valkey)
		if err != nil {
			slog.Warn("Valkey unavailable, using in-process registration guard", "error", err)
		} else {
			s.locks = locks
		}
	}

	if cfg.Search.Ranker == config.RankerElasticsearch {
		esClient, err := search.NewElasticsearchClient(cfg.Search.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, ranking with PostgreSQL", "error", err)
		} else {
			s.search = esClient
			slog.Info("Ranking search with Elasticsearch", "index", cfg.Search.Elasticsearch.Index)
		}
	}
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)
	RegisterRoutes(s.router, h)

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// RegisterRoutes подключает API роуты; все они требуют X-User-ID
func RegisterRoutes(router gin.IRouter, h *handlers.Handlers) {
	api := router.Group("/api")
	api.Use(middleware.UserIdentity())
	{
		// Events endpoints
		events := api.Group("/events")
		{
			events.GET("", h.ListEvents)
			events.GET("/:id/stats", h.GetEventStats)
		}

		api.GET("/categories", h.ListCategories)

		// Registrations endpoints
		registrations := api.Group("/registrations")
		{
			registrations.GET("", h.ListRegistrations)
			registrations.POST("", h.Register)
			registrations.DELETE("/:eventId", h.Unregister)
		}
	}
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	dbHealth := s.db.HealthCheck(ctx)
	if dbHealth.Status != database.StatusHealthy {
		status = http.StatusServiceUnavailable
	}

	response := gin.H{
		"status":   dbHealth.Status,
		"service":  "eventease-api",
		"version":  "1.0.0",
		"database": dbHealth,
		"nats":     s.nats.Connected(),
	}

	if s.search != nil {
		searchStatus := database.StatusHealthy
		if err := s.search.HealthCheck(ctx); err != nil {
			searchStatus = database.StatusUnhealthy
		}
		response["search"] = searchStatus
	}

	if s.valkey != nil {
		cacheStatus := database.StatusHealthy
		if err := s.valkey.Ping(ctx); err != nil {
			cacheStatus = database.StatusUnhealthy
		}
		response["cache"] = cacheStatus
	}

	c.JSON(status, response)
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.locks != nil {
		s.locks.Close()
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
