package api

import (
	"fmt"
	"net/http"

	"stagepass/internal/auth"
	"stagepass/internal/cache"
	"stagepass/internal/config"
	"stagepass/internal/external"
	"stagepass/internal/handlers"
	"stagepass/internal/logger"
	"stagepass/internal/messaging"
	"stagepass/internal/middleware"
	"stagepass/internal/models"
	"stagepass/internal/repository"
	"stagepass/internal/service"
	"stagepass/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the HTTP API together
type Server struct {
	router   *gin.Engine
	config   *config.Config
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	sessions *session.Store
	services *service.Services
	repos    *repository.Repositories
}

// NewServer creates a fully wired server instance
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	repos := repository.NewRepositories()
	sessions := session.NewStore(cfg.Session)

	if err := seedGovernment(repos.Users, cfg.Government); err != nil {
		logger.Fatal("Failed to seed government account", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		// Event publishing is best-effort; run without it.
		logger.Get().Warn("NATS unavailable, continuing without event publishing", "error", err)
		natsClient = &messaging.NATSClient{}
	}

	var valkeyClient *cache.ValkeyClient
	if cfg.CacheEnabled {
		valkeyClient, err = cache.NewValkeyClient(cfg.Cache)
		if err != nil {
			logger.Get().Warn("Valkey unavailable, continuing without cache", "error", err)
			valkeyClient = nil
		}
	}

	ledgerClient := external.NewLedgerClient(cfg.Ledger)
	mirrorClient := external.NewMirrorClient(cfg.Mirror)

	services := service.NewServices(repos, sessions, ledgerClient, mirrorClient, natsClient)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		nats:     natsClient,
		valkey:   valkeyClient,
		sessions: sessions,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

// seedGovernment provisions the government representative account at startup.
// Government users cannot register through the API.
func seedGovernment(users *repository.UserRepository, gov config.Government) error {
	if gov.Email == "" {
		return nil
	}
	hash, err := auth.HashPassword(gov.Password)
	if err != nil {
		return err
	}
	return users.Create(&models.User{
		Email:          gov.Email,
		PasswordHash:   hash,
		PaymentAccount: gov.PaymentAccount,
		Role:           models.RoleGovernment,
	})
}

// setupRoutes registers all API routes
func (s *Server) setupRoutes() {
	// Wrap the client only when it exists; a typed-nil inside the
	// interface would defeat the handlers' nil check.
	var eventsCache handlers.EventsCache
	if s.valkey != nil {
		eventsCache = s.valkey
	}
	h := handlers.NewHandlers(s.services, eventsCache)

	api := s.router.Group("/api")
	{
		// Public auth endpoints
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register/consumer", h.RegisterConsumer)
			authGroup.POST("/register/provider", h.RegisterProvider)
			authGroup.POST("/login", h.Login)
		}

		// Everything below requires a live session
		protected := api.Group("")
		protected.Use(middleware.SessionAuth(s.sessions))
		{
			protected.POST("/auth/logout", h.Logout)
			protected.PATCH("/auth/profile/consumer", h.UpdateConsumerProfile)
			protected.PATCH("/auth/profile/provider", h.UpdateProviderProfile)

			events := protected.Group("/events")
			{
				events.POST("", h.CreateEvent)
				events.GET("", h.ListEvents)
				events.POST("/performances", h.AddPerformance)
				events.PATCH("/cancel", h.CancelEvent)
				events.GET("/:id/bookings", h.ListEventBookings)
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", h.CreateBooking)
				bookings.GET("", h.ListBookings)
				bookings.PATCH("/cancel", h.CancelBooking)
			}

			sponsorships := protected.Group("/sponsorships")
			{
				sponsorships.GET("", h.ListSponsorships)
				sponsorships.PATCH("/respond", h.RespondSponsorship)
			}

			protected.GET("/reports/utilization", h.TicketUtilization)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "stagepass-api",
		"version": "1.0.0",
	})
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter returns the router for testing
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup releases external connections
func (s *Server) Cleanup() {
	if err := s.nats.Close(); err != nil {
		logger.Get().Warn("Failed to close NATS connection", "error", err)
	}
	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Warn("Failed to close Valkey connection", "error", err)
		}
	}
}
