package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/uchejames/vibeshop/internal/config"
	"github.com/uchejames/vibeshop/internal/database"
	custommiddleware "github.com/uchejames/vibeshop/internal/middleware"
	"github.com/uchejames/vibeshop/internal/poster"
	"github.com/uchejames/vibeshop/internal/repository"
	"github.com/uchejames/vibeshop/internal/service"
	"github.com/uchejames/vibeshop/internal/textgen"
	"github.com/uchejames/vibeshop/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// MaxRequestBytes bounds generation bodies, which carry whole images as data URIs
const MaxRequestBytes = 20 << 20

// Dependencies are the optional backends the server is wired to.
// A nil DB disables generation history, a nil Redis disables rate limiting.
type Dependencies struct {
	Generator textgen.Generator
	Renderer  poster.Renderer
	DB        *database.Service
	Redis     *redis.Client
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":    "ok",
			"generator": deps.Generator.Model(),
			"renderer":  deps.Renderer.Name(),
		}
		if deps.DB != nil {
			body["database"] = deps.DB.Health()
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, body)
	})

	var generationRepo repository.GenerationRepository
	if deps.DB != nil {
		generationRepo = repository.NewGenerationRepository(deps.DB.DB())
	}

	listingService := service.NewListingService(deps.Generator, deps.Renderer, generationRepo, logger)
	listingHandler := transport.NewListingHandler(listingService, logger)

	generate, admin := routeMiddleware(cfg, logger, deps.Redis)
	listingHandler.RegisterRoutes(router, generate, admin)

	return &Server{
		Server: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:           router,
			IdleTimeout:       time.Minute,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      writeTimeout(cfg.Generator),
		},
		config: cfg,
		logger: logger,
		deps:   deps,
	}
}

// writeTimeout leaves room for one generator call plus poster rendering.
// An unbounded generator gets an unbounded write deadline so slow calls still
// reach the fallback listing instead of a dropped connection.
func writeTimeout(cfg config.GeneratorConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return 0
	}
	return cfg.Timeout + 30*time.Second
}

// routeMiddleware builds the stacks for the generation and admin routes.
// Without a JWT secret generation is public and admin routes are not mounted.
func routeMiddleware(cfg *config.Config, logger *zap.Logger, redisClient *redis.Client) (generate, admin []func(http.Handler) http.Handler) {
	generate = []func(http.Handler) http.Handler{
		custommiddleware.BodyLimitMiddleware(MaxRequestBytes, logger),
	}

	if cfg.JWT.Secret != "" {
		auth := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
		generate = append(generate,
			auth,
			custommiddleware.RequireRole([]string{custommiddleware.RoleCreative, custommiddleware.RoleAdmin}, logger),
		)
		admin = []func(http.Handler) http.Handler{
			auth,
			custommiddleware.RequireAdmin(logger),
		}
	} else {
		logger.Warn("JWT_SECRET is empty; generation is public and history endpoints are disabled")
	}

	if redisClient != nil {
		generate = append(generate, custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "vibeshop:ratelimit:generate",
		}, logger))
	}

	return generate, admin
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
