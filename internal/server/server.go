// Package server contains the HTTP handlers for the blog API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "bitacora/docs" // swagger docs
	"bitacora/internal/bootstrap"
	"bitacora/internal/cache"
	"bitacora/internal/config"
	"bitacora/internal/database"
	"bitacora/internal/middleware"
	"bitacora/internal/models"
	"bitacora/internal/repository"
	"bitacora/internal/search"
	"bitacora/internal/service"
	"bitacora/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	readCache       *cache.ReadCache
	userRepo        repository.UserRepository
	postRepo        repository.PostRepository
	searchIndex     service.PostIndex
	meili           *search.Meili
	images          storage.ImageStore
	postService     *service.PostService
	reactionService *service.ReactionService
	commentService  *service.CommentService
}

// Option customizes optional collaborators of a Server.
type Option func(*Server)

// WithImageStore sets the cover image store. Without one, uploads answer 503.
func WithImageStore(store storage.ImageStore) Option {
	return func(s *Server) { s.images = store }
}

// WithPostIndex sets the search index. Without one, search scans the database.
func WithPostIndex(index service.PostIndex) Option {
	return func(s *Server) { s.searchIndex = index }
}

// NewServer connects every backing service named in cfg and builds the server.
// Search and image storage are optional and only logged when unavailable.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var opts []Option
	var meili *search.Meili
	if cfg.MeiliURL != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliAPIKey, cfg.MeiliIndex)
		opts = append(opts, WithPostIndex(meili))
	}

	store, err := storage.NewS3Store(ctx, cfg)
	switch {
	case err == nil:
		opts = append(opts, WithImageStore(store))
	case errors.Is(err, storage.ErrNotConfigured):
		middleware.Logger.Info("Image storage not configured, uploads disabled")
	default:
		middleware.Logger.Warn("Image storage unavailable, uploads disabled", slog.String("error", err.Error()))
	}

	s, err := NewServerWithDeps(cfg, db, redisClient, opts...)
	if err != nil {
		return nil, err
	}
	s.meili = meili
	return s, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("bitacora-api"),
		readCache:      cache.NewReadCache(redisClient, time.Duration(cfg.CacheTTLSeconds)*time.Second),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.postService = service.NewPostService(s.postRepo, s.userRepo, s.readCache, s.searchIndex)
	s.reactionService = service.NewReactionService(repository.NewReactionRepository(db), s.postRepo, s.readCache)
	s.commentService = service.NewCommentService(repository.NewCommentRepository(db), s.postRepo, s.readCache)

	return s, nil
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Bitacora API",
		BodyLimit: (s.config.ImageMaxUploadSizeMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.Result{Success: false, Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "Unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing sets traceID in locals, so it must run before the context middleware.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so short-circuited responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Result{
				Success: false,
				Error:   "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Public reads. /search must precede /:slug.
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/search", middleware.RateLimit(s.redis, 20, time.Minute, "search"), s.SearchPosts)
	publicPosts.Get("/:slug/comments", s.GetComments)
	publicPosts.Get("/:slug", s.GetPost)

	protected := api.Group("", s.AuthRequired())

	posts := protected.Group("/posts")
	posts.Post("/:id/reactions", middleware.RateLimit(s.redis, 60, time.Minute, "toggle_reaction"), s.ToggleReaction)
	posts.Get("/:id/reactions/me", s.GetMyReaction)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 5, time.Minute, "create_comment"), s.CreateComment)

	comments := protected.Group("/comments")
	comments.Put("/:commentId", s.UpdateComment)
	comments.Delete("/:commentId", s.DeleteComment)

	// Post updates are open to primary authors, so only the service checks them.
	admin := protected.Group("/admin")
	admin.Put("/posts/:id", s.UpdatePost)

	adminOnly := admin.Group("", s.AdminRequired())
	adminOnly.Get("/posts", s.ListAdminPosts)
	adminOnly.Get("/posts/stats", s.GetAdminPostStats)
	adminOnly.Get("/posts/:id", s.GetAdminPost)
	adminOnly.Post("/posts", s.CreatePost)
	adminOnly.Delete("/posts/:id", s.DeletePost)
	adminOnly.Get("/authors", s.ListAuthors)

	protected.Post("/images", s.AdminRequired(), s.UploadImage)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis and search are
// degradable, so only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	searchStatus := "disabled"
	if s.meili != nil {
		searchStatus = "healthy"
		if !s.meili.Healthy() {
			searchStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus != "healthy" || searchStatus == "unhealthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"search":   searchStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	app := s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.meili != nil {
		s.meili.Close()
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
