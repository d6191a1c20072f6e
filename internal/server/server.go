// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"time"

	"drawerbox/internal/config"
	"drawerbox/internal/featureflags"
	"drawerbox/internal/middleware"
	"drawerbox/internal/models"
	"drawerbox/internal/repository"
	"drawerbox/internal/service"
	"drawerbox/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	store          *storage.ImageStore

	userRepo     repository.UserRepository
	drawerRepo   repository.DrawerRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	reactionRepo repository.ReactionRepository

	userService     *service.UserService
	drawerService   *service.DrawerService
	postService     *service.PostService
	commentService  *service.CommentService
	reactionService *service.ReactionService
	searchService   *service.SearchService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Production wiring goes through bootstrap.InitRuntime first; tests pass an
// in-memory database and nil Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store *storage.ImageStore) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("drawerbox-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		store:          store,
		userRepo:       repository.NewUserRepository(db),
		drawerRepo:     repository.NewDrawerRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		reactionRepo:   repository.NewReactionRepository(db),
	}

	removeImage := func(string) error { return nil }
	if store != nil {
		removeImage = store.Remove
	}

	authz := service.NewAuthzService(server.drawerRepo)
	server.userService = service.NewUserService(server.userRepo, removeImage)
	server.drawerService = service.NewDrawerService(server.drawerRepo, authz)
	server.postService = service.NewPostService(server.postRepo, server.drawerRepo, server.userRepo, authz, removeImage)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo, authz)
	server.reactionService = service.NewReactionService(server.reactionRepo, authz)
	server.searchService = service.NewSearchService(server.postRepo, server.drawerRepo, server.userRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Tracing spans per request
	app.Use(middleware.TracingMiddleware())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Drawerbox Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)

	// Public browse routes. OptionalAuth resolves the viewer when a token is
	// present so responses carry viewer-specific annotations.
	public := api.Group("", middleware.OptionalAuth)
	public.Get("/posts", s.GetPosts)
	public.Get("/posts/:slug", s.GetPost)
	public.Get("/posts/:slug/comments", s.GetPostComments)
	public.Get("/comments/:id/replies", s.GetCommentReplies)
	public.Get("/drawers", s.GetDrawers)
	public.Get("/drawers/:name", s.GetDrawer)
	public.Get("/drawers/:name/posts", s.GetDrawerPosts)
	public.Get("/users/:username", s.GetUserProfile)
	public.Get("/users/:username/posts", s.GetUserPosts)
	public.Get("/search", s.Search)
	public.Get("/images/:name", s.GetImage)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)
	protected.Get("/user/drawers", s.GetMyDrawers)
	protected.Post("/users/me/profile-picture", s.UpdateProfilePicture)

	protected.Post("/posts", s.CreatePost)
	protected.Patch("/posts/:slug/status", s.UpdatePostStatus)
	protected.Patch("/posts/:slug", s.UpdatePost)
	protected.Delete("/posts/:slug", s.DeletePost)

	protected.Post("/drawers", s.CreateDrawer)
	protected.Post("/drawers/:name/join", s.JoinDrawer)
	protected.Delete("/drawers/:name/leave", s.LeaveDrawer)
	protected.Patch("/drawers/:name", s.UpdateDrawer)
	protected.Delete("/drawers/:name", s.DeleteDrawer)

	protected.Post("/comments", s.CreateComment)
	protected.Patch("/comments/:id", s.UpdateComment)
	protected.Delete("/comments/:id", s.DeleteComment)

	protected.Post("/reactions", s.CreateReaction)
	protected.Patch("/reactions/:id", s.UpdateReaction)
	protected.Delete("/reactions/:id", s.DeleteReaction)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Drawerbox API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
