// Package server contains the HTTP handlers and page rendering of the blog.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"yatube/internal/bootstrap"
	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/middleware"
	"yatube/internal/repository"
	"yatube/internal/service"
	"yatube/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	fibercache "github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// formOverhead is the request body allowance on top of the upload limit.
const formOverhead = 1 << 20

var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// httpMetrics returns the process-wide request metrics middleware.
// Its collectors live in the default registry, so it is built once.
func httpMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMW = fiberprometheus.New("yatube")
	})
	return promMW
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	storage        storage.Storage
	pageStore      *cache.PageStore
	views          fiber.Views
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	limiter        *middleware.Limiter
	logger         *slog.Logger

	tokens         *service.TokenService
	userService    *service.UserService
	groupService   *service.GroupService
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
}

// NewServer connects the runtime dependencies described by cfg and builds a server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedGroups: !cfg.IsProduction()})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Storage)
}

// NewServerWithDeps creates a server from pre-built dependencies. rdb may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, rdb *redis.Client, store storage.Storage) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          rdb,
		storage:        store,
		pageStore:      cache.NewPageStore(rdb),
		promMiddleware: httpMetrics(),
		limiter:        middleware.NewLimiter(rdb, cfg.RateLimitEnabled),
		logger:         middleware.Logger,
	}

	s.limiter.FailClosed = cfg.RateLimitFailClosed

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	s.tokens = service.NewTokenService(cfg.JWTSecret, rdb)
	s.userService = service.NewUserService(userRepo)
	s.groupService = service.NewGroupService(groupRepo, rdb)
	s.postService = service.NewPostService(postRepo, userRepo, commentRepo, followRepo,
		s.groupService, store, s.pageStore, s.logger)
	s.commentService = service.NewCommentService(postRepo, commentRepo)
	s.followService = service.NewFollowService(userRepo, followRepo)

	views, err := NewViews(s.imageURL)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	s.views = views

	return s, nil
}

// NewApp builds the Fiber application with the middleware chain and every route.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Yatube",
		Views:        s.views,
		ViewsLayout:  "layouts/base",
		ErrorHandler: s.ErrorHandler,
		BodyLimit:    s.config.MaxUploadBytes() + formOverhead,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures the Fiber middleware chain.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New(recover.Config{EnableStackTrace: !s.config.IsProduction()}))
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Resolve the session before the context middleware so logs carry the user id.
	app.Use(middleware.OptionalUser(sessionVerifier{tokens: s.tokens, users: s.userService}))
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginEmbedderPolicy: "unsafe-none",
		CrossOriginResourcePolicy: "same-site",
	}))

	app.Use(middleware.StructuredLogger())

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/health/") || strings.HasPrefix(p, "/media/")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
		},
	}))

	if s.config.CSRFEnabled {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "form:" + csrfFormField,
			CookieName:     "csrftoken",
			CookieSameSite: "Lax",
			CookieHTTPOnly: true,
			CookieSecure:   s.config.IsProduction(),
			Expiration:     1 * time.Hour,
			ContextKey:     csrfContextKey,
		}))
	}
}

// SetupRoutes registers every route. Fixed paths come before the username catch-alls.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Yatube Metrics Dashboard",
	}))

	app.Get("/media/*", s.ServeMedia)

	auth := app.Group("/auth")
	auth.Get("/signup/", s.SignupPage)
	auth.Post("/signup/", s.limiter.Handler(middleware.SignupLimit), s.Signup)
	auth.Get("/login/", s.LoginPage)
	auth.Post("/login/", s.limiter.Handler(middleware.LoginLimit), s.Login)
	auth.Get("/logout/", s.Logout)
	auth.Post("/logout/", s.Logout)

	about := app.Group("/about")
	about.Get("/author/", s.AboutAuthor)
	about.Get("/tech/", s.AboutTech)

	app.Get("/", s.pageCache(), s.Index)
	app.Get("/group/:slug/", s.GroupPosts)
	app.Get("/new/", middleware.LoginRequired, s.NewPostPage)
	app.Post("/new/", middleware.LoginRequired, s.CreatePost)
	app.Get("/follow/", middleware.LoginRequired, s.FollowIndex)

	app.Get("/:username/", s.Profile)
	app.Get("/:username/follow/", middleware.LoginRequired, s.ProfileFollow)
	app.Get("/:username/unfollow/", middleware.LoginRequired, s.ProfileUnfollow)
	app.Get("/:username/:post_id/", s.PostView)
	app.Get("/:username/:post_id/edit/", middleware.LoginRequired, s.PostEditPage)
	app.Post("/:username/:post_id/edit/", middleware.LoginRequired, s.PostEdit)
	app.Get("/:username/:post_id/comment/", middleware.LoginRequired, s.CommentPage)
	app.Post("/:username/:post_id/comment/", middleware.LoginRequired,
		s.limiter.Handler(middleware.CommentLimit), s.AddComment)
}

// pageCache caches whole responses per URL and viewer in Redis. Without Redis nothing is cached.
func (s *Server) pageCache() fiber.Handler {
	if s.redis == nil || s.config.PageCacheSeconds <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return fibercache.New(fibercache.Config{
		Expiration:  time.Duration(s.config.PageCacheSeconds) * time.Second,
		CacheHeader: "X-Cache",
		KeyGenerator: func(c *fiber.Ctx) string {
			uid, _ := middleware.CurrentUserID(c)
			return fmt.Sprintf("%s|%d", c.OriginalURL(), uid)
		},
		Storage: s.pageStore,
	})
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
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The page cache and token revocation both need Redis.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
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

// Shutdown stops the HTTP server and releases the database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			s.logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := database.Close(s.db); err != nil {
		s.logger.Error("error closing database", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
