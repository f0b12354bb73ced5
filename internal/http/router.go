package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/docblog/internal/config"
	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/geocoder89/docblog/internal/http/handlers"
	"github.com/geocoder89/docblog/internal/http/middlewares"
	"github.com/geocoder89/docblog/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const jsonBodyLimit = 1 << 20

// AuthService issues sessions and resolves bearer tokens. auth.Service satisfies it.
type AuthService interface {
	handlers.Authenticator
	middlewares.TokenVerifier
}

// Deps is everything the router needs from main. Prom, Gatherer and Counter are optional.
type Deps struct {
	Auth     AuthService
	Blog     handlers.BlogService
	Images   handlers.ImageStore
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Counter  middlewares.CounterStore
	Checks   map[string]handlers.PingFunc
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterValidators()

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	if cfg.OTelEnabled {
		r.Use(otelgin.Middleware("docblog"))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))

	// health and docs
	h := handlers.NewHealthHandler(deps.Checks)
	r.GET("/", handlers.Index)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	r.Static("/uploads", cfg.UploadDir)

	authMW := middlewares.NewAuthMiddleware(deps.Auth)

	counter := deps.Counter
	if counter == nil {
		counter = middlewares.NewMemoryCounter()
	}
	limiter := middlewares.NewRateLimiter(counter, "auth", cfg.AuthRateLimitPerMin, time.Minute, log)

	// auth
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Prom, log)
	authGroup := r.Group("/api/auth")
	authGroup.Use(
		limiter.RateLimiterMiddleware(middlewares.KeyByIP),
		middlewares.RequireJSON(),
		middlewares.MaxBodyBytes(jsonBodyLimit),
	)
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// blog
	posts := handlers.NewPostsHandler(deps.Blog, deps.Images, deps.Prom, log)
	blog := r.Group("/api/blog")

	blog.GET("/categories", posts.Categories)
	blog.GET("/posts", posts.ListPublished)
	blog.GET("/posts/by-category", posts.ListByCategory)
	blog.GET("/posts/my-posts", authMW.RequireAuth(), authMW.RequireRole(user.RoleDoctor), posts.ListMine)
	blog.GET("/posts/:id", authMW.OptionalAuth(), posts.GetPost)

	writes := blog.Group("/posts")
	writes.Use(authMW.RequireAuth(), authMW.RequireRole(user.RoleDoctor))

	bodyLimit := middlewares.MaxBodyBytes(cfg.MaxUploadBytes() + jsonBodyLimit)
	acceptsBody := middlewares.RequireContentType(gin.MIMEJSON, gin.MIMEMultipartPOSTForm)

	writes.POST("", acceptsBody, bodyLimit, posts.CreatePost)
	writes.PUT("/:id", acceptsBody, bodyLimit, posts.UpdatePost)
	writes.DELETE("/:id", posts.DeletePost)

	return r
}
