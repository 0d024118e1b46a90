package http

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router wires into handlers. Services are built by
// the caller so tests can hand in memory-backed ones.
type Deps struct {
	Auth      handlers.AuthService
	Tasks     handlers.TasksService
	Notes     handlers.NotesService
	Users     handlers.UsersService
	Dashboard handlers.DashboardLoader

	Tokens middlewares.TokenVerifier
	Ping   handlers.Pinger

	// nil means per-process counters
	LimitStore middlewares.LimitStore

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(middlewares.Recovery(log))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders(cfg.IsProd()))
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequestLogger(log))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	if cfg.OTelEnabled {
		r.Use(otelgin.Middleware("taskhub-api"))
	}

	// health, metrics, docs
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/api/health", h.Healthz)
	r.GET("/api/ready", h.Readyz)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPI)

	// guards, in the fixed order limiter -> auth -> role -> body checks
	authLimiter := middlewares.NewRateLimiter("auth", cfg.RateLimitAuth, cfg.RateLimitWindow, deps.LimitStore, deps.Prom, log)
	apiLimiter := middlewares.NewRateLimiter("api", cfg.RateLimitAPI, cfg.RateLimitWindow, deps.LimitStore, deps.Prom, log)

	authLimit := authLimiter.RateLimiterMiddleware(middlewares.KeyByIP)
	apiLimit := apiLimiter.RateLimiterMiddleware(middlewares.KeyByIP)

	authMw := middlewares.NewAuthMiddleware(deps.Tokens)
	requireAuth := authMw.RequireAuth()
	requireAdmin := authMw.RequireRole(user.RoleAdmin)

	// body checks sit after the guards on each write route
	bodyLimit := middlewares.MaxBodyBytes(middlewares.DefaultMaxBody)
	jsonOnly := middlewares.RequireJSON()

	v1 := r.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(deps.Auth)
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authLimit, bodyLimit, jsonOnly, authHandler.Register)
		authRoutes.POST("/login", authLimit, bodyLimit, jsonOnly, authHandler.Login)
		authRoutes.GET("/me", apiLimit, requireAuth, authHandler.Me)
	}

	tasksHandler := handlers.NewTasksHandler(deps.Tasks)
	tasks := v1.Group("/tasks", apiLimit, requireAuth)
	{
		tasks.GET("", tasksHandler.ListTasks)
		tasks.GET("/stats", tasksHandler.Stats)
		tasks.GET("/analytics", requireAdmin, tasksHandler.Analytics)
		tasks.POST("", requireAdmin, bodyLimit, jsonOnly, tasksHandler.CreateTask)
		tasks.POST("/:id/assign", requireAdmin, bodyLimit, jsonOnly, tasksHandler.AssignTask)
		tasks.GET("/:id", tasksHandler.GetTask)
		tasks.PUT("/:id", bodyLimit, jsonOnly, tasksHandler.UpdateTask)
		tasks.DELETE("/:id", tasksHandler.DeleteTask)
	}

	notesHandler := handlers.NewNotesHandler(deps.Notes)
	notes := v1.Group("/notes", apiLimit, requireAuth)
	{
		notes.GET("/task/:taskId", notesHandler.ListNotes)
		notes.POST("/task/:taskId", bodyLimit, jsonOnly, notesHandler.AddNote)
		notes.DELETE("/:id", notesHandler.DeleteNote)
	}

	usersHandler := handlers.NewUsersHandler(deps.Users)
	users := v1.Group("/users", apiLimit, requireAuth, requireAdmin)
	{
		users.GET("", usersHandler.ListUsers)
		users.GET("/:id", usersHandler.GetUser)
		users.PUT("/:id", bodyLimit, jsonOnly, usersHandler.UpdateUser)
		users.DELETE("/:id", usersHandler.DeleteUser)
	}

	dashboardHandler := handlers.NewDashboardHandler(deps.Dashboard)
	v1.GET("/dashboard", apiLimit, requireAuth, dashboardHandler.Dashboard)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondError(ctx, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}
