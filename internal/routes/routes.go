package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"vectora/internal/handlers"
	"vectora/internal/middleware"
)

// Deps is everything the route table needs. Integrations may be nil when no webhook is configured.
type Deps struct {
	Auth         *handlers.AuthHandler
	Tasks        *handlers.TaskHandler
	Stats        *handlers.StatsHandler
	Users        *handlers.UserHandler
	Integrations *handlers.IntegrationsHandler

	Resolver    middleware.IdentityResolver
	Metrics     *middleware.Metrics
	RateLimiter *middleware.RateLimiter
	Log         *zap.Logger
}

func SetupRoutes(r *gin.Engine, d Deps) *gin.Engine {
	auth := middleware.Auth(d.Resolver, d.Log, d.Metrics)

	// ---- public
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if d.Integrations != nil {
		r.POST("/integrations/telegram/webhook", d.Integrations.Webhook)
	}

	// ---- auth
	a := r.Group("/auth")
	{
		a.POST("/register", d.RateLimiter.Middleware(), d.Auth.Register)
		a.POST("/login", d.RateLimiter.Middleware(), d.Auth.Login)
		a.POST("/refresh", d.Auth.Refresh)
		a.POST("/telegram", d.Auth.Telegram)
		a.GET("/me", auth, d.Auth.Me)
		a.PUT("/me", auth, d.Auth.UpdateMe)
	}

	// ---- protected
	api := r.Group("/api", auth)

	tasks := api.Group("/tasks")
	{
		tasks.GET("/", d.Tasks.GetAll)
		tasks.POST("/", d.Tasks.Create)
		tasks.GET("/export.pdf", d.Tasks.ExportPDF)
		tasks.GET("/:id", d.Tasks.GetByID)
		tasks.PUT("/:id", d.Tasks.Update)
		tasks.DELETE("/:id", d.Tasks.Delete)
	}

	stats := api.Group("/stats")
	{
		stats.GET("/overview", d.Stats.Overview)
		stats.GET("/weekly", d.Stats.Weekly)
	}

	users := api.Group("/users", middleware.RequireAdmin())
	{
		users.GET("/", d.Users.ListUsers)
	}

	return r
}
