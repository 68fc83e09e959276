package app

import (
	"net/http"

	"remindme/internal/auth"
	"remindme/internal/cache"
	"remindme/internal/config"
	"remindme/internal/events"
	"remindme/internal/handlers"
	"remindme/internal/photos"
	"remindme/internal/repo"
	"remindme/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Deps are the stores and transports the routes are built on. App.New fills
// them from config; tests fill them with in-memory versions.
type Deps struct {
	Users     repo.UserRepo
	Reminders repo.ReminderRepo
	Shopping  repo.ShoppingRepo
	Redis     *redis.Client
	Broker    events.Broker
	Revisions events.Revisions
	Photos    *photos.Store
	Logger    *zap.Logger
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	sessionStore := auth.NewStore(d.Redis, cfg.Auth.SessionTTL.Duration())
	userSvc := service.NewUserService(d.Users)
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc, cfg.Auth.SecureCookie)
	registerAuthRoutes(api, authHandler)

	protected := api.Group("", auth.RequireSession(sessionStore))
	protected.GET("/profile", authHandler.Profile)

	listCache := cache.NewListCache(d.Redis, cfg.Redis.DefaultTTL.Duration())
	changes := service.NewChanges(d.Broker, d.Revisions, logger)

	reminderSvc := service.NewReminderService(d.Reminders, listCache, changes, logger)
	registerReminderRoutes(protected, handlers.NewReminderHandler(reminderSvc))

	shoppingSvc := service.NewShoppingService(d.Shopping, listCache, changes, logger)
	registerShoppingRoutes(protected, handlers.NewShoppingHandler(shoppingSvc))

	registerPhotoRoutes(protected, handlers.NewPhotoHandler(d.Photos))

	live := handlers.NewLiveHandler(reminderSvc, shoppingSvc, d.Broker, logger)
	protected.GET("/live/:collection", live.Stream)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "RemindMe API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"metrics": "/metrics",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env, "store": cfg.Store.Driver})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/signup", h.Signup)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/session", h.Session)
}

func registerReminderRoutes(api *gin.RouterGroup, h *handlers.ReminderHandler) {
	api.GET("/reminders", h.Home)
	api.POST("/reminders", h.Create)
	api.GET("/reminders/:id", h.Get)
	api.PUT("/reminders/:id", h.Update)
	api.DELETE("/reminders/:id", h.Delete)
	api.POST("/reminders/:id/done", h.ToggleDone)
	api.POST("/reminders/:id/pin", h.TogglePinned)
}

func registerShoppingRoutes(api *gin.RouterGroup, h *handlers.ShoppingHandler) {
	api.GET("/categories", h.Categories)
	api.POST("/categories/:section/toggle", h.Toggle)
	api.GET("/shopping", h.List)
	api.DELETE("/shopping", h.Clear)
	api.POST("/shopping/:id/check", h.ToggleChecked)
	api.DELETE("/shopping/:id", h.Remove)
}

func registerPhotoRoutes(api *gin.RouterGroup, h *handlers.PhotoHandler) {
	api.GET("/photos", h.List)
	api.POST("/photos", h.Upload)
	api.GET("/photos/:id", h.Get)
	api.DELETE("/photos/:id", h.Delete)
}
