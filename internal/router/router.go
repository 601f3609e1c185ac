package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"karaoke/docs"
	"karaoke/internal/config"
	"karaoke/internal/handler"
	"karaoke/internal/metrics"
	"karaoke/internal/model"
	"karaoke/internal/mw"
	"karaoke/internal/service"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth  *handler.AuthHandler
	Table *handler.TableHandler
	Song  *handler.SongHandler
	Queue *handler.QueueHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, authService service.AuthService, h Handlers) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.Validator = NewValidator()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	session := mw.SessionAuth(authService)
	adminOnly := mw.RequireRole(model.RoleAdmin)

	// Public routes
	api.POST("/auth", h.Auth.Login, mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	api.POST("/auth/logout", h.Auth.Logout)

	// Secured routes (require a live session)
	secured := api.Group("", session)
	secured.GET("/auth/session", h.Auth.Session)

	// Table routes
	tables := secured.Group("/tables", adminOnly)
	tables.GET("", h.Table.ListTables)
	tables.POST("", h.Table.CreateTable)
	tables.PUT("", h.Table.UpdateTable)
	tables.DELETE("", h.Table.DeleteTable)

	// Song routes
	secured.GET("/songs", h.Song.ListSongs)
	secured.POST("/songs", h.Song.UploadSong, adminOnly)
	secured.GET("/songs/file", h.Song.DownloadSong)

	// Queue routes
	secured.GET("/queue", h.Queue.ListQueue)
	secured.POST("/queue", h.Queue.Enqueue)
	secured.PUT("/queue", h.Queue.UpdateQueue, adminOnly)
	secured.DELETE("/queue", h.Queue.CancelQueueItem)
	secured.GET("/queue/events", h.Queue.ListQueueEvents, adminOnly)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator used by Register.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
