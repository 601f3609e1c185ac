package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"karaoke/internal/auth"
	"karaoke/internal/cache"
	"karaoke/internal/config"
	"karaoke/internal/db"
	"karaoke/internal/events"
	"karaoke/internal/handler"
	"karaoke/internal/repository"
	"karaoke/internal/router"
	"karaoke/internal/service"
	"karaoke/internal/storage"
)

// @title Karaoke Venue API
// @version 1.0
// @description Table sessions, song catalog and song request queue for a karaoke venue.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()

	e := echo.New()

	gormDB, err := db.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatalf("%v", err)
	}

	var cacheStore cache.Store
	if cfg.RedisAddr != "" {
		redisClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()); err != nil {
			log.Printf("Warning: redis at %s unreachable, caching disabled until it answers: %v", cfg.RedisAddr, err)
		}
		cacheStore = redisClient
	} else {
		log.Println("REDIS_ADDR not set, using in-process cache")
		cacheStore = cache.NewMemory(10 * time.Minute)
	}

	mediaStore, err := storage.New(&cfg.Storage)
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher := events.NewAMQPPublisher(cfg.AMQPURL)
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	policy, err := service.ParsePlayingPolicy(cfg.QueuePlayingPolicy)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Initialize repositories
	adminRepo := repository.NewAdminRepository(gormDB)
	tableRepo := repository.NewTableRepository(gormDB)
	songRepo := repository.NewSongRepository(gormDB)
	queueRepo := repository.NewQueueRepository(gormDB)
	eventRepo := repository.NewQueueEventRepository(gormDB)

	recorder := events.NewBatchRecorder(eventRepo, publisher)
	defer recorder.Close()

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.SessionTokenTTL())
	tokenStore := auth.NewTokenStore(cacheStore)

	// Initialize services
	authService := service.NewAuthService(adminRepo, tableRepo, jwtService, tokenStore, cfg.BcryptCost, service.SystemClock)
	tableService := service.NewTableService(tableRepo, cfg.BcryptCost, service.SystemClock)
	songService := service.NewSongService(songRepo, mediaStore, cacheStore, cfg.CatalogCacheTTL)
	queueService := service.NewQueueService(queueRepo, songRepo, tableRepo, eventRepo, recorder, policy, service.SystemClock)

	if _, err := authService.BootstrapAdmin(context.Background(), cfg.AdminLogin, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	// Register routes
	router.Register(e, cfg, authService, router.Handlers{
		Auth:  handler.NewAuthHandler(authService),
		Table: handler.NewTableHandler(tableService),
		Song:  handler.NewSongHandler(songService),
		Queue: handler.NewQueueHandler(queueService),
	})

	log.Printf("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func swaggerURL(host string) string {
	if host == "" {
		// docker-compose maps the container's 8080 to 5000
		return "http://localhost:5000/swagger/index.html"
	}
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host + "/swagger/index.html"
	}
	return "http://" + host + "/swagger/index.html"
}
