package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/community-events/internal/config"
	"github.com/iliyamo/community-events/internal/database"
	"github.com/iliyamo/community-events/internal/handler"
	"github.com/iliyamo/community-events/internal/middleware"
	"github.com/iliyamo/community-events/internal/queue"
	"github.com/iliyamo/community-events/internal/repository"
	"github.com/iliyamo/community-events/internal/router"
	"github.com/iliyamo/community-events/internal/service"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	eventRepo := repository.NewEventRepo(db)
	regRepo := repository.NewRegistrationRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	teamRepo := repository.NewTeamRepo(db)
	positionRepo := repository.NewPositionRepo(db)
	applicationRepo := repository.NewApplicationRepo(db)
	projectRepo := repository.NewProjectRepo(db)

	regSvc := service.NewRegistrationService(regRepo, eventRepo, service.NewQueueNotifier(cfg.AMQPURL))

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	var cache echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	positionHandler := handler.NewPositionHandler(positionRepo, applicationRepo)
	projectHandler := handler.NewProjectHandler(projectRepo)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicEventHandler(eventRepo, regRepo), positionHandler, projectHandler, cache)
	router.RegisterMember(e, handler.NewRegistrationHandler(regSvc), positionHandler, cfg.JWTSecret)
	router.RegisterAdmin(e,
		handler.NewAdminEventHandler(eventRepo, regRepo),
		handler.NewAdminPositionHandler(positionRepo, applicationRepo),
		projectHandler,
		handler.NewAdminUserHandler(userRepo),
		handler.NewAdminTeamHandler(teamRepo, userRepo),
		cfg.JWTSecret)

	// Background consumer that mirrors registration events into a log file.
	go func() {
		if err := queue.StartRegistrationConsumer(cfg.AMQPURL); err != nil {
			log.Printf("registration consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
