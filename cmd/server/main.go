package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dorjizangpo/e-learning-platform/internal/config"
	"github.com/dorjizangpo/e-learning-platform/internal/database"
	"github.com/dorjizangpo/e-learning-platform/internal/handler"
	"github.com/dorjizangpo/e-learning-platform/internal/logger"
	"github.com/dorjizangpo/e-learning-platform/internal/queue"
	"github.com/dorjizangpo/e-learning-platform/internal/repository"
	"github.com/dorjizangpo/e-learning-platform/internal/router"
	queue_publisher "github.com/dorjizangpo/e-learning-platform/internal/service"
	"github.com/dorjizangpo/e-learning-platform/internal/validation"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatal("schema bootstrap failed", zap.Error(err))
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	courses := repository.NewCourseRepo(db)
	categories := repository.NewCategoryRepo(db)
	events := queue_publisher.New(cfg.RabbitURL, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	router.Register(e, router.Deps{
		Cfg:        cfg,
		RateCfg:    config.LoadRateLimitConfig(),
		RDB:        rdb,
		Auth:       handler.NewAuthHandler(cfg, users, events),
		Courses:    handler.NewCourseHandler(courses, categories, events),
		Categories: handler.NewCategoryHandler(categories),
	})

	// Activity log consumer; reconnects on its own, never stops the server.
	go func() {
		if err := queue.StartActivityConsumer(cfg.RabbitURL, log); err != nil {
			log.Warn("activity consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
