package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"flowpulse/internal/config"
	"flowpulse/internal/model"
	"flowpulse/internal/router"
	"flowpulse/internal/svc"
	"flowpulse/pkg/database"
	"flowpulse/pkg/logger"
	"flowpulse/pkg/redis"
	"flowpulse/pkg/response"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("config/config.yml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	defer logger.Sync()

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	defer database.Close()

	db := database.GetDB()
	if err := db.AutoMigrate(model.All()...); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("redis init failed", zap.Error(err))
		}
		defer redis.Close()
	}

	if err := svc.Init(cfg, db, redis.GetClient()); err != nil {
		logger.Fatal("service init failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusNotFound {
				return response.NotFound(c, "route not found")
			}
			return response.ServerError(c, "")
		},
	})

	router.Setup(app)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("server start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
