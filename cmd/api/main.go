package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/uchejames/vibeshop/internal/config"
	"github.com/uchejames/vibeshop/internal/database"
	"github.com/uchejames/vibeshop/internal/logger"
	"github.com/uchejames/vibeshop/internal/poster"
	"github.com/uchejames/vibeshop/internal/server"
	"github.com/uchejames/vibeshop/internal/textgen"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// In-flight generations get 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func connectRedis(cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, rate limiting disabled", zap.Error(err))
		client.Close()
		return nil
	}
	return client
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting listing generation API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	generator, err := textgen.New(context.Background(), cfg.Generator, log)
	if err != nil {
		log.Fatal("Failed to initialize text generator", zap.Error(err))
	}

	renderer, err := poster.New(cfg.Poster.Renderer, cfg.Poster.Brand, log)
	if err != nil {
		log.Fatal("Failed to initialize poster renderer", zap.Error(err))
	}

	deps := server.Dependencies{
		Generator: generator,
		Renderer:  renderer,
	}

	if cfg.Database.Enabled {
		dbService, err := database.New(cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		log.Info("Database health check", zap.Any("health", dbService.Health()))

		if err := database.RunMigrations(dbService.DB(), cfg.Database.MigrationsDir, log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
		deps.DB = dbService
	} else {
		log.Info("Database disabled, generation history off")
	}

	if cfg.Redis.Enabled {
		deps.Redis = connectRedis(cfg.Redis, log)
	}

	srv := server.NewServer(cfg, log, deps)

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening",
		zap.String("addr", srv.Addr),
		zap.String("generator", generator.Model()),
		zap.String("renderer", renderer.Name()),
	)

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
