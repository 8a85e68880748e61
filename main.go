package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursehub/config"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/middleware"
	"coursehub/server"
	"coursehub/utils"

	"github.com/redis/go-redis/v9"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	if err := logger.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer logger.Log.Sync()

	database.ConnectDb()

	if cfg.SeedFile != "" {
		if err := database.SeedFromFile(database.Database.Db, cfg.SeedFile, cfg.SaltRound); err != nil {
			logger.Log.Fatal("seeding failed", "file", cfg.SeedFile, "error", err)
		}
		logger.Log.Info("seed data loaded", "file", cfg.SeedFile)
	}

	if client := initSharedStorage(cfg); client != nil {
		defer client.Close()
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		logger.Log.Fatal("cannot create upload directory", "dir", cfg.UploadDir, "error", err)
	}

	app := server.New(server.Options{AccessLog: true})

	scheduler := utils.InitializeDigestScheduler()

	go func() {
		logger.Log.Info("server is running", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Log.Fatal("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Log.Error("graceful shutdown failed", "error", err)
	}
}

// initSharedStorage moves limiter counters and sessions to Redis when it is
// configured and reachable. Sessions are initialised from config either way.
func initSharedStorage(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		middleware.InitSessions(nil)
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.Warn("redis unreachable, using in-memory limiter and sessions", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		middleware.InitSessions(nil)
		return nil
	}

	middleware.UseLimiterStorage(middleware.NewRedisStorage(client, "coursehub:limiter:"))
	middleware.InitSessions(middleware.NewRedisStorage(client, "coursehub:session:"))
	return client
}
