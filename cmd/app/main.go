package main

import (
	"DrowsyWatch/internal/config"
	"DrowsyWatch/pkg/log"
	"DrowsyWatch/pkg/redis"
	websocketPkg "DrowsyWatch/pkg/websocket"
	"context"
	"errors"
	"github.com/joho/godotenv"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	envErr := godotenv.Load()

	logger := log.NewLogger()
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Fatalf("Error loading .env file: %v", envErr)
	}

	validator := config.NewValidator()
	settings, err := config.LoadSettings(validator)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "Invalid configuration")
	}

	fiberApp := config.NewFiber(logger)
	redisServer := redis.New()
	faceClient := websocketPkg.NewFaceDetectionClient(logger)

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithSettings(settings),
		config.WithDatabase(),
		config.WithRedisServer(redisServer),
		config.WithWebSocket(faceClient),
		config.WithMQTTPublisher(),
		config.WithMiddleware(),
		config.WithS3Client(),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	if err := server.RegisterHandler(); err != nil {
		logger.Fatalf("Failed to register handlers: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
