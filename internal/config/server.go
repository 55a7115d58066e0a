package config

import (
	"DrowsyWatch/database/postgres"
	"DrowsyWatch/internal/api/monitor"
	monitorHandler "DrowsyWatch/internal/api/monitor/handler"
	monitorRepository "DrowsyWatch/internal/api/monitor/repository"
	monitorService "DrowsyWatch/internal/api/monitor/service"
	"DrowsyWatch/internal/middleware"
	"DrowsyWatch/pkg/camera"
	"DrowsyWatch/pkg/mqtt"
	"DrowsyWatch/pkg/redis"
	"DrowsyWatch/pkg/s3"
	"DrowsyWatch/pkg/utils"
	websocketPkg "DrowsyWatch/pkg/websocket"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"os"
	"time"
)

type ServerOption func(*Server) error

type Server struct {
	ctx            context.Context
	cancel         context.CancelFunc
	engine         *fiber.App
	db             *sqlx.DB
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	settings       *monitor.Settings
	utils          utils.IUtils
	handlers       []handler
	redisServer    redis.IRedis
	faceWebsocket  websocketPkg.IWebsocket
	mqttPublisher  mqtt.IPublisher
	s3Client       s3.ItfS3
	monitorService monitorService.IMonitorService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())
	server := &Server{
		ctx:    ctx,
		cancel: cancel,
	}

	for _, option := range options {
		if err := option(server); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		cancel()
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		cancel()
		return nil, fmt.Errorf("logger is required")
	}
	if server.settings == nil {
		cancel()
		return nil, fmt.Errorf("settings are required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.NewWithQuality(server.settings.JPEGQuality)
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithSettings(settings monitor.Settings) ServerOption {
	return func(s *Server) error {
		s.settings = &settings
		return nil
	}
}

// WithDatabase connects the verdict history store. Without DB_HOST the
// server runs without history.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		if db == nil && s.log != nil {
			s.log.Warn("DB_HOST not set, verdict history disabled")
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithWebSocket(webSocket websocketPkg.IWebsocket) ServerOption {
	return func(s *Server) error {
		s.faceWebsocket = webSocket
		return nil
	}
}

func WithMQTTPublisher() ServerOption {
	return func(s *Server) error {
		cfg := mqtt.ConfigFromEnv()
		if cfg.Broker == "" {
			if s.log != nil {
				s.log.Warn("MQTT_BROKER not set, verdict events will not be published")
			}
			return nil
		}
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before mqtt")
		}

		client, err := mqtt.NewClient(cfg, s.log)
		if err != nil {
			s.log.Errorf("Failed to initialize MQTT client: %v", err)
			return fmt.Errorf("failed to create MQTT client: %w", err)
		}
		s.mqttPublisher = mqtt.NewPublisher(client, os.Getenv("MQTT_VERDICT_TOPIC"))
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		quality := 0
		if s.settings != nil {
			quality = s.settings.JPEGQuality
		}
		s.utils = utils.NewWithQuality(quality)
		return nil
	}
}

func (s *Server) RegisterHandler() error {
	if s.faceWebsocket == nil {
		return fmt.Errorf("face detection client is required")
	}

	var opts []monitorService.ServiceOption
	if s.redisServer != nil {
		opts = append(opts, monitorService.WithVerdictCache(s.redisServer))
	}
	if s.mqttPublisher != nil {
		opts = append(opts, monitorService.WithVerdictPublisher(s.mqttPublisher))
	}
	if s.s3Client != nil {
		opts = append(opts, monitorService.WithSnapshotStore(s.s3Client))
	}
	if s.db != nil {
		monitorRepo := monitorRepository.New(s.db, s.log)

		ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
		err := monitorRepo.Migrate(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to migrate verdict history: %w", err)
		}
		opts = append(opts, monitorService.WithHistory(monitorRepo))
	}

	// Monitor Domain
	classifier := monitorService.NewRemoteClassifier(s.faceWebsocket, s.utils)
	opener := camera.NewRegistry(s.settings.LoopDirectory)
	if !opener.Supports(s.settings.CameraDeviceID) {
		s.log.WithField("camera", s.settings.CameraDeviceID).
			Warn("No capture backend for CAMERA_DEVICE_ID, /vid will answer 503 until it is an MJPEG URL or an image directory")
	}

	monitorServices, err := monitorService.NewMonitorService(s.log, *s.settings, opener, classifier, s.utils, opts...)
	if err != nil {
		return err
	}
	s.monitorService = monitorServices

	monitorHandlers := monitorHandler.New(s.ctx, s.log, s.validator, s.middleware, monitorServices)

	s.handlers = append(s.handlers, monitorHandlers)
	return nil
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	s.setupHealthCheck()
	for _, h := range s.handlers {
		h.Start(s.engine)
	}

	addr := fmt.Sprintf("%s:%d", s.settings.HostAddress, monitor.ServerPort)
	s.log.WithFields(logrus.Fields{
		"address": addr,
		"camera":  s.settings.CameraDeviceID,
	}).Info("Starting server")

	return s.engine.Listen(addr)
}

// Shutdown ends live streams first so the listener can drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	err := s.engine.ShutdownWithContext(ctx)

	if s.monitorService != nil {
		s.monitorService.Shutdown()
	}
	if s.faceWebsocket != nil {
		s.faceWebsocket.CloseConnections()
	}
	if s.db != nil {
		if dbErr := s.db.Close(); dbErr != nil {
			s.log.Errorf("Failed to close database: %v", dbErr)
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/api/v1/health", func(ctx *fiber.Ctx) error {
		resp := monitor.HealthResponse{
			Message: "Server is Healthy!",
		}
		if s.monitorService != nil {
			resp.ActiveStreams = s.monitorService.ActiveStreams()
			resp.Subscribers = s.monitorService.Subscribers()
		}
		return ctx.JSON(resp)
	})
}
