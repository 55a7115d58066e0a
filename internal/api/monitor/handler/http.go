package monitorHandler

import (
	monitorService "DrowsyWatch/internal/api/monitor/service"
	"DrowsyWatch/internal/middleware"
	"DrowsyWatch/pkg/handlerUtil"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type MonitorHandler struct {
	ctx            context.Context
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	monitorService monitorService.IMonitorService
	errHandler     *handlerUtil.ErrorHandler
}

// New binds the handler to ctx: cancelling it ends every live stream.
func New(
	ctx context.Context,
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ms monitorService.IMonitorService,
) *MonitorHandler {
	return &MonitorHandler{
		ctx:            ctx,
		log:            log,
		validator:      validator,
		middleware:     middleware,
		monitorService: ms,
		errHandler:     handlerUtil.New(log),
	}
}

func (h *MonitorHandler) Start(srv fiber.Router) {
	srv.Get("/", h.Index)
	srv.Get("/vid", h.middleware.NewRateLimiter, h.StreamVideo)

	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	monitor := srv.Group("/api/v1/monitor")
	monitor.Get("/status", h.GetStatus)
	monitor.Get("/verdicts", h.middleware.NewTokenMiddleware, h.GetVerdictHistory)
	monitor.Use("/ws", wsMiddleware)
	monitor.Get("/ws", websocket.New(h.handleVerdictWebSocket))
}
