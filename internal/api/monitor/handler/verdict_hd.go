package monitorHandler

import (
	"DrowsyWatch/internal/api/monitor"
	contextPkg "DrowsyWatch/pkg/context"
	jwtPkg "DrowsyWatch/pkg/jwt"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"time"
)

const defaultHistoryLimit = 20

func (h *MonitorHandler) GetStatus(c *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(c)
	ctx := contextPkg.FromFiberCtx(c)

	resp := monitor.StatusResponse{
		DeviceID: h.monitorService.Settings().CameraDeviceID,
	}

	verdict, err := h.monitorService.LatestVerdict(ctx)
	switch {
	case errors.Is(err, monitor.ErrVerdictNotFound):
	case err != nil:
		return h.errHandler.Handle(c, requestID, err, c.Path(), "GetStatus")
	default:
		resp.Verdict = &verdict
	}

	return h.errHandler.HandleSuccess(c, fiber.StatusOK, resp)
}

func (h *MonitorHandler) GetVerdictHistory(c *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(c)
	ctx := contextPkg.FromFiberCtx(c)

	req := monitor.VerdictHistoryRequest{Limit: defaultHistoryLimit}
	if err := c.QueryParser(&req); err != nil {
		return h.errHandler.HandleValidationError(c, requestID, err, c.Path())
	}
	if err := h.validator.Struct(req); err != nil {
		return h.errHandler.HandleValidationError(c, requestID, err, c.Path())
	}

	operator, err := jwtPkg.GetOperator(c)
	if err != nil {
		return h.errHandler.HandleUnauthorized(c, requestID, "operator token required")
	}

	verdicts, err := h.monitorService.RecentVerdicts(ctx, req.Limit)
	if err != nil {
		return h.errHandler.Handle(c, requestID, err, c.Path(), "GetVerdictHistory")
	}

	h.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"operator_id": operator.ID,
		"count":       len(verdicts),
	}).Info("Verdict history served")

	return h.errHandler.HandleSuccess(c, fiber.StatusOK, monitor.VerdictHistoryResponse{Verdicts: verdicts})
}

// handleVerdictWebSocket pushes every verdict to the browser until either
// side closes.
func (h *MonitorHandler) handleVerdictWebSocket(c *websocket.Conn) {
	subscriberID := uuid.NewString()
	entry := h.log.WithField("subscriber_id", subscriberID)

	events, err := h.monitorService.SubscribeVerdicts(subscriberID)
	if err != nil {
		entry.WithField("error", err.Error()).Warn("Verdict subscription refused")
		_ = c.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	defer h.monitorService.UnsubscribeVerdicts(subscriberID)

	entry.Info("Verdict WebSocket client connected")
	defer entry.Info("Verdict WebSocket client disconnected")

	// The reader only exists to notice the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-h.ctx.Done():
			return
		case verdict, ok := <-events:
			if !ok {
				return
			}

			if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
				entry.Errorf("Error setting write deadline: %v", err)
				return
			}
			if err := c.WriteJSON(monitor.NewVerdictEventMessage(verdict)); err != nil {
				entry.Errorf("Error writing verdict event: %v", err)
				return
			}
		}
	}
}
