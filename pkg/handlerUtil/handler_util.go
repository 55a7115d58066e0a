package handlerUtil

import (
	"DrowsyWatch/internal/api/monitor"
	"DrowsyWatch/pkg/log"
	"DrowsyWatch/pkg/response"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

var errorCodes = []struct {
	err  error
	code string
}{
	{monitor.ErrCaptureUnavailable, "CAPTURE_UNAVAILABLE"},
	{monitor.ErrCaptureRead, "CAPTURE_READ_FAILURE"},
	{monitor.ErrEndOfStream, "END_OF_STREAM"},
	{monitor.ErrInvalidConfiguration, "INVALID_CONFIGURATION"},
	{monitor.ErrEncodingFailure, "ENCODING_FAILURE"},
	{monitor.ErrClassification, "CLASSIFICATION_FAILURE"},
	{monitor.ErrEmptyAlarmWindow, "EMPTY_ALARM_WINDOW"},
	{monitor.ErrVerdictNotFound, "VERDICT_NOT_FOUND"},
	{monitor.ErrHistoryUnavailable, "HISTORY_UNAVAILABLE"},
	{monitor.ErrSubscriberExists, "SUBSCRIBER_EXISTS"},
	{monitor.ErrServiceClosed, "SERVICE_CLOSED"},
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle writes the JSON error for err. Domain errors keep their own status
// and message; the wrapped cause is only logged.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code
		entry := h.logger.WithFields(fields)
		if respErr.Code >= fiber.StatusInternalServerError {
			entry.Error("Operation failed with error response")
		} else {
			entry.Warn("Operation failed with error response")
		}

		return c.Status(respErr.Code).JSON(ErrorResponse{
			Error: respErr.Error(),
			Code:  codeFor(err),
		})
	}

	traceID := log.ErrorWithTraceID(fields, "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "An unexpected error occurred",
		Details: "trace_id: " + traceID,
	})
}

func codeFor(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
