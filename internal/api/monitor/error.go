package monitor

import (
	"DrowsyWatch/pkg/response"
	"net/http"
)

var (
	ErrCaptureUnavailable   = response.NewError(http.StatusServiceUnavailable, "capture unavailable")
	ErrCaptureRead          = response.NewError(http.StatusBadGateway, "capture read failure")
	ErrEndOfStream          = response.NewError(http.StatusGone, "end of stream")
	ErrInvalidConfiguration = response.NewError(http.StatusInternalServerError, "invalid configuration")
	ErrEncodingFailure      = response.NewError(http.StatusInternalServerError, "encoding failure")
	ErrClassification       = response.NewError(http.StatusBadGateway, "face classification failed")
	ErrEmptyAlarmWindow     = response.NewError(http.StatusInternalServerError, "alarm window closed without a captured frame")
	ErrVerdictNotFound      = response.NewError(http.StatusNotFound, "no verdict recorded yet")
	ErrHistoryUnavailable   = response.NewError(http.StatusServiceUnavailable, "verdict history is not configured")
	ErrSubscriberExists     = response.NewError(http.StatusConflict, "verdict subscriber already registered")
	ErrServiceClosed        = response.NewError(http.StatusServiceUnavailable, "monitor service is shutting down")
)
