package monitor

import (
	"DrowsyWatch/internal/entity"
	"time"
)

type StatusResponse struct {
	DeviceID string          `json:"device_id"`
	Verdict  *entity.Verdict `json:"verdict,omitempty"`
}

type VerdictHistoryRequest struct {
	Limit int `query:"limit" validate:"gte=1,lte=500"`
}

type VerdictHistoryResponse struct {
	Verdicts []entity.Verdict `json:"verdicts"`
}

type VerdictEventMessage struct {
	Type      string         `json:"type"`
	Payload   entity.Verdict `json:"payload"`
	Timestamp int64          `json:"timestamp"`
}

func NewVerdictEventMessage(v entity.Verdict) VerdictEventMessage {
	return VerdictEventMessage{
		Type:      "verdict",
		Payload:   v,
		Timestamp: time.Now().UnixMilli(),
	}
}

type HealthResponse struct {
	Message       string `json:"message"`
	ActiveStreams int64  `json:"active_streams"`
	Subscribers   int    `json:"subscribers"`
}
