package context

import (
	"context"
	"github.com/gofiber/fiber/v2"
)

const (
	RequestIDKey = "request_id"
	StreamIDKey  = "stream_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func WithStreamID(ctx context.Context, streamID string) context.Context {
	return context.WithValue(ctx, StreamIDKey, streamID)
}

func GetStreamID(ctx context.Context) string {
	streamID, ok := ctx.Value(StreamIDKey).(string)
	if !ok || streamID == "" {
		return "unknown"
	}
	return streamID
}

func FromFiberCtx(c *fiber.Ctx) context.Context {
	return WithParent(context.Background(), c)
}

// WithParent attaches the request id of c to parent. Streams use it so their
// context outlives the fiber handler but still stops on server shutdown.
func WithParent(parent context.Context, c *fiber.Ctx) context.Context {
	requestID, ok := c.Locals("X-Request-ID").(string)
	if !ok || requestID == "" {
		requestID = c.Get("X-Request-ID")

		if requestID == "" {
			requestID = "unknown"
		}
	}

	return WithRequestID(parent, requestID)
}
