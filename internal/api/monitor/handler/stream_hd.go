package monitorHandler

import (
	"DrowsyWatch/internal/api/monitor"
	monitorService "DrowsyWatch/internal/api/monitor/service"
	contextPkg "DrowsyWatch/pkg/context"
	"bufio"
	"embed"
	"errors"
	"fmt"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"io"
)

//go:embed static/index.html
var static embed.FS

var errClientGone = errors.New("client disconnected")

func (h *MonitorHandler) Index(c *fiber.Ctx) error {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		return h.errHandler.Handle(c, h.middleware.GetRequestID(c), err, c.Path(), "Index")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(page)
}

// StreamVideo serves one monitoring session as multipart/x-mixed-replace.
// The camera is opened before any header is sent, so an unavailable camera
// still gets a JSON error.
func (h *MonitorHandler) StreamVideo(c *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(c)

	ctx, cancel := context.WithCancel(contextPkg.WithParent(h.ctx, c))

	stream, err := h.monitorService.OpenStream(ctx)
	if err != nil {
		cancel()
		return h.errHandler.Handle(c, requestID, err, c.Path(), "StreamVideo")
	}
	ctx = contextPkg.WithStreamID(ctx, stream.ID)

	partContentType := h.monitorService.Settings().PartContentType
	entry := h.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"stream_id":  stream.ID,
	})

	c.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary="+monitor.StreamBoundary)
	c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	c.Set("Pragma", "no-cache")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer stream.Close()

		err := writeParts(ctx, w, stream, partContentType)
		switch {
		case errors.Is(err, errClientGone), errors.Is(err, context.Canceled):
			entry.WithField("reason", err.Error()).Info("Stream stopped")
		case errors.Is(err, monitor.ErrEndOfStream):
			entry.Info("Stream reached end of capture")
		default:
			entry.WithField("error", err.Error()).Error("Stream terminated")
		}
	})

	return nil
}

// writeParts pulls units until the stream fails or the client goes away.
// It only returns with a non-nil error.
func writeParts(ctx context.Context, w *bufio.Writer, stream *monitorService.Stream, partContentType string) error {
	for {
		unit, err := stream.Next(ctx)
		if err != nil {
			return err
		}

		if err := writePart(w, partContentType, unit.Data); err != nil {
			return fmt.Errorf("%w: %w", errClientGone, err)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("%w: %w", errClientGone, err)
		}
	}
}

func writePart(w io.Writer, contentType string, data []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: %s\r\n\r\n", monitor.StreamBoundary, contentType); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}
