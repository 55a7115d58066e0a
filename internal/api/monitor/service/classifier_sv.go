package monitorService

import (
	"DrowsyWatch/internal/entity"
	"DrowsyWatch/pkg/utils"
	websocketPkg "DrowsyWatch/pkg/websocket"
	"golang.org/x/net/context"
)

type remoteClassifier struct {
	ws      websocketPkg.IWebsocket
	encoder utils.IUtils
}

// NewRemoteClassifier sends each frame as JPEG to the face detection service.
func NewRemoteClassifier(ws websocketPkg.IWebsocket, encoder utils.IUtils) Classifier {
	return &remoteClassifier{
		ws:      ws,
		encoder: encoder,
	}
}

func (c *remoteClassifier) IsFacePresent(ctx context.Context, frame entity.Frame) (bool, error) {
	data, err := c.encoder.EncodeJPEG(frame.Image)
	if err != nil {
		return false, err
	}

	result, err := c.ws.ProcessFaceFrame(ctx, data)
	if err != nil {
		return false, err
	}

	return result.FacePresent(), nil
}
