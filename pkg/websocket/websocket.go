package websocketPkg

import (
	"DrowsyWatch/internal/entity"
	"encoding/json"
	"fmt"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"os"
	"sync"
	"time"
)

type IWebsocket interface {
	ProcessFaceFrame(ctx context.Context, frame []byte) (*entity.DetectionResult, error)
	IsConnected() bool
	Reconnect() error
	CloseConnections()
}

type webSocketClient struct {
	url          string
	log          *logrus.Logger
	faceConn     *websocket.Conn
	mu           sync.Mutex
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewFaceDetectionClient(log *logrus.Logger) IWebsocket {
	client := newClient(getWebSocketURL(), log)
	go client.connectInBackground()
	return client
}

func newClient(url string, log *logrus.Logger) *webSocketClient {
	return &webSocketClient{
		url:          url,
		log:          log,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}
}

func (c *webSocketClient) connectInBackground() {
	if err := c.Reconnect(); err != nil {
		c.log.Warnf("Initial connection to face detection failed: %v. Will retry on demand.", err)
		return
	}
	c.log.Info("Successfully connected to face detection service")
}

func (c *webSocketClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.faceConn != nil
}

func (c *webSocketClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnectLocked()
}

func (c *webSocketClient) reconnectLocked() error {
	if c.faceConn != nil {
		c.faceConn.Close()
		c.faceConn = nil
	}

	if c.url == "" {
		return fmt.Errorf("URL for face detection not configured")
	}

	c.log.Infof("Connecting to face detection at %s", c.url)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	c.faceConn = conn
	go c.keepAlive(conn)

	return nil
}

func (c *webSocketClient) CloseConnections() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.faceConn != nil {
		c.faceConn.Close()
		c.faceConn = nil
	}
}

func (c *webSocketClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.faceConn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Ping failed for face detection, marking connection as dead: %v", err)
			c.faceConn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

// ProcessFaceFrame sends one encoded frame and waits for its reply. The lock
// is held for the whole round trip so replies cannot be swapped between
// concurrent streams.
func (c *webSocketClient) ProcessFaceFrame(ctx context.Context, frame []byte) (*entity.DetectionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.faceConn == nil {
		if err := c.reconnectLocked(); err != nil {
			return nil, fmt.Errorf("cannot connect to face detection service: %w", err)
		}
	}
	conn := c.faceConn

	writeDeadline := time.Now().Add(c.writeTimeout)
	readDeadline := time.Now().Add(c.readTimeout)
	if deadline, ok := ctx.Deadline(); ok {
		if deadline.Before(writeDeadline) {
			writeDeadline = deadline
		}
		if deadline.Before(readDeadline) {
			readDeadline = deadline
		}
	}

	conn.SetWriteDeadline(writeDeadline)
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.faceConn = nil
		conn.Close()
		return nil, fmt.Errorf("error sending face frame: %w", err)
	}

	conn.SetReadDeadline(readDeadline)
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.faceConn = nil
		conn.Close()
		return nil, fmt.Errorf("error reading face message: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var result entity.DetectionResult
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling face response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("face detection service error: %s", result.Error)
	}

	c.log.WithFields(logrus.Fields{
		"status":     result.Status,
		"face_count": result.FaceCount,
		"frame_size": len(frame),
	}).Debug("Face detection result")

	return &result, nil
}

func getWebSocketURL() string {
	url := os.Getenv("AI_FACE_DETECTION_URL")
	if url == "" {
		url = "ws://localhost:8000/api/v1/face/ws"
	}
	return url
}
