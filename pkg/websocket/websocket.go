package websocketPkg

import (
	"PoseAlign/internal/entity"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrDetectorNotConfigured = errors.New("pose detector URL not configured")

// IPoseDetector sends video frames to the external pose detector and returns
// the landmarks it found.
type IPoseDetector interface {
	DetectPose(ctx context.Context, frame []byte) (*entity.PoseFrame, error)
	IsConnected() bool
	Reconnect() error
	CloseConnection()
}

type detectorResponse struct {
	entity.PoseFrame
	Error string `json:"error,omitempty"`
}

type poseDetectorClient struct {
	url          string
	conn         *websocket.Conn
	mu           sync.Mutex
	exchange     chan struct{}
	log          *logrus.Logger
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewPoseDetectorClient(logger *logrus.Logger) IPoseDetector {
	client := &poseDetectorClient{
		url:          os.Getenv("POSE_DETECTOR_WS_URL"),
		exchange:     make(chan struct{}, 1),
		log:          logger,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	if client.url != "" {
		go client.connectInBackground()
	}

	return client
}

func (c *poseDetectorClient) connectInBackground() {
	if err := c.Reconnect(); err != nil {
		c.log.Warnf("Initial connection to pose detector failed: %v. Will retry on demand.", err)
		return
	}
	c.log.Info("Successfully connected to pose detector")
}

func (c *poseDetectorClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

func (c *poseDetectorClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	if c.url == "" {
		return ErrDetectorNotConfigured
	}

	c.log.Infof("Connecting to pose detector at %s", c.url)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout)); err != nil {
			c.log.Warnf("Error sending pong: %v", err)
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive(conn)

	return nil
}

func (c *poseDetectorClient) CloseConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *poseDetectorClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		current := c.conn
		c.mu.Unlock()
		if current != conn {
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Ping to pose detector failed, marking connection as dead: %v", err)
			c.dropConnection(conn)
			return
		}
	}
}

func (c *poseDetectorClient) connection() (*websocket.Conn, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		return conn, nil
	}

	if err := c.Reconnect(); err != nil {
		return nil, fmt.Errorf("cannot connect to pose detector: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, errors.New("not connected to pose detector")
	}
	return c.conn, nil
}

func (c *poseDetectorClient) dropConnection(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()
}

// deadline is the earlier of now+timeout and the context deadline.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

// DetectPose is a request/response exchange; one frame is in flight at a time.
// Waiting for the connection and the exchange itself are bounded by ctx.
func (c *poseDetectorClient) DetectPose(ctx context.Context, frame []byte) (*entity.PoseFrame, error) {
	select {
	case c.exchange <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for pose detector: %w", ctx.Err())
	}
	defer func() { <-c.exchange }()

	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	if err := conn.SetWriteDeadline(deadline(ctx, c.writeTimeout)); err != nil {
		c.dropConnection(conn)
		return nil, err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.dropConnection(conn)
		return nil, fmt.Errorf("error sending frame: %w", err)
	}

	if err := conn.SetReadDeadline(deadline(ctx, c.readTimeout)); err != nil {
		c.dropConnection(conn)
		return nil, err
	}
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.dropConnection(conn)
		return nil, fmt.Errorf("error reading detector response: %w", err)
	}

	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	var result detectorResponse
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling detector response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("pose detector: %s", result.Error)
	}

	c.log.WithFields(logrus.Fields{
		"frame":     result.Frame,
		"landmarks": len(result.Landmarks),
	}).Debug("Received pose from detector")

	return &result.PoseFrame, nil
}
