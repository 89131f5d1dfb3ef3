package calibrationHandler

import (
	"PoseAlign/internal/api/calibration"
	"PoseAlign/internal/entity"
	"PoseAlign/internal/middleware"
	contextPkg "PoseAlign/pkg/context"
	jwtPkg "PoseAlign/pkg/jwt"
	"time"

	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	streamReadTimeout  = 60 * time.Second
	streamWriteTimeout = 10 * time.Second
	streamFrameTimeout = 5 * time.Second
)

type streamError struct {
	Error string `json:"error"`
	Frame int64  `json:"frame,omitempty"`
}

// handleStream remaps one pose per message. Text messages carry a pose
// frame as JSON; binary messages carry an image for the pose detector.
func (h *CalibrationHandler) handleStream(c *websocket.Conn) {
	id := c.Params("id")
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	user, ok := c.Locals(jwtPkg.UserLocalsKey).(entity.UserLoginData)
	if !ok {
		_ = c.WriteJSON(streamError{Error: "Unauthorized"})
		return
	}

	logger := h.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"calibration_id": id,
		"user_id":        user.ID,
	})
	logger.Info("Calibration stream client connected")
	defer logger.Info("Calibration stream client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			logger.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	base := contextPkg.WithUserID(contextPkg.WithRequestID(context.Background(), requestID), user.ID)

	for {
		if err := c.SetReadDeadline(time.Now().Add(streamReadTimeout)); err != nil {
			logger.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Errorf("Calibration stream error: %v", err)
			}
			break
		}

		ctx, cancel := context.WithTimeout(base, streamFrameTimeout)
		result, frame, err := h.processStreamMessage(ctx, id, user.ID, messageType, message)
		cancel()

		var payload interface{} = result
		if err != nil {
			logger.WithField("frame", frame).Debugf("Stream frame rejected: %v", err)
			payload = streamError{Error: err.Error(), Frame: frame}
		}

		if err := c.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			logger.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(payload); err != nil {
			logger.Errorf("Error writing stream response: %v", err)
			break
		}
	}
}

func (h *CalibrationHandler) processStreamMessage(ctx context.Context, id string, userID string, messageType int, message []byte) (*entity.PoseFrame, int64, error) {
	switch messageType {
	case websocket.TextMessage:
		var frame entity.PoseFrame
		if err := jsoniter.Unmarshal(message, &frame); err != nil {
			return nil, 0, calibration.ErrInvalidPose
		}

		pose, err := h.calibrationService.RemapPose(ctx, id, userID, frame.Landmarks)
		if err != nil {
			return nil, frame.Frame, err
		}

		frame.Landmarks = pose
		return &frame, frame.Frame, nil

	case websocket.BinaryMessage:
		frame, err := h.calibrationService.RemapFrame(ctx, id, userID, message)
		if err != nil {
			return nil, 0, err
		}
		return frame, frame.Frame, nil

	default:
		return nil, 0, calibration.ErrInvalidPose
	}
}
