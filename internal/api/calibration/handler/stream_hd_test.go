package calibrationHandler

import (
	"PoseAlign/internal/api/calibration"
	"PoseAlign/internal/entity"
	"math"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

func TestCalibrationStream(t *testing.T) {
	app := newTestApp(t)
	token := tokenFor(t, "alice")

	code, body := do(t, app, http.MethodPost, "/api/v1/calibrations", token, fiber.Map{
		"video_source": "user",
		"source":       quad(0.1, 0.9),
		"destination":  quad(0.3, 0.7),
	})
	if code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", code, body)
	}
	var created calibration.CalibrationResponse
	if err := jsoniter.Unmarshal(body, &created); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	url := "ws://" + ln.Addr().String() + "/api/v1/calibrations/" + created.ID + "/stream"
	header := http.Header{"Authorization": {"Bearer " + token}}

	var conn *websocket.Conn
	for attempt := 0; attempt < 20; attempt++ {
		conn, _, err = websocket.DefaultDialer.Dial(url, header)
		if err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	t.Run("pose frame", func(t *testing.T) {
		msg := `{"frame":12,"landmarks":[{"x":0,"y":1,"visibility":0.5}]}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("WriteMessage() error = %v", err)
		}

		var frame entity.PoseFrame
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if frame.Frame != 12 || len(frame.Landmarks) != 1 {
			t.Fatalf("frame = %+v", frame)
		}
		lm := frame.Landmarks[0]
		if math.Abs(lm.X-0.25) > 1e-3 || math.Abs(lm.Y-0.75) > 1e-3 {
			t.Errorf("landmark = (%v, %v), want (0.25, 0.75)", lm.X, lm.Y)
		}
		if lm.Attributes["visibility"] != 0.5 {
			t.Errorf("visibility = %v, want 0.5", lm.Attributes["visibility"])
		}
	})

	t.Run("invalid pose", func(t *testing.T) {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"landmarks":[{"y":1}]}`)); err != nil {
			t.Fatalf("WriteMessage() error = %v", err)
		}

		var resp streamError
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if resp.Error != calibration.ErrInvalidPose.Error() {
			t.Errorf("error = %q, want %q", resp.Error, calibration.ErrInvalidPose.Error())
		}
	})

	t.Run("image without detector", func(t *testing.T) {
		if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0xff, 0xd8, 0xff}); err != nil {
			t.Fatalf("WriteMessage() error = %v", err)
		}

		var resp streamError
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if resp.Error != calibration.ErrDetectorUnavailable.Error() {
			t.Errorf("error = %q, want %q", resp.Error, calibration.ErrDetectorUnavailable.Error())
		}
	})
}

func TestCalibrationStreamRequiresUpgrade(t *testing.T) {
	app := newTestApp(t)
	token := tokenFor(t, "alice")

	code, _ := do(t, app, http.MethodGet, "/api/v1/calibrations/anything/stream", token, nil)
	if code != http.StatusUpgradeRequired {
		t.Errorf("status = %d, want 426", code)
	}
}
