package calibrationHandler

import (
	calibrationService "PoseAlign/internal/api/calibration/service"
	"PoseAlign/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type CalibrationHandler struct {
	log                *logrus.Logger
	validator          *validator.Validate
	middleware         middleware.Middleware
	calibrationService calibrationService.ICalibrationService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	calibrationService calibrationService.ICalibrationService,
) *CalibrationHandler {
	return &CalibrationHandler{
		log:                log,
		validator:          validate,
		middleware:         middleware,
		calibrationService: calibrationService,
	}
}

func (h *CalibrationHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	perspective := srv.Group("/perspective", h.middleware.NewRateLimiter)
	perspective.Post("/solve", h.Solve)
	perspective.Post("/remap", h.Remap)

	calibrations := srv.Group("/calibrations", h.middleware.NewTokenMiddleware)
	calibrations.Post("", h.CreateCalibration)
	calibrations.Get("", h.GetCalibrations)
	calibrations.Get("/:id", h.GetCalibrationByID)
	calibrations.Put("/:id", h.UpdateCalibration)
	calibrations.Delete("/:id", h.DeleteCalibration)
	calibrations.Post("/:id/remap", h.RemapPose)
	calibrations.Post("/:id/export", h.ExportCalibration)

	calibrations.Use("/:id/stream", wsMiddleware)
	calibrations.Get("/:id/stream", websocket.New(h.handleStream))
}
