package calibrationHandler

import (
	"PoseAlign/internal/api/calibration"
	"PoseAlign/internal/entity"
	contextPkg "PoseAlign/pkg/context"
	"PoseAlign/pkg/handlerUtil"
	jwtPkg "PoseAlign/pkg/jwt"
	"PoseAlign/pkg/log"
	"PoseAlign/pkg/perspective"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *CalibrationHandler) CreateCalibration(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing create calibration request")

	var req calibration.CreateCalibrationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	req.UserID = userData.ID

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	cal, err := h.calibrationService.CreateCalibration(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_calibration")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, makeCalibrationResponse(cal))
	}
}

func (h *CalibrationHandler) GetCalibrations(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	videoSource := ctx.Query("video_source")
	if videoSource != "" && !entity.IsValidVideoSource(videoSource) {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("video_source must be user or reference"), ctx.Path())
	}

	calibrations, err := h.calibrationService.GetCalibrationsByUserID(c, userData.ID, videoSource)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_calibrations")
	}

	responses := make([]calibration.CalibrationResponse, 0, len(calibrations))
	for _, cal := range calibrations {
		responses = append(responses, makeCalibrationResponse(cal))
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, calibration.CalibrationListResponse{
			Calibrations: responses,
			Total:        len(responses),
		})
	}
}

func (h *CalibrationHandler) GetCalibrationByID(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("calibration ID is required"), ctx.Path())
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	cal, err := h.calibrationService.GetCalibration(c, id, userData.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_calibration")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, makeCalibrationResponse(cal))
	}
}

func (h *CalibrationHandler) UpdateCalibration(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing update calibration request")

	var req calibration.UpdateCalibrationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	req.ID = ctx.Params("id")
	req.UserID = userData.ID

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	cal, err := h.calibrationService.UpdateCalibration(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_calibration")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, makeCalibrationResponse(cal))
	}
}

func (h *CalibrationHandler) DeleteCalibration(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("calibration ID is required"), ctx.Path())
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.calibrationService.DeleteCalibration(c, id, userData.ID); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_calibration")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Calibration deleted successfully",
		})
	}
}

func (h *CalibrationHandler) RemapPose(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req calibration.RemapPoseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	pose, err := h.calibrationService.RemapPose(c, ctx.Params("id"), userData.ID, req.Landmarks)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "remap_pose")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, entity.PoseFrame{
			Frame:     req.Frame,
			Timestamp: req.Timestamp,
			Landmarks: pose,
		})
	}
}

func (h *CalibrationHandler) ExportCalibration(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	export, err := h.calibrationService.ExportCalibration(c, ctx.Params("id"), userData.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "export_calibration")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id":     requestID,
			"calibration_id": export.CalibrationID,
			"object_key":     export.ObjectKey,
		}).Info("Calibration exported")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, export)
	}
}

func makeCalibrationResponse(cal entity.Calibration) calibration.CalibrationResponse {
	return calibration.CalibrationResponse{
		ID:          cal.ID,
		UserID:      cal.UserID,
		VideoSource: string(cal.VideoSource),
		Method:      cal.Method,
		Source:      cal.Source,
		Destination: cal.Destination,
		Projected:   cal.Projected,
		Filter:      perspective.FilterExpression(cal.Projected),
		CreatedAt:   cal.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   cal.UpdatedAt.Format(time.RFC3339),
	}
}
