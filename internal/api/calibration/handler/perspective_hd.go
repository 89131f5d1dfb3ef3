package calibrationHandler

import (
	"PoseAlign/internal/api/calibration"
	contextPkg "PoseAlign/pkg/context"
	"PoseAlign/pkg/handlerUtil"
	"PoseAlign/pkg/log"
	"PoseAlign/pkg/perspective"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *CalibrationHandler) Solve(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing solve request")

	var req calibration.SolveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	corr, err := h.calibrationService.Solve(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "solve")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, calibration.SolveResponse{
			Method:    corr.Method,
			Projected: corr.Projected,
			Filter:    perspective.FilterExpression(corr.Projected),
		})
	}
}

func (h *CalibrationHandler) Remap(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req calibration.RemapRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	pose, err := h.calibrationService.Remap(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "remap")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"landmarks": pose,
		})
	}
}
