package middleware

import (
	"PoseAlign/internal/entity"
	contextPkg "PoseAlign/pkg/context"
	jwtPkg "PoseAlign/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"
)

func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	unauthorized := func(reason string) error {
		m.log.WithFields(logrus.Fields{
			"path":      ctx.Path(),
			"method":    ctx.Method(),
			"client_ip": ctx.IP(),
			"error":     reason,
		}).Warn("Authorization check failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, access token invalid or expired",
		})
	}

	// Browser websocket clients cannot set headers on the upgrade request.
	if ctx.Get(fiber.HeaderAuthorization) == "" {
		if token := ctx.Query("access_token"); token != "" {
			ctx.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}

	userToken, err := jwtPkg.VerifyTokenHeader(ctx, AccessTokenSecret)
	if err != nil {
		return unauthorized(err.Error())
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		return unauthorized("invalid token claims")
	}

	id, idOk := claims["id"].(string)
	email, emailOk := claims["email"].(string)
	username, usernameOk := claims["username"].(string)
	if !idOk || !emailOk || !usernameOk || id == "" {
		return unauthorized("token claims are missing required fields")
	}

	user := entity.UserLoginData{
		ID:       id,
		Email:    email,
		Username: username,
	}
	ctx.Locals(jwtPkg.UserLocalsKey, user)
	ctx.Locals(contextPkg.UserIDLocalsKey, user.ID)

	m.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"path":    ctx.Path(),
	}).Debug("Authentication successful")
	return ctx.Next()
}
