package middleware

import (
	"DrowsyWatch/internal/entity"
	jwtPkg "DrowsyWatch/pkg/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"
)

type tokenMiddleware struct {
	secretEnvKey string
}

func newTokenMiddleware(secretEnvKey string) *tokenMiddleware {
	return &tokenMiddleware{
		secretEnvKey: secretEnvKey,
	}
}

func unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized, access token invalid or expired",
		"code":  "UNAUTHORIZED",
	})
}

// NewTokenMiddleware admits operators holding an HS256 token with id and
// name claims.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	requestID := m.GetRequestID(ctx)

	m.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"method":     ctx.Method(),
		"client_ip":  ctx.IP(),
	}).Debug("Operator request")

	operatorToken, err := jwtPkg.VerifyTokenHeader(ctx, m.token.secretEnvKey)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Token verification failed")
		return unauthorized(ctx)
	}

	claims, ok := operatorToken.Claims.(jwt.MapClaims)
	if !ok {
		m.log.WithField("request_id", requestID).Warn("Invalid token claims")
		return unauthorized(ctx)
	}

	id, idOK := claims["id"].(string)
	name, nameOK := claims["name"].(string)
	if !idOK || !nameOK || id == "" {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id_exists":  idOK,
			"name_exist": nameOK,
		}).Warn("Token claims are missing required fields")
		return unauthorized(ctx)
	}

	ctx.Locals(jwtPkg.OperatorLocalsKey, entity.Operator{
		ID:   id,
		Name: name,
	})

	m.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"operator_id": id,
	}).Debug("Authentication successful")
	return ctx.Next()
}
