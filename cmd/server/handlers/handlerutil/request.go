package handlerutil

import (
	"user-pulse/cmd/server/handlers/httperr"
	"user-pulse/internal/logger"
	"user-pulse/internal/services/users"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SessionKey is the ctx.Locals key the auth middleware stores the session under.
const SessionKey = "session"

// SetSession stores the resolved session for downstream handlers.
func SetSession(c *fiber.Ctx, sess *users.Session) {
	c.Locals(SessionKey, sess)
}

// GetSession extracts the session set by the auth middleware.
func GetSession(c *fiber.Ctx) (*users.Session, bool) {
	sess, ok := c.Locals(SessionKey).(*users.Session)
	if !ok || sess == nil || sess.User == nil {
		return nil, false
	}
	return sess, true
}

// Authed adapts a handler that needs the caller's session into a fiber.Handler.
// The route must sit behind the auth middleware.
func Authed(h func(*fiber.Ctx, users.Session) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := GetSession(c)
		if !ok {
			logger.L().Error("session not found in context", "handler", "Authed", "path", c.Path())
			return httperr.Fail(httperr.ErrAuthenticate)
		}
		return h(c, *sess)
	}
}

// ParseAndValidateBody parses request body and validates it
func ParseAndValidateBody(c *fiber.Ctx, req any, v *validator.Validate, handlerName string) error {
	if err := c.BodyParser(req); err != nil {
		logger.L().Warn("failed to parse request body", "handler", handlerName, "userID", sessionUserID(c), "error", err)
		return httperr.Fail(httperr.ErrBadRequest)
	}

	if err := v.Struct(req); err != nil {
		logger.L().Warn("request validation failed", "handler", handlerName, "userID", sessionUserID(c), "error", err)
		return httperr.InvalidInput(err)
	}

	return nil
}

func sessionUserID(c *fiber.Ctx) string {
	if sess, ok := GetSession(c); ok {
		return sess.User.ID.Hex()
	}
	return ""
}
