package middlewares

import (
	"context"
	"errors"

	"user-pulse/cmd/server/handlers/handlerutil"
	"user-pulse/cmd/server/handlers/httperr"
	"user-pulse/internal/config"
	"user-pulse/internal/logger"
	"user-pulse/internal/metrics"
	"user-pulse/internal/services/users"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// SessionResolver maps a verified token to the session that owns it.
type SessionResolver interface {
	ResolveSession(ctx context.Context, userID bson.ObjectID, raw string) (*users.Session, error)
}

// FailureRecorder counts rejected requests. nil disables counting.
type FailureRecorder interface {
	AuthFailed(reason string)
}

// Auth returns a configured Fiber middleware that:
//
//   - validates the Bearer token signature using cfg.JWTSecret
//   - makes sure the token carries a valid "_id" claim
//   - makes sure the token is still in that user's token list
//   - stores the resulting users.Session in ctx.Locals("session").
//
// Every failure is a 401 "Please authenticate.".
func Auth(cfg config.Config, resolver SessionResolver, rec FailureRecorder) fiber.Handler {
	fail := func(c *fiber.Ctx, reason string, err error) error {
		logger.L().Info("request not authenticated", "path", c.Path(), "reason", reason, "error", err)
		if rec != nil {
			rec.AuthFailed(reason)
		}
		return httperr.Fail(httperr.ErrAuthenticate)
	}

	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			// Signature and exp already verified at this point.
			token := c.Locals("user").(*jwt.Token)
			claims, _ := token.Claims.(jwt.MapClaims)

			userID, err := users.UserIDFromClaims(claims)
			if err != nil {
				return fail(c, metrics.ReasonInvalidToken, err)
			}

			sess, err := resolver.ResolveSession(c.UserContext(), userID, token.Raw)
			if err != nil {
				if errors.Is(err, users.ErrTokenNotFound) {
					return fail(c, metrics.ReasonRevokedToken, err)
				}
				return fail(c, metrics.ReasonLookupError, err)
			}

			handlerutil.SetSession(c, sess)
			return c.Next()
		},

		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if c.Get(fiber.HeaderAuthorization) == "" {
				return fail(c, metrics.ReasonMissingToken, err)
			}
			return fail(c, metrics.ReasonInvalidToken, err)
		},
	})
}
