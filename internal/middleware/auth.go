package middleware

import (
	"errors"
	"slices"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/strazyuk/ProjectSpara/internal/config"
	"github.com/strazyuk/ProjectSpara/internal/dto"
)

const userLocal = "user"

// JWTProtected verifies the HS256 access token issued by the auth provider.
// When cfg.JWTAudience is set the token's aud claim must contain it.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ContextKey: userLocal,
		SuccessHandler: func(c *fiber.Ctx) error {
			if cfg.JWTAudience != "" && !hasAudience(c, cfg.JWTAudience) {
				return rejectToken(c)
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return rejectToken(c)
		},
	})
}

func rejectToken(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or expired token",
	})
}

func hasAudience(c *fiber.Ctx, want string) bool {
	token, ok := c.Locals(userLocal).(*jwt.Token)
	if !ok {
		return false
	}
	aud, err := token.Claims.GetAudience()
	if err != nil {
		return false
	}
	return slices.Contains(aud, want)
}

// UserID extracts the user UUID from the sub claim of a verified token.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals(userLocal).(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}
