// Package auth decodes the current user from the session token and guards
// routes that need an authenticated user.
package auth

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"tickets/apperr"
	"tickets/entity"
	"tickets/session"
)

const currentUserKey = "current_user"

type claims struct {
	entity.UserPayload
	jwt.RegisteredClaims
}

// NewToken signs a session token for user, in the same form the auth service
// issues them.
func NewToken(user entity.UserPayload, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserPayload: user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	})

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token issued by the auth service. Only HS256 is
// accepted, as that is what the auth service signs with, and the token must
// carry a user id.
func ParseToken(token string, key []byte) (entity.UserPayload, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return entity.UserPayload{}, fmt.Errorf("could not parse token: %w", err)
	}

	if c.UserPayload.ID == "" {
		return entity.UserPayload{}, fmt.Errorf("token has no user id")
	}
	return c.UserPayload, nil
}

// CurrentUser verifies the token stored in the session and, when valid,
// attaches the user to the request. Invalid tokens are not an error here:
// the request continues anonymously.
func CurrentUser(key []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := session.FromContext(c)
			if s.IsEmpty() {
				return next(c)
			}

			user, err := ParseToken(s.JWT, key)
			if err != nil {
				log.FromContext(c.Request().Context()).WithError(err).Debug("Ignoring invalid session token")
				return next(c)
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// Authenticate returns the user attached by CurrentUser.
func Authenticate(c echo.Context) (entity.UserPayload, error) {
	user, ok := c.Get(currentUserKey).(entity.UserPayload)
	if !ok {
		return entity.UserPayload{}, apperr.ErrNotAuthorized
	}
	return user, nil
}

func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := Authenticate(c); err != nil {
			return err
		}
		return next(c)
	}
}
