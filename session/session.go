// Package session implements the unsigned cookie session shared by the
// services behind the ingress: the cookie value is base64 encoded JSON.
package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/labstack/echo/v4"
)

const (
	CookieName = "session"

	contextKey = "session"
)

type Session struct {
	JWT string `json:"jwt,omitempty"`
}

func (s Session) IsEmpty() bool {
	return s.JWT == ""
}

func Encode(s Session) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("could not marshal session: %w", err)
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

func Decode(value string) (Session, error) {
	payload, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return Session{}, fmt.Errorf("could not decode session cookie: %w", err)
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return Session{}, fmt.Errorf("could not unmarshal session: %w", err)
	}
	return s, nil
}

// Middleware decodes the session cookie and stores it on the context.
// A missing or malformed cookie results in an empty session.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var s Session

			if cookie, err := c.Cookie(CookieName); err == nil {
				if decoded, err := Decode(cookie.Value); err == nil {
					s = decoded
				}
			}

			c.Set(contextKey, s)
			return next(c)
		}
	}
}

func FromContext(c echo.Context) Session {
	s, _ := c.Get(contextKey).(Session)
	return s
}
