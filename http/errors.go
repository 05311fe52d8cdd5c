package http

import (
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"tickets/apperr"
)

// handleError is the only place where error responses are written.
func (s Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	err = fromEchoError(err)

	status, body := apperr.ToResponse(err)
	if apperr.KindOf(err) == apperr.KindGeneric {
		log.FromContext(c.Request().Context()).WithError(err).Error("Request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		log.FromContext(c.Request().Context()).WithError(err).Error("Could not write error response")
	}
}

// fromEchoError translates errors produced by echo itself (router misses,
// middleware rejections) into the service's error kinds.
func fromEchoError(err error) error {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return err
	}

	switch {
	case lo.Contains([]int{http.StatusNotFound, http.StatusMethodNotAllowed}, he.Code):
		return apperr.ErrNotFound
	case he.Code == http.StatusUnauthorized:
		return apperr.ErrNotAuthorized
	default:
		return err
	}
}
