package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"tickets/metrics"
)

var errMalformedBody = errors.New("malformed JSON body")

// jsonBodyMiddleware decodes JSON bodies before any route runs, accepting
// only top-level objects and arrays, and leaves the body readable for
// handlers.
func jsonBodyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Body == nil || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
			return next(c)
		}

		body, err := io.ReadAll(req.Body)
		if err != nil {
			return fmt.Errorf("could not read request body: %w", err)
		}

		if len(bytes.TrimSpace(body)) > 0 {
			req.Body = io.NopCloser(bytes.NewReader(body))

			var decoded any
			if err := c.Echo().JSONSerializer.Deserialize(c, &decoded); err != nil {
				return fmt.Errorf("%w: %w", errMalformedBody, err)
			}

			switch decoded.(type) {
			case map[string]any, []any:
			default:
				return fmt.Errorf("%w: top-level value must be an object or an array", errMalformedBody)
			}
		}

		req.Body = io.NopCloser(bytes.NewReader(body))
		return next(c)
	}
}

func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		if err := next(c); err != nil {
			c.Error(err)
		}

		route := c.Path()
		method := c.Request().Method
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

		return nil
	}
}
