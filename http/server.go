package http

import (
	"context"
	"errors"
	"net"
	"net/http"

	echoHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"tickets/apperr"
	"tickets/auth"
	"tickets/session"
	"tickets/tracing"
)

// same limit as the body parser used by the other services
const bodyLimit = "100K"

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	addr string
	e    *echo.Echo
	db   Pinger
}

func NewServer(
	addr string,
	jwtKey []byte,
	trustProxy bool,
	db Pinger,
) *Server {
	e := echoHTTP.NewEcho()

	server := &Server{
		addr: addr,
		e:    e,
		db:   db,
	}

	e.IPExtractor = ipExtractor(trustProxy)
	e.HTTPErrorHandler = server.handleError

	// metrics wrap tracing, so otelecho still sees handler errors
	e.Use(metricsMiddleware)
	e.Use(otelecho.Middleware(tracing.ServiceName))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(jsonBodyMiddleware)
	e.Use(session.Middleware())
	e.Use(auth.CurrentUser(jwtKey))

	e.GET("/health", server.GetHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/api/tickets", server.PostTickets, auth.RequireAuth)

	e.Any("/*", func(c echo.Context) error {
		return apperr.ErrNotFound
	})

	return server
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		err := s.e.Shutdown(context.Background())
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()
	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s Server) GetHealth(c echo.Context) error {
	if err := s.db.PingContext(c.Request().Context()); err != nil {
		log.FromContext(c.Request().Context()).WithError(err).Error("Database is not reachable")
		return c.String(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.String(http.StatusOK, "ok")
}

// ipExtractor makes echo aware that traffic is proxied by the ingress, so
// c.RealIP reports the client address from X-Forwarded-For.
func ipExtractor(trustProxy bool) echo.IPExtractor {
	if !trustProxy {
		return echo.ExtractIPDirect()
	}

	_, allIPv4, _ := net.ParseCIDR("0.0.0.0/0")
	_, allIPv6, _ := net.ParseCIDR("::/0")

	return echo.ExtractIPFromXFFHeader(
		echo.TrustIPRange(allIPv4),
		echo.TrustIPRange(allIPv6),
	)
}
