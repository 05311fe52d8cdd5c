package service

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"tickets/db"
	"tickets/http"
	"tickets/pubsub"
	"tickets/pubsub/outbox"
)

type Config struct {
	HTTPAddr   string
	JWTKey     []byte
	TrustProxy bool
}

type Service struct {
	db              *sqlx.DB
	watermillLogger watermill.LoggerAdapter
	forwarder       *forwarder.Forwarder
	httpServer      *http.Server
	traceProvider   *tracesdk.TracerProvider
}

func New(
	cfg Config,
	dbConn *sqlx.DB,
	redisClient *redis.Client,
	traceProvider *tracesdk.TracerProvider,
) (Service, error) {
	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher, err := pubsub.NewRedisPublisher(redisClient, watermillLogger)
	if err != nil {
		return Service{}, err
	}

	postgresSubscriber, err := outbox.NewPostgresSubscriber(dbConn.DB, watermillLogger)
	if err != nil {
		return Service{}, err
	}

	fwd, err := outbox.NewForwarder(
		postgresSubscriber,
		redisPublisher,
		pubsub.Middlewares(watermillLogger),
		watermillLogger,
	)
	if err != nil {
		return Service{}, err
	}

	httpServer := http.NewServer(
		cfg.HTTPAddr,
		cfg.JWTKey,
		cfg.TrustProxy,
		dbConn,
	)

	return Service{
		db:              dbConn,
		watermillLogger: watermillLogger,
		forwarder:       fwd,
		httpServer:      httpServer,
		traceProvider:   traceProvider,
	}, nil
}

func (s Service) Run(ctx context.Context) error {
	if err := db.InitializeDatabaseSchema(s.db, s.watermillLogger); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.forwarder.Run(ctx)
	})

	g.Go(func() error {
		// the service shouldn't report healthy before the outbox is forwarded
		select {
		case <-s.forwarder.Running():
		case <-ctx.Done():
			return nil
		}

		return s.httpServer.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		if s.traceProvider == nil {
			return nil
		}
		return s.traceProvider.Shutdown(context.Background())
	})

	return g.Wait()
}
