package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"tickets/config"
	"tickets/pubsub"
	"tickets/service"
	"tickets/tracing"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logrus.WithError(err).Fatal("could not load config")
	}

	log.Init(cfg.Level())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	traceProvider, err := tracing.ConfigureTraceProvider(cfg.JaegerEndpoint, cfg.GatewayAddr)
	if err != nil {
		logrus.WithError(err).Fatal("could not configure tracing")
	}

	traceDB, err := otelsql.Open("postgres", cfg.PostgresURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName("tickets"),
	)
	if err != nil {
		logrus.WithError(err).Fatal("could not open database")
	}

	dbConn := sqlx.NewDb(traceDB, "postgres")
	defer dbConn.Close()

	redisClient := pubsub.NewRedisClient(cfg.RedisAddr)
	defer redisClient.Close()

	svc, err := service.New(
		service.Config{
			HTTPAddr:   cfg.HTTPAddr,
			JWTKey:     []byte(cfg.JWTKey),
			TrustProxy: cfg.TrustProxy,
		},
		dbConn,
		redisClient,
		traceProvider,
	)
	if err != nil {
		logrus.WithError(err).Fatal("could not create service")
	}

	if err := svc.Run(ctx); err != nil {
		logrus.WithError(err).Fatal("service stopped with error")
	}
}
