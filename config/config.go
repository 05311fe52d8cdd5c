package config

import (
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr       string `long:"http-addr" env:"HTTP_ADDR" default:":8080" description:"HTTP listen address"`
	PostgresURL    string `long:"postgres-url" env:"POSTGRES_URL" description:"Postgres connection string"`
	RedisAddr      string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address"`
	JWTKey         string `long:"jwt-key" env:"JWT_KEY" description:"Key used to verify session tokens"`
	TrustProxy     bool   `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-* headers from any upstream proxy; on by default, disable with TRUST_PROXY=false"`
	JaegerEndpoint string `long:"jaeger-endpoint" env:"JAEGER_ENDPOINT" description:"Jaeger collector endpoint"`
	GatewayAddr    string `long:"gateway-addr" env:"GATEWAY_ADDR" description:"Gateway address, used to derive the Jaeger endpoint"`
	LogLevel       string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"logrus level"`
}

// Load reads the config from command line arguments, falling back to
// environment variables and defaults.
func Load(args []string) (Config, error) {
	// ingress always proxies traffic to this service
	cfg := Config{TrustProxy: true}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return Config{}, fmt.Errorf("could not parse config: %w", err)
	}

	if cfg.PostgresURL == "" {
		return Config{}, fmt.Errorf("postgres url is required")
	}
	if cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("redis addr is required")
	}
	if cfg.JWTKey == "" {
		return Config{}, fmt.Errorf("jwt key is required")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	return cfg, nil
}

func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
