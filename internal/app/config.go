package app

import (
	"time"

	"github.com/briarkeep/briarkeep-backend/internal/platform/envutil"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

type Config struct {
	ServiceName string
	Environment string
	Version     string
	Port        string

	// StalenessSessionTTL bounds how long the in-memory notification
	// watermark for a session is kept.
	StalenessSessionTTL time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		ServiceName:         envutil.Str("SERVICE_NAME", "briarkeep"),
		Environment:         envutil.Str("ENVIRONMENT", "development"),
		Version:             envutil.Str("SERVICE_VERSION", "dev"),
		Port:                envutil.Str("PORT", "8080"),
		StalenessSessionTTL: envutil.Duration("STALENESS_SESSION_TTL", 12*time.Hour),
	}
	log.Info("config loaded",
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
		"port", cfg.Port,
	)
	return cfg
}
