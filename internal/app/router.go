package app

import (
	"github.com/gin-gonic/gin"

	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
	"github.com/briarkeep/briarkeep-backend/internal/server"
)

func wireRouter(log *logger.Logger, cfg Config, h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:                 log,
		ServiceName:         cfg.ServiceName,
		IdentityMiddleware:  m.Identity,
		HealthHandler:       h.Health,
		CollectionHandler:   h.Collection,
		OptimizationHandler: h.Optimization,
	})
}
