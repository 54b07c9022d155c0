package app

import (
	"github.com/briarkeep/briarkeep-backend/internal/http/middleware"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

type Middleware struct {
	Identity *middleware.IdentityMiddleware
}

func wireMiddleware(log *logger.Logger) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Identity: middleware.NewIdentityMiddleware(log),
	}
}
