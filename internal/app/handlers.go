package app

import (
	"github.com/briarkeep/briarkeep-backend/internal/http/handlers"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

type Handlers struct {
	Health       *handlers.HealthHandler
	Collection   *handlers.CollectionHandler
	Optimization *handlers.OptimizationHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       handlers.NewHealthHandler(),
		Collection:   handlers.NewCollectionHandler(log, s.Collection),
		Optimization: handlers.NewOptimizationHandler(log, s.Recommendation, s.Mutation, s.StalenessGate),
	}
}
