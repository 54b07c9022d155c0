package app

import (
	"gorm.io/gorm"

	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
	"github.com/briarkeep/briarkeep-backend/internal/services"
)

type Services struct {
	Collection     services.CollectionService
	Advisor        services.Advisor
	Recommendation services.RecommendationService
	Mutation       services.MutationService
	StalenessGate  *services.StalenessGate
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, clients Clients) Services {
	log.Info("Wiring services...")

	collection := services.NewCollectionService(db, log, r.Pipe, r.Blend, r.PreferenceProfile, clients.Bucket)
	advisor := services.NewAdvisor(log, clients.OpenAI)
	recommendation := services.NewRecommendationService(db, log, r.Snapshot, collection, advisor, clients.Locker)
	mutation := services.NewMutationService(db, log, r.MutationBatch, r.Pipe, r.Blend)

	return Services{
		Collection:     collection,
		Advisor:        advisor,
		Recommendation: recommendation,
		Mutation:       mutation,
		StalenessGate:  services.NewStalenessGate(cfg.StalenessSessionTTL),
	}
}
