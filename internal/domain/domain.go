package domain

import (
	"github.com/briarkeep/briarkeep-backend/internal/domain/collection"
	"github.com/briarkeep/briarkeep-backend/internal/domain/recommendation"
	"github.com/briarkeep/briarkeep-backend/internal/domain/user"
)

type User = user.User

type Pipe = collection.Pipe
type Blend = collection.Blend
type PreferenceProfile = collection.PreferenceProfile

type RecommendationSnapshot = recommendation.Snapshot
type MutationBatch = recommendation.MutationBatch
type MutationChange = recommendation.MutationChange

const (
	EntityKindPipe  = recommendation.EntityKindPipe
	EntityKindBlend = recommendation.EntityKindBlend

	BatchKindRecommendationApply = recommendation.BatchKindRecommendationApply
)
