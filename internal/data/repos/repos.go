package repos

import (
	"github.com/briarkeep/briarkeep-backend/internal/data/repos/collection"
	"github.com/briarkeep/briarkeep-backend/internal/data/repos/recommendation"
	"github.com/briarkeep/briarkeep-backend/internal/data/repos/user"
)

type UserRepo = user.UserRepo

type PipeRepo = collection.PipeRepo
type BlendRepo = collection.BlendRepo
type PreferenceProfileRepo = collection.PreferenceProfileRepo

type SnapshotRepo = recommendation.SnapshotRepo
type MutationBatchRepo = recommendation.MutationBatchRepo

var (
	NewUserRepo              = user.NewUserRepo
	NewPipeRepo              = collection.NewPipeRepo
	NewBlendRepo             = collection.NewBlendRepo
	NewPreferenceProfileRepo = collection.NewPreferenceProfileRepo
	NewSnapshotRepo          = recommendation.NewSnapshotRepo
	NewMutationBatchRepo     = recommendation.NewMutationBatchRepo
)
