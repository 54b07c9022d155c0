package app

import (
	"gorm.io/gorm"

	"github.com/briarkeep/briarkeep-backend/internal/data/repos"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

type Repos struct {
	User              repos.UserRepo
	Pipe              repos.PipeRepo
	Blend             repos.BlendRepo
	PreferenceProfile repos.PreferenceProfileRepo
	Snapshot          repos.SnapshotRepo
	MutationBatch     repos.MutationBatchRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:              repos.NewUserRepo(db, log),
		Pipe:              repos.NewPipeRepo(db, log),
		Blend:             repos.NewBlendRepo(db, log),
		PreferenceProfile: repos.NewPreferenceProfileRepo(db, log),
		Snapshot:          repos.NewSnapshotRepo(db, log),
		MutationBatch:     repos.NewMutationBatchRepo(db, log),
	}
}
