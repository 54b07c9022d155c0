package collection

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/briarkeep/briarkeep-backend/internal/domain"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

type PreferenceProfileRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.PreferenceProfile, error)
	Upsert(ctx context.Context, tx *gorm.DB, profile *types.PreferenceProfile) (*types.PreferenceProfile, error)
}

type preferenceProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceProfileRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceProfileRepo {
	return &preferenceProfileRepo{db: db, log: baseLog.With("repo", "PreferenceProfileRepo")}
}

func (pr *preferenceProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.PreferenceProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.PreferenceProfile
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (pr *preferenceProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, profile *types.PreferenceProfile) (*types.PreferenceProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"preferred_styles", "smoking_frequency", "goals", "updated_at",
			}),
		}).
		Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}
