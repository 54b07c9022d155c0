package collection

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/briarkeep/briarkeep-backend/internal/domain"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

type BlendRepo interface {
	Create(ctx context.Context, tx *gorm.DB, blends []*types.Blend) ([]*types.Blend, error)
	GetByID(ctx context.Context, tx *gorm.DB, blendID uuid.UUID) (*types.Blend, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Blend, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, blendID uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, blendID uuid.UUID) error
}

type blendRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlendRepo(db *gorm.DB, baseLog *logger.Logger) BlendRepo {
	return &blendRepo{db: db, log: baseLog.With("repo", "BlendRepo")}
}

func (br *blendRepo) Create(ctx context.Context, tx *gorm.DB, blends []*types.Blend) ([]*types.Blend, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	if len(blends) == 0 {
		return []*types.Blend{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&blends).Error; err != nil {
		return nil, err
	}
	return blends, nil
}

func (br *blendRepo) GetByID(ctx context.Context, tx *gorm.DB, blendID uuid.UUID) (*types.Blend, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var results []*types.Blend
	if err := transaction.WithContext(ctx).
		Where("id = ?", blendID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (br *blendRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Blend, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var results []*types.Blend
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *blendRepo) UpdateFields(ctx context.Context, tx *gorm.DB, blendID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Blend{}).
		Where("id = ?", blendID).
		Updates(fields).Error
}

func (br *blendRepo) Delete(ctx context.Context, tx *gorm.DB, blendID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", blendID).
		Delete(&types.Blend{}).Error
}
