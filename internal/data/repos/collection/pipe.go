package collection

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/briarkeep/briarkeep-backend/internal/domain"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

type PipeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, pipes []*types.Pipe) ([]*types.Pipe, error)
	GetByID(ctx context.Context, tx *gorm.DB, pipeID uuid.UUID) (*types.Pipe, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Pipe, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, pipeID uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, pipeID uuid.UUID) error
}

type pipeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPipeRepo(db *gorm.DB, baseLog *logger.Logger) PipeRepo {
	return &pipeRepo{db: db, log: baseLog.With("repo", "PipeRepo")}
}

func (pr *pipeRepo) Create(ctx context.Context, tx *gorm.DB, pipes []*types.Pipe) ([]*types.Pipe, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(pipes) == 0 {
		return []*types.Pipe{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&pipes).Error; err != nil {
		return nil, err
	}
	return pipes, nil
}

func (pr *pipeRepo) GetByID(ctx context.Context, tx *gorm.DB, pipeID uuid.UUID) (*types.Pipe, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Pipe
	if err := transaction.WithContext(ctx).
		Where("id = ?", pipeID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (pr *pipeRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Pipe, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Pipe
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *pipeRepo) UpdateFields(ctx context.Context, tx *gorm.DB, pipeID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Pipe{}).
		Where("id = ?", pipeID).
		Updates(fields).Error
}

func (pr *pipeRepo) Delete(ctx context.Context, tx *gorm.DB, pipeID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", pipeID).
		Delete(&types.Pipe{}).Error
}
