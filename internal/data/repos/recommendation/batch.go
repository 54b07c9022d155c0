package recommendation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/briarkeep/briarkeep-backend/internal/domain"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

type MutationBatchRepo interface {
	// Create persists the batch row together with all of its changes.
	Create(ctx context.Context, tx *gorm.DB, batch *types.MutationBatch) (*types.MutationBatch, error)
	// GetByID loads the batch with its changes in seq order; nil when absent.
	GetByID(ctx context.Context, tx *gorm.DB, batchID uuid.UUID) (*types.MutationBatch, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.MutationBatch, error)
}

type mutationBatchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMutationBatchRepo(db *gorm.DB, baseLog *logger.Logger) MutationBatchRepo {
	return &mutationBatchRepo{db: db, log: baseLog.With("repo", "MutationBatchRepo")}
}

func (mr *mutationBatchRepo) Create(ctx context.Context, tx *gorm.DB, batch *types.MutationBatch) (*types.MutationBatch, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		changes := batch.Changes
		batch.Changes = nil
		if err := inner.Create(batch).Error; err != nil {
			return err
		}
		for i, ch := range changes {
			ch.BatchID = batch.ID
			ch.Seq = i + 1
		}
		if len(changes) > 0 {
			if err := inner.Create(&changes).Error; err != nil {
				return err
			}
		}
		batch.Changes = changes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (mr *mutationBatchRepo) GetByID(ctx context.Context, tx *gorm.DB, batchID uuid.UUID) (*types.MutationBatch, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.MutationBatch
	if err := transaction.WithContext(ctx).
		Preload("Changes", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("id = ?", batchID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (mr *mutationBatchRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.MutationBatch, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.MutationBatch
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
