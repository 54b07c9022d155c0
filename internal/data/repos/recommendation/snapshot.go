package recommendation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/briarkeep/briarkeep-backend/internal/domain"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

// SnapshotRepo is the only component allowed to write is_active. Snapshots
// are always created inactive; flipping them on or off is an explicit,
// separate step so a partial failure can never leave two active rows.
type SnapshotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, snapshot *types.RecommendationSnapshot) (*types.RecommendationSnapshot, error)
	GetByID(ctx context.Context, tx *gorm.DB, snapshotID uuid.UUID) (*types.RecommendationSnapshot, error)
	FindActive(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RecommendationSnapshot, error)
	// FindActiveForUpdate row-locks the active snapshot so concurrent
	// lifecycle transactions for the same owner serialize.
	FindActiveForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RecommendationSnapshot, error)
	Activate(ctx context.Context, tx *gorm.DB, snapshotID uuid.UUID) error
	Deactivate(ctx context.Context, tx *gorm.DB, snapshotID uuid.UUID) error
}

type snapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return &snapshotRepo{db: db, log: baseLog.With("repo", "SnapshotRepo")}
}

func (sr *snapshotRepo) Create(ctx context.Context, tx *gorm.DB, snapshot *types.RecommendationSnapshot) (*types.RecommendationSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	snapshot.IsActive = false
	if err := transaction.WithContext(ctx).Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (sr *snapshotRepo) GetByID(ctx context.Context, tx *gorm.DB, snapshotID uuid.UUID) (*types.RecommendationSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.RecommendationSnapshot
	if err := transaction.WithContext(ctx).
		Where("id = ?", snapshotID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (sr *snapshotRepo) FindActive(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RecommendationSnapshot, error) {
	return sr.findActive(ctx, tx, userID, false)
}

func (sr *snapshotRepo) FindActiveForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RecommendationSnapshot, error) {
	return sr.findActive(ctx, tx, userID, true)
}

func (sr *snapshotRepo) findActive(ctx context.Context, tx *gorm.DB, userID uuid.UUID, forUpdate bool) (*types.RecommendationSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Limit(1)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var results []*types.RecommendationSnapshot
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (sr *snapshotRepo) Activate(ctx context.Context, tx *gorm.DB, snapshotID uuid.UUID) error {
	return sr.setActive(ctx, tx, snapshotID, true)
}

// Deactivate is a no-op when the snapshot is already inactive.
func (sr *snapshotRepo) Deactivate(ctx context.Context, tx *gorm.DB, snapshotID uuid.UUID) error {
	return sr.setActive(ctx, tx, snapshotID, false)
}

func (sr *snapshotRepo) setActive(ctx context.Context, tx *gorm.DB, snapshotID uuid.UUID, active bool) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.RecommendationSnapshot{}).
		Where("id = ?", snapshotID).
		Update("is_active", active).Error
}
