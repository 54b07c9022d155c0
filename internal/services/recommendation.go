package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/briarkeep/briarkeep-backend/internal/data/repos"
	types "github.com/briarkeep/briarkeep-backend/internal/domain"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
	"github.com/briarkeep/briarkeep-backend/internal/platform/redislock"
)

const regenerateLockTTL = 2 * time.Minute

// StalenessResult reports whether the active recommendation still matches the
// live collection state. Staleness is advisory: it never blocks reads of the
// active payload.
type StalenessResult struct {
	Stale    bool
	Snapshot *types.RecommendationSnapshot
}

// RecommendationService is the only component permitted to change which
// snapshot is active. Every activation is paired with the deactivation of the
// prior snapshot and a back-link from the new snapshot to it, inside one
// transaction, so an owner never ends up with two active snapshots or a
// broken version chain.
type RecommendationService interface {
	Regenerate(ctx context.Context, userID uuid.UUID) (*types.RecommendationSnapshot, error)
	GetActive(ctx context.Context, userID uuid.UUID) (*types.RecommendationSnapshot, error)
	CheckStaleness(ctx context.Context, userID uuid.UUID) (StalenessResult, error)
	UndoToPrevious(ctx context.Context, userID uuid.UUID) (*types.RecommendationSnapshot, error)
}

type recommendationService struct {
	db         *gorm.DB
	log        *logger.Logger
	snapshots  repos.SnapshotRepo
	collection CollectionService
	advisor    Advisor
	locker     redislock.Locker
}

// locker may be nil; without it the per-owner regenerate serialization falls
// back to the row lock inside the lifecycle transaction.
func NewRecommendationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	snapshots repos.SnapshotRepo,
	collection CollectionService,
	advisor Advisor,
	locker redislock.Locker,
) RecommendationService {
	return &recommendationService{
		db:         db,
		log:        baseLog.With("service", "RecommendationService"),
		snapshots:  snapshots,
		collection: collection,
		advisor:    advisor,
		locker:     locker,
	}
}

func (s *recommendationService) Regenerate(ctx context.Context, userID uuid.UUID) (*types.RecommendationSnapshot, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user id")
	}

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, "regenerate:"+userID.String(), regenerateLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire regenerate lock: %w", err)
		}
		if !ok {
			return nil, ErrRegenerationInProgress
		}
		defer release()
	}

	state, err := s.collection.LoadState(ctx, userID)
	if err != nil {
		return nil, err
	}
	fp := ComputeFingerprint(state)

	payload, err := s.advisor.Generate(ctx, state)
	if err != nil {
		return nil, err
	}

	var snapshot *types.RecommendationSnapshot
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prior, err := s.snapshots.FindActiveForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		row := &types.RecommendationSnapshot{
			ID:               uuid.New(),
			UserID:           userID,
			InputFingerprint: fp,
			Payload:          payload,
			CreatedAt:        time.Now().UTC(),
		}
		if prior != nil {
			row.PreviousVersionID = &prior.ID
		}

		// Create before deactivate: a failure anywhere in here rolls the
		// whole transaction back and leaves the prior snapshot active.
		if _, err := s.snapshots.Create(ctx, tx, row); err != nil {
			return err
		}
		if prior != nil {
			if err := s.snapshots.Deactivate(ctx, tx, prior.ID); err != nil {
				return err
			}
		}
		if err := s.snapshots.Activate(ctx, tx, row.ID); err != nil {
			return err
		}
		row.IsActive = true
		snapshot = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("recommendation regenerated",
		"user_id", userID.String(),
		"snapshot_id", snapshot.ID.String(),
		"fingerprint", fp,
	)
	return snapshot, nil
}

func (s *recommendationService) GetActive(ctx context.Context, userID uuid.UUID) (*types.RecommendationSnapshot, error) {
	return s.snapshots.FindActive(ctx, nil, userID)
}

// CheckStaleness is a pure read; it never mutates snapshot state.
func (s *recommendationService) CheckStaleness(ctx context.Context, userID uuid.UUID) (StalenessResult, error) {
	active, err := s.snapshots.FindActive(ctx, nil, userID)
	if err != nil {
		return StalenessResult{}, err
	}
	if active == nil {
		return StalenessResult{Stale: false, Snapshot: nil}, nil
	}

	state, err := s.collection.LoadState(ctx, userID)
	if err != nil {
		return StalenessResult{}, err
	}

	return StalenessResult{
		Stale:    active.InputFingerprint != ComputeFingerprint(state),
		Snapshot: active,
	}, nil
}

// UndoToPrevious restores exactly one prior version. Repeated calls keep
// walking the chain because each snapshot keeps its own back-link; the chain
// is never compacted.
func (s *recommendationService) UndoToPrevious(ctx context.Context, userID uuid.UUID) (*types.RecommendationSnapshot, error) {
	var restored *types.RecommendationSnapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.snapshots.FindActiveForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrNoActiveSnapshot
		}
		if current.PreviousVersionID == nil {
			return ErrNoPriorVersion
		}

		prior, err := s.snapshots.GetByID(ctx, tx, *current.PreviousVersionID)
		if err != nil {
			return err
		}
		if prior == nil {
			return fmt.Errorf("prior snapshot %s missing: %w", current.PreviousVersionID.String(), ErrNoPriorVersion)
		}

		if err := s.snapshots.Deactivate(ctx, tx, current.ID); err != nil {
			return err
		}
		if err := s.snapshots.Activate(ctx, tx, prior.ID); err != nil {
			return err
		}
		prior.IsActive = true
		restored = prior
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("recommendation undone",
		"user_id", userID.String(),
		"restored_snapshot_id", restored.ID.String(),
	)
	return restored, nil
}
