package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/briarkeep/briarkeep-backend/internal/data/repos"
	types "github.com/briarkeep/briarkeep-backend/internal/domain"
	"github.com/briarkeep/briarkeep-backend/internal/platform/apierr"
	"github.com/briarkeep/briarkeep-backend/internal/platform/gcs"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

// CollectionService owns the CRUD surface for pipes, blends and the
// preference profile, and assembles the CollectionState the optimization
// engine fingerprints.
type CollectionService interface {
	LoadState(ctx context.Context, userID uuid.UUID) (CollectionState, error)

	ListPipes(ctx context.Context, userID uuid.UUID) ([]*types.Pipe, error)
	CreatePipe(ctx context.Context, userID uuid.UUID, pipe *types.Pipe) (*types.Pipe, error)
	UpdatePipe(ctx context.Context, userID uuid.UUID, pipeID uuid.UUID, fields map[string]interface{}) (*types.Pipe, error)
	DeletePipe(ctx context.Context, userID uuid.UUID, pipeID uuid.UUID) error

	ListBlends(ctx context.Context, userID uuid.UUID) ([]*types.Blend, error)
	CreateBlend(ctx context.Context, userID uuid.UUID, blend *types.Blend) (*types.Blend, error)
	UpdateBlend(ctx context.Context, userID uuid.UUID, blendID uuid.UUID, fields map[string]interface{}) (*types.Blend, error)
	DeleteBlend(ctx context.Context, userID uuid.UUID, blendID uuid.UUID) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*types.PreferenceProfile, error)
	PutProfile(ctx context.Context, userID uuid.UUID, profile *types.PreferenceProfile) (*types.PreferenceProfile, error)

	UploadPipePhoto(ctx context.Context, userID uuid.UUID, pipeID uuid.UUID, contentType string, r io.Reader) (string, error)
	UploadBlendPhoto(ctx context.Context, userID uuid.UUID, blendID uuid.UUID, contentType string, r io.Reader) (string, error)
	DeletePipePhoto(ctx context.Context, userID uuid.UUID, pipeID uuid.UUID) error
	DeleteBlendPhoto(ctx context.Context, userID uuid.UUID, blendID uuid.UUID) error
}

type collectionService struct {
	db       *gorm.DB
	log      *logger.Logger
	pipes    repos.PipeRepo
	blends   repos.BlendRepo
	profiles repos.PreferenceProfileRepo
	bucket   gcs.BucketService
}

func NewCollectionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	pipes repos.PipeRepo,
	blends repos.BlendRepo,
	profiles repos.PreferenceProfileRepo,
	bucket gcs.BucketService,
) CollectionService {
	return &collectionService{
		db:       db,
		log:      baseLog.With("service", "CollectionService"),
		pipes:    pipes,
		blends:   blends,
		profiles: profiles,
		bucket:   bucket,
	}
}

func (s *collectionService) LoadState(ctx context.Context, userID uuid.UUID) (CollectionState, error) {
	var state CollectionState

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pipes, err := s.pipes.GetByUserID(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("load pipes: %w", err)
		}
		state.Pipes = pipes
		return nil
	})
	g.Go(func() error {
		blends, err := s.blends.GetByUserID(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("load blends: %w", err)
		}
		state.Blends = blends
		return nil
	})
	g.Go(func() error {
		profile, err := s.profiles.GetByUserID(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		state.Profile = profile
		return nil
	})
	if err := g.Wait(); err != nil {
		return CollectionState{}, err
	}
	return state, nil
}

func (s *collectionService) ListPipes(ctx context.Context, userID uuid.UUID) ([]*types.Pipe, error) {
	return s.pipes.GetByUserID(ctx, nil, userID)
}

func (s *collectionService) CreatePipe(ctx context.Context, userID uuid.UUID, pipe *types.Pipe) (*types.Pipe, error) {
	if pipe == nil {
		return nil, fmt.Errorf("missing pipe")
	}
	pipe.ID = uuid.New()
	pipe.UserID = userID
	created, err := s.pipes.Create(ctx, nil, []*types.Pipe{pipe})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *collectionService) UpdatePipe(ctx context.Context, userID uuid.UUID, pipeID uuid.UUID, fields map[string]interface{}) (*types.Pipe, error) {
	existing, err := s.ownedPipe(ctx, userID, pipeID)
	if err != nil {
		return nil, err
	}
	if err := s.pipes.UpdateFields(ctx, nil, existing.ID, fields); err != nil {
		return nil, err
	}
	return s.pipes.GetByID(ctx, nil, pipeID)
}

func (s *collectionService) DeletePipe(ctx context.Context, userID uuid.UUID, pipeID uuid.UUID) error {
	existing, err := s.ownedPipe(ctx, userID, pipeID)
	if err != nil {
		return err
	}
	if existing.PhotoBucketKey != "" && s.bucket != nil {
		if err := s.bucket.DeleteObject(ctx, existing.PhotoBucketKey); err != nil {
			s.log.Warn("delete pipe photo failed", "pipe_id", pipeID.String(), "error", err)
		}
	}
	return s.pipes.Delete(ctx, nil, pipeID)
}

func (s *collectionService) ListBlends(ctx context.Context, userID uuid.UUID) ([]*types.Blend, error) {
	return s.blends.GetByUserID(ctx, nil, userID)
}

func (s *collectionService) CreateBlend(ctx context.Context, userID uuid.UUID, blend *types.Blend) (*types.Blend, error) {
	if blend == nil {
		return nil, fmt.Errorf("missing blend")
	}
	blend.ID = uuid.New()
	blend.UserID = userID
	created, err := s.blends.Create(ctx, nil, []*types.Blend{blend})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *collectionService) UpdateBlend(ctx context.Context, userID uuid.UUID, blendID uuid.UUID, fields map[string]interface{}) (*types.Blend, error) {
	existing, err := s.ownedBlend(ctx, userID, blendID)
	if err != nil {
		return nil, err
	}
	if err := s.blends.UpdateFields(ctx, nil, existing.ID, fields); err != nil {
		return nil, err
	}
	return s.blends.GetByID(ctx, nil, blendID)
}

func (s *collectionService) DeleteBlend(ctx context.Context, userID uuid.UUID, blendID uuid.UUID) error {
	existing, err := s.ownedBlend(ctx, userID, blendID)
	if err != nil {
		return err
	}
	if existing.PhotoBucketKey != "" && s.bucket != nil {
		if err := s.bucket.DeleteObject(ctx, existing.PhotoBucketKey); err != nil {
			s.log.Warn("delete blend photo failed", "blend_id", blendID.String(), "error", err)
		}
	}
	return s.blends.Delete(ctx, nil, blendID)
}

func (s *collectionService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.PreferenceProfile, error) {
	return s.profiles.GetByUserID(ctx, nil, userID)
}

func (s *collectionService) PutProfile(ctx context.Context, userID uuid.UUID, profile *types.PreferenceProfile) (*types.PreferenceProfile, error) {
	if profile == nil {
		return nil, fmt.Errorf("missing profile")
	}
	existing, err := s.profiles.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.ID = uuid.New()
	}
	profile.UserID = userID
	profile.UpdatedAt = time.Now().UTC()
	return s.profiles.Upsert(ctx, nil, profile)
}

func (s *collectionService) UploadPipePhoto(ctx context.Context, userID uuid.UUID, pipeID uuid.UUID, contentType string, r io.Reader) (string, error) {
	if s.bucket == nil {
		return "", apierr.New(http.StatusServiceUnavailable, "photo_storage_disabled", nil)
	}
	if _, err := s.ownedPipe(ctx, userID, pipeID); err != nil {
		return "", err
	}

	key := fmt.Sprintf("photos/pipe/%s/%s", userID.String(), pipeID.String())
	if err := s.bucket.UploadObject(ctx, key, contentType, r); err != nil {
		return "", err
	}
	url := s.bucket.PublicURL(key)
	if err := s.pipes.UpdateFields(ctx, nil, pipeID, map[string]interface{}{
		"photo_bucket_key": key,
		"photo_url":        url,
	}); err != nil {
		return "", err
	}
	return url, nil
}

func (s *collectionService) UploadBlendPhoto(ctx context.Context, userID uuid.UUID, blendID uuid.UUID, contentType string, r io.Reader) (string, error) {
	if s.bucket == nil {
		return "", apierr.New(http.StatusServiceUnavailable, "photo_storage_disabled", nil)
	}
	if _, err := s.ownedBlend(ctx, userID, blendID); err != nil {
		return "", err
	}

	key := fmt.Sprintf("photos/blend/%s/%s", userID.String(), blendID.String())
	if err := s.bucket.UploadObject(ctx, key, contentType, r); err != nil {
		return "", err
	}
	url := s.bucket.PublicURL(key)
	if err := s.blends.UpdateFields(ctx, nil, blendID, map[string]interface{}{
		"photo_bucket_key": key,
		"photo_url":        url,
	}); err != nil {
		return "", err
	}
	return url, nil
}

func (s *collectionService) DeletePipePhoto(ctx context.Context, userID uuid.UUID, pipeID uuid.UUID) error {
	existing, err := s.ownedPipe(ctx, userID, pipeID)
	if err != nil {
		return err
	}
	if existing.PhotoBucketKey != "" && s.bucket != nil {
		if err := s.bucket.DeleteObject(ctx, existing.PhotoBucketKey); err != nil {
			return err
		}
	}
	return s.pipes.UpdateFields(ctx, nil, pipeID, map[string]interface{}{
		"photo_bucket_key": "",
		"photo_url":        "",
	})
}

func (s *collectionService) DeleteBlendPhoto(ctx context.Context, userID uuid.UUID, blendID uuid.UUID) error {
	existing, err := s.ownedBlend(ctx, userID, blendID)
	if err != nil {
		return err
	}
	if existing.PhotoBucketKey != "" && s.bucket != nil {
		if err := s.bucket.DeleteObject(ctx, existing.PhotoBucketKey); err != nil {
			return err
		}
	}
	return s.blends.UpdateFields(ctx, nil, blendID, map[string]interface{}{
		"photo_bucket_key": "",
		"photo_url":        "",
	})
}

func (s *collectionService) ownedPipe(ctx context.Context, userID uuid.UUID, pipeID uuid.UUID) (*types.Pipe, error) {
	p, err := s.pipes.GetByID(ctx, nil, pipeID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.UserID != userID {
		return nil, ErrPipeNotFound
	}
	return p, nil
}

func (s *collectionService) ownedBlend(ctx context.Context, userID uuid.UUID, blendID uuid.UUID) (*types.Blend, error) {
	b, err := s.blends.GetByID(ctx, nil, blendID)
	if err != nil {
		return nil, err
	}
	if b == nil || b.UserID != userID {
		return nil, ErrBlendNotFound
	}
	return b, nil
}
