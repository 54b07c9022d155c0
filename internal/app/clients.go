package app

import (
	"context"
	"fmt"
	"os"

	"github.com/briarkeep/briarkeep-backend/internal/platform/gcs"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
	"github.com/briarkeep/briarkeep-backend/internal/platform/openai"
	"github.com/briarkeep/briarkeep-backend/internal/platform/redislock"
)

type Clients struct {
	OpenAI openai.Client
	Bucket gcs.BucketService
	Locker redislock.Locker
}

// wireClients builds the external clients. The advisor model is mandatory;
// photo storage and the redis regenerate lock are optional and the app runs
// degraded without them.
func wireClients(ctx context.Context, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	ai, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	var bucket gcs.BucketService
	if os.Getenv("PHOTO_GCS_BUCKET_NAME") != "" {
		bucket, err = gcs.NewBucketService(ctx, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init bucket service: %w", err)
		}
	} else {
		log.Warn("PHOTO_GCS_BUCKET_NAME not set, photo storage disabled")
	}

	var locker redislock.Locker
	if os.Getenv("REDIS_ADDR") != "" {
		locker, err = redislock.New(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis locker: %w", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set, regenerate lock falls back to row locking only")
	}

	return Clients{OpenAI: ai, Bucket: bucket, Locker: locker}, nil
}
