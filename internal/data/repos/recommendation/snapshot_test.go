package recommendation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/briarkeep/briarkeep-backend/internal/data/repos/testutil"
	types "github.com/briarkeep/briarkeep-backend/internal/domain"
)

func TestSnapshotRepoLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSnapshotRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "snapshotrepo@example.com")

	// Nothing active yet.
	active, err := repo.FindActive(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	if active != nil {
		t.Fatalf("expected no active snapshot, got %+v", active)
	}

	created, err := repo.Create(ctx, tx, &types.RecommendationSnapshot{
		ID:               uuid.New(),
		UserID:           u.ID,
		InputFingerprint: "f1",
		Payload:          datatypes.JSON([]byte(`{"v":1}`)),
		// Creation must ignore any preset active flag.
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.IsActive {
		t.Fatalf("snapshots must be created inactive")
	}

	if err := repo.Activate(ctx, tx, created.ID); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	active, err = repo.FindActive(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("FindActive after activate: %v", err)
	}
	if active == nil || active.ID != created.ID {
		t.Fatalf("expected %s active, got %+v", created.ID, active)
	}
	if active.InputFingerprint != "f1" {
		t.Fatalf("fingerprint not persisted: %q", active.InputFingerprint)
	}

	if err := repo.Deactivate(ctx, tx, created.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	// Deactivating an already-inactive snapshot is a no-op.
	if err := repo.Deactivate(ctx, tx, created.ID); err != nil {
		t.Fatalf("Deactivate (repeat): %v", err)
	}

	active, err = repo.FindActive(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("FindActive after deactivate: %v", err)
	}
	if active != nil {
		t.Fatalf("expected no active snapshot, got %+v", active)
	}
}

func TestSnapshotRepoPreviousVersionLink(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewSnapshotRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "snapshotchain@example.com")

	first, err := repo.Create(ctx, tx, &types.RecommendationSnapshot{
		ID:               uuid.New(),
		UserID:           u.ID,
		InputFingerprint: "f1",
		Payload:          datatypes.JSON([]byte(`{}`)),
	})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}

	second, err := repo.Create(ctx, tx, &types.RecommendationSnapshot{
		ID:                uuid.New(),
		UserID:            u.ID,
		InputFingerprint:  "f2",
		Payload:           datatypes.JSON([]byte(`{}`)),
		PreviousVersionID: &first.ID,
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, second.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.PreviousVersionID == nil || *got.PreviousVersionID != first.ID {
		t.Fatalf("previous version link not persisted: %+v", got)
	}
}
