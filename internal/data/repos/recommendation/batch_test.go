package recommendation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/briarkeep/briarkeep-backend/internal/data/repos/testutil"
	types "github.com/briarkeep/briarkeep-backend/internal/domain"
)

func TestMutationBatchRepoCreateAndGet(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewMutationBatchRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "batchrepo@example.com")

	pipeID := uuid.New()
	blendID := uuid.New()
	batch := &types.MutationBatch{
		ID:        uuid.New(),
		UserID:    u.ID,
		BatchKind: types.BatchKindRecommendationApply,
		Changes: []*types.MutationChange{
			{
				ID:          uuid.New(),
				EntityKind:  types.EntityKindPipe,
				EntityID:    pipeID,
				BeforeState: datatypes.JSON([]byte(`{"focus_tags":["Virginia"]}`)),
				AfterState:  datatypes.JSON([]byte(`{"focus_tags":["Aromatic"]}`)),
				Rationale:   "shift toward aromatics",
			},
			{
				ID:          uuid.New(),
				EntityKind:  types.EntityKindBlend,
				EntityID:    blendID,
				BeforeState: datatypes.JSON([]byte(`{"blend_type":"English"}`)),
				AfterState:  datatypes.JSON([]byte(`{"blend_type":"Balkan"}`)),
			},
		},
	}

	created, err := repo.Create(ctx, tx, batch)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatalf("expected batch, got nil")
	}
	if len(got.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(got.Changes))
	}
	// Changes come back in application order.
	if got.Changes[0].Seq != 1 || got.Changes[1].Seq != 2 {
		t.Fatalf("unexpected seq order: %d, %d", got.Changes[0].Seq, got.Changes[1].Seq)
	}
	if got.Changes[0].EntityID != pipeID {
		t.Fatalf("first change entity mismatch: %s", got.Changes[0].EntityID)
	}
	if got.Changes[1].EntityKind != types.EntityKindBlend {
		t.Fatalf("second change kind mismatch: %s", got.Changes[1].EntityKind)
	}
}

func TestMutationBatchRepoGetByIDMissing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewMutationBatchRepo(db, testutil.Logger(t))

	got, err := repo.GetByID(context.Background(), tx, uuid.New())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown batch, got %+v", got)
	}
}

func TestMutationBatchRepoGetByUserID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewMutationBatchRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "batchlist@example.com")
	other := testutil.SeedUser(t, ctx, tx, "batchlist-other@example.com")

	for _, owner := range []uuid.UUID{u.ID, u.ID, other.ID} {
		_, err := repo.Create(ctx, tx, &types.MutationBatch{
			ID:        uuid.New(),
			UserID:    owner,
			BatchKind: types.BatchKindRecommendationApply,
			Changes: []*types.MutationChange{{
				ID:          uuid.New(),
				EntityKind:  types.EntityKindPipe,
				EntityID:    uuid.New(),
				BeforeState: datatypes.JSON([]byte(`{}`)),
				AfterState:  datatypes.JSON([]byte(`{}`)),
			}},
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	batches, err := repo.GetByUserID(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches for user, got %d", len(batches))
	}
	for _, b := range batches {
		if b.UserID != u.ID {
			t.Fatalf("batch %s belongs to %s", b.ID, b.UserID)
		}
	}
}
