package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/briarkeep/briarkeep-backend/internal/data/repos"
	"github.com/briarkeep/briarkeep-backend/internal/data/repos/testutil"
	types "github.com/briarkeep/briarkeep-backend/internal/domain"
)

type mutationFixture struct {
	tx      *gorm.DB
	mut     MutationService
	pipes   repos.PipeRepo
	blends  repos.BlendRepo
	batches repos.MutationBatchRepo
}

func newMutationFixture(t *testing.T) mutationFixture {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	pipes := repos.NewPipeRepo(tx, log)
	blends := repos.NewBlendRepo(tx, log)
	batches := repos.NewMutationBatchRepo(tx, log)

	return mutationFixture{
		tx:      tx,
		mut:     NewMutationService(tx, log, batches, pipes, blends),
		pipes:   pipes,
		blends:  blends,
		batches: batches,
	}
}

func pipeTags(t *testing.T, f mutationFixture, pipeID uuid.UUID) []string {
	t.Helper()
	p, err := f.pipes.GetByID(context.Background(), nil, pipeID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p == nil {
		t.Fatalf("pipe %s missing", pipeID)
	}
	return decodeTags(p.FocusTags)
}

func storedTags(t *testing.T, raw datatypes.JSON) []string {
	t.Helper()
	var m map[string][]string
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return m["focus_tags"]
}

func sameTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyAndUndoBatchRoundTrip(t *testing.T) {
	f := newMutationFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "batch@example.com")
	pipe := testutil.SeedPipe(t, ctx, f.tx, u.ID, "Dunhill", []string{"Virginia"})

	res, err := f.mut.ApplyBatch(ctx, u.ID, types.BatchKindRecommendationApply, []BatchTarget{
		{
			EntityKind: types.EntityKindPipe,
			EntityID:   pipe.ID,
			AfterState: map[string]interface{}{"focus_tags": []string{"Aromatic"}},
			Rationale:  "dedicate to aromatics",
		},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if res.BatchID == uuid.Nil {
		t.Fatalf("ApplyBatch returned no batch id")
	}
	if res.Results[0].Status != TargetApplied {
		t.Fatalf("expected applied, got %+v", res.Results[0])
	}
	if got := pipeTags(t, f, pipe.ID); !sameTags(got, []string{"Aromatic"}) {
		t.Fatalf("apply did not take effect: %v", got)
	}

	stored, err := f.batches.GetByID(ctx, nil, res.BatchID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored == nil || len(stored.Changes) != 1 {
		t.Fatalf("batch record missing changes: %+v", stored)
	}
	if got := storedTags(t, stored.Changes[0].BeforeState); !sameTags(got, []string{"Virginia"}) {
		t.Fatalf("before state wrong: %s", stored.Changes[0].BeforeState)
	}
	if got := storedTags(t, stored.Changes[0].AfterState); !sameTags(got, []string{"Aromatic"}) {
		t.Fatalf("after state wrong: %s", stored.Changes[0].AfterState)
	}

	undo, err := f.mut.UndoBatch(ctx, u.ID, res.BatchID)
	if err != nil {
		t.Fatalf("UndoBatch: %v", err)
	}
	if undo.Results[0].Status != TargetReverted {
		t.Fatalf("expected reverted, got %+v", undo.Results[0])
	}
	if got := pipeTags(t, f, pipe.ID); !sameTags(got, []string{"Virginia"}) {
		t.Fatalf("undo did not restore tags: %v", got)
	}
}

func TestUndoBatchSkipsDeletedEntity(t *testing.T) {
	f := newMutationFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "skip@example.com")
	keep := testutil.SeedPipe(t, ctx, f.tx, u.ID, "Peterson", []string{"Virginia"})
	doomed := testutil.SeedPipe(t, ctx, f.tx, u.ID, "Ropp", []string{"Burley"})

	res, err := f.mut.ApplyBatch(ctx, u.ID, "", []BatchTarget{
		{EntityKind: types.EntityKindPipe, EntityID: keep.ID, AfterState: map[string]interface{}{"focus_tags": []string{"English"}}},
		{EntityKind: types.EntityKindPipe, EntityID: doomed.ID, AfterState: map[string]interface{}{"focus_tags": []string{"English"}}},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	if err := f.pipes.Delete(ctx, nil, doomed.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	undo, err := f.mut.UndoBatch(ctx, u.ID, res.BatchID)
	if err != nil {
		t.Fatalf("UndoBatch with deleted entity: %v", err)
	}

	statuses := map[uuid.UUID]string{}
	for _, r := range undo.Results {
		statuses[r.EntityID] = r.Status
	}
	if statuses[keep.ID] != TargetReverted {
		t.Fatalf("surviving entity should revert, got %q", statuses[keep.ID])
	}
	if statuses[doomed.ID] != TargetSkippedMissing {
		t.Fatalf("deleted entity should be skipped, got %q", statuses[doomed.ID])
	}
	if got := pipeTags(t, f, keep.ID); !sameTags(got, []string{"Virginia"}) {
		t.Fatalf("surviving entity not restored: %v", got)
	}
}

func TestApplyBatchSkipsMissingEntity(t *testing.T) {
	f := newMutationFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "applymissing@example.com")
	pipe := testutil.SeedPipe(t, ctx, f.tx, u.ID, "Chacom", []string{"Virginia"})

	res, err := f.mut.ApplyBatch(ctx, u.ID, "", []BatchTarget{
		{EntityKind: types.EntityKindPipe, EntityID: uuid.New(), AfterState: map[string]interface{}{"focus_tags": []string{"English"}}},
		{EntityKind: types.EntityKindPipe, EntityID: pipe.ID, AfterState: map[string]interface{}{"focus_tags": []string{"English"}}},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if res.Results[0].Status != TargetSkippedMissing {
		t.Fatalf("missing entity should be skipped, got %+v", res.Results[0])
	}
	if res.Results[1].Status != TargetApplied {
		t.Fatalf("remaining target should still apply, got %+v", res.Results[1])
	}
}

func TestApplyBatchRejectsNonMutableField(t *testing.T) {
	f := newMutationFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "reject@example.com")
	pipe := testutil.SeedPipe(t, ctx, f.tx, u.ID, "Nording", []string{"Virginia"})

	res, err := f.mut.ApplyBatch(ctx, u.ID, "", []BatchTarget{
		{EntityKind: types.EntityKindPipe, EntityID: pipe.ID, AfterState: map[string]interface{}{"maker": "Forged"}},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if res.Results[0].Status != TargetRejected {
		t.Fatalf("non-mutable field should be rejected, got %+v", res.Results[0])
	}

	p, err := f.pipes.GetByID(ctx, nil, pipe.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.Maker != "Nording" {
		t.Fatalf("rejected target must not mutate the entity")
	}
}

func TestUndoBatchUnknownID(t *testing.T) {
	f := newMutationFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "unknownbatch@example.com")

	if _, err := f.mut.UndoBatch(ctx, u.ID, uuid.New()); !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
}

func TestUndoBatchPreservesUnrelatedEdits(t *testing.T) {
	f := newMutationFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "unrelated@example.com")
	blend := testutil.SeedBlend(t, ctx, f.tx, u.ID, "Union Square", 3)

	res, err := f.mut.ApplyBatch(ctx, u.ID, "", []BatchTarget{
		{EntityKind: types.EntityKindBlend, EntityID: blend.ID, AfterState: map[string]interface{}{"blend_type": "VaPer"}},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if res.Results[0].Status != TargetApplied {
		t.Fatalf("expected applied, got %+v", res.Results[0])
	}

	// A different session edits an unrelated field between apply and undo.
	if err := f.blends.UpdateFields(ctx, nil, blend.ID, map[string]interface{}{"tins_in_cellar": 9}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	if _, err := f.mut.UndoBatch(ctx, u.ID, res.BatchID); err != nil {
		t.Fatalf("UndoBatch: %v", err)
	}

	b, err := f.blends.GetByID(ctx, nil, blend.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if b.BlendType != "Virginia" {
		t.Fatalf("blend type not restored: %q", b.BlendType)
	}
	if b.TinsInCellar != 9 {
		t.Fatalf("unrelated edit clobbered by undo: %d", b.TinsInCellar)
	}
}

func TestRepeatedUndoIsHarmlessWithoutInterveningEdits(t *testing.T) {
	f := newMutationFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "repeat@example.com")
	pipe := testutil.SeedPipe(t, ctx, f.tx, u.ID, "Comoy", []string{"Virginia"})

	res, err := f.mut.ApplyBatch(ctx, u.ID, "", []BatchTarget{
		{EntityKind: types.EntityKindPipe, EntityID: pipe.ID, AfterState: map[string]interface{}{"focus_tags": []string{"English"}}},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := f.mut.UndoBatch(ctx, u.ID, res.BatchID); err != nil {
			t.Fatalf("UndoBatch #%d: %v", i+1, err)
		}
	}
	if got := pipeTags(t, f, pipe.ID); !sameTags(got, []string{"Virginia"}) {
		t.Fatalf("repeated undo should be idempotent: %v", got)
	}
}
