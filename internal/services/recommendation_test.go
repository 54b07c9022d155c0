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

type stubAdvisor struct {
	payload datatypes.JSON
	calls   int
	err     error
}

func (a *stubAdvisor) Generate(ctx context.Context, state CollectionState) (datatypes.JSON, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	if a.payload != nil {
		return a.payload, nil
	}
	return datatypes.JSON([]byte(`{"specializations":[],"gap_analysis":[],"next_purchases":[]}`)), nil
}

type lifecycleFixture struct {
	tx        *gorm.DB
	rec       RecommendationService
	col       CollectionService
	snapshots repos.SnapshotRepo
	advisor   *stubAdvisor
}

func newLifecycleFixture(t *testing.T) lifecycleFixture {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	pipes := repos.NewPipeRepo(tx, log)
	blends := repos.NewBlendRepo(tx, log)
	profiles := repos.NewPreferenceProfileRepo(tx, log)
	snapshots := repos.NewSnapshotRepo(tx, log)

	col := NewCollectionService(tx, log, pipes, blends, profiles, nil)
	advisor := &stubAdvisor{}
	rec := NewRecommendationService(tx, log, snapshots, col, advisor, nil)

	return lifecycleFixture{tx: tx, rec: rec, col: col, snapshots: snapshots, advisor: advisor}
}

func activeCount(t *testing.T, tx *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()
	var count int64
	if err := tx.Model(&types.RecommendationSnapshot{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error; err != nil {
		t.Fatalf("count active snapshots: %v", err)
	}
	return count
}

func TestCheckStalenessWithNoActiveSnapshot(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "nostate@example.com")

	res, err := f.rec.CheckStaleness(ctx, u.ID)
	if err != nil {
		t.Fatalf("CheckStaleness: %v", err)
	}
	if res.Stale {
		t.Fatalf("nothing to compare should not be stale")
	}
	if res.Snapshot != nil {
		t.Fatalf("expected nil snapshot, got %+v", res.Snapshot)
	}
}

func TestRegenerateBuildsVersionChain(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "chain@example.com")
	testutil.SeedPipe(t, ctx, f.tx, u.ID, "Dunhill", []string{"Virginia"})

	first, err := f.rec.Regenerate(ctx, u.ID)
	if err != nil {
		t.Fatalf("first Regenerate: %v", err)
	}
	if !first.IsActive {
		t.Fatalf("first snapshot should be active")
	}
	if first.PreviousVersionID != nil {
		t.Fatalf("first snapshot should have no prior version")
	}
	if first.InputFingerprint == "" {
		t.Fatalf("snapshot missing fingerprint")
	}

	// Collection changes between regenerations.
	testutil.SeedBlend(t, ctx, f.tx, u.ID, "Full Virginia Flake", 4)

	second, err := f.rec.Regenerate(ctx, u.ID)
	if err != nil {
		t.Fatalf("second Regenerate: %v", err)
	}
	if second.PreviousVersionID == nil || *second.PreviousVersionID != first.ID {
		t.Fatalf("second snapshot should supersede the first")
	}
	if second.InputFingerprint == first.InputFingerprint {
		t.Fatalf("fingerprint should change with the collection")
	}

	refetched, err := f.snapshots.GetByID(ctx, nil, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if refetched.IsActive {
		t.Fatalf("superseded snapshot should be inactive")
	}
	if got := activeCount(t, f.tx, u.ID); got != 1 {
		t.Fatalf("expected exactly 1 active snapshot, got %d", got)
	}
}

func TestUndoToPreviousRestoresPriorVersion(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "undo@example.com")
	testutil.SeedPipe(t, ctx, f.tx, u.ID, "Peterson", []string{"Aromatic"})

	f.advisor.payload = datatypes.JSON([]byte(`{"note":"v1"}`))
	first, err := f.rec.Regenerate(ctx, u.ID)
	if err != nil {
		t.Fatalf("first Regenerate: %v", err)
	}

	testutil.SeedBlend(t, ctx, f.tx, u.ID, "Nightcap", 2)
	f.advisor.payload = datatypes.JSON([]byte(`{"note":"v2"}`))
	second, err := f.rec.Regenerate(ctx, u.ID)
	if err != nil {
		t.Fatalf("second Regenerate: %v", err)
	}

	restored, err := f.rec.UndoToPrevious(ctx, u.ID)
	if err != nil {
		t.Fatalf("UndoToPrevious: %v", err)
	}
	if restored.ID != first.ID {
		t.Fatalf("expected snapshot %s restored, got %s", first.ID, restored.ID)
	}
	var payload map[string]string
	if err := json.Unmarshal(restored.Payload, &payload); err != nil {
		t.Fatalf("decode restored payload: %v", err)
	}
	if payload["note"] != "v1" {
		t.Fatalf("restored payload changed: %s", restored.Payload)
	}

	undone, err := f.snapshots.GetByID(ctx, nil, second.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if undone == nil || undone.IsActive {
		t.Fatalf("undone snapshot should remain stored but inactive")
	}
	if got := activeCount(t, f.tx, u.ID); got != 1 {
		t.Fatalf("expected exactly 1 active snapshot, got %d", got)
	}

	// The restored snapshot is the chain root.
	if _, err := f.rec.UndoToPrevious(ctx, u.ID); !errors.Is(err, ErrNoPriorVersion) {
		t.Fatalf("expected ErrNoPriorVersion, got %v", err)
	}
}

func TestUndoToPreviousWithoutActiveSnapshot(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "noactive@example.com")

	if _, err := f.rec.UndoToPrevious(ctx, u.ID); !errors.Is(err, ErrNoActiveSnapshot) {
		t.Fatalf("expected ErrNoActiveSnapshot, got %v", err)
	}
}

func TestCheckStalenessFlagsCollectionChange(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "stale@example.com")
	testutil.SeedPipe(t, ctx, f.tx, u.ID, "Savinelli", []string{"Virginia"})

	snap, err := f.rec.Regenerate(ctx, u.ID)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}

	fresh, err := f.rec.CheckStaleness(ctx, u.ID)
	if err != nil {
		t.Fatalf("CheckStaleness: %v", err)
	}
	if fresh.Stale {
		t.Fatalf("unchanged collection should not be stale")
	}
	if fresh.Snapshot == nil || fresh.Snapshot.ID != snap.ID {
		t.Fatalf("staleness result should carry the active snapshot")
	}

	testutil.SeedPipe(t, ctx, f.tx, u.ID, "Castello", []string{"English"})

	changed, err := f.rec.CheckStaleness(ctx, u.ID)
	if err != nil {
		t.Fatalf("CheckStaleness after change: %v", err)
	}
	if !changed.Stale {
		t.Fatalf("collection change should mark the snapshot stale")
	}
}

func TestRegenerateSurfacesAdvisorFailure(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.tx, "advisorfail@example.com")
	testutil.SeedPipe(t, ctx, f.tx, u.ID, "Stanwell", []string{"Virginia"})

	first, err := f.rec.Regenerate(ctx, u.ID)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}

	f.advisor.err = errors.New("model unavailable")
	if _, err := f.rec.Regenerate(ctx, u.ID); err == nil {
		t.Fatalf("expected advisor failure to surface")
	}

	// The prior snapshot stays active after a failed regeneration.
	active, err := f.rec.GetActive(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if active == nil || active.ID != first.ID {
		t.Fatalf("prior snapshot should remain active after failure")
	}
}
