package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/briarkeep/briarkeep-backend/internal/data/repos/testutil"
	types "github.com/briarkeep/briarkeep-backend/internal/domain"
)

func TestUserRepoCreateAndLookup(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.User{
		{ID: uuid.New(), Email: "userrepo@example.com", DisplayName: "Collector"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 user, got %d", len(created))
	}

	got, err := repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 || got[0].Email != "userrepo@example.com" {
		t.Fatalf("unexpected lookup result: %+v", got)
	}

	exists, err := repo.EmailExists(ctx, tx, "userrepo@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("expected email to exist")
	}
	exists, err = repo.EmailExists(ctx, tx, "nobody@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if exists {
		t.Fatalf("expected email to be absent")
	}
}

func TestUserRepoEmptyInputs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, nil)
	if err != nil {
		t.Fatalf("Create(nil): %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected empty result, got %d", len(created))
	}

	got, err := repo.GetByIDs(ctx, tx, nil)
	if err != nil {
		t.Fatalf("GetByIDs(nil): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}
