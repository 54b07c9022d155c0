package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/briarkeep/briarkeep-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: "Collector",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPipe(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, maker string, focusTags []string) *types.Pipe {
	tb.Helper()
	p := &types.Pipe{
		ID:        uuid.New(),
		UserID:    userID,
		Maker:     maker,
		Shape:     "billiard",
		Material:  "briar",
		FocusTags: JSONList(tb, focusTags),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed pipe: %v", err)
	}
	return p
}

func SeedBlend(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string, tins int) *types.Blend {
	tb.Helper()
	b := &types.Blend{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		Brand:        "Samuel Gawith",
		BlendType:    "Virginia",
		FocusTags:    JSONList(tb, nil),
		TinsInCellar: tins,
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed blend: %v", err)
	}
	return b
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, frequency string) *types.PreferenceProfile {
	tb.Helper()
	p := &types.PreferenceProfile{
		ID:               uuid.New(),
		UserID:           userID,
		PreferredStyles:  JSONList(tb, []string{"Virginia", "VaPer"}),
		SmokingFrequency: frequency,
		Goals:            JSONList(tb, []string{"deepen Virginia rotation"}),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func JSONList(tb testing.TB, items []string) datatypes.JSON {
	tb.Helper()
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		tb.Fatalf("marshal list: %v", err)
	}
	return datatypes.JSON(raw)
}
