package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/kiosk-backend/internal/domain/kiosk"
)

// SeedNode inserts a node directly, bypassing validation and children_ids upkeep.
func SeedNode(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, parent *uuid.UUID, order int) *types.Node {
	tb.Helper()
	n := &types.Node{
		ID:       uuid.New(),
		Title:    title,
		ParentID: parent,
		Order:    order,
		IsActive: true,
		Video:    &types.MediaRef{Key: fmt.Sprintf("kiosk/videos/%s.mp4", title), URL: "https://cdn.example/" + title},
	}
	if parent != nil {
		n.Action = &types.Action{Type: types.ActionImage, Key: fmt.Sprintf("kiosk/images/%s.png", title), Width: 85, Height: 95}
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed node: %v", err)
	}
	return n
}

func SeedVVIP(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, play bool) *types.VVIP {
	tb.Helper()
	v := &types.VVIP{
		ID:    uuid.New(),
		Name:  name,
		Video: types.MediaRef{Key: "kiosk/videos/" + name + ".mp4", URL: "https://cdn.example/" + name},
		Play:  play,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed vvip: %v", err)
	}
	return v
}
