package kiosk

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/data/repos/testutil"
	types "github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
)

func TestNodeRepoRoundTripsJSONColumns(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewNodeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	root := testutil.SeedNode(t, ctx, tx, "root", nil, 0)
	n := &types.Node{
		Title:    "slides",
		ParentID: &root.ID,
		Video:    &types.MediaRef{Key: "v", URL: "u", Subtitle: &types.Blob{Key: "v.vtt"}},
		Action: &types.Action{
			Type:   types.ActionSlideshow,
			Images: []types.SlideImage{{ID: uuid.New(), Key: "a"}, {ID: uuid.New(), Key: "b"}},
			Popup:  &types.Popup{Key: "p", X: 10, Y: 90},
			Width:  70,
			Height: 60,
		},
	}
	if err := repo.Create(dbc, n); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.ID == uuid.Nil {
		t.Fatalf("Create: id not assigned")
	}

	got, err := repo.GetByID(dbc, n.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got.Video == nil || got.Video.Subtitle == nil || got.Video.Subtitle.Key != "v.vtt" {
		t.Fatalf("video: got=%+v", got.Video)
	}
	if got.Action == nil || len(got.Action.Images) != 2 || got.Action.Images[1].Key != "b" {
		t.Fatalf("action: got=%+v", got.Action)
	}
	if got.Action.Popup == nil || got.Action.Popup.X != 10 {
		t.Fatalf("popup: got=%+v", got.Action.Popup)
	}
	if got.ParentID == nil || *got.ParentID != root.ID {
		t.Fatalf("parent: want=%s got=%v", root.ID, got.ParentID)
	}
}

func TestNodeRepoGetByIDMissing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewNodeRepo(db, testutil.Logger(t))
	got, err := repo.GetByID(dbctx.Context{Ctx: context.Background(), Tx: tx}, uuid.New())
	if err != nil || got != nil {
		t.Fatalf("GetByID missing: want nil,nil got=%v,%v", got, err)
	}
}

func TestRebuildChildrenFollowsSiblingOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewNodeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	root := testutil.SeedNode(t, ctx, tx, "root", nil, 0)
	c := testutil.SeedNode(t, ctx, tx, "c", &root.ID, 2)
	b := testutil.SeedNode(t, ctx, tx, "b", &root.ID, 1)

	ids, err := repo.RebuildChildren(dbc, root.ID)
	if err != nil {
		t.Fatalf("RebuildChildren: %v", err)
	}
	if len(ids) != 2 || ids[0] != b.ID || ids[1] != c.ID {
		t.Fatalf("ids: want=[%s %s] got=%v", b.ID, c.ID, ids)
	}
	reloaded, _ := repo.GetByID(dbc, root.ID)
	if len(reloaded.ChildrenIDs) != 2 || reloaded.ChildrenIDs[0] != b.ID {
		t.Fatalf("children_ids: got=%v", reloaded.ChildrenIDs)
	}

	if err := repo.Delete(dbc, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ids, err = repo.RebuildChildren(dbc, root.ID)
	if err != nil || len(ids) != 1 || ids[0] != c.ID {
		t.Fatalf("after delete: want=[%s] got=%v err=%v", c.ID, ids, err)
	}
}

func TestListDetachedFindsOrphanedSubtrees(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewNodeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	root := testutil.SeedNode(t, ctx, tx, "root", nil, 0)
	mid := testutil.SeedNode(t, ctx, tx, "mid", &root.ID, 0)
	leaf := testutil.SeedNode(t, ctx, tx, "leaf", &mid.ID, 0)

	if err := repo.Delete(dbc, mid.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := repo.ListDetached(dbc)
	if err != nil {
		t.Fatalf("ListDetached: %v", err)
	}
	if len(got) != 1 || got[0].ID != leaf.ID {
		t.Fatalf("detached: want=[%s] got=%d rows", leaf.ID, len(got))
	}
}
