package services

import (
	"context"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/data/repos/testutil"
	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
)

func TestStorageAudit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	root := mustCreate(t, h, kiosk.NodeInput{Title: "root", Video: video("kiosk/videos/root.mp4")})
	mustCreate(t, h, childInput("c", root.ID, 0, "kiosk/videos/c.mp4", "kiosk/images/c.png"))
	if _, err := h.vvip.Create(ctx, kiosk.VVIPInput{Name: "v", Video: kiosk.MediaRef{Key: "kiosk/videos/vip.mp4"}}); err != nil {
		t.Fatalf("vvip: %v", err)
	}
	if _, err := h.qr.Replace(ctx, kiosk.QRInput{Key: "elsewhere/qr.png"}); err != nil {
		t.Fatalf("qr: %v", err)
	}
	ghost := uuid.New()
	detached := mustCreate(t, h, kiosk.NodeInput{Title: "lost"})
	detached.ParentID = &ghost
	if err := h.nodes.Save(dbctxFor(ctx), detached); err != nil {
		t.Fatalf("detach: %v", err)
	}

	for _, k := range []string{"kiosk/videos/root.mp4", "kiosk/videos/c.mp4", "kiosk/videos/vip.mp4", "kiosk/images/stale.png"} {
		h.blobs.objects[k] = []byte("x")
	}

	audit := NewStorageAudit(testutil.Logger(t), h.blobs, "kiosk", h.nodes, h.vvipR, h.homeR, h.qrR)
	report, err := audit.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Prefix != "kiosk/" || report.StoredKeys != 4 {
		t.Fatalf("report header: got=%+v", report)
	}
	if !slices.Equal(report.Unreferenced, []string{"kiosk/images/stale.png"}) {
		t.Fatalf("unreferenced: got=%v", report.Unreferenced)
	}
	if !slices.Equal(report.Missing, []string{"kiosk/images/c.png"}) {
		t.Fatalf("missing: got=%v", report.Missing)
	}
	if !slices.Equal(report.DetachedNodes, []uuid.UUID{detached.ID}) {
		t.Fatalf("detached: got=%v", report.DetachedNodes)
	}
}

func TestSortedDiff(t *testing.T) {
	got := sortedDiff([]string{"c", "a", "b", "a"}, []string{"b"})
	if !slices.Equal(got, []string{"a", "c"}) {
		t.Fatalf("got=%v", got)
	}
}
