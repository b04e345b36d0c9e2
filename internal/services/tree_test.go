package services

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/pkg/patch"
)

func flatNode(title string, parent *kiosk.Node, order int, created time.Time) *kiosk.Node {
	n := &kiosk.Node{ID: uuid.New(), Title: title, Order: order, IsActive: true, CreatedAt: created}
	if parent != nil {
		id := parent.ID
		n.ParentID = &id
	}
	return n
}

func titles(nodes []*kiosk.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Title)
	}
	return out
}

func TestProjectOrdersSiblings(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := flatNode("A", nil, 0, t0)
	b := flatNode("B", a, 1, t0)
	c := flatNode("C", a, 2, t0)
	d := flatNode("D", b, 0, t0)

	roots := Project([]*kiosk.Node{d, c, b, a}, nil, false)
	if len(roots) != 1 || roots[0].Title != "A" {
		t.Fatalf("roots: got=%v", titles(roots))
	}
	if got := titles(roots[0].Children); !slices.Equal(got, []string{"B", "C"}) {
		t.Fatalf("A children: want=[B C] got=%v", got)
	}
	if got := titles(roots[0].Children[0].Children); !slices.Equal(got, []string{"D"}) {
		t.Fatalf("B children: want=[D] got=%v", got)
	}

	b.Order, c.Order = 2, 1
	roots = Project([]*kiosk.Node{a, b, c, d}, nil, false)
	if got := titles(roots[0].Children); !slices.Equal(got, []string{"C", "B"}) {
		t.Fatalf("after swap: want=[C B] got=%v", got)
	}
}

func TestProjectTiesBreakOnCreatedAt(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	root := flatNode("root", nil, 0, t0)
	late := flatNode("late", root, 0, t0.Add(time.Minute))
	early := flatNode("early", root, 0, t0)

	roots := Project([]*kiosk.Node{root, late, early}, nil, false)
	if got := titles(roots[0].Children); !slices.Equal(got, []string{"early", "late"}) {
		t.Fatalf("want=[early late] got=%v", got)
	}
}

func TestProjectActiveOnlyHidesSubtree(t *testing.T) {
	t0 := time.Now()
	root := flatNode("root", nil, 0, t0)
	off := flatNode("off", root, 0, t0)
	off.IsActive = false
	under := flatNode("under", off, 0, t0)
	on := flatNode("on", root, 1, t0)
	all := []*kiosk.Node{root, off, under, on}

	playback := Project(all, nil, true)
	if got := titles(playback[0].Children); !slices.Equal(got, []string{"on"}) {
		t.Fatalf("playback: want=[on] got=%v", got)
	}
	admin := Project(all, nil, false)
	if got := titles(admin[0].Children); !slices.Equal(got, []string{"off", "on"}) {
		t.Fatalf("admin: want=[off on] got=%v", got)
	}
	if len(admin[0].Children[0].Children) != 1 {
		t.Fatalf("admin tree keeps inactive subtrees")
	}
}

func TestProjectSkipsDetachedAndCopies(t *testing.T) {
	t0 := time.Now()
	root := flatNode("root", nil, 0, t0)
	ghost := uuid.New()
	detached := flatNode("detached", nil, 0, t0)
	detached.ParentID = &ghost

	roots := Project([]*kiosk.Node{root, detached}, nil, false)
	if got := titles(roots); !slices.Equal(got, []string{"root"}) {
		t.Fatalf("want=[root] got=%v", got)
	}
	roots[0].Title = "mutated"
	if root.Title != "root" {
		t.Fatalf("projection must not alias the source rows")
	}
}

func TestProjectBreaksCycles(t *testing.T) {
	t0 := time.Now()
	root := flatNode("root", nil, 0, t0)
	x := flatNode("x", nil, 0, t0)
	y := flatNode("y", x, 0, t0)
	x.ParentID = &y.ID

	out := Project([]*kiosk.Node{root, x, y}, nil, false)
	if got := titles(out); !slices.Equal(got, []string{"root"}) {
		t.Fatalf("roots: want=[root] got=%v", got)
	}
	sub := Project([]*kiosk.Node{root, x, y}, &x.ID, false)
	if len(sub) != 1 || sub[0].Title != "y" || len(sub[0].Children) != 1 || len(sub[0].Children[0].Children) != 0 {
		t.Fatalf("cycle must stop at the first revisit: got=%+v", sub)
	}
}

func TestAssemblerPlaybackUsesActiveTree(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	root := mustCreate(t, h, kiosk.NodeInput{Title: "root"})
	a := mustCreate(t, h, childInput("a", root.ID, 0, "a.mp4", "a.png"))
	mustCreate(t, h, childInput("b", root.ID, 1, "b.mp4", "b.png"))
	if _, err := h.node.Update(ctx, a.ID, kiosk.NodePatch{IsActive: patch.SetField(false)}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	tree, err := h.tree.Playback(ctx)
	if err != nil {
		t.Fatalf("Playback: %v", err)
	}
	if len(tree) != 1 || !slices.Equal(titles(tree[0].Children), []string{"b"}) {
		t.Fatalf("playback tree: got=%+v", tree)
	}
	roots, err := h.node.Roots(ctx)
	if err != nil {
		t.Fatalf("Roots: %v", err)
	}
	if !slices.Equal(titles(roots[0].Children), []string{"a", "b"}) {
		t.Fatalf("admin tree: got=%v", titles(roots[0].Children))
	}
}
