package services

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/kiosk-backend/internal/clients/redis"
	"github.com/yungbote/kiosk-backend/internal/data/repos"
	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/observability"
	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

// TreeAssembler projects the flat node table into nested, ordered trees.
// Every call reads one snapshot, so a concurrent write is either fully
// visible or not at all.
type TreeAssembler interface {
	// Assemble returns the subtree under parentID (nil for roots), inactive
	// nodes included.
	Assemble(ctx context.Context, parentID *uuid.UUID) ([]*kiosk.Node, error)
	// Playback returns the active tree served to displays, cached when redis
	// is configured.
	Playback(ctx context.Context) ([]*kiosk.Node, error)
	Invalidate(ctx context.Context)
}

type treeAssembler struct {
	log    *logger.Logger
	nodes  repos.NodeRepo
	cache  redis.TreeCache
	tracer trace.Tracer
}

func NewTreeAssembler(log *logger.Logger, nodes repos.NodeRepo, cache redis.TreeCache) TreeAssembler {
	if cache == nil {
		cache = redis.NoopTreeCache()
	}
	return &treeAssembler{
		log:    log.With("service", "TreeAssembler"),
		nodes:  nodes,
		cache:  cache,
		tracer: otel.Tracer("kiosk-backend/services"),
	}
}

func (a *treeAssembler) Assemble(ctx context.Context, parentID *uuid.UUID) ([]*kiosk.Node, error) {
	ctx, span := a.tracer.Start(ctx, "TreeAssembler.Assemble")
	defer span.End()
	all, err := a.load(ctx, span)
	if err != nil {
		return nil, err
	}
	return Project(all, parentID, false), nil
}

func (a *treeAssembler) Playback(ctx context.Context) ([]*kiosk.Node, error) {
	ctx, span := a.tracer.Start(ctx, "TreeAssembler.Playback")
	defer span.End()

	roots, hit, err := a.cache.Get(ctx)
	if err != nil {
		a.log.Warn("tree cache read failed; using database", "error", err)
	}
	span.SetAttributes(attribute.Bool("tree.cache_hit", hit))
	observability.Current().IncTreeCache(hit)
	if hit {
		return roots, nil
	}

	all, err := a.load(ctx, span)
	if err != nil {
		return nil, err
	}
	roots = Project(all, nil, true)
	if err := a.cache.Set(ctx, roots); err != nil {
		a.log.Warn("tree cache write failed", "error", err)
	}
	return roots, nil
}

func (a *treeAssembler) Invalidate(ctx context.Context) {
	if err := a.cache.Invalidate(ctx); err != nil {
		a.log.Warn("tree cache invalidate failed", "error", err)
	}
}

func (a *treeAssembler) load(ctx context.Context, span trace.Span) ([]*kiosk.Node, error) {
	all, err := a.nodes.ListAll(dbctx.Context{Ctx: ctx})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list nodes")
		return nil, apierr.FromDB("tree.assemble", err)
	}
	span.SetAttributes(attribute.Int("tree.nodes", len(all)))
	return all, nil
}

// Project builds fresh nested copies of all, rooted at parentID. Nodes whose
// parent is missing are left out, and a visited set keeps a corrupt parent
// chain from looping. With activeOnly an inactive node hides its subtree.
func Project(all []*kiosk.Node, parentID *uuid.UUID, activeOnly bool) []*kiosk.Node {
	arena := make(map[uuid.UUID]*kiosk.Node, len(all))
	for _, n := range all {
		if n != nil {
			arena[n.ID] = n
		}
	}
	kids := make(map[uuid.UUID][]*kiosk.Node, len(arena))
	var roots []*kiosk.Node
	for _, n := range arena {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if _, ok := arena[*n.ParentID]; ok {
			kids[*n.ParentID] = append(kids[*n.ParentID], n)
		}
	}
	slices.SortFunc(roots, siblingCmp)
	for id := range kids {
		slices.SortFunc(kids[id], siblingCmp)
	}

	visited := make(map[uuid.UUID]bool, len(arena))
	var build func(src *kiosk.Node) *kiosk.Node
	build = func(src *kiosk.Node) *kiosk.Node {
		if visited[src.ID] || (activeOnly && !src.IsActive) {
			return nil
		}
		visited[src.ID] = true
		out := src.Clone()
		out.Children = make([]*kiosk.Node, 0, len(kids[src.ID]))
		for _, c := range kids[src.ID] {
			if b := build(c); b != nil {
				out.Children = append(out.Children, b)
			}
		}
		return out
	}

	start := roots
	if parentID != nil {
		start = kids[*parentID]
	}
	out := make([]*kiosk.Node, 0, len(start))
	for _, n := range start {
		if b := build(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func siblingCmp(a, b *kiosk.Node) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}
