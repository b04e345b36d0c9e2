package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/data/repos"
	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
	"github.com/yungbote/kiosk-backend/internal/platform/ctxutil"
	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

// NodeService is the content tree's write path. Each mutation commits the
// row and the parent's children_ids together, then reaps orphaned media.
type NodeService interface {
	Create(ctx context.Context, in kiosk.NodeInput) (*kiosk.Node, error)
	Update(ctx context.Context, id uuid.UUID, p kiosk.NodePatch) (*kiosk.Node, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*kiosk.Node, error)
	Roots(ctx context.Context) ([]*kiosk.Node, error)
	RemoveSlideshowImage(ctx context.Context, id, imageID uuid.UUID) (*kiosk.Node, error)
}

type nodeService struct {
	log    *logger.Logger
	tx     dbctx.TxRunner
	nodes  repos.NodeRepo
	media  MediaLifecycle
	tree   TreeAssembler
	notify KioskNotifier
}

func NewNodeService(
	log *logger.Logger,
	tx dbctx.TxRunner,
	nodes repos.NodeRepo,
	media MediaLifecycle,
	tree TreeAssembler,
	notify KioskNotifier,
) NodeService {
	return &nodeService{
		log:    log.With("service", "NodeService"),
		tx:     tx,
		nodes:  nodes,
		media:  media,
		tree:   tree,
		notify: notify,
	}
}

func (s *nodeService) Create(ctx context.Context, in kiosk.NodeInput) (*kiosk.Node, error) {
	const op = "node.create"
	n := in.Build()
	if err := n.Validate(); err != nil {
		return nil, err
	}
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if n.ParentID != nil {
			parent, err := s.nodes.GetByIDForUpdate(dbc, *n.ParentID)
			if err != nil {
				return apierr.FromDB(op, err)
			}
			if parent == nil {
				return apierr.Validationf(op, "parent node %s does not exist", *n.ParentID)
			}
		}
		if err := s.nodes.Create(dbc, n); err != nil {
			return apierr.FromDB(op, err)
		}
		if n.ParentID != nil {
			if _, err := s.nodes.RebuildChildren(dbc, *n.ParentID); err != nil {
				return apierr.FromDB(op, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("node created", append(ctxutil.LogFields(ctx), "node_id", n.ID, "parent_id", n.ParentID)...)
	s.changed(ctx, n.ID)
	return n, nil
}

func (s *nodeService) Update(ctx context.Context, id uuid.UUID, p kiosk.NodePatch) (*kiosk.Node, error) {
	const op = "node.update"
	var before, after *kiosk.Node
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		cur, err := s.nodes.GetByIDForUpdate(dbc, id)
		if err != nil {
			return apierr.FromDB(op, err)
		}
		if cur == nil {
			return apierr.NotFound(op, "node not found")
		}
		next := p.Apply(cur)
		next.Action.Normalize()
		if err := next.Validate(); err != nil {
			return err
		}
		if err := s.nodes.Save(dbc, next); err != nil {
			return apierr.FromDB(op, err)
		}
		if next.Order != cur.Order && next.ParentID != nil {
			if _, err := s.nodes.RebuildChildren(dbc, *next.ParentID); err != nil {
				return apierr.FromDB(op, err)
			}
		}
		before, after = cur, next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.media.Reap(ctx, op, s.media.Orphaned(before.BlobKeys(), after.BlobKeys())...)
	s.changed(ctx, id)
	return after, nil
}

// Delete removes the node and detaches it from its parent. Children are
// left in place with a dangling parent_id; the storage audit lists them.
func (s *nodeService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "node.delete"
	var gone *kiosk.Node
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		cur, err := s.nodes.GetByIDForUpdate(dbc, id)
		if err != nil {
			return apierr.FromDB(op, err)
		}
		if cur == nil {
			return apierr.NotFound(op, "node not found")
		}
		if cur.ParentID != nil {
			if _, err := s.nodes.GetByIDForUpdate(dbc, *cur.ParentID); err != nil {
				return apierr.FromDB(op, err)
			}
		}
		if err := s.nodes.Delete(dbc, id); err != nil {
			return apierr.FromDB(op, err)
		}
		if cur.ParentID != nil {
			if _, err := s.nodes.RebuildChildren(dbc, *cur.ParentID); err != nil {
				return apierr.FromDB(op, err)
			}
		}
		gone = cur
		return nil
	})
	if err != nil {
		return err
	}
	s.media.Reap(ctx, op, gone.BlobKeys()...)
	s.log.Info("node deleted", append(ctxutil.LogFields(ctx), "node_id", id)...)
	s.changed(ctx, id)
	return nil
}

// Get returns the node with its whole subtree attached.
func (s *nodeService) Get(ctx context.Context, id uuid.UUID) (*kiosk.Node, error) {
	const op = "node.get"
	n, err := s.nodes.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, apierr.FromDB(op, err)
	}
	if n == nil {
		return nil, apierr.NotFound(op, "node not found")
	}
	children, err := s.tree.Assemble(ctx, &n.ID)
	if err != nil {
		return nil, err
	}
	n.Children = children
	return n, nil
}

func (s *nodeService) Roots(ctx context.Context) ([]*kiosk.Node, error) {
	return s.tree.Assemble(ctx, nil)
}

func (s *nodeService) RemoveSlideshowImage(ctx context.Context, id, imageID uuid.UUID) (*kiosk.Node, error) {
	const op = "node.remove_slideshow_image"
	var (
		after   *kiosk.Node
		dropped string
	)
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		cur, err := s.nodes.GetByIDForUpdate(dbc, id)
		if err != nil {
			return apierr.FromDB(op, err)
		}
		if cur == nil {
			return apierr.NotFound(op, "node not found")
		}
		if cur.Action == nil || cur.Action.Type != kiosk.ActionSlideshow {
			return apierr.Validation(op, "not a slideshow node")
		}
		idx := cur.Action.FindImage(imageID)
		if idx < 0 {
			return apierr.NotFound(op, "image not found")
		}
		next := cur.Clone()
		dropped = next.Action.Images[idx].Key
		next.Action.Images = append(next.Action.Images[:idx:idx], next.Action.Images[idx+1:]...)
		if err := s.nodes.Save(dbc, next); err != nil {
			return apierr.FromDB(op, err)
		}
		after = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.media.Reap(ctx, op, dropped)
	s.changed(ctx, id)
	return after, nil
}

func (s *nodeService) changed(ctx context.Context, id uuid.UUID) {
	s.tree.Invalidate(ctx)
	s.notify.TreeChanged(ctx, id)
}
