package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/data/repos"
	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/pkg/patch"
	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
	"github.com/yungbote/kiosk-backend/internal/platform/ctxutil"
	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

type VVIPService interface {
	List(ctx context.Context) ([]*kiosk.VVIP, error)
	Get(ctx context.Context, id uuid.UUID) (*kiosk.VVIP, error)
	Create(ctx context.Context, in kiosk.VVIPInput) (*kiosk.VVIP, error)
	Update(ctx context.Context, id uuid.UUID, p kiosk.VVIPPatch) (*kiosk.VVIP, error)
	SetPlaying(ctx context.Context, id uuid.UUID, play bool) (*kiosk.VVIP, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Playing returns the most recently updated VVIP with play set, or nil.
	Playing(ctx context.Context) (*kiosk.VVIP, error)
}

type vvipService struct {
	log    *logger.Logger
	vvips  repos.VVIPRepo
	media  MediaLifecycle
	notify KioskNotifier
}

func NewVVIPService(log *logger.Logger, vvips repos.VVIPRepo, media MediaLifecycle, notify KioskNotifier) VVIPService {
	return &vvipService{
		log:    log.With("service", "VVIPService"),
		vvips:  vvips,
		media:  media,
		notify: notify,
	}
}

func (s *vvipService) List(ctx context.Context) ([]*kiosk.VVIP, error) {
	out, err := s.vvips.List(dbctx.Context{Ctx: ctx})
	return out, apierr.FromDB("vvip.list", err)
}

func (s *vvipService) Get(ctx context.Context, id uuid.UUID) (*kiosk.VVIP, error) {
	v, err := s.vvips.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, apierr.FromDB("vvip.get", err)
	}
	if v == nil {
		return nil, apierr.NotFound("vvip.get", "vvip not found")
	}
	return v, nil
}

func (s *vvipService) Playing(ctx context.Context) (*kiosk.VVIP, error) {
	v, err := s.vvips.GetPlaying(dbctx.Context{Ctx: ctx})
	return v, apierr.FromDB("vvip.playing", err)
}

func (s *vvipService) Create(ctx context.Context, in kiosk.VVIPInput) (*kiosk.VVIP, error) {
	const op = "vvip.create"
	v := in.Build()
	if err := v.Validate(); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if v.Play {
		if err := s.resetPlaying(dbc, op); err != nil {
			return nil, err
		}
	}
	if err := s.vvips.Create(dbc, v); err != nil {
		return nil, apierr.FromDB(op, err)
	}
	s.notify.VVIPChanged(ctx, v.ID, v.Play)
	return v, nil
}

// Update with play=true clears every other VVIP first. The reset and the
// save are separate statements; two concurrent setters end with whichever
// save lands last.
func (s *vvipService) Update(ctx context.Context, id uuid.UUID, p kiosk.VVIPPatch) (*kiosk.VVIP, error) {
	const op = "vvip.update"
	dbc := dbctx.Context{Ctx: ctx}
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := p.Apply(cur)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if next.Play && p.Play.IsSet() {
		if err := s.resetPlaying(dbc, op); err != nil {
			return nil, err
		}
	}
	if err := s.vvips.Save(dbc, next); err != nil {
		return nil, apierr.FromDB(op, err)
	}
	s.media.Reap(ctx, op, s.media.Orphaned(cur.BlobKeys(), next.BlobKeys())...)
	s.notify.VVIPChanged(ctx, next.ID, next.Play)
	return next, nil
}

func (s *vvipService) SetPlaying(ctx context.Context, id uuid.UUID, play bool) (*kiosk.VVIP, error) {
	return s.Update(ctx, id, kiosk.VVIPPatch{Play: patch.SetField(play)})
}

func (s *vvipService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "vvip.delete"
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.vvips.Delete(dbctx.Context{Ctx: ctx}, id); err != nil {
		return apierr.FromDB(op, err)
	}
	s.media.Reap(ctx, op, cur.BlobKeys()...)
	s.notify.VVIPChanged(ctx, id, false)
	return nil
}

func (s *vvipService) resetPlaying(dbc dbctx.Context, op string) error {
	n, err := s.vvips.ResetPlaying(dbc)
	if err != nil {
		return apierr.FromDB(op, err)
	}
	if n > 0 {
		s.log.Debug("cleared playing vvips", append(ctxutil.LogFields(dbc.Ctx), "rows", n)...)
	}
	return nil
}
