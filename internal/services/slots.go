package services

import (
	"context"

	"github.com/yungbote/kiosk-backend/internal/data/repos"
	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

// HomeService owns the home slot. Get returns nil when nothing is configured.
type HomeService interface {
	Get(ctx context.Context) (*kiosk.HomeConfig, error)
	Replace(ctx context.Context, in kiosk.HomeInput) (*kiosk.HomeConfig, error)
	Delete(ctx context.Context) error
}

type homeService struct {
	log    *logger.Logger
	home   repos.HomeRepo
	media  MediaLifecycle
	notify KioskNotifier
}

func NewHomeService(log *logger.Logger, home repos.HomeRepo, media MediaLifecycle, notify KioskNotifier) HomeService {
	return &homeService{log: log.With("service", "HomeService"), home: home, media: media, notify: notify}
}

func (s *homeService) Get(ctx context.Context) (*kiosk.HomeConfig, error) {
	h, err := s.home.Get(dbctx.Context{Ctx: ctx})
	return h, apierr.FromDB("home.get", err)
}

// Replace swaps the home video. A nil subtitle keeps the current one.
func (s *homeService) Replace(ctx context.Context, in kiosk.HomeInput) (*kiosk.HomeConfig, error) {
	const op = "home.replace"
	if err := in.Validate(); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	old, err := s.home.Get(dbc)
	if err != nil {
		return nil, apierr.FromDB(op, err)
	}
	row := &kiosk.HomeConfig{Video: in.Video, Subtitle: in.Subtitle}
	if row.Subtitle == nil && old != nil {
		row.Subtitle = old.Subtitle
	}
	if err := s.home.Put(dbc, row); err != nil {
		return nil, apierr.FromDB(op, err)
	}
	s.media.Reap(ctx, op, s.media.Orphaned(old.BlobKeys(), row.BlobKeys())...)
	s.notify.HomeChanged(ctx)
	return row, nil
}

// Delete is a no-op when the slot is already empty.
func (s *homeService) Delete(ctx context.Context) error {
	const op = "home.delete"
	dbc := dbctx.Context{Ctx: ctx}
	old, err := s.home.Get(dbc)
	if err != nil {
		return apierr.FromDB(op, err)
	}
	if old == nil {
		return nil
	}
	if err := s.home.Clear(dbc); err != nil {
		return apierr.FromDB(op, err)
	}
	s.media.Reap(ctx, op, old.BlobKeys()...)
	s.notify.HomeChanged(ctx)
	return nil
}

// QRService owns the qr overlay slot.
type QRService interface {
	Get(ctx context.Context) (*kiosk.QRConfig, error)
	Replace(ctx context.Context, in kiosk.QRInput) (*kiosk.QRConfig, error)
	Update(ctx context.Context, p kiosk.QRPatch) (*kiosk.QRConfig, error)
	Delete(ctx context.Context) error
}

type qrService struct {
	log    *logger.Logger
	qr     repos.QRRepo
	media  MediaLifecycle
	notify KioskNotifier
}

func NewQRService(log *logger.Logger, qr repos.QRRepo, media MediaLifecycle, notify KioskNotifier) QRService {
	return &qrService{log: log.With("service", "QRService"), qr: qr, media: media, notify: notify}
}

func (s *qrService) Get(ctx context.Context) (*kiosk.QRConfig, error) {
	q, err := s.qr.Get(dbctx.Context{Ctx: ctx})
	return q, apierr.FromDB("qr.get", err)
}

func (s *qrService) Replace(ctx context.Context, in kiosk.QRInput) (*kiosk.QRConfig, error) {
	const op = "qr.replace"
	row := in.Build()
	if err := row.Validate(); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	old, err := s.qr.Get(dbc)
	if err != nil {
		return nil, apierr.FromDB(op, err)
	}
	if err := s.qr.Put(dbc, row); err != nil {
		return nil, apierr.FromDB(op, err)
	}
	if old != nil {
		s.media.Reap(ctx, op, s.media.Orphaned([]string{old.Key}, []string{row.Key})...)
	}
	s.notify.QRChanged(ctx)
	return row, nil
}

func (s *qrService) Update(ctx context.Context, p kiosk.QRPatch) (*kiosk.QRConfig, error) {
	const op = "qr.update"
	dbc := dbctx.Context{Ctx: ctx}
	old, err := s.qr.Get(dbc)
	if err != nil {
		return nil, apierr.FromDB(op, err)
	}
	if old == nil {
		return nil, apierr.NotFound(op, "qr code not configured")
	}
	row := p.Apply(old)
	if err := row.Validate(); err != nil {
		return nil, err
	}
	if err := s.qr.Put(dbc, row); err != nil {
		return nil, apierr.FromDB(op, err)
	}
	s.media.Reap(ctx, op, s.media.Orphaned([]string{old.Key}, []string{row.Key})...)
	s.notify.QRChanged(ctx)
	return row, nil
}

func (s *qrService) Delete(ctx context.Context) error {
	const op = "qr.delete"
	dbc := dbctx.Context{Ctx: ctx}
	old, err := s.qr.Get(dbc)
	if err != nil {
		return apierr.FromDB(op, err)
	}
	if old == nil {
		return apierr.NotFound(op, "qr code not configured")
	}
	if err := s.qr.Clear(dbc); err != nil {
		return apierr.FromDB(op, err)
	}
	s.media.Reap(ctx, op, old.Key)
	s.notify.QRChanged(ctx)
	return nil
}
