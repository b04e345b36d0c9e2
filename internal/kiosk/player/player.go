package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/kiosk/playback"
	"github.com/yungbote/kiosk-backend/internal/platform/envutil"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
	"github.com/yungbote/kiosk-backend/internal/realtime"
)

// API is the slice of the kiosk API a display needs.
type API interface {
	Tree(ctx context.Context) ([]*kiosk.Node, error)
	Home(ctx context.Context) (*kiosk.HomeConfig, error)
	QR(ctx context.Context) (*kiosk.QRConfig, error)
	PlayingVVIP(ctx context.Context) (*kiosk.VVIP, error)
	Stream(ctx context.Context, device string, onEvent func(realtime.SSEMessage)) error
}

// Renderer draws frames. Calls come from a single goroutine.
type Renderer interface {
	Render(playback.State)
	RenderQR(*kiosk.QRConfig)
}

type Config struct {
	Device         string
	Dwell          time.Duration
	IdleWindow     time.Duration
	PollInterval   time.Duration
	ReconnectDelay time.Duration
	// Stream disables the change-event stream when false; the poll still runs.
	Stream bool
}

func ConfigFromEnv() Config {
	return Config{
		Device:         envutil.String("KIOSK_DEVICE", "kioskctl"),
		Dwell:          time.Duration(envutil.Int("KIOSK_DWELL_MS", int(playback.DefaultDwell/time.Millisecond))) * time.Millisecond,
		IdleWindow:     envutil.Seconds("KIOSK_IDLE_SECONDS", playback.DefaultIdleWindow),
		PollInterval:   envutil.Seconds("KIOSK_POLL_SECONDS", playback.DefaultPollInterval),
		ReconnectDelay: envutil.Seconds("KIOSK_STREAM_RECONNECT_SECONDS", 3*time.Second),
		Stream:         envutil.Bool("KIOSK_STREAM_ENABLED", true),
	}
}

// Player binds the API to a playback machine and pushes frames to a Renderer.
type Player struct {
	log      *logger.Logger
	api      API
	renderer Renderer
	cfg      Config
	machine  *playback.Machine
	poller   *playback.Poller

	qrMu sync.Mutex
	qr   *kiosk.QRConfig
}

func New(log *logger.Logger, api API, renderer Renderer, cfg Config, clock playback.Clock) *Player {
	log = log.With("component", "KioskPlayer", "device", cfg.Device)
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 3 * time.Second
	}
	m := playback.NewMachine(playback.Config{
		Log:        log,
		Clock:      clock,
		Dwell:      cfg.Dwell,
		IdleWindow: cfg.IdleWindow,
	})
	return &Player{
		log:      log,
		api:      api,
		renderer: renderer,
		cfg:      cfg,
		machine:  m,
		poller:   playback.NewPoller(log, api, m, cfg.PollInterval),
	}
}

// Machine exposes the state machine so input sources can feed it taps.
func (p *Player) Machine() *playback.Machine { return p.machine }

func (p *Player) QR() *kiosk.QRConfig {
	p.qrMu.Lock()
	defer p.qrMu.Unlock()
	return p.qr
}

// Load fetches home, tree and QR in parallel. Every fetch degrades on its
// own: a failed tree becomes an empty tree, a failed home or QR stays unset.
func (p *Player) Load(ctx context.Context) {
	var (
		home *kiosk.HomeConfig
		tree []*kiosk.Node
		qr   *kiosk.QRConfig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := p.api.Home(gctx)
		if err != nil {
			p.log.Warn("Home load failed", "error", err)
			return nil
		}
		home = h
		return nil
	})
	g.Go(func() error {
		t, err := p.api.Tree(gctx)
		if err != nil {
			p.log.Warn("Tree load failed; showing home only", "error", err)
			return nil
		}
		tree = t
		return nil
	})
	g.Go(func() error {
		q, err := p.api.QR(gctx)
		if err != nil {
			p.log.Warn("QR load failed", "error", err)
			return nil
		}
		qr = q
		return nil
	})
	_ = g.Wait()

	p.machine.SetHome(home)
	p.machine.SetTree(tree)
	p.setQR(qr)
}

// Run loads content, starts the machine and poller, and renders until ctx
// ends.
func (p *Player) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states, unsubscribe := p.machine.Subscribe()
	defer unsubscribe()

	p.Load(ctx)
	p.machine.Start()
	defer p.machine.Stop()
	p.poller.Start(ctx)
	defer p.poller.Stop()

	p.renderer.RenderQR(p.QR())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case st, ok := <-states:
				if !ok {
					return nil
				}
				p.renderer.Render(st)
			}
		}
	})
	if p.cfg.Stream {
		g.Go(func() error {
			p.streamLoop(gctx)
			return nil
		})
	}
	err := g.Wait()
	p.log.Info("Player stopped")
	return err
}

func (p *Player) streamLoop(ctx context.Context) {
	for {
		err := p.api.Stream(ctx, p.cfg.Device, func(msg realtime.SSEMessage) {
			p.HandleEvent(ctx, msg.Event)
		})
		if ctx.Err() != nil {
			return
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			p.log.Warn("Change stream dropped", "error", err, "retry_in", p.cfg.ReconnectDelay.String())
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.cfg.ReconnectDelay):
		}
	}
}

// HandleEvent refetches whatever a change event names. Failed refetches keep
// the current content.
func (p *Player) HandleEvent(ctx context.Context, ev realtime.SSEEvent) {
	switch ev {
	case realtime.SSEEventTreeChanged:
		tree, err := p.api.Tree(ctx)
		if err != nil {
			p.log.Warn("Tree refresh failed", "error", err)
			return
		}
		p.machine.SetTree(tree)
	case realtime.SSEEventHomeChanged:
		home, err := p.api.Home(ctx)
		if err != nil {
			p.log.Warn("Home refresh failed", "error", err)
			return
		}
		p.machine.SetHome(home)
	case realtime.SSEEventQRChanged:
		qr, err := p.api.QR(ctx)
		if err != nil {
			p.log.Warn("QR refresh failed", "error", err)
			return
		}
		p.setQR(qr)
		p.renderer.RenderQR(qr)
	case realtime.SSEEventVVIPChanged:
		p.poller.PollOnce(ctx)
	default:
		p.log.Debug("Ignoring change event", "event", string(ev))
	}
}

func (p *Player) setQR(qr *kiosk.QRConfig) {
	p.qrMu.Lock()
	p.qr = qr
	p.qrMu.Unlock()
}
