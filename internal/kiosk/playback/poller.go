package playback

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

const DefaultPollInterval = 5 * time.Second

// Source reports the VVIP currently marked as playing, or nil.
type Source interface {
	PlayingVVIP(ctx context.Context) (*kiosk.VVIP, error)
}

// Sink receives poll outcomes. *Machine implements it.
type Sink interface {
	ObserveVVIP(v *kiosk.VVIP)
	PollFailed(err error)
}

// Poller asks Source for the playing VVIP every interval. A failed poll is
// reported and retried on the next tick.
type Poller struct {
	log      *logger.Logger
	src      Source
	sink     Sink
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(log *logger.Logger, src Source, sink Sink, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{log: log.With("component", "VVIPPoller"), src: src, sink: sink, interval: interval}
}

func (p *Poller) PollOnce(ctx context.Context) {
	v, err := p.src.PlayingVVIP(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.sink.PollFailed(err)
		return
	}
	p.sink.ObserveVVIP(v)
}

// Start polls immediately and then on every tick until ctx is done or Stop
// is called. Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.PollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// Stop cancels the loop and waits for an in-flight poll to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
