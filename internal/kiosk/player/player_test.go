package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/kiosk/playback"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
	"github.com/yungbote/kiosk-backend/internal/realtime"
)

type fakeAPI struct {
	mu      sync.Mutex
	tree    []*kiosk.Node
	treeErr error
	home    *kiosk.HomeConfig
	homeErr error
	qr      *kiosk.QRConfig
	vvip    *kiosk.VVIP
	events  chan realtime.SSEMessage
}

func (f *fakeAPI) Tree(context.Context) ([]*kiosk.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tree, f.treeErr
}

func (f *fakeAPI) Home(context.Context) (*kiosk.HomeConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.home, f.homeErr
}

func (f *fakeAPI) QR(context.Context) (*kiosk.QRConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.qr, nil
}

func (f *fakeAPI) PlayingVVIP(context.Context) (*kiosk.VVIP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vvip, nil
}

func (f *fakeAPI) Stream(ctx context.Context, _ string, onEvent func(realtime.SSEMessage)) error {
	if f.events == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-f.events:
			onEvent(msg)
		}
	}
}

type frameRecorder struct {
	mu     sync.Mutex
	frames []playback.State
	qrs    []*kiosk.QRConfig
}

func (r *frameRecorder) Render(st playback.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, st)
}

func (r *frameRecorder) RenderQR(qr *kiosk.QRConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.qrs = append(r.qrs, qr)
}

func (r *frameRecorder) last() (playback.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return playback.State{}, false
	}
	return r.frames[len(r.frames)-1], true
}

func (r *frameRecorder) lastQR() *kiosk.QRConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.qrs) == 0 {
		return nil
	}
	return r.qrs[len(r.qrs)-1]
}

func homeConfig(key string) *kiosk.HomeConfig {
	return &kiosk.HomeConfig{Video: kiosk.MediaRef{Key: key, URL: "https://cdn/" + key}}
}

func testConfig() Config {
	return Config{Device: "test", PollInterval: time.Hour, IdleWindow: time.Hour, ReconnectDelay: 10 * time.Millisecond}
}

func TestLoadDegradesTreeFailureToEmptyTree(t *testing.T) {
	api := &fakeAPI{
		treeErr: errors.New("boom"),
		home:    homeConfig("kiosk/videos/home.mp4"),
		qr:      &kiosk.QRConfig{Key: "kiosk/qrcodes/q.png", Width: 20, Height: 20},
	}
	p := New(logger.Nop(), api, &frameRecorder{}, testConfig(), playback.NewManualClock(time.Unix(0, 0)))

	p.Load(context.Background())

	st := p.Machine().State()
	assert.Equal(t, playback.PhaseHome, st.Phase)
	assert.Empty(t, st.Hotspots)
	assert.Equal(t, "https://cdn/kiosk/videos/home.mp4", st.VideoURL)
	require.NotNil(t, p.QR())
	assert.Equal(t, "kiosk/qrcodes/q.png", p.QR().Key)
}

func TestLoadWithoutHome(t *testing.T) {
	root := &kiosk.Node{ID: uuid.New(), Title: "Lobby"}
	api := &fakeAPI{tree: []*kiosk.Node{root}, homeErr: errors.New("down")}
	p := New(logger.Nop(), api, &frameRecorder{}, testConfig(), playback.NewManualClock(time.Unix(0, 0)))

	p.Load(context.Background())

	st := p.Machine().State()
	require.Len(t, st.Hotspots, 1)
	assert.Equal(t, root.ID, st.Hotspots[0].ID)
	assert.Empty(t, st.VideoURL)
}

func TestHandleEventRefetches(t *testing.T) {
	api := &fakeAPI{home: homeConfig("kiosk/videos/a.mp4")}
	rec := &frameRecorder{}
	p := New(logger.Nop(), api, rec, testConfig(), playback.NewManualClock(time.Unix(0, 0)))
	ctx := context.Background()
	p.Load(ctx)

	api.mu.Lock()
	api.home = homeConfig("kiosk/videos/b.mp4")
	api.tree = []*kiosk.Node{{ID: uuid.New(), Title: "New"}}
	api.qr = &kiosk.QRConfig{Key: "kiosk/qrcodes/new.png"}
	api.vvip = &kiosk.VVIP{ID: uuid.New(), Name: "Guest", Video: kiosk.MediaRef{Key: "kiosk/videos/v.mp4", URL: "https://cdn/v"}}
	api.mu.Unlock()

	p.HandleEvent(ctx, realtime.SSEEventHomeChanged)
	assert.Equal(t, "https://cdn/kiosk/videos/b.mp4", p.Machine().State().VideoURL)

	p.HandleEvent(ctx, realtime.SSEEventTreeChanged)
	assert.Len(t, p.Machine().State().Hotspots, 1)

	p.HandleEvent(ctx, realtime.SSEEventQRChanged)
	require.NotNil(t, rec.lastQR())
	assert.Equal(t, "kiosk/qrcodes/new.png", rec.lastQR().Key)

	p.HandleEvent(ctx, realtime.SSEEventVVIPChanged)
	st := p.Machine().State()
	assert.Equal(t, playback.PhaseVVIP, st.Phase)
	assert.Equal(t, "https://cdn/v", st.VideoURL)
}

func TestHandleEventKeepsContentOnFailure(t *testing.T) {
	root := &kiosk.Node{ID: uuid.New(), Title: "Lobby"}
	api := &fakeAPI{tree: []*kiosk.Node{root}}
	p := New(logger.Nop(), api, &frameRecorder{}, testConfig(), playback.NewManualClock(time.Unix(0, 0)))
	ctx := context.Background()
	p.Load(ctx)

	api.mu.Lock()
	api.treeErr = errors.New("offline")
	api.mu.Unlock()
	p.HandleEvent(ctx, realtime.SSEEventTreeChanged)

	assert.Len(t, p.Machine().State().Hotspots, 1)
}

func TestRunRendersAndFollowsStream(t *testing.T) {
	api := &fakeAPI{
		home:   homeConfig("kiosk/videos/home.mp4"),
		events: make(chan realtime.SSEMessage),
	}
	rec := &frameRecorder{}
	cfg := testConfig()
	cfg.Stream = true
	p := New(logger.Nop(), api, rec, cfg, playback.NewManualClock(time.Unix(0, 0)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		st, ok := rec.last()
		return ok && st.VideoURL == "https://cdn/kiosk/videos/home.mp4"
	}, 2*time.Second, 10*time.Millisecond)

	api.mu.Lock()
	api.home = homeConfig("kiosk/videos/next.mp4")
	api.mu.Unlock()
	api.events <- realtime.SSEMessage{Channel: realtime.ChannelKiosk, Event: realtime.SSEEventHomeChanged}

	require.Eventually(t, func() bool {
		st, ok := rec.last()
		return ok && st.VideoURL == "https://cdn/kiosk/videos/next.mp4"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
