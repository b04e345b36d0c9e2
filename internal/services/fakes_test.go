package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/data/repos"
	"github.com/yungbote/kiosk-backend/internal/data/repos/testutil"
	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
	"github.com/yungbote/kiosk-backend/internal/platform/gcp"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	failKeys  map[string]bool
	presignOK bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}, failKeys: map[string]bool{}, presignOK: true}
}

func (f *fakeBlobStore) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = raw
	return f.PublicURL(key), nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[key] {
		return errors.New("storage unreachable")
	}
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.objects[key]
	if !ok {
		return nil, gcp.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *fakeBlobStore) SignedUploadURL(_ context.Context, key, _ string, ttl time.Duration) (string, error) {
	if !f.presignOK {
		return "", gcp.ErrPresignNotSupported
	}
	return "https://signed.example/" + key + "?X-Goog-Expires=" + ttl.String(), nil
}

func (f *fakeBlobStore) ListKeys(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeBlobStore) PublicURL(key string) string { return "https://cdn.example/" + key }

func (f *fakeBlobStore) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.deleted)
	slices.Sort(out)
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) add(e string) {
	n.mu.Lock()
	n.events = append(n.events, e)
	n.mu.Unlock()
}

func (n *recordingNotifier) TreeChanged(context.Context, uuid.UUID)       { n.add("tree") }
func (n *recordingNotifier) HomeChanged(context.Context)                  { n.add("home") }
func (n *recordingNotifier) QRChanged(context.Context)                    { n.add("qr") }
func (n *recordingNotifier) VVIPChanged(context.Context, uuid.UUID, bool) { n.add("vvip") }

type harness struct {
	blobs  *fakeBlobStore
	notify *recordingNotifier
	nodes  repos.NodeRepo
	vvipR  repos.VVIPRepo
	homeR  repos.HomeRepo
	qrR    repos.QRRepo
	tree   TreeAssembler
	node   NodeService
	vvip   VVIPService
	home   HomeService
	qr     QRService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{
		blobs:  newFakeBlobStore(),
		notify: &recordingNotifier{},
		nodes:  repos.NewNodeRepo(db, log),
		vvipR:  repos.NewVVIPRepo(db, log),
		homeR:  repos.NewHomeRepo(db, log),
		qrR:    repos.NewQRRepo(db, log),
	}
	media := NewMediaLifecycle(log, h.blobs)
	h.tree = NewTreeAssembler(log, h.nodes, nil)
	h.node = NewNodeService(log, dbctx.NewGormTxRunner(db), h.nodes, media, h.tree, h.notify)
	h.vvip = NewVVIPService(log, h.vvipR, media, h.notify)
	h.home = NewHomeService(log, h.homeR, media, h.notify)
	h.qr = NewQRService(log, h.qrR, media, h.notify)
	return h
}

func newHarnessLogger(t *testing.T) *logger.Logger { return testutil.Logger(t) }

func dbctxFor(ctx context.Context) dbctx.Context { return dbctx.Context{Ctx: ctx} }
