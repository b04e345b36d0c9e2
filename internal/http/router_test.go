package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/kiosk-backend/internal/data/repos"
	"github.com/yungbote/kiosk-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/kiosk-backend/internal/http/handlers"
	httpMW "github.com/yungbote/kiosk-backend/internal/http/middleware"
	"github.com/yungbote/kiosk-backend/internal/platform/dbctx"
	"github.com/yungbote/kiosk-backend/internal/platform/gcp"
	"github.com/yungbote/kiosk-backend/internal/realtime"
	"github.com/yungbote/kiosk-backend/internal/services"
)

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memBlobs) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = raw
	return m.PublicURL(key), nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memBlobs) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.objects[key]
	if !ok {
		return nil, gcp.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (m *memBlobs) SignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (m *memBlobs) ListKeys(context.Context, string) ([]string, error) { return nil, nil }

func (m *memBlobs) PublicURL(key string) string { return "https://cdn.example/" + key }

const adminPassword = "kiosk-admin"

type testServer struct {
	engine *gin.Engine
	blobs  *memBlobs
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)

	blobs := &memBlobs{objects: map[string][]byte{}}
	nodeRepo := repos.NewNodeRepo(db, log)
	vvipRepo := repos.NewVVIPRepo(db, log)
	homeRepo := repos.NewHomeRepo(db, log)
	qrRepo := repos.NewQRRepo(db, log)

	hub := realtime.NewSSEHub(log)
	notify := services.NewKioskNotifier(&services.HubEmitter{Hub: hub})
	media := services.NewMediaLifecycle(log, blobs)
	tree := services.NewTreeAssembler(log, nodeRepo, nil)
	nodes := services.NewNodeService(log, dbctx.NewGormTxRunner(db), nodeRepo, media, tree, notify)
	vvips := services.NewVVIPService(log, vvipRepo, media, notify)
	home := services.NewHomeService(log, homeRepo, media, notify)
	qr := services.NewQRService(log, qrRepo, media, notify)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	auth := services.NewAdminAuth(log, "router-test-secret", string(hash), time.Hour)

	engine := NewRouter(RouterConfig{
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, auth),
		HealthHandler:   httpH.NewHealthHandler(),
		PlaybackHandler: httpH.NewPlaybackHandler(tree, home, qr, vvips, services.NewSubtitleService(log, blobs)),
		RealtimeHandler: httpH.NewRealtimeHandler(log, hub),
		AdminHandler:    httpH.NewAdminHandler(auth, services.NewStorageAudit(log, blobs, "kiosk", nodeRepo, vvipRepo, homeRepo, qrRepo)),
		NodeHandler:     httpH.NewNodeHandler(nodes),
		VVIPHandler:     httpH.NewVVIPHandler(vvips),
		HomeHandler:     httpH.NewHomeHandler(home),
		QRHandler:       httpH.NewQRHandler(qr),
		UploadHandler:   httpH.NewUploadHandler(services.NewUploadService(log, blobs, "kiosk", time.Minute)),
	})
	ts := &testServer{engine: engine, blobs: blobs}

	rec := ts.do(t, http.MethodPost, "/api/admin/login", map[string]any{"password": adminPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	decode(t, rec, &login)
	ts.token = login.Token
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if s, ok := body.(string); ok {
		r = strings.NewReader(s)
	} else if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

type nodeEnvelope struct {
	Node struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Children []struct {
			Title string `json:"title"`
		} `json:"children"`
		Action *struct {
			Type  string `json:"type"`
			Width int    `json:"width"`
		} `json:"action"`
	} `json:"node"`
}

func TestHealthAndAuthGate(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}

	token := ts.token
	ts.token = ""
	rec = ts.do(t, http.MethodGet, "/api/nodes", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: want=401 got=%d", rec.Code)
	}
	ts.token = "garbage"
	if rec = ts.do(t, http.MethodGet, "/api/nodes", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: want=401 got=%d", rec.Code)
	}
	ts.token = ""
	if rec = ts.do(t, http.MethodGet, "/api/playback/tree", nil); rec.Code != http.StatusOK {
		t.Fatalf("public tree: want=200 got=%d", rec.Code)
	}
	if rec = ts.do(t, http.MethodPost, "/api/admin/login", map[string]any{"password": "nope"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: want=401 got=%d", rec.Code)
	}
	ts.token = token
	if rec = ts.do(t, http.MethodGet, "/api/nodes?token="+token, nil); rec.Code != http.StatusOK {
		t.Fatalf("query token: want=200 got=%d", rec.Code)
	}
}

func TestNodeRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/nodes", map[string]any{"title": "Welcome", "video": map[string]any{"key": "kiosk/videos/root.mp4"}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create root: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var root nodeEnvelope
	decode(t, rec, &root)

	rec = ts.do(t, http.MethodPost, "/api/nodes", map[string]any{"title": "Map", "parent_id": root.Node.ID, "video": map[string]any{"key": "v.mp4"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("child without action: want=400 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"code":"validation"`) {
		t.Fatalf("error envelope: %s", rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/api/nodes", map[string]any{
		"title":     "Map",
		"parent_id": root.Node.ID,
		"video":     map[string]any{"key": "kiosk/videos/map.mp4"},
		"action":    map[string]any{"type": "image", "key": "kiosk/images/map.png"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var child nodeEnvelope
	decode(t, rec, &child)
	if child.Node.Action == nil || child.Node.Action.Width != 85 {
		t.Fatalf("action defaults: got=%+v", child.Node.Action)
	}

	rec = ts.do(t, http.MethodGet, "/api/nodes/"+root.Node.ID, nil)
	var got nodeEnvelope
	decode(t, rec, &got)
	if len(got.Node.Children) != 1 || got.Node.Children[0].Title != "Map" {
		t.Fatalf("subtree: %s", rec.Body.String())
	}

	if rec = ts.do(t, http.MethodPut, "/api/nodes/"+child.Node.ID, `{"action": null}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("null action on child: want=400 got=%d", rec.Code)
	}
	if rec = ts.do(t, http.MethodPut, "/api/nodes/"+child.Node.ID, `{"title": "City map"}`); rec.Code != http.StatusOK {
		t.Fatalf("rename: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec = ts.do(t, http.MethodGet, "/api/nodes/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: want=400 got=%d", rec.Code)
	}
	if rec = ts.do(t, http.MethodDelete, "/api/nodes/"+child.Node.ID, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete: want=200 got=%d", rec.Code)
	}
	if rec = ts.do(t, http.MethodGet, "/api/nodes/"+child.Node.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted: want=404 got=%d", rec.Code)
	}
	if rec = ts.do(t, http.MethodPatch, "/api/nodes/"+root.Node.ID+"/slideshow-images", map[string]any{"image_id": child.Node.ID}); rec.Code != http.StatusBadRequest {
		t.Fatalf("not a slideshow: want=400 got=%d", rec.Code)
	}
}

func TestPlaybackRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/playback/home", nil)
	if !strings.Contains(rec.Body.String(), `"ok":false`) {
		t.Fatalf("unset home: %s", rec.Body.String())
	}
	if rec = ts.do(t, http.MethodPut, "/api/home", map[string]any{"video": map[string]any{"key": "kiosk/videos/home.mp4", "url": "u"}}); rec.Code != http.StatusOK {
		t.Fatalf("put home: %d %s", rec.Code, rec.Body.String())
	}
	rec = ts.do(t, http.MethodGet, "/api/playback/home", nil)
	if !strings.Contains(rec.Body.String(), `"ok":true`) || !strings.Contains(rec.Body.String(), "home.mp4") {
		t.Fatalf("home: %s", rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/api/playback/vvip", nil)
	if strings.TrimSpace(rec.Body.String()) != `{"vvip":null}` {
		t.Fatalf("no vvip: %s", rec.Body.String())
	}
	if rec = ts.do(t, http.MethodPut, "/api/qr", map[string]any{"x": 10}); rec.Code != http.StatusNotFound {
		t.Fatalf("qr patch without qr: want=404 got=%d", rec.Code)
	}

	ts.blobs.objects["kiosk/subtitles/1-a.vtt"] = []byte("WEBVTT")
	rec = ts.do(t, http.MethodGet, "/api/playback/subtitles/kiosk/subtitles/1-a.vtt", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "WEBVTT" {
		t.Fatalf("subtitle: %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vtt") {
		t.Fatalf("subtitle content-type: %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Fatalf("subtitle cache-control: %q", cc)
	}
	if rec = ts.do(t, http.MethodGet, "/api/playback/subtitles/kiosk/missing.vtt", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing subtitle: want=404 got=%d", rec.Code)
	}
}

func TestUploadRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/uploads/presign", map[string]any{"file_name": "q.png", "file_type": "image/png", "folder": "qrcodes"})
	if rec.Code != http.StatusOK {
		t.Fatalf("presign: %d %s", rec.Code, rec.Body.String())
	}
	var pre services.PresignResult
	decode(t, rec, &pre)
	if !strings.HasPrefix(pre.Key, "kiosk/qrcodes/") || !strings.HasSuffix(pre.Key, "-q.png") {
		t.Fatalf("presign key: %q", pre.Key)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("folder", "home")
	fw, err := mw.CreateFormFile("file", "captions.vtt")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write([]byte("WEBVTT"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.token)
	out := httptest.NewRecorder()
	ts.engine.ServeHTTP(out, req)
	if out.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", out.Code, out.Body.String())
	}
	var blob struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	decode(t, out, &blob)
	if !strings.HasPrefix(blob.Key, "kiosk/subtitles/") || string(ts.blobs.objects[blob.Key]) != "WEBVTT" {
		t.Fatalf("upload stored: %+v", blob)
	}
}
