package kioskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/pkg/httpx"
	"github.com/yungbote/kiosk-backend/internal/platform/envutil"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
	"github.com/yungbote/kiosk-backend/internal/services"
)

type Config struct {
	BaseURL    string
	Token      string
	MaxRetries int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// ConfigFromEnv reads KIOSK_API_URL, KIOSK_API_TOKEN, KIOSK_API_RETRIES and
// KIOSK_API_TIMEOUT_SECONDS.
func ConfigFromEnv() Config {
	return Config{
		BaseURL:    envutil.String("KIOSK_API_URL", "http://localhost:8080"),
		Token:      envutil.String("KIOSK_API_TOKEN", ""),
		MaxRetries: envutil.Int("KIOSK_API_RETRIES", 2),
		Timeout:    envutil.Seconds("KIOSK_API_TIMEOUT_SECONDS", 15*time.Second),
	}
}

// Client talks to the kiosk API: the public display endpoints plus the
// admin endpoints used by tooling.
type Client struct {
	log  *logger.Logger
	cfg  Config
	base *url.URL
	http *http.Client
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid KIOSK_API_URL %q", cfg.BaseURL)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{log: log.With("client", "KioskAPI"), cfg: cfg, base: base, http: hc}, nil
}

// WithToken returns a copy that authenticates admin calls.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.cfg.Token = token
	return &cp
}

// APIError is a non-2xx reply decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return "kiosk api: <nil error>"
	}
	if e.Code != "" {
		return fmt.Sprintf("kiosk api http %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("kiosk api http %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Tree returns the active playback tree.
func (c *Client) Tree(ctx context.Context) ([]*kiosk.Node, error) {
	var out struct {
		Tree []*kiosk.Node `json:"tree"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/playback/tree", nil, &out); err != nil {
		return nil, err
	}
	return out.Tree, nil
}

// Home returns nil when no home video is configured.
func (c *Client) Home(ctx context.Context) (*kiosk.HomeConfig, error) {
	var out struct {
		OK       bool            `json:"ok"`
		Video    *kiosk.MediaRef `json:"video"`
		Subtitle *kiosk.Blob     `json:"subtitle"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/playback/home", nil, &out); err != nil {
		return nil, err
	}
	if !out.OK || out.Video == nil {
		return nil, nil
	}
	return &kiosk.HomeConfig{Video: *out.Video, Subtitle: out.Subtitle}, nil
}

func (c *Client) QR(ctx context.Context) (*kiosk.QRConfig, error) {
	var out struct {
		QR *kiosk.QRConfig `json:"qr"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/playback/qr", nil, &out); err != nil {
		return nil, err
	}
	return out.QR, nil
}

// PlayingVVIP returns the VVIP marked as playing, or nil.
func (c *Client) PlayingVVIP(ctx context.Context) (*kiosk.VVIP, error) {
	var out struct {
		VVIP *kiosk.VVIP `json:"vvip"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/playback/vvip", nil, &out); err != nil {
		return nil, err
	}
	return out.VVIP, nil
}

func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", map[string]string{"password": password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) ListRoots(ctx context.Context) ([]*kiosk.Node, error) {
	var out struct {
		Nodes []*kiosk.Node `json:"nodes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/nodes", nil, &out); err != nil {
		return nil, err
	}
	return out.Nodes, nil
}

func (c *Client) CreateNode(ctx context.Context, in kiosk.NodeInput) (*kiosk.Node, error) {
	var out struct {
		Node *kiosk.Node `json:"node"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/nodes", in, &out); err != nil {
		return nil, err
	}
	return out.Node, nil
}

func (c *Client) ReplaceHome(ctx context.Context, in kiosk.HomeInput) (*kiosk.HomeConfig, error) {
	var out struct {
		Home *kiosk.HomeConfig `json:"home"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/home", in, &out); err != nil {
		return nil, err
	}
	return out.Home, nil
}

func (c *Client) StorageAudit(ctx context.Context) (*services.AuditReport, error) {
	var out services.AuditReport
	if err := c.do(ctx, http.MethodGet, "/api/admin/storage/audit", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubtitleURL points a subtitle key at the API's proxy so tracks load from
// the API origin.
func (c *Client) SubtitleURL(key string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/api/playback/subtitles/" + strings.TrimLeft(key, "/")
	return u.String()
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

// do retries transport failures, 408, 429 and 5xx with jittered backoff.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = raw
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.doOnce(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !httpx.IsRetryableError(err) || attempt >= c.cfg.MaxRetries {
			return err
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, httpx.Backoff(attempt, 250*time.Millisecond, 5*time.Second), 10*time.Second))
		c.log.Warn("Kiosk API request retrying",
			"method", method,
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
	}
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return resp, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, decodeAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeAPIError(status int, raw []byte) error {
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		return apiErr
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 512 {
		msg = msg[:512] + "..."
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	apiErr.Message = msg
	return apiErr
}
