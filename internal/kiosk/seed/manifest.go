package seed

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
)

// Manifest is a content tree as written by hand in YAML. Media fields take
// storage keys; URLs are derived unless given explicitly.
type Manifest struct {
	Home  *yamlHome  `yaml:"home"`
	Nodes []yamlNode `yaml:"nodes"`
}

type yamlHome struct {
	Video    yamlMedia `yaml:"video"`
	Subtitle string    `yaml:"subtitle"`
}

type yamlMedia struct {
	Key      string  `yaml:"key"`
	URL      string  `yaml:"url"`
	Duration float64 `yaml:"duration"`
	Subtitle string  `yaml:"subtitle"`
}

// UnmarshalYAML accepts either a bare key or a mapping.
func (m *yamlMedia) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		m.Key = value.Value
		return nil
	}
	type plain yamlMedia
	return value.Decode((*plain)(m))
}

type yamlNode struct {
	Title    string      `yaml:"title"`
	X        *float64    `yaml:"x"`
	Y        *float64    `yaml:"y"`
	Video    *yamlMedia  `yaml:"video"`
	Action   *yamlAction `yaml:"action"`
	Children []yamlNode  `yaml:"children"`
}

type yamlAction struct {
	Type        string      `yaml:"type"`
	Title       string      `yaml:"title"`
	Key         string      `yaml:"key"`
	Subtitle    string      `yaml:"subtitle"`
	ExternalURL string      `yaml:"external_url"`
	Images      []string    `yaml:"images"`
	Slider      *yamlSlider `yaml:"slider"`
	Popup       *yamlPopup  `yaml:"popup"`
	Width       int         `yaml:"width"`
	Height      int         `yaml:"height"`
}

type yamlSlider struct {
	Min        *float64 `yaml:"min"`
	Max        *float64 `yaml:"max"`
	Step       *float64 `yaml:"step"`
	Background *struct {
		Kind string `yaml:"kind"`
		Key  string `yaml:"key"`
	} `yaml:"background"`
}

type yamlPopup struct {
	Key string   `yaml:"key"`
	X   *float64 `yaml:"x"`
	Y   *float64 `yaml:"y"`
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return &m, nil
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Count is the number of nodes the manifest will create.
func (m *Manifest) Count() int {
	var walk func([]yamlNode) int
	walk = func(nodes []yamlNode) int {
		n := len(nodes)
		for _, c := range nodes {
			n += walk(c.Children)
		}
		return n
	}
	return walk(m.Nodes)
}

// URLFunc derives a playable URL from a storage key.
type URLFunc func(key string) string

// BaseURL joins keys onto a public media base such as a CDN origin.
func BaseURL(base string) URLFunc {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return func(key string) string {
		if key == "" || base == "" {
			return ""
		}
		return base + "/" + strings.TrimLeft(key, "/")
	}
}

func (u URLFunc) blob(key string) *kiosk.Blob {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	return &kiosk.Blob{Key: key, URL: u(key)}
}

func (u URLFunc) media(m *yamlMedia) *kiosk.MediaRef {
	if m == nil || strings.TrimSpace(m.Key) == "" {
		return nil
	}
	url := m.URL
	if url == "" {
		url = u(m.Key)
	}
	return &kiosk.MediaRef{Key: m.Key, URL: url, Duration: m.Duration, Subtitle: u.blob(m.Subtitle)}
}

func (u URLFunc) homeInput(h *yamlHome) kiosk.HomeInput {
	in := kiosk.HomeInput{Subtitle: u.blob(h.Subtitle)}
	if v := u.media(&h.Video); v != nil {
		in.Video = *v
	}
	return in
}

func (u URLFunc) nodeInput(n yamlNode, parent *uuid.UUID, order int) kiosk.NodeInput {
	o := order
	return kiosk.NodeInput{
		Title:    n.Title,
		ParentID: parent,
		Order:    &o,
		Video:    u.media(n.Video),
		Action:   u.action(n.Action),
		X:        n.X,
		Y:        n.Y,
	}
}

func (u URLFunc) action(a *yamlAction) *kiosk.Action {
	if a == nil {
		return nil
	}
	out := &kiosk.Action{
		Type:        kiosk.ActionType(strings.ToLower(strings.TrimSpace(a.Type))),
		Title:       a.Title,
		Key:         a.Key,
		URL:         u(a.Key),
		Subtitle:    u.blob(a.Subtitle),
		ExternalURL: a.ExternalURL,
		Width:       a.Width,
		Height:      a.Height,
	}
	for _, key := range a.Images {
		out.Images = append(out.Images, kiosk.SlideImage{ID: uuid.New(), Key: key, URL: u(key)})
	}
	if a.Slider != nil {
		out.Slider = &kiosk.Slider{
			Min:  orDefault(a.Slider.Min, 0),
			Max:  orDefault(a.Slider.Max, 100),
			Step: orDefault(a.Slider.Step, 1),
		}
		if bg := a.Slider.Background; bg != nil {
			out.Slider.Background = &kiosk.SliderBackground{Kind: kiosk.BackgroundKind(bg.Kind), Key: bg.Key, URL: u(bg.Key)}
		}
	}
	if a.Popup != nil {
		out.Popup = &kiosk.Popup{
			Key: a.Popup.Key,
			URL: u(a.Popup.Key),
			X:   orDefault(a.Popup.X, kiosk.DefaultPopupX),
			Y:   orDefault(a.Popup.Y, kiosk.DefaultPopupY),
		}
	}
	return out
}
