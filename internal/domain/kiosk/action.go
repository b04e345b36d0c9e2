package kiosk

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/platform/apierr"
)

type ActionType string

const (
	ActionPDF       ActionType = "pdf"
	ActionImage     ActionType = "image"
	ActionVideo     ActionType = "video"
	ActionIframe    ActionType = "iframe"
	ActionSlideshow ActionType = "slideshow"
	ActionSlider    ActionType = "slider"
)

func (t ActionType) Valid() bool {
	switch t {
	case ActionPDF, ActionImage, ActionVideo, ActionIframe, ActionSlideshow, ActionSlider:
		return true
	default:
		return false
	}
}

// Single reports whether the variant carries one primary key/url.
func (t ActionType) Single() bool {
	switch t {
	case ActionPDF, ActionImage, ActionVideo, ActionIframe:
		return true
	default:
		return false
	}
}

const (
	DefaultActionWidth  = 85
	DefaultActionHeight = 95
	DefaultPopupX       = 50
	DefaultPopupY       = 50
)

// Action is the content a node reveals after its video. Type selects which of
// Key/URL/Subtitle/ExternalURL, Images or Slider is populated; Popup, Width and
// Height apply to every variant.
type Action struct {
	Type        ActionType   `json:"type"`
	Title       string       `json:"title,omitempty"`
	Key         string       `json:"key,omitempty"`
	URL         string       `json:"url,omitempty"`
	Subtitle    *Blob        `json:"subtitle,omitempty"`
	ExternalURL string       `json:"external_url,omitempty"`
	Images      []SlideImage `json:"images,omitempty"`
	Slider      *Slider      `json:"slider,omitempty"`
	Popup       *Popup       `json:"popup,omitempty"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
}

type SlideImage struct {
	ID  uuid.UUID `json:"id"`
	Key string    `json:"key"`
	URL string    `json:"url"`
}

type BackgroundKind string

const (
	BackgroundImage BackgroundKind = "image"
	BackgroundVideo BackgroundKind = "video"
)

type SliderBackground struct {
	Kind BackgroundKind `json:"kind"`
	Key  string         `json:"key"`
	URL  string         `json:"url"`
}

type Slider struct {
	Min        float64           `json:"min"`
	Max        float64           `json:"max"`
	Step       float64           `json:"step"`
	Background *SliderBackground `json:"background,omitempty"`
}

type Popup struct {
	Key string  `json:"key"`
	URL string  `json:"url"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

func (a *Action) UnmarshalJSON(data []byte) error {
	type plain Action
	p := plain{Width: DefaultActionWidth, Height: DefaultActionHeight}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Action(p)
	return nil
}

func (p *Popup) UnmarshalJSON(data []byte) error {
	type plain Popup
	v := plain{X: DefaultPopupX, Y: DefaultPopupY}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Popup(v)
	return nil
}

func (s *Slider) UnmarshalJSON(data []byte) error {
	type plain Slider
	v := plain{Min: 0, Max: 100, Step: 1}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Slider(v)
	return nil
}

// Normalize fills defaults and assigns ids to slideshow images that lack one.
func (a *Action) Normalize() {
	if a == nil {
		return
	}
	a.Type = ActionType(strings.ToLower(strings.TrimSpace(string(a.Type))))
	if a.Width == 0 {
		a.Width = DefaultActionWidth
	}
	if a.Height == 0 {
		a.Height = DefaultActionHeight
	}
	for i := range a.Images {
		if a.Images[i].ID == uuid.Nil {
			a.Images[i].ID = uuid.New()
		}
	}
}

func (a *Action) Validate() error {
	const op = "action.validate"
	if a == nil {
		return nil
	}
	if !a.Type.Valid() {
		return apierr.Validationf(op, "unrecognized action type %q", a.Type)
	}
	if a.Width < 1 || a.Width > 100 || a.Height < 1 || a.Height > 100 {
		return apierr.Validation(op, "action width and height must be between 1 and 100")
	}
	hasKey := strings.TrimSpace(a.Key) != ""

	switch {
	case a.Type.Single():
		if len(a.Images) > 0 || a.Slider != nil {
			return apierr.Validationf(op, "%s action cannot carry images or slider", a.Type)
		}
		if a.Type == ActionIframe {
			if !hasKey && strings.TrimSpace(a.ExternalURL) == "" {
				return apierr.Validation(op, "iframe action requires a key or external_url")
			}
		} else if !hasKey {
			return apierr.Validationf(op, "%s action requires a key", a.Type)
		}
		if a.Subtitle != nil && a.Type != ActionVideo {
			return apierr.Validation(op, "only video actions may carry a subtitle")
		}
	case a.Type == ActionSlideshow:
		if hasKey || a.Subtitle != nil || a.ExternalURL != "" || a.Slider != nil {
			return apierr.Validation(op, "slideshow action only carries images")
		}
		for _, img := range a.Images {
			if strings.TrimSpace(img.Key) == "" {
				return apierr.Validation(op, "slideshow image requires a key")
			}
		}
	case a.Type == ActionSlider:
		if hasKey || a.Subtitle != nil || a.ExternalURL != "" || len(a.Images) > 0 {
			return apierr.Validation(op, "slider action only carries slider settings")
		}
		if a.Slider == nil {
			return apierr.Validation(op, "slider action requires slider settings")
		}
		if a.Slider.Max <= a.Slider.Min {
			return apierr.Validation(op, "slider max must exceed min")
		}
		if a.Slider.Step <= 0 {
			return apierr.Validation(op, "slider step must be positive")
		}
		if bg := a.Slider.Background; bg != nil {
			if bg.Kind != BackgroundImage && bg.Kind != BackgroundVideo {
				return apierr.Validationf(op, "unrecognized slider background kind %q", bg.Kind)
			}
			if strings.TrimSpace(bg.Key) == "" {
				return apierr.Validation(op, "slider background requires a key")
			}
		}
	}
	if a.Popup != nil && strings.TrimSpace(a.Popup.Key) == "" {
		return apierr.Validation(op, "popup requires a key")
	}
	return nil
}

// PrimaryKey is the single media key of pdf/image/video/iframe actions.
func (a *Action) PrimaryKey() string {
	if a == nil || !a.Type.Single() {
		return ""
	}
	return strings.TrimSpace(a.Key)
}

// FindImage returns the index of the slideshow image with id, or -1.
func (a *Action) FindImage(id uuid.UUID) int {
	if a == nil {
		return -1
	}
	for i, img := range a.Images {
		if img.ID == id {
			return i
		}
	}
	return -1
}

func (a *Action) BlobKeys() []string {
	if a == nil {
		return nil
	}
	var out []string
	out = appendKey(out, a.Key)
	if a.Subtitle != nil {
		out = appendKey(out, a.Subtitle.Key)
	}
	for _, img := range a.Images {
		out = appendKey(out, img.Key)
	}
	if a.Slider != nil && a.Slider.Background != nil {
		out = appendKey(out, a.Slider.Background.Key)
	}
	if a.Popup != nil {
		out = appendKey(out, a.Popup.Key)
	}
	return out
}

func (a *Action) clone() *Action {
	if a == nil {
		return nil
	}
	c := *a
	if a.Subtitle != nil {
		s := *a.Subtitle
		c.Subtitle = &s
	}
	if a.Images != nil {
		c.Images = append([]SlideImage(nil), a.Images...)
	}
	if a.Slider != nil {
		s := *a.Slider
		if a.Slider.Background != nil {
			bg := *a.Slider.Background
			s.Background = &bg
		}
		c.Slider = &s
	}
	if a.Popup != nil {
		p := *a.Popup
		c.Popup = &p
	}
	return &c
}
