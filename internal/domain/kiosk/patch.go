package kiosk

import (
	"strings"

	"github.com/yungbote/kiosk-backend/internal/pkg/patch"
)

// NodePatch is a partial node update. parent_id is deliberately absent:
// nodes cannot be reparented.
type NodePatch struct {
	Title    patch.Field[string]      `json:"title"`
	Order    patch.Field[int]         `json:"order"`
	X        patch.Field[float64]     `json:"x"`
	Y        patch.Field[float64]     `json:"y"`
	IsActive patch.Field[bool]        `json:"is_active"`
	Video    patch.Field[MediaRef]    `json:"video"`
	Action   patch.Field[ActionPatch] `json:"action"`
}

// ActionPatch overlays an existing action one level deep.
type ActionPatch struct {
	Type        patch.Field[ActionType]   `json:"type"`
	Title       patch.Field[string]       `json:"title"`
	Key         patch.Field[string]       `json:"key"`
	URL         patch.Field[string]       `json:"url"`
	Subtitle    patch.Field[Blob]         `json:"subtitle"`
	ExternalURL patch.Field[string]       `json:"external_url"`
	Images      patch.Field[[]SlideImage] `json:"images"`
	Slider      patch.Field[Slider]       `json:"slider"`
	Popup       patch.Field[PopupPatch]   `json:"popup"`
	Width       patch.Field[int]          `json:"width"`
	Height      patch.Field[int]          `json:"height"`
}

// PopupPatch lets an admin move a popup without re-uploading it.
type PopupPatch struct {
	Key patch.Field[string]  `json:"key"`
	URL patch.Field[string]  `json:"url"`
	X   patch.Field[float64] `json:"x"`
	Y   patch.Field[float64] `json:"y"`
}

// Apply returns a patched copy of old; old is not modified.
func (p NodePatch) Apply(old *Node) *Node {
	n := old.Clone()
	n.Title = strings.TrimSpace(p.Title.Apply(n.Title))
	n.Order = p.Order.Apply(n.Order)
	n.X = p.X.Apply(n.X)
	n.Y = p.Y.Apply(n.Y)
	n.IsActive = p.IsActive.Apply(n.IsActive)
	n.Video = patch.ApplyPtr(p.Video, n.Video)

	switch p.Action.State() {
	case patch.Unset:
		n.Action = nil
	case patch.Set:
		ap, _ := p.Action.Value()
		n.Action = ap.Apply(n.Action)
	}
	return n
}

// Apply overlays the patch on old. Switching to a different type keeps only
// the variant-independent fields (title, popup, size) of the old action.
func (p ActionPatch) Apply(old *Action) *Action {
	var a *Action
	switch {
	case old == nil:
		a = &Action{}
	case p.Type.IsSet():
		t, _ := p.Type.Value()
		if t != old.Type {
			a = &Action{
				Title:  old.Title,
				Popup:  old.clone().Popup,
				Width:  old.Width,
				Height: old.Height,
			}
		} else {
			a = old.clone()
		}
	default:
		a = old.clone()
	}

	a.Type = p.Type.Apply(a.Type)
	a.Title = p.Title.Apply(a.Title)
	a.Key = p.Key.Apply(a.Key)
	a.URL = p.URL.Apply(a.URL)
	a.Subtitle = patch.ApplyPtr(p.Subtitle, a.Subtitle)
	a.ExternalURL = p.ExternalURL.Apply(a.ExternalURL)
	if imgs, ok := p.Images.Value(); ok {
		a.Images = append([]SlideImage(nil), imgs...)
	} else if p.Images.IsUnset() {
		a.Images = nil
	}
	a.Slider = patch.ApplyPtr(p.Slider, a.Slider)
	a.Width = p.Width.Apply(a.Width)
	a.Height = p.Height.Apply(a.Height)

	switch p.Popup.State() {
	case patch.Unset:
		a.Popup = nil
	case patch.Set:
		pp, _ := p.Popup.Value()
		a.Popup = pp.Apply(a.Popup)
	}
	a.Normalize()
	return a
}

func (p PopupPatch) Apply(old *Popup) *Popup {
	out := Popup{X: DefaultPopupX, Y: DefaultPopupY}
	if old != nil {
		out = *old
	}
	out.Key = p.Key.Apply(out.Key)
	out.URL = p.URL.Apply(out.URL)
	out.X = p.X.Apply(out.X)
	out.Y = p.Y.Apply(out.Y)
	return &out
}
