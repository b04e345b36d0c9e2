package kiosk

import "strings"

// Blob is a stored object: the key is its identity, the url is derived from it.
type Blob struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (b *Blob) empty() bool {
	return b == nil || strings.TrimSpace(b.Key) == ""
}

// MediaRef points at a video (or other media) blob with an optional subtitle track.
type MediaRef struct {
	Key      string  `json:"key"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration,omitempty"`
	Subtitle *Blob   `json:"subtitle,omitempty"`
}

func (m *MediaRef) Present() bool {
	return m != nil && strings.TrimSpace(m.Key) != ""
}

func (m *MediaRef) BlobKeys() []string {
	if m == nil {
		return nil
	}
	var out []string
	out = appendKey(out, m.Key)
	if m.Subtitle != nil {
		out = appendKey(out, m.Subtitle.Key)
	}
	return out
}

func (m *MediaRef) clone() *MediaRef {
	if m == nil {
		return nil
	}
	c := *m
	if m.Subtitle != nil {
		s := *m.Subtitle
		c.Subtitle = &s
	}
	return &c
}

func appendKey(keys []string, key string) []string {
	key = strings.TrimSpace(key)
	if key == "" {
		return keys
	}
	return append(keys, key)
}

// KeyDiff returns the keys of before that are absent from after, in before's order.
func KeyDiff(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, k := range after {
		keep[k] = struct{}{}
	}
	seen := map[string]struct{}{}
	var out []string
	for _, k := range before {
		if _, ok := keep[k]; ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
