package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
)

// Minimal Prometheus text exposition. Series are written in label order so
// scrapes are stable.

type family struct {
	name       string
	help       string
	kind       string
	labelNames []string
	mu         sync.RWMutex
	values     map[string]float64
}

func newFamily(kind, name, help string, labels []string) *family {
	return &family{name: name, help: help, kind: kind, labelNames: labels, values: map[string]float64{}}
}

func (f *family) add(v float64, set bool, values ...string) {
	if f == nil {
		return
	}
	lbl := labelString(f.labelNames, values)
	f.mu.Lock()
	if set {
		f.values[lbl] = v
	} else {
		f.values[lbl] += v
	}
	f.mu.Unlock()
}

func (f *family) get(values ...string) float64 {
	if f == nil {
		return 0
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[labelString(f.labelNames, values)]
}

func (f *family) WritePrometheus(w io.Writer) error {
	if f == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, f.kind); err != nil {
		return err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, k := range sortedKeys(f.values) {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", f.name, k, f.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type CounterVec struct{ f *family }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{f: newFamily("counter", name, help, labels)}
}

func (c *CounterVec) Inc(values ...string)            { c.Add(1, values...) }
func (c *CounterVec) Add(v float64, values ...string) { c.family().add(v, false, values...) }
func (c *CounterVec) Value(values ...string) float64  { return c.family().get(values...) }
func (c *CounterVec) WritePrometheus(w io.Writer) error {
	return c.family().WritePrometheus(w)
}

func (c *CounterVec) family() *family {
	if c == nil {
		return nil
	}
	return c.f
}

type GaugeVec struct{ f *family }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &GaugeVec{f: newFamily("gauge", name, help, labels)}
}

func (g *GaugeVec) Set(v float64, values ...string) { g.family().add(v, true, values...) }
func (g *GaugeVec) Add(v float64, values ...string) { g.family().add(v, false, values...) }
func (g *GaugeVec) Value(values ...string) float64  { return g.family().get(values...) }
func (g *GaugeVec) WritePrometheus(w io.Writer) error {
	return g.family().WritePrometheus(w)
}

func (g *GaugeVec) family() *family {
	if g == nil {
		return nil
	}
	return g.f
}

// Counter and Gauge are the unlabeled forms.
type Counter struct{ v *CounterVec }

func NewCounter(name, help string) *Counter { return &Counter{v: NewCounterVec(name, help, nil)} }

func (c *Counter) Inc()                              { c.vec().Inc() }
func (c *Counter) Add(v float64)                     { c.vec().Add(v) }
func (c *Counter) Value() float64                    { return c.vec().Value() }
func (c *Counter) WritePrometheus(w io.Writer) error { return c.vec().WritePrometheus(w) }

func (c *Counter) vec() *CounterVec {
	if c == nil {
		return nil
	}
	return c.v
}

type Gauge struct{ v *GaugeVec }

func NewGauge(name, help string) *Gauge { return &Gauge{v: NewGaugeVec(name, help, nil)} }

func (g *Gauge) Set(v float64)                     { g.vec().Set(v) }
func (g *Gauge) Inc()                              { g.vec().Add(1) }
func (g *Gauge) Dec()                              { g.vec().Add(-1) }
func (g *Gauge) Value() float64                    { return g.vec().Value() }
func (g *Gauge) WritePrometheus(w io.Writer) error { return g.vec().WritePrometheus(w) }

func (g *Gauge) vec() *GaugeVec {
	if g == nil {
		return nil
	}
	return g.v
}

type HistogramVec struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64
	mu         sync.RWMutex
	values     map[string]*histogram
}

type histogram struct {
	counts []uint64 // cumulative; last slot is +Inf
	sum    float64
	total  uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	}
	return &HistogramVec{name: name, help: help, labelNames: labels, buckets: buckets, values: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	lbl := labelString(h.labelNames, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist, ok := h.values[lbl]
	if !ok {
		hist = &histogram{counts: make([]uint64, len(h.buckets)+1)}
		h.values[lbl] = hist
	}
	hist.sum += v
	hist.total++
	for i, b := range h.buckets {
		if v <= b {
			hist.counts[i]++
		}
	}
	hist.counts[len(hist.counts)-1]++
}

func (h *HistogramVec) Count(values ...string) uint64 {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if hist, ok := h.values[labelString(h.labelNames, values)]; ok {
		return hist.total
	}
	return 0
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, k := range sortedKeys(h.values) {
		v := h.values[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, fmt.Sprintf("%g", b)), v.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, "+Inf"), v.counts[len(v.counts)-1]); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_sum%s %g\n%s_count%s %d\n", h.name, k, v.sum, h.name, k, v.total); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("{")
	for i, name := range names {
		if i > 0 {
			b.WriteString(",")
		}
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		fmt.Fprintf(&b, "%s=\"%s\"", name, escapeLabel(val))
	}
	b.WriteString("}")
	return b.String()
}

func escapeLabel(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(v)
}

func withLe(labels string, le string) string {
	le = escapeLabel(le)
	if labels == "" || labels == "{}" {
		return `{le="` + le + `"}`
	}
	return strings.TrimSuffix(labels, "}") + `,le="` + le + `"}`
}
