package playback

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/kiosk-backend/internal/domain/kiosk"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

const DefaultDwell = 5 * time.Second

type Phase string

const (
	PhaseHome       Phase = "home"
	PhaseBrowsing   Phase = "browsing"
	PhaseActionOpen Phase = "action_open"
	PhaseVVIP       Phase = "vvip_playing"
)

// State is what the display should show. Node, VVIP and Action point into
// the machine's current snapshot and must be treated as read-only.
type State struct {
	Seq         uint64        `json:"seq"`
	Phase       Phase         `json:"phase"`
	Node        *kiosk.Node   `json:"node,omitempty"`
	VVIP        *kiosk.VVIP   `json:"vvip,omitempty"`
	VideoURL    string        `json:"video_url"`
	SubtitleURL string        `json:"subtitle_url,omitempty"`
	Loop        bool          `json:"loop"`
	Hotspots    []*kiosk.Node `json:"hotspots"`
	CanGoBack   bool          `json:"can_go_back"`
	Action      *kiosk.Action `json:"action,omitempty"`
	SliderValue float64       `json:"slider_value"`
}

type Config struct {
	Log        *logger.Logger
	Clock      Clock
	Dwell      time.Duration
	IdleWindow time.Duration
}

// Machine is the kiosk playback state machine. Every input runs under one
// mutex; timer callbacks re-enter through the same lock.
type Machine struct {
	mu    sync.Mutex
	log   *logger.Logger
	clock Clock
	dwell time.Duration

	watchdog *Watchdog

	roots []*kiosk.Node
	index map[uuid.UUID]*kiosk.Node
	home  *kiosk.HomeConfig

	phase  Phase
	node   *kiosk.Node
	vvip   *kiosk.VVIP
	video  *visibleVideo
	slider float64

	dwellTimer Timer
	dwellSeq   uint64

	seq  uint64
	subs map[int]chan State
	next int
}

type visibleVideo struct {
	url      string
	subtitle string
}

func NewMachine(cfg Config) *Machine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = RealClock()
	}
	dwell := cfg.Dwell
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	m := &Machine{
		log:   log.With("component", "Machine"),
		clock: clock,
		dwell: dwell,
		index: map[uuid.UUID]*kiosk.Node{},
		phase: PhaseHome,
		subs:  map[int]chan State{},
	}
	m.watchdog = NewWatchdog(clock, cfg.IdleWindow, m.idleTimeout)
	return m
}

// Subscribe returns a channel that always holds the latest state. Slow
// readers skip intermediate states. The cancel func closes the channel.
func (m *Machine) Subscribe() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan State, 1)
	id := m.next
	m.next++
	m.subs[id] = ch
	ch <- m.snapshotLocked()
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Start arms the inactivity watchdog.
func (m *Machine) Start() { m.watchdog.Kick() }

// Stop disarms every timer. Inputs after Stop are still applied.
func (m *Machine) Stop() {
	m.watchdog.Stop()
	m.mu.Lock()
	m.cancelDwellLocked()
	m.mu.Unlock()
}

// SetTree installs a new assembled tree. A current node that disappeared
// sends the display home; otherwise it is rebound to the fresh copy.
func (m *Machine) SetTree(roots []*kiosk.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots = roots
	m.index = map[uuid.UUID]*kiosk.Node{}
	var walk func([]*kiosk.Node)
	walk = func(nodes []*kiosk.Node) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if _, seen := m.index[n.ID]; seen {
				continue
			}
			m.index[n.ID] = n
			walk(n.Children)
		}
	}
	walk(roots)

	if m.node != nil {
		fresh, ok := m.index[m.node.ID]
		if !ok {
			m.log.Info("current node left the tree; returning home", "node_id", m.node.ID)
			m.goHomeLocked()
			m.emitLocked()
			return
		}
		m.node = fresh
	}
	m.emitLocked()
}

func (m *Machine) SetHome(h *kiosk.HomeConfig) {
	m.watchdog.Kick()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.home = h
	if m.phase == PhaseHome {
		m.video = m.homeVideoLocked()
	}
	m.emitLocked()
}

func (m *Machine) Activity() { m.watchdog.Kick() }

func (m *Machine) Tap(id uuid.UUID) {
	m.watchdog.Kick()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseHome && m.phase != PhaseBrowsing {
		return
	}
	target := m.hotspotLocked(id)
	if target == nil {
		m.log.Debug("tap on a node that is not a visible hotspot", "node_id", id, "phase", m.phase)
		return
	}
	m.cancelDwellLocked()
	if target.Video.Present() {
		m.video = nodeVideo(target.Video)
	} else if m.video == nil {
		m.video = m.homeVideoLocked()
	}
	if !target.Video.Present() && target.Action != nil && target.Action.Type == kiosk.ActionSlider {
		m.openActionLocked(target)
		m.emitLocked()
		return
	}
	m.phase = PhaseBrowsing
	m.node = target
	if target.Video.Present() {
		m.armDwellLocked()
	}
	m.emitLocked()
}

func (m *Machine) Back() {
	m.watchdog.Kick()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseBrowsing && m.phase != PhaseActionOpen {
		return
	}
	m.cancelDwellLocked()
	parent := m.findParentLocked(m.node.ID)
	if parent == nil {
		m.goHomeLocked()
		m.emitLocked()
		return
	}
	m.phase = PhaseBrowsing
	m.node = parent
	switch {
	case parent.Video.Present() && (m.video == nil || m.video.url != parent.Video.URL):
		m.video = nodeVideo(parent.Video)
		m.armDwellLocked()
	case parent.Video.Present():
		// Same video keeps playing untouched.
	default:
		m.video = m.homeVideoLocked()
	}
	m.emitLocked()
}

func (m *Machine) Close() {
	m.watchdog.Kick()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseActionOpen {
		return
	}
	m.goHomeLocked()
	m.emitLocked()
}

func (m *Machine) GoHome() {
	m.watchdog.Kick()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseHome || m.phase == PhaseVVIP {
		return
	}
	m.goHomeLocked()
	m.emitLocked()
}

// VideoStarted re-arms the dwell for the current node.
func (m *Machine) VideoStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseBrowsing || m.node == nil {
		return
	}
	m.armDwellLocked()
}

// Slide moves the slider of an open slider action, clamped to its range.
func (m *Machine) Slide(v float64) {
	m.watchdog.Kick()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseActionOpen || m.node.Action == nil || m.node.Action.Slider == nil {
		return
	}
	s := m.node.Action.Slider
	v = min(max(v, s.Min), s.Max)
	if v == m.slider {
		return
	}
	m.slider = v
	m.emitLocked()
}

// ObserveVVIP applies a poll result. A VVIP counts as new when its id or
// video url differs from the one playing.
func (m *Machine) ObserveVVIP(v *kiosk.VVIP) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v == nil {
		if m.phase == PhaseVVIP {
			m.goHomeLocked()
			m.emitLocked()
		}
		return
	}
	if m.phase == PhaseVVIP && m.vvip != nil && m.vvip.ID == v.ID && m.vvip.Video.URL == v.Video.URL {
		return
	}
	m.cancelDwellLocked()
	m.phase = PhaseVVIP
	m.node = nil
	m.vvip = v
	m.slider = 0
	m.video = nodeVideo(&v.Video)
	m.emitLocked()
}

func (m *Machine) PollFailed(err error) {
	m.log.Warn("vvip poll failed", "error", err)
}

func (m *Machine) idleTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseHome || m.phase == PhaseVVIP {
		return
	}
	m.log.Info("inactivity timeout; returning home", "phase", m.phase)
	m.goHomeLocked()
	m.emitLocked()
}

func (m *Machine) goHomeLocked() {
	m.cancelDwellLocked()
	m.phase = PhaseHome
	m.node = nil
	m.vvip = nil
	m.slider = 0
	m.video = m.homeVideoLocked()
}

func (m *Machine) openActionLocked(n *kiosk.Node) {
	m.phase = PhaseActionOpen
	m.node = n
	m.slider = 0
	if n.Action != nil && n.Action.Slider != nil {
		m.slider = n.Action.Slider.Min
	}
}

func (m *Machine) armDwellLocked() {
	m.cancelDwellLocked()
	if m.node == nil || m.node.Action == nil {
		return
	}
	seq := m.dwellSeq
	id := m.node.ID
	m.dwellTimer = m.clock.AfterFunc(m.dwell, func() { m.dwellFired(seq, id) })
}

func (m *Machine) cancelDwellLocked() {
	m.dwellSeq++
	if m.dwellTimer != nil {
		m.dwellTimer.Stop()
		m.dwellTimer = nil
	}
}

func (m *Machine) dwellFired(seq uint64, id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.dwellSeq || m.phase != PhaseBrowsing || m.node == nil || m.node.ID != id {
		return
	}
	m.dwellTimer = nil
	m.dwellSeq++
	m.openActionLocked(m.node)
	m.emitLocked()
}

func (m *Machine) hotspotLocked(id uuid.UUID) *kiosk.Node {
	for _, n := range m.hotspotsLocked() {
		if n != nil && n.ID == id {
			return n
		}
	}
	return nil
}

func (m *Machine) hotspotsLocked() []*kiosk.Node {
	switch m.phase {
	case PhaseHome:
		return m.roots
	case PhaseBrowsing:
		if m.node != nil {
			return m.node.Children
		}
	}
	return nil
}

// findParentLocked walks the tree depth-first for the node listing id as a
// child, by assembled children or by children_ids.
func (m *Machine) findParentLocked(id uuid.UUID) *kiosk.Node {
	var walk func([]*kiosk.Node, map[uuid.UUID]bool) *kiosk.Node
	walk = func(nodes []*kiosk.Node, seen map[uuid.UUID]bool) *kiosk.Node {
		for _, n := range nodes {
			if n == nil || seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			if n.HasChild(id) {
				return n
			}
			if p := walk(n.Children, seen); p != nil {
				return p
			}
		}
		return nil
	}
	return walk(m.roots, map[uuid.UUID]bool{})
}

func (m *Machine) homeVideoLocked() *visibleVideo {
	if m.home == nil || !m.home.Video.Present() {
		return nil
	}
	v := nodeVideo(&m.home.Video)
	if m.home.Subtitle != nil && m.home.Subtitle.URL != "" {
		v.subtitle = m.home.Subtitle.URL
	}
	return v
}

func nodeVideo(ref *kiosk.MediaRef) *visibleVideo {
	v := &visibleVideo{url: ref.URL}
	if ref.Subtitle != nil {
		v.subtitle = ref.Subtitle.URL
	}
	return v
}

func (m *Machine) snapshotLocked() State {
	s := State{
		Seq:         m.seq,
		Phase:       m.phase,
		Node:        m.node,
		VVIP:        m.vvip,
		Loop:        m.phase == PhaseHome,
		Hotspots:    m.hotspotsLocked(),
		CanGoBack:   m.phase == PhaseBrowsing || m.phase == PhaseActionOpen,
		SliderValue: m.slider,
	}
	if m.video != nil {
		s.VideoURL = m.video.url
		s.SubtitleURL = m.video.subtitle
	}
	if m.phase == PhaseActionOpen && m.node != nil {
		s.Action = m.node.Action
	}
	return s
}

func (m *Machine) emitLocked() {
	m.seq++
	s := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
