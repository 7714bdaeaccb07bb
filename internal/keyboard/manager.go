package keyboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/keybridge/internal/editor"
	"github.com/dshills/keybridge/internal/expand"
	"github.com/dshills/keybridge/internal/input/key"
	"github.com/dshills/keybridge/internal/suggest"
	"github.com/dshills/keybridge/internal/textproc"
)

// Config holds the dispatcher tunables. Apply swaps a whole snapshot, so a
// live config reload never tears a keystroke.
type Config struct {
	// AutoCommitConfidence gates automatic correction commits. Candidates
	// at or below it are never applied without explicit selection.
	AutoCommitConfidence float64

	// DoubleSpacePeriod turns the second space of a quick double tap into
	// ". ".
	DoubleSpacePeriod bool

	// DoubleTapWindow bounds both the double-space period and the
	// double-tap caps-lock promotion.
	DoubleTapWindow time.Duration

	// AutoCapitalize arms shifted-automatic at sentence starts.
	AutoCapitalize bool

	// ShiftPolicy selects the shift key behavior.
	ShiftPolicy ShiftPolicy

	// Locale tags words saved to the user dictionary.
	Locale string
}

// DefaultConfig mirrors the stock keyboard behavior.
func DefaultConfig() Config {
	return Config{
		AutoCommitConfidence: 0.9,
		DoubleSpacePeriod:    true,
		DoubleTapWindow:      300 * time.Millisecond,
		AutoCapitalize:       true,
		ShiftPolicy:          ShiftPolicyDoubleTap,
		Locale:               "en",
	}
}

// PanelListener hears panel-toggle keys. The rendering layer owns the
// panels; the manager only tracks and reports the toggle.
type PanelListener func(panel key.Key, open bool)

// Manager turns key events into editor operations: it resolves each event
// through the keymap for the active layout mode, runs the commit pipeline
// (expansion, auto-commit gate, autosave, double-space period), and keeps
// the shift state machine fed.
//
// One Manager drives one editor.Instance. HandleEvent is called from the
// dispatch goroutine; HandleContent arrives from whatever goroutine delivers
// host echoes and touches only the internally synchronized shift machine.
type Manager struct {
	mu     sync.Mutex
	ed     *editor.Instance
	keymap *Keymap
	shift  *ShiftMachine
	mode   Mode
	cfg    Config

	provider suggest.Provider
	autosave *Autosaver
	expander *expand.Expander
	onPanel  PanelListener
	notify   editor.NoticeFunc

	panels    map[key.Key]bool
	lastSpace time.Time
	navBurst  bool
	now       func() time.Time
}

// NewManager wires a dispatcher over the editor with the default keymap and
// config. Collaborators attach through the setters before events flow.
func NewManager(ed *editor.Instance) *Manager {
	cfg := DefaultConfig()
	return &Manager{
		ed:     ed,
		keymap: DefaultKeymap(),
		shift:  NewShiftMachine(cfg.ShiftPolicy, cfg.DoubleTapWindow),
		cfg:    cfg,
		panels: make(map[key.Key]bool),
		now:    time.Now,
	}
}

// SetProvider wires the suggestion provider queried on word-terminating
// keys.
func (m *Manager) SetProvider(p suggest.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider = p
}

// SetAutosaver wires the background word autosaver.
func (m *Manager) SetAutosaver(a *Autosaver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autosave = a
}

// SetExpander wires the optional text expansion hook.
func (m *Manager) SetExpander(e *expand.Expander) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expander = e
}

// SetPanelListener wires the sink for panel toggles.
func (m *Manager) SetPanelListener(fn PanelListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPanel = fn
}

// SetNotice wires the user-visible notice sink.
func (m *Manager) SetNotice(fn editor.NoticeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = fn
}

// SetKeymap swaps the key bindings.
func (m *Manager) SetKeymap(km *Keymap) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if km != nil {
		m.keymap = km
	}
}

// Apply swaps the tunables. Safe during typing.
func (m *Manager) Apply(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	m.shift.SetPolicy(cfg.ShiftPolicy)
	m.shift.SetWindow(cfg.DoubleTapWindow)
	m.shift.SetAutoCapitalize(cfg.AutoCapitalize)
}

// Mode returns the active layout page.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// ShiftState returns the capitalization state.
func (m *Manager) ShiftState() ShiftState {
	return m.shift.State()
}

// PanelOpen reports whether the given panel is open.
func (m *Manager) PanelOpen(panel key.Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panels[panel]
}

// Reset returns the dispatcher to its initial state: characters mode,
// unshifted, burst closed, panels shut. Called on focus loss alongside the
// editor's own Reset.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.navBurst {
		m.navBurst = false
		m.ed.MassSelectionEnd()
	}
	m.mode = ModeCharacters
	m.shift.Reset()
	m.lastSpace = time.Time{}
	clear(m.panels)
}

// HandleContent is the editor-update hook: every reconciled host echo
// re-derives the shift state from the fresh capitalization context. Wire it
// via editor.SetUpdateListener. It must not take the manager lock, because
// a synchronous host echoes back inside an editor call HandleEvent makes.
func (m *Manager) HandleContent(c editor.Content) {
	m.shift.Decay(textproc.CapsContextBefore(c.TextBefore))
}

// HandleEvent dispatches one key event and reports whether it was consumed.
func (m *Manager) HandleEvent(ev key.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	op := m.keymap.Resolve(m.mode, ev.Key)
	if op == OpNone {
		return false
	}

	switch ev.Action {
	case key.ActionUp:
		switch op {
		case OpShift:
			if ev.Key == key.KeyShift {
				m.shift.HandleShiftUp()
				return true
			}
			return false
		case OpNavigation:
			return m.endNavBurst()
		}
		return false
	case key.ActionRepeat:
		// Only held deletion and navigation keys auto-repeat; a held rune
		// key opens the accent popup on the surface instead.
		switch op {
		case OpNavigation:
			return m.handleNavigation(ev, true)
		case OpDeletion:
			return m.handleDeletion(ev)
		}
		return false
	}

	switch op {
	case OpShift:
		if ev.Key == key.KeyShift {
			m.shift.HandleShiftDown()
		} else {
			m.shift.HandleCapsLock()
		}
		return true
	case OpCommit:
		return m.handleCommit(ev)
	case OpDeletion:
		return m.handleDeletion(ev)
	case OpNavigation:
		return m.handleNavigation(ev, false)
	case OpModeSwitch:
		mode, ok := ModeForKey(ev.Key)
		if !ok {
			return false
		}
		m.mode = mode
		return true
	case OpPanelToggle:
		m.panels[ev.Key] = !m.panels[ev.Key]
		if m.onPanel != nil {
			m.onPanel(ev.Key, m.panels[ev.Key])
		}
		return true
	case OpClipboard:
		return m.handleClipboard(ev)
	}
	return false
}

func (m *Manager) handleCommit(ev key.Event) bool {
	switch {
	case ev.Key == key.KeySpace:
		return m.handleSpace()
	case ev.Key == key.KeyEnter:
		return m.handleRune('\n')
	case ev.Key == key.KeyTab:
		return m.handleRune('\t')
	case ev.IsChar():
		return m.handleRune(m.shift.Apply(ev.Rune))
	}
	return false
}

func (m *Manager) handleRune(r rune) bool {
	m.lastSpace = time.Time{}
	m.shift.MarkUsed()
	if !m.ed.CommitChar(r) {
		return false
	}
	m.decayShift()
	return true
}

// handleSpace runs the word-termination pipeline: the double-space period,
// the expansion hook, the conservative auto-commit gate, the space itself,
// and finally the background autosave of the word the space finished.
func (m *Manager) handleSpace() bool {
	now := m.now()

	if m.cfg.DoubleSpacePeriod && !m.lastSpace.IsZero() && now.Sub(m.lastSpace) <= m.cfg.DoubleTapWindow {
		m.lastSpace = time.Time{}
		if m.ed.CommitDoubleSpacePeriod() {
			m.decayShift()
			return true
		}
	}

	word := textproc.LastWord(m.ed.ActiveContent().TextBefore)
	skipSave := false

	// An expansion replaces the abbreviation before the separator lands.
	// The expanded text is not the user's own word, so it never autosaves.
	if word != "" && m.expander != nil {
		switch exp, ok, err := m.expander.Expand(word); {
		case err != nil:
			m.sendNotice(fmt.Sprintf("expansion of %q failed: %v", word, err))
		case ok && exp != word:
			if m.ed.DeleteBackwards(editor.UnitWords) && m.ed.CommitText(exp) {
				word = ""
				skipSave = true
			}
		}
	}

	// The auto-commit gate: eligible, confident strictly beyond the
	// threshold, and never sourced purely from the user's personal
	// dictionary. A corrected word is the dictionary's, not the user's,
	// so applying a candidate also skips the autosave.
	if word != "" && m.provider != nil {
		if o, ok := m.provider.(suggest.WordObserver); ok {
			o.Observe(word)
		}
		if cand := m.provider.AutoCommitCandidate(); cand != nil &&
			cand.IsEligibleForAutoCommit &&
			cand.Confidence > m.cfg.AutoCommitConfidence &&
			cand.Source != suggest.SourceUserDictionary {
			if m.ed.CommitCompletion(*cand) {
				skipSave = true
			}
		}
	}

	if !m.ed.CommitChar(' ') {
		return false
	}
	m.lastSpace = now
	if !skipSave && m.autosave != nil {
		m.autosave.Enqueue(word, m.cfg.Locale)
	}
	m.decayShift()
	return true
}

func (m *Manager) handleDeletion(ev key.Event) bool {
	m.lastSpace = time.Time{}
	switch ev.Key {
	case key.KeyBackspace:
		return m.ed.DeleteBackwards(editor.UnitCharacters)
	case key.KeyDelete:
		return m.ed.DeleteForwards(editor.UnitCharacters)
	}
	return false
}

// handleNavigation moves the cursor. The first auto-repeat of a held key
// opens a mass-selection burst so the editor skips per-step recomputation;
// the key release closes it with one full resync.
func (m *Manager) handleNavigation(ev key.Event, repeat bool) bool {
	m.lastSpace = time.Time{}
	if repeat && !m.navBurst {
		m.navBurst = true
		m.ed.MassSelectionBegin()
	}
	switch ev.Key {
	case key.KeyLeft:
		return m.ed.MoveCursor(1, editor.UnitCharacters, editor.ScopeBeforeCursor)
	case key.KeyRight:
		return m.ed.MoveCursor(1, editor.UnitCharacters, editor.ScopeAfterCursor)
	case key.KeyUp:
		return m.ed.MoveLine(-1)
	case key.KeyDown:
		return m.ed.MoveLine(1)
	case key.KeyHome:
		return m.ed.MoveToLineBoundary(editor.ScopeBeforeCursor)
	case key.KeyEnd:
		return m.ed.MoveToLineBoundary(editor.ScopeAfterCursor)
	}
	return false
}

func (m *Manager) endNavBurst() bool {
	if !m.navBurst {
		return false
	}
	m.navBurst = false
	m.ed.MassSelectionEnd()
	return true
}

func (m *Manager) handleClipboard(ev key.Event) bool {
	m.lastSpace = time.Time{}
	switch ev.Key {
	case key.KeyCut:
		return m.ed.PerformCut()
	case key.KeyCopy:
		return m.ed.PerformCopy()
	case key.KeyPaste:
		return m.ed.PerformPaste()
	case key.KeySelectAll:
		return m.ed.PerformSelectAll()
	}
	return false
}

// decayShift drops the shift state right after a commit using the snapshot
// at hand. The snapshot may still predate the edit; the echoed update
// re-derives the state against the real field content via HandleContent.
func (m *Manager) decayShift() {
	m.shift.Decay(textproc.CapsContextBefore(m.ed.ActiveContent().TextBefore))
}

func (m *Manager) sendNotice(msg string) {
	if m.notify != nil {
		m.notify(msg)
	}
}
