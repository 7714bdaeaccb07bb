package editor

import (
	"sync/atomic"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/keybridge/internal/clipboard"
	"github.com/dshills/keybridge/internal/punct"
	"github.com/dshills/keybridge/internal/suggest"
	"github.com/dshills/keybridge/internal/textproc"
)

// hostUpdate is the raw echo payload, cached so a closing mass-selection
// burst can replay one synthetic full update.
type hostUpdate struct {
	text      string
	selection Range
	composing Range
}

// Instance orchestrates all edits against one attached host field. Create
// one per attached field; call Reset on focus loss and HandleUpdate for
// every echo the host delivers.
//
// Every mutating operation returns false and performs no edit when the
// connection is missing, the field is raw, or the host has not yet reported
// a valid selection. Invalid ranges are clamped, never rejected. Nothing
// here ever panics on host misbehavior.
type Instance struct {
	conn Connection
	clip clipboard.Provider

	provider suggest.Provider
	notify   NoticeFunc
	onChange func(Content)

	rules      atomic.Pointer[punct.Rules]
	opts       atomic.Pointer[Options]
	content    atomic.Pointer[Content]
	lastUpdate atomic.Pointer[hostUpdate]

	autoSpace AutoSpaceState
	phantom   PhantomSpaceState
	mass      MassSelection
}

// NewInstance builds an Instance over the given host connection and
// clipboard with default rules and options.
func NewInstance(conn Connection, clip clipboard.Provider) *Instance {
	inst := &Instance{conn: conn, clip: clip}
	r := punct.Default()
	inst.rules.Store(&r)
	o := DefaultOptions()
	inst.opts.Store(&o)
	c := EmptyContent()
	inst.content.Store(&c)
	return inst
}

// SetSuggestionProvider wires the provider that hears revert notifications.
func (inst *Instance) SetSuggestionProvider(p suggest.Provider) {
	inst.provider = p
}

// SetNotice wires the user-visible notice sink.
func (inst *Instance) SetNotice(fn NoticeFunc) {
	inst.notify = fn
}

// SetUpdateListener wires the callback invoked after every full update
// reconciliation. Wire before updates start flowing.
func (inst *Instance) SetUpdateListener(fn func(Content)) {
	inst.onChange = fn
}

// ApplyRules swaps the active punctuation rules, e.g. on a locale switch.
func (inst *Instance) ApplyRules(r punct.Rules) {
	inst.rules.Store(&r)
}

// ApplyOptions swaps the editor options.
func (inst *Instance) ApplyOptions(o Options) {
	inst.opts.Store(&o)
}

// ActiveContent returns the latest reconciled snapshot.
func (inst *Instance) ActiveContent() Content {
	return *inst.content.Load()
}

// CurrentWord returns the word the cursor touches.
func (inst *Instance) CurrentWord() (string, bool) {
	return inst.ActiveContent().CurrentWord()
}

// CurrentLine returns the line containing the selection.
func (inst *Instance) CurrentLine() string {
	return inst.ActiveContent().CurrentLine()
}

// SelectedText returns the selected text, empty for a cursor.
func (inst *Instance) SelectedText() string {
	return inst.ActiveContent().SelectedText()
}

// AutoSpaceActive reports the auto-space machine state.
func (inst *Instance) AutoSpaceActive() bool {
	return inst.autoSpace.IsActive()
}

// PhantomSpaceActive reports the phantom-space machine state.
func (inst *Instance) PhantomSpaceActive() bool {
	return inst.phantom.IsActive()
}

// PendingCandidate returns the completion recorded for revert, nil when
// none.
func (inst *Instance) PendingCandidate() *suggest.Candidate {
	return inst.phantom.Candidate()
}

// CommitChar commits one typed character, applying the auto-space rules on
// both sides and consuming a pending phantom space.
func (inst *Instance) CommitChar(ch rune) bool {
	content, rules, ok := inst.ready()
	if !ok {
		return false
	}
	prev, _ := content.CharBeforeCursor()

	// A pending auto-space swallows the space keypress that would
	// duplicate it, exactly once.
	if ch == ' ' && inst.autoSpace.IsActive() && content.Selection.IsCursor() {
		inst.autoSpace.SetInactive()
		inst.phantom.SetInactive()
		return true
	}

	// Consecutive auto-spaced punctuation: the space this machine itself
	// inserted gets deleted before the fresh char lands, so "x, " + "!"
	// yields "x,! " and never "x, ! ".
	deleteBefore := false
	if inst.autoSpace.IsActive() && rules.WantsSpaceAfter(ch) && prev == ' ' {
		chars := content.CharsBeforeCursor(3)
		if len(chars) >= 2 && rules.WantsSpaceAfter(chars[len(chars)-2]) {
			deleteBefore = true
			prev = chars[len(chars)-2]
		}
	}

	leading := inst.phantom.Determine(content, string(ch), false, rules)
	if !leading && rules.WantsSpaceBefore(ch) && prev != 0 && !unicode.IsSpace(prev) {
		leading = true
	}
	trailing := rules.WantsSpaceAfter(ch) && !unicode.IsDigit(prev)

	inst.phantom.SetInactive()
	if trailing {
		inst.autoSpace.SetActive(true)
	} else {
		inst.autoSpace.SetInactive()
	}

	text := string(ch)
	if leading {
		text = " " + text
	}
	if trailing {
		text += " "
	}
	return inst.batch(func() bool {
		if content.Composing.IsValid() {
			inst.conn.FinishComposing()
		}
		if deleteBefore {
			inst.conn.DeleteSurrounding(1, 0)
		}
		return inst.commit(text)
	})
}

// CommitText commits arbitrary text (paste, corrections, newlines). Only
// the phantom-space rule applies; auto-space is reserved for single
// character commits.
func (inst *Instance) CommitText(text string) bool {
	content, rules, ok := inst.ready()
	if !ok {
		return false
	}
	if inst.phantom.Determine(content, text, false, rules) {
		text = " " + text
	}
	inst.phantom.SetInactive()
	inst.autoSpace.SetInactive()
	return inst.batch(func() bool {
		if content.Composing.IsValid() {
			inst.conn.FinishComposing()
		}
		return inst.commit(text)
	})
}

// CommitCompletion commits a suggestion candidate, casing preserved as
// provided. With an active composing region the candidate finalizes the
// provisional word in place; otherwise it is inserted with an optional
// phantom leading space. Either way the phantom state re-arms with the
// candidate recorded for a possible revert.
func (inst *Instance) CommitCompletion(candidate suggest.Candidate) bool {
	content, rules, ok := inst.ready()
	if !ok || candidate.Text == "" {
		return false
	}
	inst.autoSpace.SetInactive()
	text := candidate.Text
	if !content.Composing.IsValid() && inst.phantom.Determine(content, text, false, rules) {
		text = " " + text
	}
	// Arm before the edit so even an immediate echo finds the state set;
	// the stay-active bit absorbs that first update.
	inst.phantom.SetActive(false, true, &candidate)
	if !inst.batch(func() bool { return inst.commit(text) }) {
		inst.phantom.SetInactive()
		return false
	}
	return true
}

// CommitGesture commits swipe-typed text. Phantom-space determination is
// forced so back-to-back gestures separate, and the committed word is
// marked composing on the next update so it stays correctable.
func (inst *Instance) CommitGesture(text string) bool {
	content, rules, ok := inst.ready()
	if !ok || text == "" {
		return false
	}
	inst.autoSpace.SetInactive()
	if inst.phantom.Determine(content, text, true, rules) {
		text = " " + text
	}
	inst.phantom.SetActive(true, true, nil)
	ok = inst.batch(func() bool {
		if content.Composing.IsValid() {
			inst.conn.FinishComposing()
		}
		return inst.commit(text)
	})
	if !ok {
		inst.phantom.SetInactive()
	}
	return ok
}

// DeleteBackwards deletes one unit before the cursor, or replaces a
// non-empty selection. Both space machines clear unconditionally. A
// single-char delete escalates to a word delete while a phantom-space
// completion is pending and the option allows it.
func (inst *Instance) DeleteBackwards(unit Unit) bool {
	content, _, ok := inst.ready()
	if !ok {
		return false
	}

	// An immediate backward delete after a completion is a revert, not a
	// plain deletion. The originating provider hears about it once.
	phantomActive := inst.phantom.IsActive()
	if cand := inst.phantom.TakeCandidate(); cand != nil && inst.provider != nil {
		inst.provider.NotifyCandidateReverted(*cand)
	}
	escalate := false
	if unit == UnitCharacters && phantomActive && inst.options().PhantomWordDelete {
		if _, hasWord := content.CurrentWord(); hasWord {
			escalate = true
		}
	}
	inst.autoSpace.SetInactive()
	inst.phantom.SetInactive()

	if !content.Selection.IsCursor() {
		return inst.replaceSelection(content, "")
	}
	var n int
	if unit == UnitWords || escalate {
		n = textproc.MeasureLastUWords(content.TextBefore, 1)
	} else {
		n = textproc.MeasureLastUChars(content.TextBefore, 1)
	}
	if n == 0 {
		return false
	}
	return inst.batch(func() bool {
		if content.Composing.IsValid() {
			inst.conn.FinishComposing()
		}
		return inst.conn.DeleteSurrounding(n, 0)
	})
}

// DeleteForwards deletes one unit after the cursor, or replaces a non-empty
// selection. Both space machines clear unconditionally.
func (inst *Instance) DeleteForwards(unit Unit) bool {
	content, _, ok := inst.ready()
	if !ok {
		return false
	}
	inst.autoSpace.SetInactive()
	inst.phantom.SetInactive()
	if !content.Selection.IsCursor() {
		return inst.replaceSelection(content, "")
	}
	var n int
	if unit == UnitWords {
		n = textproc.MeasureNextUWords(content.TextAfter, 1)
	} else {
		n = textproc.MeasureNextUChars(content.TextAfter, 1)
	}
	if n == 0 {
		return false
	}
	return inst.batch(func() bool {
		if content.Composing.IsValid() {
			inst.conn.FinishComposing()
		}
		return inst.conn.DeleteSurrounding(0, n)
	})
}

// SetSelectionSurrounding grows the selection by n units on the given side,
// clamped to the field bounds. n=0 collapses the selection: before-cursor
// to its end, after-cursor to its start.
func (inst *Instance) SetSelectionSurrounding(n int, unit Unit, scope Scope) bool {
	content, _, ok := inst.ready()
	if !ok {
		return false
	}
	if n < 0 {
		n = 0
	}
	sel := content.Selection
	next := sel
	switch scope {
	case ScopeBeforeCursor:
		if n == 0 {
			next = Cursor(sel.End)
		} else {
			d := measureLast(content.TextBefore, n, unit)
			next = Range{Start: sel.Start - d, End: sel.End}
		}
	case ScopeAfterCursor:
		if n == 0 {
			next = Cursor(sel.Start)
		} else {
			d := measureNext(content.TextAfter, n, unit)
			next = Range{Start: sel.Start, End: sel.End + d}
		}
	}
	next = next.Clamped(0, content.Len())
	if next == sel {
		return true
	}
	return inst.conn.SetSelection(next)
}

// MoveCursor moves the cursor n units backward or forward. An active
// selection collapses to the edge the movement points at, consuming the
// move. Motion never edits text; the space machines clear through the
// selection update the host echoes back.
func (inst *Instance) MoveCursor(n int, unit Unit, scope Scope) bool {
	content, _, ok := inst.ready()
	if !ok || n <= 0 {
		return false
	}
	sel := content.Selection
	if !sel.IsCursor() {
		if scope == ScopeBeforeCursor {
			return inst.conn.SetSelection(Cursor(sel.Start))
		}
		return inst.conn.SetSelection(Cursor(sel.End))
	}
	var next Range
	switch scope {
	case ScopeBeforeCursor:
		next = Cursor(sel.Start - measureLast(content.TextBefore, n, unit))
	case ScopeAfterCursor:
		next = Cursor(sel.End + measureNext(content.TextAfter, n, unit))
	}
	next = next.Clamped(0, content.Len())
	if next == sel {
		return true
	}
	return inst.conn.SetSelection(next)
}

// MoveLine moves the cursor delta lines up (negative) or down (positive),
// holding the column where the target line allows it. At the first or last
// line the cursor snaps to the field start or end, matching stock field
// behavior. Columns count runes.
func (inst *Instance) MoveLine(delta int) bool {
	content, _, ok := inst.ready()
	if !ok || delta == 0 {
		return false
	}
	sel := content.Selection
	runes := []rune(content.Text())
	pos := sel.Start
	if delta > 0 {
		pos = sel.End
	}

	lineStart := 0
	for i := pos - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			lineStart = i + 1
			break
		}
	}
	col := pos - lineStart

	var next Range
	if delta < 0 {
		target := lineStart
		for ; delta < 0 && target > 0; delta++ {
			end := target - 1
			target = 0
			for i := end - 1; i >= 0; i-- {
				if runes[i] == '\n' {
					target = i + 1
					break
				}
			}
			lineStart = target
		}
		if delta < 0 {
			next = Cursor(0)
		} else {
			next = Cursor(lineStart + min(col, lineLen(runes, lineStart)))
		}
	} else {
		target := lineStart
		for ; delta > 0; delta-- {
			end := target + lineLen(runes, target)
			if end >= len(runes) {
				target = -1
				break
			}
			target = end + 1
		}
		if target < 0 {
			next = Cursor(len(runes))
		} else {
			next = Cursor(target + min(col, lineLen(runes, target)))
		}
	}
	next = next.Clamped(0, content.Len())
	if next == sel {
		return true
	}
	return inst.conn.SetSelection(next)
}

// MoveToLineBoundary collapses the cursor to the start (before-cursor) or
// end (after-cursor) of the current line.
func (inst *Instance) MoveToLineBoundary(scope Scope) bool {
	content, _, ok := inst.ready()
	if !ok {
		return false
	}
	sel := content.Selection
	var next Range
	switch scope {
	case ScopeBeforeCursor:
		pos := 0
		before := []rune(content.TextBefore)
		for i := len(before) - 1; i >= 0; i-- {
			if before[i] == '\n' {
				pos = i + 1
				break
			}
		}
		next = Cursor(pos)
	case ScopeAfterCursor:
		after := []rune(content.TextAfter)
		pos := sel.End + len(after)
		for i, r := range after {
			if r == '\n' {
				pos = sel.End + i
				break
			}
		}
		next = Cursor(pos)
	}
	if next == sel {
		return true
	}
	return inst.conn.SetSelection(next)
}

// PerformCopy copies the selection to the clipboard.
func (inst *Instance) PerformCopy() bool {
	content, _, ok := inst.ready()
	if !ok || inst.clip == nil {
		return false
	}
	inst.autoSpace.SetInactive()
	inst.phantom.SetInactive()
	text := content.SelectedText()
	if text == "" {
		inst.sendNotice("Nothing selected to copy")
		return false
	}
	inst.clip.SetPrimary(text)
	return true
}

// PerformCut copies the selection and deletes it.
func (inst *Instance) PerformCut() bool {
	content, _, ok := inst.ready()
	if !ok || inst.clip == nil {
		return false
	}
	inst.autoSpace.SetInactive()
	inst.phantom.SetInactive()
	text := content.SelectedText()
	if text == "" {
		inst.sendNotice("Nothing selected to cut")
		return false
	}
	inst.clip.SetPrimary(text)
	return inst.replaceSelection(content, "")
}

// PerformPaste commits the primary clip at the selection.
func (inst *Instance) PerformPaste() bool {
	content, _, ok := inst.ready()
	if !ok || inst.clip == nil {
		return false
	}
	inst.autoSpace.SetInactive()
	inst.phantom.SetInactive()
	text, hasClip := inst.clip.Primary()
	if !hasClip || text == "" {
		inst.sendNotice("Clipboard is empty")
		return false
	}
	return inst.batch(func() bool {
		if content.Composing.IsValid() {
			inst.conn.FinishComposing()
		}
		return inst.commit(text)
	})
}

// PerformSelectAll selects the whole field.
func (inst *Instance) PerformSelectAll() bool {
	content, _, ok := inst.ready()
	if !ok {
		return false
	}
	inst.autoSpace.SetInactive()
	inst.phantom.SetInactive()
	return inst.conn.SetSelection(Range{Start: 0, End: content.Len()})
}

// CommitDoubleSpacePeriod retroactively turns the space before the cursor
// into ". ". It refuses unless a word character precedes that space, so
// punctuation never chains into ".. ".
func (inst *Instance) CommitDoubleSpacePeriod() bool {
	content, _, ok := inst.ready()
	if !ok || !content.Selection.IsCursor() {
		return false
	}
	chars := content.CharsBeforeCursor(2)
	if len(chars) < 2 || chars[1] != ' ' {
		return false
	}
	if !unicode.IsLetter(chars[0]) && !unicode.IsDigit(chars[0]) {
		return false
	}
	inst.phantom.SetInactive()
	inst.autoSpace.SetActive(true)
	ok = inst.batch(func() bool {
		if content.Composing.IsValid() {
			inst.conn.FinishComposing()
		}
		if !inst.conn.DeleteSurrounding(1, 0) {
			return false
		}
		return inst.commit(". ")
	})
	if !ok {
		inst.autoSpace.SetInactive()
	}
	return ok
}

// Reset clears all state machines and the cached snapshot. Called on focus
// loss and session end.
func (inst *Instance) Reset() {
	inst.autoSpace.SetInactive()
	inst.phantom.SetInactive()
	inst.mass.Reset()
	c := EmptyContent()
	inst.content.Store(&c)
	inst.lastUpdate.Store(nil)
}

// MassSelectionBegin enters a cursor-movement burst. Nestable.
func (inst *Instance) MassSelectionBegin() {
	inst.mass.Begin()
}

// MassSelectionEnd leaves a burst. Closing the outermost bracket replays
// one synthetic full update so suggestions and composing state resync
// exactly once per burst.
func (inst *Instance) MassSelectionEnd() {
	if !inst.mass.End() {
		return
	}
	if u := inst.lastUpdate.Load(); u != nil {
		inst.reconcile(*u, true)
	}
}

// MassSelectionActive reports whether a burst is in progress.
func (inst *Instance) MassSelectionActive() bool {
	return inst.mass.IsActive()
}

// HandleUpdate ingests one host echo. Safe to call from any goroutine;
// echoes may arrive zero, one, or several times per issued edit.
func (inst *Instance) HandleUpdate(text string, selection, composing Range) {
	u := hostUpdate{text: text, selection: selection, composing: composing}
	inst.lastUpdate.Store(&u)
	inst.autoSpace.SetInactiveFromUpdate()
	inst.phantom.SetInactiveFromUpdate()
	inst.reconcile(u, !inst.mass.IsActive())
}

// reconcile rebuilds the snapshot. The full path re-marks the composing
// word and notifies the update listener; the cheap path, used during mass
// selection, only swaps the snapshot.
func (inst *Instance) reconcile(u hostUpdate, full bool) {
	content := NewContent(u.text, u.selection, u.composing)
	inst.content.Store(&content)
	if !full {
		return
	}
	content = inst.markComposing(content)
	if inst.onChange != nil {
		inst.onChange(content)
	}
}

// markComposing keeps the composing region glued to the word at the cursor
// when options or a fresh gesture ask for it, and clears a stale region
// once the cursor leaves every word.
func (inst *Instance) markComposing(content Content) Content {
	if inst.conn == nil || inst.conn.IsRaw() {
		return content
	}
	if !inst.options().MarkComposingWord && !inst.phantom.ShowComposingRegion() {
		return content
	}
	if !content.Selection.IsCursor() {
		if content.Composing.IsValid() && inst.conn.FinishComposing() {
			content = NewContent(content.Text(), content.Selection, RangeUnspecified)
			inst.content.Store(&content)
		}
		return content
	}
	r, ok := content.CurrentWordRange()
	switch {
	case ok && r != content.Composing:
		if inst.conn.SetComposingRegion(r) {
			content = NewContent(content.Text(), content.Selection, r)
			inst.content.Store(&content)
		}
	case !ok && content.Composing.IsValid():
		if inst.conn.FinishComposing() {
			content = NewContent(content.Text(), content.Selection, RangeUnspecified)
			inst.content.Store(&content)
		}
	}
	return content
}

// ready gates every mutating operation: connection present, field rich,
// selection known.
func (inst *Instance) ready() (Content, punct.Rules, bool) {
	if inst.conn == nil || inst.conn.IsRaw() {
		return Content{}, punct.Rules{}, false
	}
	content := inst.ActiveContent()
	if !content.Selection.IsValid() {
		return Content{}, punct.Rules{}, false
	}
	return content, *inst.rules.Load(), true
}

func (inst *Instance) options() Options {
	return *inst.opts.Load()
}

// replaceSelection commits text over the selection. A lingering composing
// region must finish first or the host would target it instead.
func (inst *Instance) replaceSelection(content Content, text string) bool {
	return inst.batch(func() bool {
		if content.Composing.IsValid() {
			inst.conn.FinishComposing()
		}
		return inst.commit(text)
	})
}

// batch brackets a compound edit so the host coalesces it into one echo.
// The stay-active grace in the space machines budgets for exactly one
// update per operation; unbatched compound edits would burn it twice.
func (inst *Instance) batch(fn func() bool) bool {
	inst.conn.BeginBatchEdit()
	defer inst.conn.EndBatchEdit()
	return fn()
}

// commit sends text through the connection, NFC-normalized so combining
// sequences land in the form hosts index by.
func (inst *Instance) commit(text string) bool {
	return inst.conn.CommitText(norm.NFC.String(text))
}

func (inst *Instance) sendNotice(msg string) {
	if inst.notify != nil {
		inst.notify(msg)
	}
}

func measureLast(text string, n int, unit Unit) int {
	if unit == UnitWords {
		return textproc.MeasureLastUWords(text, n)
	}
	return textproc.MeasureLastUChars(text, n)
}

func measureNext(text string, n int, unit Unit) int {
	if unit == UnitWords {
		return textproc.MeasureNextUWords(text, n)
	}
	return textproc.MeasureNextUChars(text, n)
}

// lineLen counts the runes from start to the next newline or the text end.
func lineLen(runes []rune, start int) int {
	for i := start; i < len(runes); i++ {
		if runes[i] == '\n' {
			return i - start
		}
	}
	return len(runes) - start
}
