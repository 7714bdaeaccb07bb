package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keybridge/internal/app"
	"github.com/dshills/keybridge/internal/input/key"
)

// redrawInterval paces refreshes for state that changes off the key path:
// delayed echoes, autosave notices, remote field updates.
const redrawInterval = 100 * time.Millisecond

// playground renders the focused field and the keyboard state, and turns
// terminal keys into virtual-keyboard events.
type playground struct {
	session *app.Session
	screen  tcell.Screen
	quit    chan struct{}
}

func newPlayground(session *app.Session) (*playground, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &playground{
		session: session,
		screen:  screen,
		quit:    make(chan struct{}),
	}, nil
}

// Quit stops the event loop. Safe to call from any goroutine.
func (p *playground) Quit() {
	select {
	case <-p.quit:
	default:
		close(p.quit)
	}
	// Wake the poller so the loop notices the quit.
	_ = p.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Run drives the event loop until quit.
func (p *playground) Run() error {
	if err := p.screen.Init(); err != nil {
		return err
	}
	defer p.screen.Fini()

	go p.ticker()

	for {
		select {
		case <-p.quit:
			return nil
		default:
		}

		p.draw()
		ev := p.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			p.screen.Sync()
		case *tcell.EventKey:
			if p.isQuitKey(ev) {
				p.Quit()
				continue
			}
			for _, kev := range translateKey(ev) {
				p.session.Manager().HandleEvent(kev)
			}
		}
	}
}

func (p *playground) ticker() {
	t := time.NewTicker(redrawInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			_ = p.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-p.quit:
			return
		}
	}
}

func (p *playground) isQuitKey(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlQ
}

// translateKey maps one terminal key to virtual-keyboard events. The shift
// key is a tap on an on-screen keyboard, so F1 produces a down/up pair.
func translateKey(ev *tcell.EventKey) []key.Event {
	one := func(k key.Key) []key.Event { return []key.Event{key.NewEvent(k)} }
	switch ev.Key() {
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			return one(key.KeySpace)
		}
		return []key.Event{key.NewRuneEvent(ev.Rune())}
	case tcell.KeyEnter:
		return one(key.KeyEnter)
	case tcell.KeyTab:
		return one(key.KeyTab)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return one(key.KeyBackspace)
	case tcell.KeyDelete:
		return one(key.KeyDelete)
	case tcell.KeyLeft:
		return one(key.KeyLeft)
	case tcell.KeyRight:
		return one(key.KeyRight)
	case tcell.KeyUp:
		return one(key.KeyUp)
	case tcell.KeyDown:
		return one(key.KeyDown)
	case tcell.KeyHome:
		return one(key.KeyHome)
	case tcell.KeyEnd:
		return one(key.KeyEnd)
	case tcell.KeyF1:
		return []key.Event{key.NewEvent(key.KeyShift), key.NewUpEvent(key.KeyShift)}
	case tcell.KeyF2:
		return one(key.KeyCapsLock)
	case tcell.KeyF3:
		return one(key.KeyViewCharacters)
	case tcell.KeyF4:
		return one(key.KeyViewSymbols)
	case tcell.KeyF5:
		return one(key.KeyViewNumeric)
	case tcell.KeyCtrlA:
		return one(key.KeySelectAll)
	case tcell.KeyCtrlX:
		return one(key.KeyCut)
	case tcell.KeyCtrlC:
		return one(key.KeyCopy)
	case tcell.KeyCtrlV:
		return one(key.KeyPaste)
	}
	return nil
}

func (p *playground) draw() {
	p.screen.Clear()
	width, height := p.screen.Size()
	if width == 0 || height < 4 {
		p.screen.Show()
		return
	}

	content := p.session.Editor().ActiveContent()

	// Field pane: the text with the cursor or selection highlighted.
	style := tcell.StyleDefault
	selStyle := style.Reverse(true)
	x, y := 0, 0
	sel := content.Selection
	for i, r := range []rune(content.Text()) {
		if r == '\n' {
			y++
			x = 0
			continue
		}
		if y >= height-3 {
			break
		}
		st := style
		if sel.IsValid() && !sel.IsCursor() && i >= sel.Start && i < sel.End {
			st = selStyle
		}
		p.screen.SetContent(x, y, r, nil, st)
		x++
		if x >= width {
			y++
			x = 0
		}
	}
	if sel.IsValid() && sel.IsCursor() {
		cx, cy := cursorCell(content.TextBefore, width)
		p.screen.ShowCursor(cx, cy)
	} else {
		p.screen.HideCursor()
	}

	// Status line: layout mode, shift state, connection.
	mgr := p.session.Manager()
	connected := "local field"
	if remote := p.session.Remote(); remote != nil {
		if id := remote.Field().SessionID(); id != "" {
			connected = "remote field " + id[:8]
		} else {
			connected = "remote: waiting on " + remote.Addr()
		}
	}
	status := fmt.Sprintf(" %s | shift: %s | %s ", mgr.Mode(), mgr.ShiftState(), connected)
	drawLine(p.screen, 0, height-2, width, status, style.Reverse(true))

	// Notice line.
	if notice, ok := p.session.Notices().Latest(); ok {
		drawLine(p.screen, 0, height-1, width, notice.Message, style)
	}

	p.screen.Show()
}

// cursorCell locates the cursor from the text before it, wrapping the way
// the field pane draws.
func cursorCell(before string, width int) (int, int) {
	x, y := 0, 0
	for _, r := range before {
		if r == '\n' {
			y++
			x = 0
			continue
		}
		x++
		if x >= width {
			y++
			x = 0
		}
	}
	return x, y
}

func drawLine(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= width {
			return
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < width; col++ {
		screen.SetContent(col, y, ' ', nil, style)
	}
}
