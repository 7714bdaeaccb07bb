package app

import (
	"sync"
	"time"
)

// DefaultNoticeHistory bounds the kept notice list.
const DefaultNoticeHistory = 20

// Notice is one transient, user-visible message: an empty clipboard, an
// unreachable dictionary. Notices never interrupt the keystroke pipeline.
type Notice struct {
	Message string
	Time    time.Time
}

// Notifier collects notices for whatever surface shows them. A listener
// hears new notices as they arrive; Recent serves surfaces that poll.
type Notifier struct {
	mu       sync.Mutex
	notices  []Notice
	limit    int
	listener func(Notice)
	now      func() time.Time
}

// NewNotifier creates a notifier keeping DefaultNoticeHistory entries.
func NewNotifier() *Notifier {
	return &Notifier{limit: DefaultNoticeHistory, now: time.Now}
}

// SetListener installs the live notice listener.
func (n *Notifier) SetListener(fn func(Notice)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listener = fn
}

// Notify records a notice and forwards it to the listener. Empty messages
// are dropped. The signature matches editor.NoticeFunc.
func (n *Notifier) Notify(message string) {
	if message == "" {
		return
	}
	n.mu.Lock()
	notice := Notice{Message: message, Time: n.now()}
	n.notices = append(n.notices, notice)
	if len(n.notices) > n.limit {
		n.notices = n.notices[len(n.notices)-n.limit:]
	}
	fn := n.listener
	n.mu.Unlock()
	if fn != nil {
		fn(notice)
	}
}

// Recent returns the kept notices, newest last.
func (n *Notifier) Recent() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, len(n.notices))
	copy(out, n.notices)
	return out
}

// Latest returns the newest notice and whether one exists.
func (n *Notifier) Latest() (Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return Notice{}, false
	}
	return n.notices[len(n.notices)-1], true
}
