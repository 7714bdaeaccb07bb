package keyboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dshills/keybridge/internal/dict"
	"github.com/dshills/keybridge/internal/textproc"
)

// Sentinel errors for the autosave worker.
var (
	// ErrAutosaverRunning is returned when Start is called twice.
	ErrAutosaverRunning = errors.New("autosaver is already running")
)

// refreshTimeout bounds the collaborator refreshes that follow a saved word.
const refreshTimeout = 5 * time.Second

// saveRequest is one just-finished word heading for the user dictionary.
type saveRequest struct {
	word   string
	locale string
}

// Autosaver persists just-finished words to the user dictionary off the
// keystroke path. Enqueue never blocks; words that do not fit the queue are
// dropped, the user will finish them again. After each save the registered
// refreshers run, so the gesture classifier and the suggestion provider see
// the new word.
type Autosaver struct {
	store      dict.Store
	static     *dict.StaticDict
	refreshers []func(context.Context) error
	onError    func(error)

	mu      sync.Mutex
	started bool
	queue   chan saveRequest
	quit    chan struct{}
	wg      sync.WaitGroup
}

// NewAutosaver builds a worker over the user-dictionary store, consulting
// the static dictionary for the exclusion check. Either may be nil: a nil
// store disables saving, a nil static dictionary disables the exclusion.
func NewAutosaver(store dict.Store, static *dict.StaticDict) *Autosaver {
	return &Autosaver{
		store:  store,
		static: static,
		queue:  make(chan saveRequest, 32),
		quit:   make(chan struct{}),
	}
}

// AddRefresher registers a callback run after every saved word. Register
// before Start.
func (a *Autosaver) AddRefresher(fn func(context.Context) error) {
	if fn != nil {
		a.refreshers = append(a.refreshers, fn)
	}
}

// SetErrorHandler wires the sink for background failures. Register before
// Start.
func (a *Autosaver) SetErrorHandler(fn func(error)) {
	a.onError = fn
}

// Start launches the worker goroutine.
func (a *Autosaver) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return ErrAutosaverRunning
	}
	a.started = true
	a.wg.Add(1)
	go a.run()
	return nil
}

// Close stops the worker after draining queued words. Safe to call twice.
func (a *Autosaver) Close() error {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return nil
	}
	a.started = false
	a.mu.Unlock()
	close(a.quit)
	a.wg.Wait()
	return nil
}

// Enqueue hands a word to the worker, never blocking the keystroke path.
func (a *Autosaver) Enqueue(word, locale string) {
	select {
	case a.queue <- saveRequest{word: word, locale: locale}:
	default:
	}
}

func (a *Autosaver) run() {
	defer a.wg.Done()
	for {
		select {
		case req := <-a.queue:
			a.process(req)
		case <-a.quit:
			for {
				select {
				case req := <-a.queue:
					a.process(req)
				default:
					return
				}
			}
		}
	}
}

// process applies the save rules: saveable token, not in the static
// dictionary, then boost or insert through dict.Save and refresh the
// collaborators.
func (a *Autosaver) process(req saveRequest) {
	word := strings.TrimSpace(req.word)
	if a.store == nil || !textproc.IsSaveableWord(word) {
		return
	}
	if a.static != nil && a.static.Contains(word) {
		return
	}
	if _, err := dict.Save(a.store, word, req.locale); err != nil {
		a.fail(fmt.Errorf("autosave %q: %w", word, err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	for _, fn := range a.refreshers {
		if err := fn(ctx); err != nil {
			a.fail(fmt.Errorf("refresh after autosave: %w", err))
		}
	}
}

func (a *Autosaver) fail(err error) {
	if a.onError != nil {
		a.onError(err)
	}
}
