package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/text/language"

	"github.com/dshills/keybridge/internal/clipboard"
	"github.com/dshills/keybridge/internal/config"
	"github.com/dshills/keybridge/internal/dict"
	"github.com/dshills/keybridge/internal/editor"
	"github.com/dshills/keybridge/internal/expand"
	"github.com/dshills/keybridge/internal/gesture"
	"github.com/dshills/keybridge/internal/host"
	"github.com/dshills/keybridge/internal/host/remote"
	"github.com/dshills/keybridge/internal/keyboard"
	"github.com/dshills/keybridge/internal/punct"
	"github.com/dshills/keybridge/internal/suggest"
)

// Sentinel errors for the session lifecycle.
var (
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("session already started")

	// ErrNotStarted is returned when closing a session that never started.
	ErrNotStarted = errors.New("session not started")
)

// shutdownTimeout bounds how long Close waits for the hub queue to drain.
const shutdownTimeout = 5 * time.Second

// Options configure session construction.
type Options struct {
	// ConfigPath is the optional settings file (TOML or YAML).
	ConfigPath string

	// LogLevel overrides the configured logging level when non-empty.
	LogLevel string

	// LogOutput overrides the log destination. Defaults to the configured
	// file, or stderr.
	LogOutput io.Writer

	// Listen overrides the remote bridge address when non-empty.
	Listen string
}

// Session owns one focused-field pipeline: the host channel, the editor
// instance, the keyboard manager, and every collaborator they consult. All
// components are constructed here and torn down in Close; nothing in the
// module is a package-level singleton.
type Session struct {
	cfg      *config.Config
	logger   *Logger
	notifier *Notifier

	hub    *host.UpdateHub
	field  *host.MemoryField
	bridge *remote.Server

	store       dict.Store
	static      *dict.StaticDict
	provider    *suggest.TypoProvider
	classifier  *gesture.Classifier
	expander    *expand.Expander
	autosaver   *keyboard.Autosaver
	editor      *editor.Instance
	manager     *keyboard.Manager
	storeCloser io.Closer

	started bool
	closed  bool
}

// New constructs a session from the options and the settings file. The
// session is wired but idle until Start.
func New(opts Options) (*Session, error) {
	cfg := config.New(config.WithPath(opts.ConfigPath))
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.Listen != "" {
		cfg.Set("remote.listen", opts.Listen)
	}

	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(cfg.Logging().Level)
	if opts.LogLevel != "" {
		logCfg.Level = ParseLogLevel(opts.LogLevel)
	}
	if opts.LogOutput != nil {
		logCfg.Output = opts.LogOutput
	} else if file := cfg.Logging().File; file != "" {
		out, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		logCfg.Output = out
	}
	logger := NewLogger(logCfg)

	s := &Session{
		cfg:      cfg,
		logger:   logger,
		notifier: NewNotifier(),
	}
	s.hub = host.NewUpdateHub(host.WithPanicHandler(func(subID string, recovered any) {
		logger.WithComponent("hub").Error("subscriber %s panicked: %v", subID, recovered)
	}))

	// The host channel: a websocket bridge when a listen address is
	// configured, the in-process reference field otherwise.
	var conn editor.Connection
	if cfg.Remote().Listen != "" {
		s.bridge = remote.NewServer(s.hub)
		s.bridge.SetErrorHandler(func(err error) {
			logger.WithComponent("remote").Error("transport: %v", err)
		})
		s.bridge.OnSession(func(id string, attached bool) {
			logger.WithComponent("remote").Info("session %s attached=%v", id, attached)
		})
		conn = s.bridge.Field()
	} else {
		s.field = host.NewMemoryField(s.hub)
		conn = s.field
	}

	if err := s.openStore(); err != nil {
		return nil, err
	}
	s.static = dict.NewStaticDict()

	s.editor = editor.NewInstance(conn, clipboard.NewMemory())
	s.editor.SetNotice(s.notifier.Notify)

	s.provider = suggest.NewTypoProvider(s.static, s.store)
	s.editor.SetSuggestionProvider(s.provider)

	s.classifier = gesture.NewClassifier(s.static, s.store)

	s.autosaver = keyboard.NewAutosaver(s.store, s.static)
	s.autosaver.SetErrorHandler(func(err error) {
		logger.WithComponent("autosave").Warn("%v", err)
		s.notifier.Notify(fmt.Sprintf("could not save word: %v", err))
	})
	s.autosaver.AddRefresher(s.provider.RefreshUserWords)
	if cfg.Gesture().Enabled {
		s.autosaver.AddRefresher(s.classifier.RefreshWordData)
	}

	if path := cfg.Expansion().ScriptPath; path != "" {
		exp := expand.NewExpander()
		if err := exp.LoadFile(path); err != nil {
			// A broken script must not block typing; run without it.
			logger.WithComponent("expand").Warn("loading %s: %v", path, err)
			exp.Close()
		} else {
			s.expander = exp
		}
	}

	s.manager = keyboard.NewManager(s.editor)
	s.manager.SetProvider(s.provider)
	s.manager.SetAutosaver(s.autosaver)
	s.manager.SetNotice(s.notifier.Notify)
	if s.expander != nil {
		s.manager.SetExpander(s.expander)
	}

	s.applySettings()
	cfg.OnChange(s.applySettings)
	cfg.SetErrorHandler(func(err error) {
		logger.WithComponent("config").Warn("reload rejected: %v", err)
	})

	return s, nil
}

// openStore opens the configured user dictionary and runs the optional
// words-file import.
func (s *Session) openStore() error {
	dcfg := s.cfg.Dictionary()
	if dcfg.Path == "" {
		s.store = dict.NewMemStore()
	} else {
		sq, err := dict.Open(dcfg.Path)
		if err != nil {
			return fmt.Errorf("opening dictionary: %w", err)
		}
		s.store = sq
		s.storeCloser = sq
	}
	if dcfg.ImportPath != "" {
		data, err := os.ReadFile(dcfg.ImportPath)
		if err != nil {
			return fmt.Errorf("reading words file: %w", err)
		}
		n, err := dict.Import(s.store, data)
		if err != nil {
			return fmt.Errorf("importing words file: %w", err)
		}
		s.logger.WithComponent("dict").Info("imported %d words from %s", n, dcfg.ImportPath)
	}
	return nil
}

// applySettings pushes fresh config snapshots into every component. Runs at
// construction and again on each accepted reload; each component swaps a
// whole snapshot, so a reload never tears a keystroke.
func (s *Session) applySettings() {
	kb := s.cfg.Keyboard()
	ed := s.cfg.Editor()

	policy := keyboard.ShiftPolicyDoubleTap
	if kb.ShiftPolicy == config.ShiftPolicyCycle {
		policy = keyboard.ShiftPolicyCycle
	}
	s.manager.Apply(keyboard.Config{
		AutoCommitConfidence: kb.AutoCommitConfidence,
		DoubleSpacePeriod:    kb.DoubleSpacePeriod,
		DoubleTapWindow:      kb.DoubleTapWindow,
		AutoCapitalize:       kb.AutoCapitalize,
		ShiftPolicy:          policy,
		Locale:               kb.Locale,
	})

	s.editor.ApplyOptions(editor.Options{
		PhantomWordDelete: ed.PhantomWordDelete,
		MarkComposingWord: ed.MarkComposingWord,
	})
	rules := punctRulesFor(kb.Locale)
	if !ed.AutoSpace {
		rules.EnableAutoSpace = false
	}
	s.editor.ApplyRules(rules)

	s.provider.SetLocale(kb.Locale)
	s.classifier.SetLocale(kb.Locale)
}

// Start launches the background machinery: the update hub, the autosave
// worker, the remote bridge, config live reload, and the echo
// subscriptions.
func (s *Session) Start() error {
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	if err := s.hub.Start(); err != nil {
		return fmt.Errorf("starting hub: %w", err)
	}
	if err := s.autosaver.Start(); err != nil {
		return fmt.Errorf("starting autosaver: %w", err)
	}

	// Sync: the editor reconciles every echo inline, in publish order.
	if _, err := s.hub.Subscribe(host.DeliverySync, func(u host.Update) {
		s.editor.HandleUpdate(u.Text, u.Selection, u.Composing)
	}); err != nil {
		return fmt.Errorf("subscribing editor: %w", err)
	}
	// The reconciled content drives shift re-derivation.
	s.editor.SetUpdateListener(s.manager.HandleContent)

	// Async: debug tracing happens off the publisher's goroutine.
	if _, err := s.hub.Subscribe(host.DeliveryAsync, func(u host.Update) {
		s.logger.WithComponent("host").Debug("echo sel=%v comp=%v len=%d",
			u.Selection, u.Composing, len(u.Text))
	}); err != nil {
		return fmt.Errorf("subscribing tracer: %w", err)
	}

	// Focus-time sync: prime the editor with the field's current state.
	// A remote field delivers the equivalent snapshot in its hello.
	if s.field != nil {
		u := s.field.Snapshot()
		s.editor.HandleUpdate(u.Text, u.Selection, u.Composing)
	}

	if s.bridge != nil {
		addr := s.cfg.Remote().Listen
		if err := s.bridge.Listen(addr); err != nil {
			return fmt.Errorf("starting remote bridge: %w", err)
		}
		s.logger.WithComponent("remote").Info("listening on %s", s.bridge.Addr())
	}

	if s.cfg.Path() != "" {
		if err := s.cfg.Watch(); err != nil {
			// Live reload is a convenience; run without it.
			s.logger.WithComponent("config").Warn("live reload unavailable: %v", err)
		}
	}

	s.logger.Info("session started")
	return nil
}

// Close tears the session down in reverse order of Start. Safe to call
// once; the first error is reported, teardown continues regardless.
func (s *Session) Close() error {
	if !s.started {
		return ErrNotStarted
	}
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(s.cfg.Close())
	if s.bridge != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := s.bridge.Shutdown(ctx)
		cancel()
		if !errors.Is(err, remote.ErrServerNotListening) {
			keep(err)
		}
	}
	s.manager.Reset()
	s.editor.Reset()
	keep(s.autosaver.Close())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	keep(s.hub.Stop(ctx))
	cancel()

	if s.expander != nil {
		keep(s.expander.Close())
	}
	if s.storeCloser != nil {
		keep(s.storeCloser.Close())
	}

	s.logger.Info("session closed")
	return firstErr
}

// Manager returns the keyboard dispatcher. Key events go here.
func (s *Session) Manager() *keyboard.Manager { return s.manager }

// Editor returns the editor instance.
func (s *Session) Editor() *editor.Instance { return s.editor }

// Config returns the live configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Logger returns the session logger.
func (s *Session) Logger() *Logger { return s.logger }

// Notices returns the notifier collecting transient user notices.
func (s *Session) Notices() *Notifier { return s.notifier }

// Field returns the in-process reference field, or nil when the session
// drives a remote field.
func (s *Session) Field() *host.MemoryField { return s.field }

// Remote returns the websocket bridge, or nil when the session drives the
// in-process field.
func (s *Session) Remote() *remote.Server { return s.bridge }

// Provider returns the built-in suggestion provider.
func (s *Session) Provider() *suggest.TypoProvider { return s.provider }

// punctRulesFor resolves the punctuation rules for a locale string.
// Unparseable locales fall back to the default rules.
func punctRulesFor(locale string) punct.Rules {
	tag, err := language.Parse(locale)
	if err != nil {
		return punct.Default()
	}
	return punct.For(tag)
}
