package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the event bursts editors emit when saving.
const reloadDebounce = 100 * time.Millisecond

type fileWatcher struct {
	fsw  *fsnotify.Watcher
	quit chan struct{}
	wg   sync.WaitGroup
}

// Watch starts live reload of the settings file. The file's directory is
// watched rather than the file itself, because most editors replace the
// file by rename on save. Reload failures go to the error handler; the
// settings in effect never change on a failed reload. Stop with Close.
func (c *Config) Watch() error {
	if c.path == "" {
		return ErrNoPath
	}
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	if c.watch != nil {
		return ErrWatcherRunning
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting config watcher: %w", err)
	}
	dir := filepath.Dir(c.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w := &fileWatcher{fsw: fsw, quit: make(chan struct{})}
	c.watch = w
	w.wg.Add(1)
	go c.watchLoop(w)
	return nil
}

// Close stops live reload. Safe to call twice or without a prior Watch.
func (c *Config) Close() error {
	c.watchMu.Lock()
	w := c.watch
	c.watch = nil
	c.watchMu.Unlock()
	if w == nil {
		return nil
	}
	close(w.quit)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (c *Config) watchLoop(w *fileWatcher) {
	defer w.wg.Done()
	target := filepath.Base(c.path)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
				fire = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(reloadDebounce)
		case <-fire:
			timer, fire = nil, nil
			if err := c.Load(); err != nil {
				c.fail(fmt.Errorf("config reload: %w", err))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			c.fail(fmt.Errorf("config watch: %w", err))
		case <-w.quit:
			return
		}
	}
}
