package server

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchFile calls fn once per burst of changes to the file at path. The
// parent directory is watched so that editors replacing the file are seen.
func watchFile(path string, debounce time.Duration, log zerolog.Logger, fn func(event fsnotify.Event)) (*fsnotify.Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		var (
			mu    sync.Mutex
			timer *time.Timer
			last  fsnotify.Event
		)
		trigger := func() {
			mu.Lock()
			event := last
			timer = nil
			mu.Unlock()
			fn(event)
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || event.Has(fsnotify.Chmod) {
					continue
				}
				log.Trace().Str("event", event.String()).Msg("page changed")
				mu.Lock()
				last = event
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, trigger)
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("watch")
			}
		}
	}()

	return watcher, nil
}
