package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"dripcalc/internal/logger"
	"dripcalc/internal/metrics"
)

// settle is how long Watch waits after the last event on the config file
// before loading it, so a truncate followed by a write loads once.
const settle = 50 * time.Millisecond

// Watch reloads the config at path whenever it changes and passes the result
// to onChange. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so replacing the
// file by rename (editor atomic saves) or swapping a symlink target
// (Kubernetes ConfigMap volumes) keeps triggering reloads. A reload that
// fails to load or validate is logged and skipped; the previous configuration
// stays active.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	log := logger.WithComponent("config").With().Str("path", path).Logger()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	resolved, _ := filepath.EvalSymlinks(target)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	log.Info().Msg("watching for changes")

	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !touches(event, target, &resolved) {
				continue
			}
			timer.Reset(settle)

		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				log.Error().Err(err).Msg("reload failed, keeping previous config")
				metrics.ConfigReloadsTotal.WithLabelValues("failed").Inc()
				continue
			}

			log.Info().Msg("config reloaded")
			metrics.ConfigReloadsTotal.WithLabelValues("success").Inc()
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}

// touches reports whether event changed the content behind target. Events on
// the file itself count when they write or (re)create it. Any other event in
// the directory counts when it moved the symlink target, which is updated in
// place.
func touches(event fsnotify.Event, target string, resolved *string) bool {
	if filepath.Clean(event.Name) == target {
		return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
	}

	now, err := filepath.EvalSymlinks(target)
	if err != nil || now == *resolved {
		return false
	}
	*resolved = now
	return true
}
