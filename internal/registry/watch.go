package registry

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/Imergent-Technology/Protogen-sub001/internal/common/fsutil"
)

// Watch reloads the catalog in dir into store whenever a catalog file changes.
// A reload that fails keeps the previous catalog. onReload, when non-nil, is
// called after every reload attempt. Watching stops when ctx is done.
func Watch(ctx context.Context, dir string, store *Store, log zerolog.Logger, onReload func(*Catalog, error)) error {
	abs, err := fsutil.ResolveDir(dir)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}
	if err := w.Add(abs); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", abs, err)
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !fsutil.HasExt(ev.Name, catalogExts...) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
					!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				c, err := LoadDir(abs)
				if err != nil {
					log.Warn().Str("event", "catalog_reload_failed").Str("file", ev.Name).Err(err).Msg("registry")
				} else {
					store.Set(c)
					log.Info().Str("event", "catalog_reloaded").Int("scenes", len(c.scenes)).
						Int("decks", len(c.decks)).Msg("registry")
				}
				if onReload != nil {
					onReload(c, err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Str("event", "catalog_watch_error").Err(err).Msg("registry")
			}
		}
	}()
	return nil
}
