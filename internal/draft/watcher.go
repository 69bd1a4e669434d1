package draft

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Change kinds reported by Watch.
const (
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// ChangeCallback is called for every draft file changed outside this store.
type ChangeCallback func(kind, id string)

// Watch observes the drafts directory until ctx is cancelled and calls cb when a
// draft file is edited or removed by something other than this store.
func (f *FS) Watch(ctx context.Context, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(f.root); err != nil {
		return err
	}
	logger.Info("drafts watcher: started", slog.String("root", f.root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("drafts watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			id, ok := idFromName(filepath.Base(ev.Name))
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := os.ReadFile(ev.Name)
				if readErr != nil {
					if !errors.Is(readErr, fs.ErrNotExist) {
						logger.Warn("drafts watcher: read failed", slog.String("brief_id", id), slog.String("error", readErr.Error()))
					}
					continue
				}
				if f.ownWrite(id, data) {
					continue
				}
				logger.Debug("drafts watcher: external edit", slog.String("brief_id", id))
				if cb != nil {
					cb(ChangeUpdated, id)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if _, statErr := os.Stat(ev.Name); statErr == nil {
					continue
				}
				if f.ownRemove(id) {
					continue
				}
				logger.Debug("drafts watcher: external delete", slog.String("brief_id", id))
				if cb != nil {
					cb(ChangeDeleted, id)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("drafts watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
