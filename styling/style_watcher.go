package styling

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
)

// StyleDirWatcher keeps a StyleSet in sync with the MapCSS files of a directory.
type StyleDirWatcher struct {
	logger   *logpkg.Logger
	fs       gofs.Fs
	dirPath  string
	styleSet *StyleSet
}

func NewStyleDirWatcher(logger *logpkg.Logger, fs gofs.Fs, dirPath string, styleSet *StyleSet) *StyleDirWatcher {
	return &StyleDirWatcher{logger, fs, dirPath, styleSet}
}

// Watch blocks until the context is done, reloading styles as their files change.
// The ready channel, if given, is closed once the directory is being watched.
func (w *StyleDirWatcher) Watch(ctx context.Context, ready chan<- struct{}) errorsx.Error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errorsx.Wrap(err)
	}
	defer watcher.Close()

	err = watcher.Add(w.dirPath)
	if err != nil {
		return errorsx.Wrap(err, "dirPath", w.dirPath)
	}

	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("style watcher error: %q", err)
		}
	}
}

func (w *StyleDirWatcher) handleEvent(event fsnotify.Event) {
	if !IsStyleFile(event.Name) {
		return
	}

	styleID := StyleIDFromFileName(event.Name)
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		err := w.styleSet.RemoveStyle(styleID)
		if err != nil {
			w.logger.Warn("could not remove style %q: %s", styleID, err)
			return
		}
		w.logger.Info("removed style %q", styleID)
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		style, err := LoadStyleFile(w.fs, event.Name)
		if err != nil {
			// keep serving the previous version of the style
			w.logger.Warn("could not reload style %q: %s", styleID, err)
			return
		}
		w.styleSet.PutStyle(style)
		w.logger.Info("reloaded style %q", styleID)
	}
}
