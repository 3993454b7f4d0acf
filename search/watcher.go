package search

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// rebuildDelay debounces remove/rename bursts into a single rebuild.
const rebuildDelay = 200 * time.Millisecond

// Watch runs an fsnotify watcher on the notes directory until ctx is
// cancelled, keeping the index in step with changes made outside the
// session. Writes and creates reindex the single file; removes and
// renames schedule a debounced full rebuild, since the index has no
// targeted delete. onChange (if non-nil) is called after each successful
// index mutation so the caller can refresh its view.
func Watch(ctx context.Context, idx NoteIndexer, root, ext string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	var rebuildTimer *time.Timer
	var rebuildCh <-chan time.Time

	scheduleRebuild := func() {
		if rebuildTimer == nil {
			rebuildTimer = time.NewTimer(rebuildDelay)
			rebuildCh = rebuildTimer.C
		} else {
			rebuildTimer.Reset(rebuildDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			return nil

		case <-rebuildCh:
			if err := idx.Rebuild(); err != nil {
				log.Printf("watcher: rebuild failed: %v", err)
				continue
			}
			if onChange != nil {
				onChange()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ext) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				name := filepath.Base(ev.Name)
				if err := idx.UpdateFile(name); err != nil {
					log.Printf("watcher: index %s failed: %v", name, err)
					continue
				}
				if onChange != nil {
					onChange()
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				scheduleRebuild()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: %v", watchErr)
		}
	}
}
