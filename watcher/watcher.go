/*
Package watcher watches directory trees for translation-file changes and
batches them behind a debounce window, so that a burst of writes (an editor
save, a git checkout) triggers a single regeneration instead of one per file.
*/
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Watcher invokes OnChange with the batch of changed paths once the watched
// trees have been quiet for the debounce window.
type Watcher struct {
	Dirs     []string
	Debounce time.Duration
	// Glob patterns of paths to ignore, matched against slash-separated paths
	Ignore   []string
	OnChange func(paths []string)
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, dir := range w.Dirs {
		if err := addTree(fw, dir); err != nil {
			return err
		}
	}

	timer := time.NewTimer(w.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}

			// Directories created inside a watched tree need watching too
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(fw, event.Name); err != nil {
						fmt.Fprintln(os.Stderr, "Watch error:", err)
					}
					continue
				}
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			pending[event.Name] = true
			timer.Reset(w.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "Watch error:", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			pending = make(map[string]bool)

			w.OnChange(paths)
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range w.Ignore {
		if ok, err := doublestar.Match(pattern, slashed); err == nil && ok {
			return true
		}
	}
	return false
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
