//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const scriptDebounce = 50 * time.Millisecond

func readScript(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(b), nil
}

// watchScript calls onChange with the file contents after each write to path.
//
// The parent directory is watched so editors that replace the file on save
// are still observed. Bursts of events are coalesced. It returns when ctx is
// done or the watcher fails.
func watchScript(ctx context.Context, path string, onChange func(string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("script watcher: %w", err)
	}
	defer w.Close()

	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(scriptDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("script watcher: %w", err)
		case <-pending:
			pending = nil
			s, err := readScript(path)
			if err != nil {
				continue
			}
			onChange(s)
		}
	}
}
