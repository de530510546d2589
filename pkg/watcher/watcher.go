package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/pd-parser/pkg/finder"
	"github.com/ritzau/pd-parser/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeModified ChangeType = iota
	ChangeTypeRemoved
)

func (c ChangeType) String() string {
	switch c {
	case ChangeTypeModified:
		return "modified"
	case ChangeTypeRemoved:
		return "removed"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(c))
	}
}

// ChangeEvent represents a batch of patch file changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches .pd files below a directory, or a single .pd file
type FileWatcher struct {
	watcher *fsnotify.Watcher
	root    string

	// file is set when a single file is watched
	file   string
	events chan ChangeEvent
}

// NewFileWatcher creates a new file system watcher for a directory or file
func NewFileWatcher(root string) (*FileWatcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		root:    filepath.Clean(root),
		events:  make(chan ChangeEvent, 100),
	}
	if !info.IsDir() {
		fw.file = fw.root
		fw.root = filepath.Dir(fw.root)
	}
	return fw, nil
}

// Start begins watching for file changes. Events stop and the channel is
// closed when the context is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if fw.file != "" {
		// editors often replace files on save, so watch the directory
		if err := fw.watcher.Add(fw.root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", fw.root, err)
		}
	} else if err := fw.watchTree(fw.root); err != nil {
		return err
	}

	logging.Info("started watching patches", "path", fw.path())
	go fw.processEvents(ctx)
	return nil
}

func (fw *FileWatcher) path() string {
	if fw.file != "" {
		return fw.file
	}
	return fw.root
}

// watchTree adds a directory and all its non-hidden subdirectories
func (fw *FileWatcher) watchTree(dir string) error {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't access
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			logging.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	logging.Debug("monitoring directories for patches", "root", dir, "count", count)
	return nil
}

// relevant reports whether an event path is one of the watched patches
func (fw *FileWatcher) relevant(path string) bool {
	if fw.file != "" {
		return filepath.Clean(path) == fw.file
	}
	return finder.IsPatchFile(path)
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	send := func(changeType ChangeType, path string) {
		select {
		case fw.events <- ChangeEvent{Type: changeType, Paths: []string{path}, Timestamp: time.Now()}:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			logging.Trace("fs event", "op", event.Op.String(), "path", event.Name)

			if event.Has(fsnotify.Create) && fw.file == "" {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.watchTree(event.Name); err != nil {
						logging.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			if !fw.relevant(event.Name) {
				continue
			}

			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				send(ChangeTypeRemoved, event.Name)
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				send(ChangeTypeModified, event.Name)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}
